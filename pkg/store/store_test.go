package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "scripts.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"file":   NewFileStore(filepath.Join(t.TempDir(), "scripts")),
		"sqlite": sqlite,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range openStores(t) {
		if entries, err := st.List(ctx); err != nil || len(entries) != 0 {
			t.Fatalf("%s: expected empty list, got %v %v", name, entries, err)
		}
		if err := st.Write(ctx, "b.dsl", "function b() { }"); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		if err := st.Write(ctx, "a.dsl", "v1"); err != nil {
			t.Fatalf("%s: write: %v", name, err)
		}
		if err := st.Write(ctx, "a.dsl", "version two"); err != nil {
			t.Fatalf("%s: overwrite: %v", name, err)
		}
		src, err := st.Read(ctx, "a.dsl")
		if err != nil || src != "version two" {
			t.Fatalf("%s: read got %q, %v", name, src, err)
		}
		entries, err := st.List(ctx)
		if err != nil {
			t.Fatalf("%s: list: %v", name, err)
		}
		var ids []string
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if diff := cmp.Diff([]string{"a.dsl", "b.dsl"}, ids); diff != "" {
			t.Fatalf("%s: ids mismatch (-want +got):\n%s", name, diff)
		}
		entry, err := st.Stat(ctx, "a.dsl")
		if err != nil || entry.Size != int64(len("version two")) {
			t.Fatalf("%s: stat got %+v, %v", name, entry, err)
		}
		if err := st.Delete(ctx, "a.dsl"); err != nil {
			t.Fatalf("%s: delete: %v", name, err)
		}
		if _, err := st.Read(ctx, "a.dsl"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound after delete, got %v", name, err)
		}
		if err := st.Delete(ctx, "a.dsl"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound deleting twice, got %v", name, err)
		}
		if _, err := st.Stat(ctx, "missing.dsl"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("%s: expected ErrNotFound from stat, got %v", name, err)
		}
	}
}

func TestStoreRejectsInvalidIDs(t *testing.T) {
	ctx := context.Background()
	for name, st := range openStores(t) {
		for _, id := range []string{"", ".dsl", "noext", "../escape.dsl", "dir/x.dsl", ".hidden.dsl"} {
			if err := st.Write(ctx, id, "x"); err == nil {
				t.Fatalf("%s: expected %q to be rejected", name, id)
			}
		}
	}
}

func TestFileStoreListIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"rules.dsl":  "function f() { }",
		"notes.txt":  "ignore me",
		".swap.dsl~": "editor junk",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.dsl"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	entries, err := NewFileStore(dir).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "rules.dsl" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestFileStoreMissingDirListsEmpty(t *testing.T) {
	entries, err := NewFileStore(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	if err != nil || len(entries) != 0 {
		t.Fatalf("expected empty list, got %v %v", entries, err)
	}
}

func TestFileStoreWriteFailureIsIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	err := NewFileStore(filepath.Join(blocker, "scripts")).Write(context.Background(), "a.dsl", "x")
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "write" || ioErr.ID != "a.dsl" {
		t.Fatalf("expected write IOError, got %v", err)
	}
}

func TestSQLiteStoreTracksUpdateTime(t *testing.T) {
	ctx := context.Background()
	st, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "scripts.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer st.Close()
	clock := time.Unix(1700000000, 0)
	st.now = func() time.Time { return clock }
	if err := st.Write(ctx, "t.dsl", "x"); err != nil {
		t.Fatalf("write: %v", err)
	}
	entry, err := st.Stat(ctx, "t.dsl")
	if err != nil || !entry.ModTime.Equal(clock) {
		t.Fatalf("expected mod time %v, got %+v %v", clock, entry, err)
	}
}
