package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/google/go-cmp/cmp"

	"bizdsl/interpreter-go/pkg/store"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write file %s: %v", path, err)
	}
}

func commitAll(t *testing.T, dir string) string {
	t.Helper()
	repo, err := git.PlainOpen(dir)
	if err == git.ErrRepositoryNotExists {
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		_, err = worktree.Add(filepath.ToSlash(rel))
		return err
	}); err != nil {
		t.Fatalf("stage files: %v", err)
	}
	hash, err := worktree.Commit("update rules", &git.CommitOptions{
		Author: &object.Signature{Name: "Rules Bot", Email: "rules@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestSyncGitPinnedRevision(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "rules", "discount.dsl"), `function applyDiscount(p) { return p * 0.8; }`)
	writeFile(t, filepath.Join(repo, "rules", "vip", "status.dsl"), `function isVip(c) { return c.tier == "gold"; }`)
	writeFile(t, filepath.Join(repo, "README.md"), "rules")
	rev := commitAll(t, repo)

	st := store.NewFileStore(filepath.Join(root, "scripts"))
	src := &GitSource{URL: repo, Rev: rev, Path: "rules", CheckoutDir: filepath.Join(root, "checkout")}
	ctx := context.Background()

	result, err := SyncGit(ctx, src, st, nil)
	if err != nil {
		t.Fatalf("SyncGit: %v", err)
	}
	if result.Commit != rev || result.Version != rev {
		t.Fatalf("unexpected commit/version %+v", result)
	}
	if diff := cmp.Diff([]string{"discount.dsl", "status.dsl"}, result.Written); diff != "" {
		t.Fatalf("written mismatch (-want +got):\n%s", diff)
	}
	source, err := st.Read(ctx, "status.dsl")
	if err != nil || !strings.Contains(source, "isVip") {
		t.Fatalf("expected synced source, got %q %v", source, err)
	}

	again, err := SyncGit(ctx, src, st, nil)
	if err != nil {
		t.Fatalf("second SyncGit: %v", err)
	}
	if len(again.Written) != 0 || len(again.Unchanged) != 2 {
		t.Fatalf("expected unchanged sync, got %+v", again)
	}
}

func TestSyncGitBranchPicksUpNewCommits(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "tax.dsl"), `function rate() { return 0.2; }`)
	commitAll(t, repo)

	st := store.NewFileStore(filepath.Join(root, "scripts"))
	src := &GitSource{URL: repo, Branch: "master", CheckoutDir: filepath.Join(root, "checkout")}
	ctx := context.Background()
	if _, err := SyncGit(ctx, src, st, nil); err != nil {
		t.Fatalf("SyncGit: %v", err)
	}

	writeFile(t, filepath.Join(repo, "tax.dsl"), `function rate() { return 0.25; }`)
	second := commitAll(t, repo)
	result, err := SyncGit(ctx, src, st, nil)
	if err != nil {
		t.Fatalf("SyncGit: %v", err)
	}
	if result.Version != "master@"+second {
		t.Fatalf("expected branch version, got %q", result.Version)
	}
	source, _ := st.Read(ctx, "tax.dsl")
	if !strings.Contains(source, "0.25") {
		t.Fatalf("expected updated source, got %q", source)
	}
}

func TestSyncGitDuplicateIDs(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, "repo")
	writeFile(t, filepath.Join(repo, "a", "dup.dsl"), `function f() { }`)
	writeFile(t, filepath.Join(repo, "b", "dup.dsl"), `function g() { }`)
	rev := commitAll(t, repo)

	src := &GitSource{URL: repo, Rev: rev, CheckoutDir: filepath.Join(root, "checkout")}
	_, err := SyncGit(context.Background(), src, store.NewFileStore(filepath.Join(root, "scripts")), nil)
	if err == nil || !strings.Contains(err.Error(), "script id dup.dsl appears at") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestGitRevision(t *testing.T) {
	cases := []struct {
		src        GitSource
		revision   string
		descriptor string
	}{
		{GitSource{Rev: "abc"}, "abc", "abc"},
		{GitSource{Tag: "v1"}, "refs/tags/v1", "v1"},
		{GitSource{Branch: "prod"}, "refs/remotes/origin/prod", "prod"},
		{GitSource{}, "refs/remotes/origin/main", "main"},
	}
	for _, tc := range cases {
		rev, desc := gitRevision(&tc.src)
		if string(rev) != tc.revision || desc != tc.descriptor {
			t.Fatalf("gitRevision(%+v) = %q, %q", tc.src, rev, desc)
		}
	}
}
