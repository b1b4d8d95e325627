package driver

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"bizdsl/interpreter-go/pkg/store"
)

func writeConfig(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFull(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
scripts_dir: rules
store: SQLite
sqlite_path: data/rules.db
poll_interval: 250ms
max_call_depth: 64
log_level: debug
builtins:
  standard: false
git:
  url: https://example.com/rules.git
  tag: v1.2.0
  path: scripts
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := &Config{
		Path:             path,
		ScriptsDir:       filepath.Join(dir, "rules"),
		Store:            StoreSQLite,
		SQLitePath:       filepath.Join(dir, "data", "rules.db"),
		PollInterval:     250 * time.Millisecond,
		MaxCallDepth:     64,
		LogLevel:         slog.LevelDebug,
		StandardBuiltins: false,
		Git: &GitSource{
			URL:         "https://example.com/rules.git",
			Tag:         "v1.2.0",
			Path:        "scripts",
			CheckoutDir: filepath.Join(dir, ".bizdsl", "git"),
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Fatalf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConfigNumericPollInterval(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader("poll_interval: 2\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("expected 2s, got %s", cfg.PollInterval)
	}
}

func TestParseConfigRejectsUnknownFields(t *testing.T) {
	_, err := ParseConfig(strings.NewReader("scripts: x\n"))
	if err == nil || !strings.Contains(err.Error(), "field scripts not found") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestParseConfigValidation(t *testing.T) {
	_, err := ParseConfig(strings.NewReader(`
store: redis
poll_interval: 0s
log_level: loud
git:
  branch: main
  rev: abc123
`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{
		`log_level "loud" must be debug, info, warn, or error`,
		`store "redis" is not supported (expected file or sqlite)`,
		"poll_interval must be positive",
		"git.url must be provided",
		"git accepts only one of branch, tag, or rev",
	}
	if diff := cmp.Diff(want, verr.Issues); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(err.Error(), "config validation failed:\n- ") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestParseConfigBadDuration(t *testing.T) {
	if _, err := ParseConfig(strings.NewReader("poll_interval: soon\n")); err == nil || !strings.Contains(err.Error(), `invalid duration "soon"`) {
		t.Fatalf("expected duration error, got %v", err)
	}
}

func TestOpenStore(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fileCfg := DefaultConfig()
	fileCfg.ScriptsDir = filepath.Join(dir, "scripts")
	st, closeFn, err := OpenStore(ctx, fileCfg)
	if err != nil {
		t.Fatalf("OpenStore(file): %v", err)
	}
	if _, ok := st.(*store.FileStore); !ok {
		t.Fatalf("expected FileStore, got %T", st)
	}
	closeFn()

	sqlCfg := DefaultConfig()
	sqlCfg.Store = StoreSQLite
	sqlCfg.SQLitePath = filepath.Join(dir, "scripts.db")
	st, closeFn, err = OpenStore(ctx, sqlCfg)
	if err != nil {
		t.Fatalf("OpenStore(sqlite): %v", err)
	}
	defer closeFn()
	if _, ok := st.(*store.SQLiteStore); !ok {
		t.Fatalf("expected SQLiteStore, got %T", st)
	}
}
