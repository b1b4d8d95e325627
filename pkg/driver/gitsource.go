package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"bizdsl/interpreter-go/pkg/store"
)

// SyncResult reports what a git sync changed.
type SyncResult struct {
	Commit    string
	Version   string
	Written   []string
	Unchanged []string
}

// SyncGit checks out src and copies every .dsl file under src.Path into st.
// Files whose content already matches the store are left alone so watchers
// do not see spurious changes.
func SyncGit(ctx context.Context, src *GitSource, st store.Store, logger *slog.Logger) (*SyncResult, error) {
	if src == nil {
		return nil, errors.New("git: no source configured")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	version, commit, dir, err := ensureCheckout(ctx, src)
	if err != nil {
		return nil, err
	}
	logger.Info("git checkout ready", "url", src.URL, "version", version, "dir", dir)

	root := filepath.Join(dir, filepath.FromSlash(src.Path))
	files, err := scriptFiles(root)
	if err != nil {
		return nil, fmt.Errorf("git: scan %s: %w", root, err)
	}
	result := &SyncResult{Commit: commit, Version: version}
	for _, path := range files {
		id := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			return result, fmt.Errorf("git: read %s: %w", path, err)
		}
		current, err := st.Read(ctx, id)
		switch {
		case err == nil && current == string(data):
			result.Unchanged = append(result.Unchanged, id)
			continue
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return result, err
		}
		if err := st.Write(ctx, id, string(data)); err != nil {
			return result, err
		}
		logger.Info("git script synced", "script", id, "commit", commit)
		result.Written = append(result.Written, id)
	}
	return result, nil
}

func scriptFiles(root string) ([]string, error) {
	var out []string
	seen := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if store.ValidateID(d.Name()) != nil {
			return nil
		}
		if prev, ok := seen[d.Name()]; ok {
			return fmt.Errorf("script id %s appears at %s and %s", d.Name(), prev, path)
		}
		seen[d.Name()] = path
		out = append(out, path)
		return nil
	})
	sort.Strings(out)
	return out, err
}

// ensureCheckout returns a worktree for the requested revision under
// src.CheckoutDir. Pinned revisions are reused when already present;
// branches and tags are re-cloned because they move.
func ensureCheckout(ctx context.Context, src *GitSource) (version, commit, dir string, err error) {
	baseDir := src.CheckoutDir
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", "", fmt.Errorf("git: %w", err)
	}
	revision, descriptor := gitRevision(src)

	if rev := strings.TrimSpace(src.Rev); rev != "" {
		existing := filepath.Join(baseDir, sanitizePathSegment(rev))
		if _, err := os.Stat(existing); err == nil {
			return rev, rev, existing, nil
		}
	}

	tmpDir, err := os.MkdirTemp(baseDir, "git-fetch-*")
	if err != nil {
		return "", "", "", fmt.Errorf("git: %w", err)
	}
	fail := func(err error) (string, string, string, error) {
		_ = os.RemoveAll(tmpDir)
		return "", "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return fail(fmt.Errorf("git: %w", err))
	}

	repo, err := git.PlainCloneContext(ctx, tmpDir, false, &git.CloneOptions{URL: src.URL})
	if err != nil {
		return fail(fmt.Errorf("git clone %s: %w", src.URL, err))
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return fail(fmt.Errorf("git: resolve revision %s: %w", revision, err))
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fail(fmt.Errorf("git: %w", err))
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return fail(fmt.Errorf("git checkout %s: %w", revision, err))
	}

	version = pinnedVersion(descriptor, hash.String())
	targetDir := filepath.Join(baseDir, sanitizePathSegment(version))
	if err := os.RemoveAll(targetDir); err != nil {
		return fail(fmt.Errorf("git: %w", err))
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		return fail(fmt.Errorf("git: %w", err))
	}
	return version, hash.String(), targetDir, nil
}

// gitRevision resolves branches against the clone's remote-tracking refs;
// PlainClone only creates a local branch for the remote HEAD.
func gitRevision(src *GitSource) (plumbing.Revision, string) {
	if rev := strings.TrimSpace(src.Rev); rev != "" {
		return plumbing.Revision(rev), rev
	}
	if tag := strings.TrimSpace(src.Tag); tag != "" {
		return plumbing.Revision("refs/tags/" + tag), tag
	}
	branch := strings.TrimSpace(src.Branch)
	if branch == "" {
		branch = DefaultGitBranch
	}
	return plumbing.Revision("refs/remotes/origin/" + branch), branch
}

func pinnedVersion(descriptor, commit string) string {
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func sanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "head"
	}
	return b.String()
}
