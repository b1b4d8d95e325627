// Package store persists script sources. Scripts are addressed by id, which
// is a file name ending in ".dsl".
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ext is the file extension every script id carries.
const Ext = ".dsl"

// ErrNotFound is returned when an id has no stored source.
var ErrNotFound = errors.New("script not found")

// Entry describes a stored script without its source.
type Entry struct {
	ID      string
	ModTime time.Time
	Size    int64
}

// Store is implemented by FileStore and SQLiteStore.
type Store interface {
	List(ctx context.Context) ([]Entry, error)
	Stat(ctx context.Context, id string) (Entry, error)
	Read(ctx context.Context, id string) (string, error)
	Write(ctx context.Context, id, source string) error
	Delete(ctx context.Context, id string) error
}

// IOError reports a persistence failure.
type IOError struct {
	Op  string
	ID  string
	Err error
}

func (e *IOError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ValidateID checks that id is a plain file name with the script extension.
func ValidateID(id string) error {
	switch {
	case !strings.HasSuffix(id, Ext) || len(id) == len(Ext):
		return fmt.Errorf("invalid script id %q: must be a name ending in %s", id, Ext)
	case strings.ContainsAny(id, `/\`) || strings.Contains(id, ".."):
		return fmt.Errorf("invalid script id %q: must not contain path elements", id)
	case strings.HasPrefix(id, "."):
		return fmt.Errorf("invalid script id %q: must not start with '.'", id)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
