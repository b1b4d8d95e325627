// Package registry holds compiled scripts by id and swaps them atomically on
// reload. Readers never block: they load an immutable map snapshot, so an
// evaluation that already fetched a script keeps running against it while a
// writer installs a replacement.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"bizdsl/interpreter-go/pkg/interpreter"
	"bizdsl/interpreter-go/pkg/runtime"
)

// ErrScriptNotFound is returned for operations on an unknown id.
var ErrScriptNotFound = errors.New("script not found")

type snapshot map[string]*runtime.Script

// Registry is safe for concurrent use.
type Registry struct {
	interp *interpreter.Interpreter
	logger *slog.Logger

	mu      sync.Mutex // serialises writers
	scripts atomic.Pointer[snapshot]
}

// New creates an empty registry that compiles sources with interp.
func New(interp *interpreter.Interpreter, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	r := &Registry{interp: interp, logger: logger}
	empty := snapshot{}
	r.scripts.Store(&empty)
	return r
}

func (r *Registry) load() snapshot {
	return *r.scripts.Load()
}

// List returns every stored script keyed by id.
func (r *Registry) List() map[string]*runtime.Script {
	current := r.load()
	out := make(map[string]*runtime.Script, len(current))
	for id, script := range current {
		out[id] = script
	}
	return out
}

// IDs returns the stored ids in sorted order.
func (r *Registry) IDs() []string {
	current := r.load()
	ids := make([]string, 0, len(current))
	for id := range current {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the script stored under id.
func (r *Registry) Get(id string) (*runtime.Script, error) {
	if script, ok := r.load()[id]; ok {
		return script, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrScriptNotFound, id)
}

// Put compiles source and stores it under id. On failure the previously
// stored script, if any, stays in place and the error is returned.
func (r *Registry) Put(ctx context.Context, id, source string) (*runtime.Script, error) {
	script, err := r.interp.Compile(ctx, id, source)
	if err != nil {
		return nil, err
	}
	return r.Install(id, script), nil
}

// Install stores an already compiled script under id. A disabled previous
// version keeps the new one disabled. The installed script is returned.
func (r *Registry) Install(id string, script *runtime.Script) *runtime.Script {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.load()[id]; ok && !prev.Enabled {
		script = script.WithEnabled(false)
	}
	r.swap(func(next snapshot) { next[id] = script })
	return script
}

// Reload is Put for change notifications: the outcome is logged as well as
// returned.
func (r *Registry) Reload(ctx context.Context, id, source string) (*runtime.Script, error) {
	script, err := r.Put(ctx, id, source)
	if err != nil {
		r.logger.Warn("script reload failed; keeping previous version", "script", id, "error", err)
		return nil, err
	}
	r.logger.Info("script reloaded", "script", id, "functions", script.FunctionNames())
	return script, nil
}

// Delete removes id and reports whether it was present.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.load()[id]; !ok {
		return false
	}
	r.swap(func(next snapshot) { delete(next, id) })
	return true
}

// SetEnabled flips the enabled flag of a stored script.
func (r *Registry) SetEnabled(id string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	script, ok := r.load()[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, id)
	}
	if script.Enabled == enabled {
		return nil
	}
	updated := script.WithEnabled(enabled)
	r.swap(func(next snapshot) { next[id] = updated })
	return nil
}

// Validate reports whether source would be accepted by Put. Nothing is
// stored.
func (r *Registry) Validate(ctx context.Context, source string) error {
	_, err := r.interp.Compile(ctx, "<validate>", source)
	return err
}

// swap publishes a modified copy of the current map. Callers hold r.mu.
func (r *Registry) swap(mutate func(snapshot)) {
	current := r.load()
	next := make(snapshot, len(current)+1)
	for id, script := range current {
		next[id] = script
	}
	mutate(next)
	r.scripts.Store(&next)
}
