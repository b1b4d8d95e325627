// Package engine is the host-facing API over the script store, the compiled
// script registry and the interpreter. It keeps the registry in step with the
// store: explicitly through SaveScript/DeleteScript, and in the background
// by polling the store for changes made behind its back.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"bizdsl/interpreter-go/pkg/interpreter"
	"bizdsl/interpreter-go/pkg/registry"
	"bizdsl/interpreter-go/pkg/runtime"
	"bizdsl/interpreter-go/pkg/store"
)

// DefaultPollInterval is how often Start checks the store for changes.
const DefaultPollInterval = 5 * time.Second

const loadConcurrency = 8

// Options configures an Engine. Store is required.
type Options struct {
	Store store.Store
	// Interpreter is built from Builtins and MaxCallDepth when nil.
	Interpreter  *interpreter.Interpreter
	Builtins     interpreter.Builtins
	MaxCallDepth int
	Logger       *slog.Logger
	PollInterval time.Duration
}

// ScriptInfo summarises a registered script.
type ScriptInfo struct {
	ID        string
	Name      string
	Functions []string
	Enabled   bool
	ParsedAt  time.Time
	UpdatedAt time.Time
}

// Engine is safe for concurrent use.
type Engine struct {
	store    store.Store
	interp   *interpreter.Interpreter
	registry *registry.Registry
	logger   *slog.Logger
	interval time.Duration

	// writeMu pairs every store change with the registry update that
	// follows it, so the two never disagree once a writer returns.
	writeMu sync.Mutex

	mu      sync.Mutex
	seen    map[string]version
	watcher *watcher
}

// version identifies one stored revision of a script as seen by the poller.
type version struct {
	modTime time.Time
	size    int64
}

func versionOf(entry store.Entry) version {
	return version{modTime: entry.ModTime, size: entry.Size}
}

// New wires an engine. Nothing is loaded until LoadAll.
func New(opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, errors.New("engine: store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	interp := opts.Interpreter
	if interp == nil {
		interp = interpreter.New(interpreter.Options{
			Builtins:     opts.Builtins,
			Logger:       logger,
			MaxCallDepth: opts.MaxCallDepth,
		})
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Engine{
		store:    opts.Store,
		interp:   interp,
		registry: registry.New(interp, logger),
		logger:   logger,
		interval: interval,
		seen:     make(map[string]version),
	}, nil
}

// Interpreter returns the interpreter scripts run on.
func (e *Engine) Interpreter() *interpreter.Interpreter { return e.interp }

// NormalizeID appends the script extension when name lacks it.
func NormalizeID(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(name, store.Ext) {
		name += store.Ext
	}
	return name
}

// LoadAll compiles every stored script in parallel. Scripts that fail to read
// or compile are logged and reported in a *LoadError; the rest are
// registered.
func (e *Engine) LoadAll(ctx context.Context) error {
	entries, err := e.store.List(ctx)
	if err != nil {
		return err
	}
	var (
		mu       sync.Mutex
		failures = make(map[string]error)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for _, entry := range entries {
		g.Go(func() error {
			err := e.loadEntry(gctx, entry)
			if err != nil && gctx.Err() == nil {
				e.logger.Error("script load failed", "script", entry.ID, "error", err)
				mu.Lock()
				failures[entry.ID] = err
				mu.Unlock()
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	e.logger.Info("scripts loaded", "total", len(entries), "failed", len(failures))
	if len(failures) > 0 {
		return &LoadError{Failures: failures}
	}
	return nil
}

// loadEntry compiles outside the write lock and installs only if the stored
// version is still the one listed. A newer version was either installed by
// its writer or will be picked up by the next poll.
func (e *Engine) loadEntry(ctx context.Context, entry store.Entry) error {
	source, err := e.store.Read(ctx, entry.ID)
	if err != nil {
		return err
	}
	script, compileErr := e.interp.Compile(ctx, entry.ID, source)

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	current, err := e.store.Stat(ctx, entry.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if versionOf(current) != versionOf(entry) {
		return nil
	}
	e.markSeen(entry.ID, versionOf(entry))
	if compileErr != nil {
		return compileErr
	}
	e.registry.Install(entry.ID, script)
	return nil
}

func (e *Engine) markSeen(id string, v version) {
	e.mu.Lock()
	e.seen[id] = v
	e.mu.Unlock()
}

func (e *Engine) forget(id string) {
	e.mu.Lock()
	delete(e.seen, id)
	e.mu.Unlock()
}

// ListScripts returns every stored script's source keyed by id, including
// sources that currently fail to compile.
func (e *Engine) ListScripts(ctx context.Context) (map[string]string, error) {
	entries, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		source, err := e.store.Read(ctx, entry.ID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[entry.ID] = source
	}
	return out, nil
}

// GetScript returns the stored source of id. Unknown ids yield an error
// matching registry.ErrScriptNotFound.
func (e *Engine) GetScript(ctx context.Context, id string) (string, error) {
	source, err := e.store.Read(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", registry.ErrScriptNotFound, id)
	}
	return source, err
}

// SaveScript compiles source, persists it and installs the compiled script.
// A source that does not compile is rejected before anything is written.
func (e *Engine) SaveScript(ctx context.Context, id, source string) error {
	id = NormalizeID(id)
	if err := store.ValidateID(id); err != nil {
		return err
	}
	script, err := e.interp.Compile(ctx, id, source)
	if err != nil {
		return err
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.store.Write(ctx, id, source); err != nil {
		return err
	}
	if entry, err := e.store.Stat(ctx, id); err == nil {
		e.markSeen(id, versionOf(entry))
	}
	e.registry.Install(id, script)
	e.logger.Info("script saved", "script", id)
	return nil
}

// DeleteScript removes id from the store and the registry. Deleting an
// unknown id succeeds.
func (e *Engine) DeleteScript(ctx context.Context, id string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.store.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	e.forget(id)
	if e.registry.Delete(id) {
		e.logger.Info("script deleted", "script", id)
	}
	return nil
}

// Validate returns the reason source would be rejected, or nil.
func (e *Engine) Validate(ctx context.Context, source string) error {
	return e.registry.Validate(ctx, source)
}

// ValidateScript reports whether source parses and initialises.
func (e *Engine) ValidateScript(ctx context.Context, source string) bool {
	if err := e.registry.Validate(ctx, source); err != nil {
		e.logger.Debug("script validation failed", "error", err)
		return false
	}
	return true
}

// ExecuteFunction calls function in the script registered under scriptID.
// Every failure is an *ExecutionError wrapping the typed cause.
func (e *Engine) ExecuteFunction(ctx context.Context, scriptID, function string, args []runtime.Value) (runtime.Value, error) {
	script, err := e.registry.Get(scriptID)
	if err != nil {
		return nil, newExecutionError(scriptID, function, err)
	}
	if !script.Enabled {
		return nil, newExecutionError(scriptID, function, fmt.Errorf("%w: %s", ErrScriptDisabled, scriptID))
	}
	result, err := e.interp.CallFunction(ctx, script, function, args)
	if err != nil {
		e.logger.Debug("function failed", "script", scriptID, "function", function, "error", err)
		return nil, newExecutionError(scriptID, function, err)
	}
	return result, nil
}

// Scripts describes every registered script, sorted by id.
func (e *Engine) Scripts() []ScriptInfo {
	scripts := e.registry.List()
	out := make([]ScriptInfo, 0, len(scripts))
	for _, script := range scripts {
		out = append(out, ScriptInfo{
			ID:        script.ID,
			Name:      script.Name,
			Functions: script.FunctionNames(),
			Enabled:   script.Enabled,
			ParsedAt:  script.ParsedAt,
			UpdatedAt: script.UpdatedAt,
		})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// SetEnabled switches execution of a registered script on or off.
func (e *Engine) SetEnabled(id string, enabled bool) error {
	if err := e.registry.SetEnabled(id, enabled); err != nil {
		return err
	}
	e.logger.Info("script enabled state changed", "script", id, "enabled", enabled)
	return nil
}

// Reload re-reads id from the store. A script removed from the store is
// dropped from the registry; one that no longer compiles keeps its previous
// version and the error is returned.
func (e *Engine) Reload(ctx context.Context, id string) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	entry, err := e.store.Stat(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		e.forget(id)
		if e.registry.Delete(id) {
			e.logger.Info("script removed", "script", id)
		}
		return nil
	}
	if err != nil {
		return err
	}
	e.markSeen(id, versionOf(entry))
	source, err := e.store.Read(ctx, id)
	if err != nil {
		return err
	}
	_, err = e.registry.Reload(ctx, id, source)
	return err
}
