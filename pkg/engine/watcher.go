package engine

import (
	"context"
	"errors"
	"sort"
	"time"
)

type watcher struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start polls the store every PollInterval until ctx ends or Close is
// called. Poll failures are logged and never stop the loop.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.watcher != nil {
		return errors.New("engine: watcher already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	w := &watcher{cancel: cancel, done: make(chan struct{})}
	e.watcher = w
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()
		e.logger.Info("watching scripts", "interval", e.interval)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := e.Poll(ctx); err != nil && ctx.Err() == nil {
					e.logger.Error("script poll failed", "error", err)
				}
			}
		}
	}()
	return nil
}

// Close stops the watcher and waits for an in-flight poll to finish.
func (e *Engine) Close() error {
	e.mu.Lock()
	w := e.watcher
	e.watcher = nil
	e.mu.Unlock()
	if w == nil {
		return nil
	}
	w.cancel()
	<-w.done
	return nil
}

// Poll compares the store listing with the versions last seen and reloads
// what changed: new and modified ids are recompiled, vanished ids are
// dropped. A script that fails to compile is logged once per stored
// version and keeps its previous registration.
func (e *Engine) Poll(ctx context.Context) error {
	entries, err := e.store.List(ctx)
	if err != nil {
		return err
	}
	present := make(map[string]struct{}, len(entries))
	var changed []string
	e.mu.Lock()
	for _, entry := range entries {
		present[entry.ID] = struct{}{}
		if prev, ok := e.seen[entry.ID]; !ok || prev != versionOf(entry) {
			changed = append(changed, entry.ID)
		}
	}
	missing := make(map[string]struct{})
	for id := range e.seen {
		if _, ok := present[id]; !ok {
			missing[id] = struct{}{}
		}
	}
	e.mu.Unlock()
	for _, id := range e.registry.IDs() {
		if _, ok := present[id]; !ok {
			missing[id] = struct{}{}
		}
	}
	removed := make([]string, 0, len(missing))
	for id := range missing {
		removed = append(removed, id)
	}
	sort.Strings(removed)

	// Reload re-checks the store under the write lock: it logs compile
	// failures itself and drops ids that are really gone.
	for _, id := range append(changed, removed...) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := e.Reload(ctx, id); err != nil {
			e.logger.Debug("script change not applied", "script", id, "error", err)
		}
	}
	if len(changed) > 0 || len(removed) > 0 {
		e.logger.Debug("script poll applied changes", "changed", len(changed), "removed", len(removed))
	}
	return nil
}
