package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"bizdsl/interpreter-go/pkg/driver"
	"bizdsl/interpreter-go/pkg/engine"
	"bizdsl/interpreter-go/pkg/interpreter"
	"bizdsl/interpreter-go/pkg/runtime"
)

// looksLikePath reports whether target names a file on disk rather than a
// stored script id.
func looksLikePath(target string) bool {
	if strings.ContainsAny(target, `/\`) {
		return true
	}
	info, err := os.Stat(target)
	return err == nil && !info.IsDir()
}

func (c *cli) runRun(args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(c.stderr, "bizdsl run requires a script and a function name")
		return 1
	}
	target, function := args[0], args[1]
	values, err := parseArguments(args[2:])
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	logger := c.newLogger(cfg)
	ctx := context.Background()

	var result runtime.Value
	if looksLikePath(target) {
		data, err := os.ReadFile(target)
		if err != nil {
			fmt.Fprintf(c.stderr, "read %s: %v\n", target, err)
			return 1
		}
		interp := newInterpreter(cfg, logger)
		script, err := interp.Compile(ctx, filepath.Base(target), string(data))
		if err != nil {
			fmt.Fprintf(c.stderr, "%s: %v\n", target, err)
			return 1
		}
		result, err = interp.CallFunction(ctx, script, function, values)
		if err != nil {
			c.reportRuntimeError(err)
			return 1
		}
	} else {
		eng, closeEngine, err := c.openEngine(ctx, cfg, logger)
		if err != nil {
			fmt.Fprintln(c.stderr, err)
			return 1
		}
		defer closeEngine()
		id := engine.NormalizeID(target)
		if err := eng.Reload(ctx, id); err != nil {
			fmt.Fprintf(c.stderr, "%s: %v\n", id, err)
			return 1
		}
		result, err = eng.ExecuteFunction(ctx, id, function, values)
		if err != nil {
			c.reportRuntimeError(err)
			return 1
		}
	}
	fmt.Fprintln(c.stdout, runtime.Inspect(result))
	return 0
}

func (c *cli) reportRuntimeError(err error) {
	var execErr *engine.ExecutionError
	if errors.As(err, &execErr) {
		fmt.Fprintf(c.stderr, "error: %s\n", execErr.Message)
		for _, line := range execErr.Stack {
			fmt.Fprintf(c.stderr, "  %s\n", line)
		}
		return
	}
	var rtErr *interpreter.RuntimeError
	if errors.As(err, &rtErr) {
		fmt.Fprintf(c.stderr, "error: %s\n", rtErr.String())
		return
	}
	fmt.Fprintf(c.stderr, "error: %v\n", err)
}

func (c *cli) runCheck(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "bizdsl check requires at least one file")
		return 1
	}
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	interp := newInterpreter(cfg, c.newLogger(cfg))
	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(c.stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		script, err := interp.Compile(context.Background(), filepath.Base(path), string(data))
		if err != nil {
			fmt.Fprintf(c.stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(c.stdout, "ok %s (%s)\n", path, strings.Join(script.FunctionNames(), ", "))
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func (c *cli) runList(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(c.stderr, "bizdsl list does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	ctx := context.Background()
	eng, closeEngine, err := c.openEngine(ctx, cfg, c.newLogger(cfg))
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	defer closeEngine()

	var failures map[string]error
	if err := eng.LoadAll(ctx); err != nil {
		var loadErr *engine.LoadError
		if !errors.As(err, &loadErr) {
			fmt.Fprintln(c.stderr, err)
			return 1
		}
		failures = loadErr.Failures
	}
	tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tFUNCTIONS")
	loaded := make(map[string]bool)
	for _, info := range eng.Scripts() {
		loaded[info.ID] = true
		fmt.Fprintf(tw, "%s\tok\t%s\n", info.ID, strings.Join(info.Functions, ", "))
	}
	for id, err := range failures {
		if !loaded[id] {
			fmt.Fprintf(tw, "%s\terror\t%s\n", id, firstLine(err.Error()))
		}
	}
	tw.Flush()
	if len(failures) > 0 {
		return 1
	}
	return 0
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func (c *cli) runWatch(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(c.stderr, "bizdsl watch does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	logger := c.newLogger(cfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, closeEngine, err := c.openEngine(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	defer closeEngine()

	if cfg.Git != nil {
		st, closeStore, err := driver.OpenStore(ctx, cfg)
		if err == nil {
			if _, err := driver.SyncGit(ctx, cfg.Git, st, logger); err != nil {
				logger.Error("git sync failed", "error", err)
			}
			closeStore()
		} else {
			logger.Error("git sync failed", "error", err)
		}
	}
	if err := eng.LoadAll(ctx); err != nil {
		var loadErr *engine.LoadError
		if !errors.As(err, &loadErr) {
			fmt.Fprintln(c.stderr, err)
			return 1
		}
	}
	if err := eng.Start(ctx); err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	<-ctx.Done()
	logger.Info("shutting down")
	return 0
}

func (c *cli) runSync(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(c.stderr, "bizdsl sync does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	if cfg.Git == nil {
		fmt.Fprintln(c.stderr, "bizdsl sync requires a git section in the config")
		return 1
	}
	ctx := context.Background()
	logger := c.newLogger(cfg)
	st, closeStore, err := driver.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	defer closeStore()
	result, err := driver.SyncGit(ctx, cfg.Git, st, logger)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	fmt.Fprintf(c.stdout, "synced %s (%d written, %d unchanged)\n", result.Version, len(result.Written), len(result.Unchanged))
	for _, id := range result.Written {
		fmt.Fprintf(c.stdout, "  %s\n", id)
	}
	return 0
}
