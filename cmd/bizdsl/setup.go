package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bizdsl/interpreter-go/pkg/driver"
	"bizdsl/interpreter-go/pkg/engine"
	"bizdsl/interpreter-go/pkg/interpreter"
	"bizdsl/interpreter-go/pkg/runtime"
)

// loadConfig reads -config, or ./bizdsl.yml when it exists, and applies the
// flag overrides.
func (c *cli) loadConfig() (*driver.Config, error) {
	var cfg *driver.Config
	switch {
	case c.opts.configPath != "":
		loaded, err := driver.LoadConfig(c.opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		if _, err := os.Stat(driver.ConfigFileName); err == nil {
			loaded, err := driver.LoadConfig(driver.ConfigFileName)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		} else if errors.Is(err, fs.ErrNotExist) {
			cfg = driver.DefaultConfig()
		} else {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if c.opts.scriptsDir != "" {
		cfg.ScriptsDir = c.opts.scriptsDir
	}
	if c.opts.logLevel != "" {
		level, err := driver.ParseLogLevel(c.opts.logLevel)
		if err != nil {
			return nil, err
		}
		cfg.LogLevel = level
	}
	return cfg, nil
}

func (c *cli) newLogger(cfg *driver.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

func newInterpreter(cfg *driver.Config, logger *slog.Logger) *interpreter.Interpreter {
	builtins := interpreter.CoreBuiltins()
	if cfg.StandardBuiltins {
		builtins = builtins.Merge(interpreter.StandardBuiltins())
	}
	return interpreter.New(interpreter.Options{
		Builtins:     builtins,
		Logger:       logger,
		MaxCallDepth: cfg.MaxCallDepth,
	})
}

// openEngine builds an engine over the configured store. The returned close
// function stops the watcher and releases the store.
func (c *cli) openEngine(ctx context.Context, cfg *driver.Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	st, closeStore, err := driver.OpenStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	eng, err := engine.New(engine.Options{
		Store:        st,
		Interpreter:  newInterpreter(cfg, logger),
		Logger:       logger,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return eng, func() {
		eng.Close()
		if err := closeStore(); err != nil {
			logger.Warn("closing store failed", "error", err)
		}
	}, nil
}

// parseArgument decodes one command line argument as a YAML value.
// Timestamps stay text since the language has no date type.
func parseArgument(text string) (runtime.Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, fmt.Errorf("argument %q: %w", text, err)
	}
	if len(node.Content) == 0 {
		return runtime.StringValue{Val: text}, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!timestamp" {
		return runtime.StringValue{Val: strings.TrimSpace(text)}, nil
	}
	var decoded any
	if err := root.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("argument %q: %w", text, err)
	}
	val, err := runtime.FromGo(decoded)
	if err != nil {
		return nil, fmt.Errorf("argument %q: %w", text, err)
	}
	return val, nil
}

func parseArguments(args []string) ([]runtime.Value, error) {
	out := make([]runtime.Value, 0, len(args))
	for _, arg := range args {
		val, err := parseArgument(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}
