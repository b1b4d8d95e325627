package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"bizdsl/interpreter-go/pkg/interpreter"
	"bizdsl/interpreter-go/pkg/parser"
	"bizdsl/interpreter-go/pkg/runtime"
)

const (
	historyFile = ".bizdsl_history"
	promptMain  = "bizdsl> "
	promptCont  = "   ...> "
)

func (c *cli) runRepl(args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(c.stderr, "bizdsl repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return 1
	}
	interp := newInterpreter(cfg, c.newLogger(cfg))
	env := interp.NewSession(context.Background(), "<repl>")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintln(c.stdout, cliToolVersion+" (type :quit to exit)")
	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Fprintln(c.stdout)
			return 0
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if strings.HasPrefix(trimmed, ":") {
			if c.replCommand(interp, trimmed) {
				return 0
			}
			continue
		}
		val, err := evalLine(interp, env, code)
		if err != nil {
			c.reportRuntimeError(err)
			continue
		}
		fmt.Fprintln(c.stdout, runtime.Inspect(val))
	}
}

// evalLine accepts a bare expression as well as statements.
func evalLine(interp *interpreter.Interpreter, env *runtime.Environment, code string) (runtime.Value, error) {
	val, err := interp.Eval(code, env)
	var syn *parser.SyntaxError
	if errors.As(err, &syn) && !strings.HasSuffix(strings.TrimSpace(code), ";") {
		if retry, retryErr := interp.Eval(code+";", env); retryErr == nil {
			return retry, nil
		}
	}
	return val, err
}

func (c *cli) replCommand(interp *interpreter.Interpreter, cmd string) (exit bool) {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":builtins":
		fmt.Fprintln(c.stdout, strings.Join(interp.Builtins().Names(), ", "))
	default:
		fmt.Fprintln(c.stdout, "unknown command. Commands: :builtins, :quit")
	}
	return false
}

// readStatement keeps prompting while the buffered input is a prefix of a
// valid program.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// ctrl-c abandons the pending input
			return "", true
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, perr := parser.ParseProgram(src); parser.IsIncomplete(perr) && !parser.IsIncomplete(tryExpression(src)) {
			continue
		}
		return src, true
	}
}

// tryExpression parses src as an expression statement so a bare expression
// typed without its semicolon is not mistaken for unfinished input.
func tryExpression(src string) error {
	_, err := parser.ParseProgram(src + ";")
	return err
}
