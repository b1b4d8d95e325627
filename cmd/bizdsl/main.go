package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

const cliToolVersion = "bizdsl 0.1.0-dev"

// globalOptions are the flags accepted before the subcommand.
type globalOptions struct {
	configPath string
	scriptsDir string
	logLevel   string
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
	opts   globalOptions
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	c := &cli{stdout: stdout, stderr: stderr}
	fs := flag.NewFlagSet("bizdsl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&c.opts.configPath, "config", "", "path to bizdsl.yml (default: ./bizdsl.yml when present)")
	fs.StringVar(&c.opts.scriptsDir, "scripts", "", "scripts directory (overrides scripts_dir)")
	fs.StringVar(&c.opts.logLevel, "log-level", "", "debug, info, warn, or error (overrides log_level)")
	fs.Usage = func() { c.printUsage() }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		c.printUsage()
		return 1
	}

	switch remaining[0] {
	case "help", "--help", "-h":
		c.printUsage()
		return 0
	case "version", "--version", "-V":
		fmt.Fprintln(c.stdout, cliToolVersion)
		return 0
	case "run":
		return c.runRun(remaining[1:])
	case "check":
		return c.runCheck(remaining[1:])
	case "list":
		return c.runList(remaining[1:])
	case "watch":
		return c.runWatch(remaining[1:])
	case "sync":
		return c.runSync(remaining[1:])
	case "repl":
		return c.runRepl(remaining[1:])
	default:
		fmt.Fprintf(c.stderr, "unknown command %q\n", remaining[0])
		c.printUsage()
		return 1
	}
}

func (c *cli) printUsage() {
	fmt.Fprintln(c.stderr, "Usage:")
	fmt.Fprintln(c.stderr, "  bizdsl [flags] run <file.dsl|script-id> <function> [args...]")
	fmt.Fprintln(c.stderr, "  bizdsl [flags] check <file.dsl>...")
	fmt.Fprintln(c.stderr, "  bizdsl [flags] list")
	fmt.Fprintln(c.stderr, "  bizdsl [flags] watch")
	fmt.Fprintln(c.stderr, "  bizdsl [flags] sync")
	fmt.Fprintln(c.stderr, "  bizdsl [flags] repl")
	fmt.Fprintln(c.stderr, "  bizdsl version")
	fmt.Fprintln(c.stderr, "")
	fmt.Fprintln(c.stderr, "Flags:")
	fmt.Fprintln(c.stderr, "  -config path      path to bizdsl.yml")
	fmt.Fprintln(c.stderr, "  -scripts dir      scripts directory")
	fmt.Fprintln(c.stderr, "  -log-level level  debug, info, warn, or error")
	fmt.Fprintln(c.stderr, "")
	fmt.Fprintln(c.stderr, "Arguments to run are YAML scalars: 100, true, null, \"text\", [1, 2], {tier: gold}.")
}
