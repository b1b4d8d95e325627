package driver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the file looked up in the working directory when no
// explicit -config path is given.
const ConfigFileName = "bizdsl.yml"

// StoreKind selects the persistence backend.
type StoreKind string

const (
	StoreFile   StoreKind = "file"
	StoreSQLite StoreKind = "sqlite"
)

// Defaults.
const (
	DefaultScriptsDir   = "scripts"
	DefaultSQLitePath   = "scripts.db"
	DefaultPollInterval = 5 * time.Second
	DefaultGitBranch    = "main"
)

// Config represents the parsed contents of bizdsl.yml.
type Config struct {
	Path             string
	ScriptsDir       string
	Store            StoreKind
	SQLitePath       string
	PollInterval     time.Duration
	MaxCallDepth     int
	LogLevel         slog.Level
	StandardBuiltins bool
	Git              *GitSource
}

// GitSource describes a repository of scripts synchronised into the store.
type GitSource struct {
	URL         string
	Branch      string
	Tag         string
	Rev         string
	Path        string
	CheckoutDir string
}

// ValidationError aggregates configuration validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		ScriptsDir:       DefaultScriptsDir,
		Store:            StoreFile,
		SQLitePath:       DefaultSQLitePath,
		PollInterval:     DefaultPollInterval,
		LogLevel:         slog.LevelInfo,
		StandardBuiltins: false,
	}
}

// LoadConfig parses a config file from disk. Relative paths inside it are
// resolved against the file's directory.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()
	return decodeConfig(file, absPath)
}

// ParseConfig decodes config YAML that did not come from a file.
func ParseConfig(r io.Reader) (*Config, error) {
	return decodeConfig(r, "")
}

func decodeConfig(r io.Reader, absPath string) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw configFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			cfg := DefaultConfig()
			cfg.Path = absPath
			cfg.resolvePaths()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: parse %s: %w", displayPath(absPath), err)
	}

	cfg, issues := raw.toConfig(absPath)
	cfg.resolvePaths()
	issues = append(issues, cfg.validate()...)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return cfg, nil
}

func displayPath(path string) string {
	if path == "" {
		return "<input>"
	}
	return path
}

func (c *Config) resolvePaths() {
	if c.Path == "" {
		return
	}
	base := filepath.Dir(c.Path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.ScriptsDir = resolve(c.ScriptsDir)
	c.SQLitePath = resolve(c.SQLitePath)
	if c.Git != nil {
		c.Git.CheckoutDir = resolve(c.Git.CheckoutDir)
	}
}

func (c *Config) validate() []string {
	var issues []string
	switch c.Store {
	case StoreFile:
		if c.ScriptsDir == "" {
			issues = append(issues, "scripts_dir must be provided for the file store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			issues = append(issues, "sqlite_path must be provided for the sqlite store")
		}
	default:
		issues = append(issues, fmt.Sprintf("store %q is not supported (expected file or sqlite)", c.Store))
	}
	if c.PollInterval <= 0 {
		issues = append(issues, "poll_interval must be positive")
	}
	if c.Git != nil {
		issues = append(issues, c.Git.validate()...)
	}
	return issues
}

func (g *GitSource) validate() []string {
	var issues []string
	if strings.TrimSpace(g.URL) == "" {
		issues = append(issues, "git.url must be provided")
	}
	set := 0
	for _, ref := range []string{g.Branch, g.Tag, g.Rev} {
		if strings.TrimSpace(ref) != "" {
			set++
		}
	}
	if set > 1 {
		issues = append(issues, "git accepts only one of branch, tag, or rev")
	}
	if g.CheckoutDir == "" {
		issues = append(issues, "git.checkout_dir must be provided")
	}
	if strings.Contains(filepath.ToSlash(g.Path), "..") {
		issues = append(issues, "git.path must stay inside the repository")
	}
	return issues
}

// ParseLogLevel accepts debug, info, warn, or error (any case).
func ParseLogLevel(text string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(text))); err != nil {
		return 0, fmt.Errorf("config: invalid log level %q", text)
	}
	return level, nil
}

type configFile struct {
	ScriptsDir   string       `yaml:"scripts_dir"`
	Store        string       `yaml:"store"`
	SQLitePath   string       `yaml:"sqlite_path"`
	PollInterval duration     `yaml:"poll_interval"`
	MaxCallDepth *int         `yaml:"max_call_depth"`
	LogLevel     string       `yaml:"log_level"`
	Builtins     builtinsFile `yaml:"builtins"`
	Git          *gitFile     `yaml:"git"`
}

type builtinsFile struct {
	Standard *bool `yaml:"standard"`
}

type gitFile struct {
	URL         string `yaml:"url"`
	Branch      string `yaml:"branch"`
	Tag         string `yaml:"tag"`
	Rev         string `yaml:"rev"`
	Path        string `yaml:"path"`
	CheckoutDir string `yaml:"checkout_dir"`
}

func (raw configFile) toConfig(absPath string) (*Config, []string) {
	cfg := DefaultConfig()
	cfg.Path = absPath
	var issues []string
	if dir := strings.TrimSpace(raw.ScriptsDir); dir != "" {
		cfg.ScriptsDir = dir
	}
	if store := strings.TrimSpace(raw.Store); store != "" {
		cfg.Store = StoreKind(strings.ToLower(store))
	}
	if path := strings.TrimSpace(raw.SQLitePath); path != "" {
		cfg.SQLitePath = path
	}
	if raw.PollInterval.set {
		cfg.PollInterval = raw.PollInterval.value
	}
	if raw.MaxCallDepth != nil {
		cfg.MaxCallDepth = *raw.MaxCallDepth
	}
	if raw.LogLevel != "" {
		level, err := ParseLogLevel(raw.LogLevel)
		if err != nil {
			issues = append(issues, fmt.Sprintf("log_level %q must be debug, info, warn, or error", raw.LogLevel))
		} else {
			cfg.LogLevel = level
		}
	}
	if raw.Builtins.Standard != nil {
		cfg.StandardBuiltins = *raw.Builtins.Standard
	}
	if raw.Git != nil {
		cfg.Git = &GitSource{
			URL:         strings.TrimSpace(raw.Git.URL),
			Branch:      strings.TrimSpace(raw.Git.Branch),
			Tag:         strings.TrimSpace(raw.Git.Tag),
			Rev:         strings.TrimSpace(raw.Git.Rev),
			Path:        strings.TrimSpace(raw.Git.Path),
			CheckoutDir: strings.TrimSpace(raw.Git.CheckoutDir),
		}
		if cfg.Git.CheckoutDir == "" {
			cfg.Git.CheckoutDir = filepath.Join(".bizdsl", "git")
		}
	}
	return cfg, issues
}

// duration accepts Go duration strings ("5s", "250ms") or a bare number of
// seconds.
type duration struct {
	value time.Duration
	set   bool
}

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		text := strings.TrimSpace(value.Value)
		if value.Tag == "!!null" || text == "" {
			*d = duration{}
			return nil
		}
		if value.Tag == "!!int" || value.Tag == "!!float" {
			var secs float64
			if err := value.Decode(&secs); err != nil {
				return err
			}
			*d = duration{value: time.Duration(secs * float64(time.Second)), set: true}
			return nil
		}
		parsed, err := time.ParseDuration(text)
		if err != nil {
			return fmt.Errorf("config: invalid duration %q", text)
		}
		*d = duration{value: parsed, set: true}
		return nil
	case yaml.AliasNode:
		return d.UnmarshalYAML(value.Alias)
	default:
		return fmt.Errorf("config: expected duration scalar but found %s", value.ShortTag())
	}
}
