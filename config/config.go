// Package config loads the .normls.toml file and the settings an editor sends
// over the protocol.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/dhamidi/normls/runner"
)

// FileName is the name of the configuration file looked up from the workspace root.
const FileName = ".normls.toml"

// Event is a document event that can trigger a lint.
type Event string

const (
	EventOpen   Event = "open"
	EventSave   Event = "save"
	EventChange Event = "change"
)

type Config struct {
	Norminette Norminette `toml:"norminette"`
	Files      Files      `toml:"files"`
	LSP        LSP        `toml:"lsp"`

	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`
}

type Norminette struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Timeout string   `toml:"timeout"`

	timeout time.Duration
}

type Files struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type LSP struct {
	LintOn []Event `toml:"lint_on"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Norminette: Norminette{
			Command: runner.DefaultCommand,
			Timeout: "10s",
			timeout: 10 * time.Second,
		},
		Files: Files{
			Include: []string{"**/*.c", "**/*.h"},
		},
		LSP: LSP{
			LintOn: []Event{EventOpen, EventSave},
		},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads a configuration file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// LoadFrom loads the configuration that applies to dir, or the defaults when
// there is none.
func LoadFrom(dir string) (*Config, error) {
	path, ok, err := Find(dir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) validate() error {
	if c.Norminette.Command == "" {
		c.Norminette.Command = runner.DefaultCommand
	}
	c.Norminette.timeout = 0
	if c.Norminette.Timeout != "" {
		d, err := time.ParseDuration(c.Norminette.Timeout)
		if err != nil {
			return fmt.Errorf("norminette.timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("norminette.timeout: negative duration %s", d)
		}
		c.Norminette.timeout = d
	}
	for _, e := range c.LSP.LintOn {
		switch e {
		case EventOpen, EventSave, EventChange:
		default:
			return fmt.Errorf("lsp.lint_on: unknown event %q", e)
		}
	}
	for _, pattern := range slices.Concat(c.Files.Include, c.Files.Exclude) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("files: invalid pattern %q", pattern)
		}
	}
	return nil
}

// Matches reports whether a slash or OS separated path relative to the workspace
// root is selected by the include and exclude patterns.
func (c *Config) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range c.Files.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	for _, pattern := range c.Files.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// LintsOn reports whether documents are linted on e.
func (c *Config) LintsOn(e Event) bool {
	return slices.Contains(c.LSP.LintOn, e)
}

// RunnerOptions returns the options for the linter process runner.
func (c *Config) RunnerOptions() runner.Options {
	return runner.Options{
		Command: c.Norminette.Command,
		Args:    slices.Clone(c.Norminette.Args),
		Timeout: c.Norminette.timeout,
	}
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Norminette.Args = slices.Clone(c.Norminette.Args)
	clone.Files.Include = slices.Clone(c.Files.Include)
	clone.Files.Exclude = slices.Clone(c.Files.Exclude)
	clone.LSP.LintOn = slices.Clone(c.LSP.LintOn)
	return &clone
}

type settings struct {
	Normls *struct {
		Command *string  `json:"command"`
		Args    []string `json:"args"`
		Timeout *string  `json:"timeout"`
		Include []string `json:"include"`
		Exclude []string `json:"exclude"`
		LintOn  []Event  `json:"lintOn"`
	} `json:"normls"`
}

// Apply returns a copy of c with editor settings laid over it. The settings are the
// decoded JSON of workspace/didChangeConfiguration, shaped as {"normls": {...}}.
func (c *Config) Apply(raw any) (*Config, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	var s settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}

	next := c.Clone()
	if s.Normls == nil {
		return next, nil
	}
	if s.Normls.Command != nil {
		next.Norminette.Command = *s.Normls.Command
	}
	if s.Normls.Args != nil {
		next.Norminette.Args = s.Normls.Args
	}
	if s.Normls.Timeout != nil {
		next.Norminette.Timeout = *s.Normls.Timeout
	}
	if s.Normls.Include != nil {
		next.Files.Include = s.Normls.Include
	}
	if s.Normls.Exclude != nil {
		next.Files.Exclude = s.Normls.Exclude
	}
	if s.Normls.LintOn != nil {
		next.LSP.LintOn = s.Normls.LintOn
	}
	if err := next.validate(); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return next, nil
}
