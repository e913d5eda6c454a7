package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "/etc/lusers.yaml"

var DefaultRuleDirs = []string{
	"/etc/sysusers.d",
	"/run/sysusers.d",
	"/usr/lib/sysusers.d",
}

type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type Shells struct {
	// Root is the shell of accounts created with uid 0.
	Root    string `yaml:"root"`
	NoLogin string `yaml:"nologin"`
}

type Config struct {
	Root       string   `yaml:"root"`
	RuleDirs   []string `yaml:"rule_dirs"`
	Range      *Range   `yaml:"range,omitempty"`
	Shells     Shells   `yaml:"shells"`
	LogDir     string   `yaml:"log_dir,omitempty"`
	JournalDir string   `yaml:"journal_dir,omitempty"`
	Color      *bool    `yaml:"color,omitempty"`
}

func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults fills every unset field.
func (c Config) WithDefaults() Config {
	if c.Root == "" {
		c.Root = "/"
	}
	if len(c.RuleDirs) == 0 {
		c.RuleDirs = append([]string(nil), DefaultRuleDirs...)
	}
	if c.Range == nil {
		c.Range = &Range{Start: 0, End: 65535}
	}
	if c.Shells.Root == "" {
		c.Shells.Root = "/bin/sh"
	}
	if c.Shells.NoLogin == "" {
		c.Shells.NoLogin = "/usr/bin/nologin"
	}
	if c.Color == nil {
		on := true
		c.Color = &on
	}
	return c
}

func (c Config) Validate() error {
	if c.Range != nil && c.Range.Start > c.Range.End {
		return fmt.Errorf("config: range start %d above end %d", c.Range.Start, c.Range.End)
	}
	if c.Range != nil && c.Range.Start < 0 {
		return errors.New("config: negative range start")
	}
	return nil
}

// Load reads a YAML config file. A missing file yields the defaults.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	var cfg Config
	if len(b) > 0 {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.WithDefaults(), nil
}
