package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format" json:"format,omitempty"`
	Verbose bool   `mapstructure:"verbose" json:"verbose,omitempty"`

	Input    InputConfig    `mapstructure:"input" json:"input"`
	Output   OutputConfig   `mapstructure:"output" json:"output"`
	Patterns PatternsConfig `mapstructure:"patterns" json:"patterns"`
}

// InputConfig controls how input buffers are classified
type InputConfig struct {
	// Envelope format: auto, raw, json, json-array, csv, tsv
	Format string `mapstructure:"format" json:"format,omitempty"`
	// Analysis mode: auto, trace, log
	Mode string `mapstructure:"mode" json:"mode,omitempty"`
	// Field mapping preset: gcp, aws
	Preset string `mapstructure:"preset" json:"preset,omitempty"`
	// Trace language hint: python, go, node (empty detects)
	Language string `mapstructure:"language" json:"language,omitempty"`
	// Fields overrides preset field paths, keyed by field name
	Fields map[string]string `mapstructure:"fields" json:"fields,omitempty"`
}

// OutputConfig controls which generic log entries are emitted
type OutputConfig struct {
	ErrorsOnly  bool   `mapstructure:"errors_only" json:"errors_only,omitempty"`
	MinSeverity string `mapstructure:"min_severity" json:"min_severity,omitempty"`
	MaxEntries  int    `mapstructure:"max_entries" json:"max_entries,omitempty"`
}

// PatternsConfig controls the persistent error signature store
type PatternsConfig struct {
	Persist bool   `mapstructure:"persist" json:"persist,omitempty"`
	File    string `mapstructure:"file" json:"file,omitempty"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format: "ndjson",
		Input: InputConfig{
			Format: "auto",
			Mode:   "auto",
			Preset: "gcp",
		},
	}
}

// Load loads configuration from files and environment.
// Config file search order (highest precedence first):
// 1. ./.tracesift.yaml or ./.tracesift.yml
// 2. ~/.tracesift.yaml or ~/.tracesift.yml
// 3. $XDG_CONFIG_HOME/tracesift/config.yaml (or ~/.config/tracesift/config.yaml)
// 4. /etc/tracesift/config.yaml
//
// TRACESIFT_* environment variables override file values, with nested keys
// joined by underscores (TRACESIFT_INPUT_PRESET=aws).
func Load() (*Config, error) {
	return load(findConfigFile())
}

// LoadFromFile loads configuration from a specific file. Environment
// overrides still apply.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is empty")
	}
	return load(path)
}

func load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newViper registers every key with its default so AutomaticEnv can
// resolve environment overrides during Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TRACESIFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("format", d.Format)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("input.format", d.Input.Format)
	v.SetDefault("input.mode", d.Input.Mode)
	v.SetDefault("input.preset", d.Input.Preset)
	v.SetDefault("input.language", d.Input.Language)
	v.SetDefault("output.errors_only", d.Output.ErrorsOnly)
	v.SetDefault("output.min_severity", d.Output.MinSeverity)
	v.SetDefault("output.max_entries", d.Output.MaxEntries)
	v.SetDefault("patterns.persist", d.Patterns.Persist)
	v.SetDefault("patterns.file", d.Patterns.File)
	return v
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	names := []string{".tracesift.yaml", ".tracesift.yml", "tracesift.yaml", "tracesift.yml"}

	type location struct {
		dir string
		// dedicated directories may hold a plain config.yaml
		dedicated bool
	}
	var locations []location
	if cwd, err := os.Getwd(); err == nil {
		locations = append(locations, location{dir: cwd})
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, location{dir: home})
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		locations = append(locations, location{dir: filepath.Join(configDir, "tracesift"), dedicated: true})
	}
	locations = append(locations, location{dir: "/etc/tracesift", dedicated: true})

	for _, loc := range locations {
		candidates := names
		if loc.dedicated {
			candidates = append(candidates[:len(candidates):len(candidates)], "config.yaml")
		}
		for _, name := range candidates {
			path := filepath.Join(loc.dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}
