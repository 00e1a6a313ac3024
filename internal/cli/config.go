package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vburojevic/tracesift/internal/config"
	"github.com/vburojevic/tracesift/internal/output"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "config",
			"schemaVersion": output.SchemaVersion,
			"format":        cfg.Format,
			"verbose":       cfg.Verbose,
			"input":         cfg.Input,
			"output":        cfg.Output,
			"patterns":      cfg.Patterns,
			"file":          config.ConfigFile(),
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	w := globals.Stdout
	fmt.Fprintln(w, "Current Configuration:")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "  format:  %s\n", cfg.Format)
	fmt.Fprintf(w, "  verbose: %v\n", cfg.Verbose)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Input:")
	fmt.Fprintf(w, "  format:   %s\n", cfg.Input.Format)
	fmt.Fprintf(w, "  mode:     %s\n", cfg.Input.Mode)
	fmt.Fprintf(w, "  preset:   %s\n", cfg.Input.Preset)
	fmt.Fprintf(w, "  language: %s\n", orDefault(cfg.Input.Language, "auto"))
	for k, v := range cfg.Input.Fields {
		fmt.Fprintf(w, "  field %s: %s\n", k, v)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Output:")
	fmt.Fprintf(w, "  errors_only:  %v\n", cfg.Output.ErrorsOnly)
	if cfg.Output.MinSeverity != "" {
		fmt.Fprintf(w, "  min_severity: %s\n", cfg.Output.MinSeverity)
	}
	fmt.Fprintf(w, "  max_entries:  %d\n", cfg.Output.MaxEntries)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Patterns:")
	fmt.Fprintf(w, "  persist: %v\n", cfg.Patterns.Persist)
	fmt.Fprintf(w, "  file:    %s\n", orDefault(cfg.Patterns.File, output.DefaultPatternsPath()))

	if path := config.ConfigFile(); path != "" {
		fmt.Fprintln(w, "")
		fmt.Fprintf(w, "Loaded from: %s\n", path)
	}
	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		}
		return json.NewEncoder(globals.Stdout).Encode(out)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.tracesift.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.tracesift.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/tracesift/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}
	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

const sampleConfig = `# tracesift configuration file
# Place this file at ./.tracesift.yaml, ~/.tracesift.yaml or
# ~/.config/tracesift/config.yaml. Every key can also be set through the
# environment, e.g. TRACESIFT_INPUT_PRESET=aws.

# Output format: "ndjson" (default) or "text"
format: ndjson

# Log classification decisions to stderr
verbose: false

input:
  # Envelope format: auto, raw, json, json-array, csv, tsv
  format: auto

  # Analysis mode: auto, trace, log
  mode: auto

  # Field mapping preset for structured records: gcp, aws
  preset: gcp

  # Trace language hint: python, go, node (empty scores the text)
  # language: python

  # Field path overrides, applied on top of the preset
  # fields:
  #   message: jsonPayload.msg
  #   stack_trace: jsonPayload.exception.stack

output:
  # Only emit error entries and anomalies
  errors_only: false

  # Minimum severity of emitted entries
  # min_severity: WARN

  # Cap emitted entries per input (0 = all)
  max_entries: 0

patterns:
  # Record error patterns between runs to mark them new or known
  persist: false

  # Pattern store location
  # file: ~/.tracesift/patterns.json
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	_, err := fmt.Fprint(globals.Stdout, sampleConfig)
	return err
}
