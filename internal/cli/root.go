package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/vburojevic/tracesift/internal/config"
)

// CLI is the root command structure for tracesift
type CLI struct {
	// Global flags
	Format  string `short:"f" default:"${config_format}" enum:"ndjson,text" help:"Output format"`
	Quiet   bool   `short:"q" help:"Suppress warnings (only emit results and errors)"`
	Verbose bool   `short:"v" help:"Log classification decisions to stderr"`

	// Commands
	Parse   ParseCmd   `cmd:"" default:"withargs" help:"Parse stack traces or logs from files or stdin"`
	Detect  DetectCmd  `cmd:"" help:"Classify input without parsing it"`
	Config  ConfigCmd  `cmd:"" help:"Show or manage configuration"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Vars returns the kong variables that seed flag defaults from cfg
func Vars(cfg *config.Config) kong.Vars {
	if cfg == nil {
		cfg = config.Default()
	}
	language := cfg.Input.Language
	if language == "" {
		language = "auto"
	}
	return kong.Vars{
		"config_format":       orDefault(cfg.Format, "ndjson"),
		"config_mode":         orDefault(cfg.Input.Mode, "auto"),
		"config_input_format": orDefault(cfg.Input.Format, "auto"),
		"config_preset":       orDefault(cfg.Input.Preset, "gcp"),
		"config_language":     language,
		"config_min_severity": cfg.Output.MinSeverity,
		"config_max_entries":  strconv.Itoa(cfg.Output.MaxEntries),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Logger  *zap.Logger
	Clock   clock.Clock
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	if cfg == nil {
		cfg = config.Default()
	}
	g := &Globals{
		Format:  cli.Format,
		Quiet:   cli.Quiet,
		Verbose: cli.Verbose,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
		Logger:  zap.NewNop(),
		Clock:   clock.New(),
	}
	if g.Format == "" {
		g.Format = cfg.Format
	}
	// If verbose wasn't set via CLI, use config value
	if !cli.Verbose && cfg.Verbose {
		g.Verbose = true
	}
	return g
}

// logger returns the configured logger, never nil
func (g *Globals) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}
	return g.Logger
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		_, err := io.WriteString(globals.Stdout, `{"type":"version","version":"`+Version+`","commit":"`+Commit+`"}`+"\n")
		return err
	}
	_, err := fmt.Fprintf(globals.Stdout, "tracesift version %s (%s)\n", Version, Commit)
	return err
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
