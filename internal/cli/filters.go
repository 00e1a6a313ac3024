package cli

import (
	"github.com/vburojevic/tracesift/internal/config"
	"github.com/vburojevic/tracesift/internal/filter"
)

// FilterFlags are the entry filter flags shared by commands that emit logs
type FilterFlags struct {
	ErrorsOnly    bool     `short:"e" help:"Only emit error entries and anomalies"`
	Grep          string   `short:"g" help:"Only emit entries whose message matches this regex"`
	Exclude       []string `short:"x" help:"Drop entries matching this regex (repeatable)"`
	Source        []string `help:"Only emit entries from these sources (trailing * matches a prefix)"`
	ExcludeSource []string `help:"Drop entries from these sources (trailing * matches a prefix)"`
	MinSeverity   string   `default:"${config_min_severity}" help:"Minimum severity (DEBUG, INFO, WARN, ERROR, CRITICAL...)"`
	MinScore      float64  `help:"Minimum relevance score (0-1)"`
	Where         []string `short:"w" help:"Field filter: severity>=ERROR, message~regex, source^prefix (repeatable, ANDed)"`
}

// options merges the flags with config fallbacks
func (f *FilterFlags) options(cfg *config.Config) filter.Options {
	opts := filter.Options{
		Pattern:        f.Grep,
		Excludes:       f.Exclude,
		Sources:        f.Source,
		ExcludeSources: f.ExcludeSource,
		MinSeverity:    f.MinSeverity,
		MinScore:       f.MinScore,
		ErrorsOnly:     f.ErrorsOnly,
		Where:          f.Where,
	}
	if cfg != nil {
		if !opts.ErrorsOnly && cfg.Output.ErrorsOnly {
			opts.ErrorsOnly = true
		}
		if opts.MinSeverity == "" {
			opts.MinSeverity = cfg.Output.MinSeverity
		}
	}
	return opts
}

// build compiles the merged filter options
func (f *FilterFlags) build(cfg *config.Config) (filter.Filter, error) {
	return filter.Build(f.options(cfg))
}
