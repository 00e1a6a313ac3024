package filter

import (
	"fmt"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/logparse"
)

// Options describes the entry filters requested on the command line
type Options struct {
	Pattern        string
	Excludes       []string
	Sources        []string
	ExcludeSources []string
	MinSeverity    string
	MinScore       float64
	ErrorsOnly     bool
	Where          []string
}

// Build compiles opts into one filter. It returns nil when opts select
// every entry.
func Build(opts Options) (Filter, error) {
	chain := NewChain()
	if opts.Pattern != "" {
		f, err := NewRegexFilter(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
		chain.Add(f)
	}
	for _, ex := range opts.Excludes {
		f, err := NewExcludePatternFilter(ex)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
		chain.Add(f)
	}
	if len(opts.Sources) > 0 {
		chain.Add(NewSourceFilter(opts.Sources))
	}
	if len(opts.ExcludeSources) > 0 {
		chain.Add(NewExcludeSourceFilter(opts.ExcludeSources))
	}
	if opts.MinSeverity != "" {
		chain.Add(NewSeverityFilter(domain.Severity(opts.MinSeverity)))
	}
	if opts.MinScore > 0 {
		chain.Add(NewScoreFilter(opts.MinScore))
	}
	if opts.ErrorsOnly {
		chain.Add(ErrorsOrAnomalies)
	}
	where, err := NewWhereFilter(opts.Where)
	if err != nil {
		return nil, err
	}
	if where != nil {
		chain.Add(where)
	}

	if chain.Len() == 0 {
		return nil, nil
	}
	return chain, nil
}

// Apply returns a new log holding the entries f keeps. Scores and anomaly
// flags carry over; counters, time range and signatures are recomputed for
// the kept entries. A nil filter returns log unchanged.
func Apply(log *domain.GenericLog, f Filter) *domain.GenericLog {
	if log == nil || f == nil {
		return log
	}
	out := domain.NewGenericLog(log.DetectedFamily)
	for i := range log.Entries {
		if f.Match(&log.Entries[i]) {
			out.AddEntry(log.Entries[i])
		}
	}
	logparse.Annotate(out)
	return out
}
