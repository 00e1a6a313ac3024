package filter

import (
	"regexp"
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
)

// ExcludePatternFilter excludes entries matching a regex pattern
type ExcludePatternFilter struct {
	pattern *regexp.Regexp
}

// NewExcludePatternFilter creates an exclusion filter from a pattern string
func NewExcludePatternFilter(pattern string) (*ExcludePatternFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &ExcludePatternFilter{pattern: re}, nil
}

// Match returns true if the entry does NOT match the exclusion pattern.
// The raw line is checked too so metadata-only hits are excluded.
func (f *ExcludePatternFilter) Match(entry *domain.GenericLogEntry) bool {
	if f.pattern == nil {
		return true
	}
	return !f.pattern.MatchString(entry.Message) && !f.pattern.MatchString(entry.RawLine)
}

// SourceFilter keeps entries from the listed sources. A trailing "*"
// matches by prefix.
type SourceFilter struct {
	sources []string
	exclude bool
}

// NewSourceFilter creates a filter that keeps the listed sources
func NewSourceFilter(sources []string) *SourceFilter {
	return &SourceFilter{sources: sources}
}

// NewExcludeSourceFilter creates a filter that drops the listed sources
func NewExcludeSourceFilter(sources []string) *SourceFilter {
	return &SourceFilter{sources: sources, exclude: true}
}

// Match returns true if the entry source is (or, for exclusion, is not) listed
func (f *SourceFilter) Match(entry *domain.GenericLogEntry) bool {
	if len(f.sources) == 0 {
		return true
	}
	listed := false
	for _, src := range f.sources {
		if prefix, ok := strings.CutSuffix(src, "*"); ok {
			listed = strings.HasPrefix(entry.Source, prefix)
		} else {
			listed = entry.Source == src
		}
		if listed {
			break
		}
	}
	return listed != f.exclude
}
