package filter

import (
	"github.com/vburojevic/tracesift/internal/domain"
)

// SeverityFilter filters entries by minimum severity. Entries without a
// severity rank as INFO.
type SeverityFilter struct {
	min domain.Severity
}

// NewSeverityFilter creates a severity filter
func NewSeverityFilter(min domain.Severity) *SeverityFilter {
	return &SeverityFilter{min: min}
}

// Match returns true if the entry severity is >= the minimum
func (f *SeverityFilter) Match(entry *domain.GenericLogEntry) bool {
	return entry.Severity.Priority() >= f.min.Priority()
}

// ErrorsOrAnomalies keeps entries flagged as errors or, once scored, as
// anomalies
var ErrorsOrAnomalies = Func(func(entry *domain.GenericLogEntry) bool {
	return entry.IsError || entry.IsAnomaly
})

// ScoreFilter keeps entries whose relevance score is at least min
type ScoreFilter struct {
	min float64
}

// NewScoreFilter creates a relevance score filter
func NewScoreFilter(min float64) *ScoreFilter {
	return &ScoreFilter{min: min}
}

// Match returns true if the entry score is >= the minimum
func (f *ScoreFilter) Match(entry *domain.GenericLogEntry) bool {
	return entry.RelevanceScore >= f.min
}
