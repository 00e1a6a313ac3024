package logparse

import (
	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/textutil"
)

const (
	errorBaseScore   = 0.4
	warningBaseScore = 0.15
	maxScore         = 1.0
	anomalyThreshold = 0.5
)

// relevanceKeywords add weight when found in a message (case-insensitive)
var relevanceKeywords = []struct {
	needle string
	weight float64
}{
	{"error", 0.3},
	{"exception", 0.4},
	{"failed", 0.3},
	{"failure", 0.3},
	{"timeout", 0.25},
	{"refused", 0.25},
	{"denied", 0.2},
	{"crash", 0.5},
	{"panic", 0.5},
	{"fatal", 0.5},
	{"critical", 0.4},
	{"segfault", 0.5},
	{"oom", 0.4},
	{"out of memory", 0.4},
	{"connection reset", 0.3},
	{"502", 0.35},
	{"503", 0.35},
	{"500", 0.3},
}

// RelevanceScore computes an entry's score in [0, 1]
func RelevanceScore(e *domain.GenericLogEntry) float64 {
	score := 0.0
	switch {
	case e.IsError:
		score += errorBaseScore
	case e.Severity.IsWarning():
		score += warningBaseScore
	}
	for _, kw := range relevanceKeywords {
		if textutil.ContainsFold(e.Message, kw.needle) {
			score += kw.weight
		}
	}
	return min(score, maxScore)
}

// Score recomputes RelevanceScore and IsAnomaly for every entry. Both are
// overwritten, so scoring the same log twice gives the same result.
func Score(log *domain.GenericLog) {
	if log == nil {
		return
	}
	for i := range log.Entries {
		e := &log.Entries[i]
		e.RelevanceScore = RelevanceScore(e)
		e.IsAnomaly = e.RelevanceScore >= anomalyThreshold
	}
}
