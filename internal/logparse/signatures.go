package logparse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/textutil"
)

const (
	maxErrorSignatures = 10
	maxAnomalyPatterns = 5
	maxPatternSamples  = 3
	maxSignatureLength = 100
)

var (
	uuidRegex    = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	hexAddrRegex = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	numberRegex  = regexp.MustCompile(`\d+`)
)

// NormalizeMessage masks the variable parts of a message (UUIDs, hex
// addresses, numbers) so that similar messages group together.
func NormalizeMessage(msg string) string {
	msg = uuidRegex.ReplaceAllString(msg, "<uuid>")
	msg = hexAddrRegex.ReplaceAllString(msg, "<addr>")
	msg = numberRegex.ReplaceAllString(msg, "<n>")
	return strings.TrimSpace(textutil.Truncate(msg, maxSignatureLength))
}

// group collects the messages sharing one normalized pattern. Groups keep
// first-seen order among equal counts.
type group struct {
	pattern string
	samples []string
}

func groupMessages(entries []domain.GenericLogEntry, keep func(*domain.GenericLogEntry) bool) []*group {
	byPattern := make(map[string]*group)
	var groups []*group
	for i := range entries {
		e := &entries[i]
		if !keep(e) {
			continue
		}
		pattern := NormalizeMessage(e.Message)
		g, ok := byPattern[pattern]
		if !ok {
			g = &group{pattern: pattern}
			byPattern[pattern] = g
			groups = append(groups, g)
		}
		g.samples = append(g.samples, e.Message)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].samples) > len(groups[j].samples)
	})
	return groups
}

// ErrorPatterns groups error entries by normalized message, most frequent
// first, keeping up to three sample messages per group
func ErrorPatterns(entries []domain.GenericLogEntry, limit int) []domain.PatternMatch {
	groups := groupMessages(entries, func(e *domain.GenericLogEntry) bool { return e.IsError })
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return toMatches(groups)
}

// ErrorSignatures returns the most frequent normalized error messages
func ErrorSignatures(entries []domain.GenericLogEntry, limit int) []string {
	patterns := ErrorPatterns(entries, limit)
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.Pattern
	}
	return out
}

func toMatches(groups []*group) []domain.PatternMatch {
	matches := make([]domain.PatternMatch, len(groups))
	for i, g := range groups {
		samples := g.samples
		if len(samples) > maxPatternSamples {
			samples = samples[:maxPatternSamples]
		}
		matches[i] = domain.PatternMatch{Pattern: g.pattern, Count: len(g.samples), Samples: samples}
	}
	return matches
}

// DetectPatterns finds anomalies that recur at least twice
func DetectPatterns(entries []domain.GenericLogEntry) []domain.PatternMatch {
	var patterns []domain.PatternMatch
	for _, m := range toMatches(groupMessages(entries, func(e *domain.GenericLogEntry) bool { return e.IsAnomaly })) {
		if m.Count < 2 {
			continue
		}
		patterns = append(patterns, m)
		if len(patterns) == maxAnomalyPatterns {
			break
		}
	}
	return patterns
}

// Annotate fills the log's error signatures and anomaly patterns. It should
// run after Score since anomaly patterns depend on IsAnomaly.
func Annotate(log *domain.GenericLog) {
	if log == nil {
		return
	}
	log.ErrorSignatures = ErrorSignatures(log.Entries, maxErrorSignatures)
	log.AnomalyPatterns = nil
	for _, p := range DetectPatterns(log.Entries) {
		log.AnomalyPatterns = append(log.AnomalyPatterns, p.Pattern)
	}
}
