package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Severity is a log level token as it appeared in the input ("ERROR",
// "warn", "Info"). Comparisons are case-insensitive.
type Severity string

const (
	SeverityTrace    Severity = "TRACE"
	SeverityDebug    Severity = "DEBUG"
	SeverityInfo     Severity = "INFO"
	SeverityNotice   Severity = "NOTICE"
	SeverityWarn     Severity = "WARN"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
	SeverityFatal    Severity = "FATAL"
	SeverityAlert    Severity = "ALERT"
	SeverityEmerg    Severity = "EMERG"
)

// Normalize returns the upper-cased, trimmed token
func (s Severity) Normalize() Severity {
	return Severity(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Priority returns the rank of a severity (higher = more severe).
// Unrecognized tokens rank with INFO.
func (s Severity) Priority() int {
	switch s.Normalize() {
	case SeverityTrace:
		return 0
	case SeverityDebug:
		return 1
	case SeverityInfo, "INFORMATION", "DEFAULT":
		return 2
	case SeverityNotice:
		return 3
	case SeverityWarn, SeverityWarning:
		return 4
	case SeverityError, "ERR":
		return 5
	case SeverityCritical, "CRIT":
		return 6
	case SeverityFatal, SeverityAlert:
		return 7
	case SeverityEmerg, "EMERGENCY":
		return 8
	default:
		return 2
	}
}

// IsError reports whether the token is one of the error severities
func (s Severity) IsError() bool {
	switch s.Normalize() {
	case SeverityError, SeverityFatal, SeverityCritical, SeverityEmerg, SeverityAlert:
		return true
	}
	return false
}

// IsWarning reports whether the token is WARN or WARNING
func (s Severity) IsWarning() bool {
	n := s.Normalize()
	return n == SeverityWarn || n == SeverityWarning
}

// IsInfo reports whether the token is INFO
func (s Severity) IsInfo() bool {
	return s.Normalize() == SeverityInfo
}

// GenericLogEntry is one line of a generic log
type GenericLogEntry struct {
	Timestamp      string          `json:"timestamp,omitempty"`
	Severity       Severity        `json:"severity,omitempty"`
	Message        string          `json:"message"`
	Source         string          `json:"source,omitempty"`
	RawLine        string          `json:"raw_line"`
	LineNumber     int             `json:"line_number"`
	IsError        bool            `json:"is_error"`
	IsAnomaly      bool            `json:"is_anomaly"`
	RelevanceScore float64         `json:"relevance_score"`
	EmbeddedTrace  *StackTrace     `json:"embedded_trace,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}

// GenericLog is a parsed, classified log buffer
type GenericLog struct {
	Entries           []GenericLogEntry `json:"entries"`
	DetectedFamily    LogFamily         `json:"detected_family"`
	FamilyDescription string            `json:"family_description"`
	ErrorSignatures   []string          `json:"error_signatures,omitempty"`
	AnomalyPatterns   []string          `json:"anomaly_patterns,omitempty"`

	// Stream-order bounds: the first and the most recently seen timestamps.
	// See ChronologicalRange for the sorted bounds.
	TimeRangeStart string `json:"time_range_start,omitempty"`
	TimeRangeEnd   string `json:"time_range_end,omitempty"`

	TotalErrors   int `json:"total_errors"`
	TotalWarnings int `json:"total_warnings"`
	TotalInfo     int `json:"total_info"`
}

// NewGenericLog creates an empty log for a family
func NewGenericLog(family LogFamily) *GenericLog {
	return &GenericLog{
		DetectedFamily:    family,
		FamilyDescription: family.Description(),
	}
}

// AddEntry appends an entry, decides IsError from its severity, and updates
// the aggregate counters and stream-order time range.
func (l *GenericLog) AddEntry(e GenericLogEntry) {
	e.IsError = e.Severity.IsError()
	switch {
	case e.IsError:
		l.TotalErrors++
	case e.Severity.IsWarning():
		l.TotalWarnings++
	case e.Severity.IsInfo():
		l.TotalInfo++
	}
	if e.Timestamp != "" {
		if l.TimeRangeStart == "" {
			l.TimeRangeStart = e.Timestamp
		}
		l.TimeRangeEnd = e.Timestamp
	}
	l.Entries = append(l.Entries, e)
}

// Len returns the number of entries
func (l *GenericLog) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Entries)
}

// ChronologicalRange returns the earliest and latest parseable timestamps.
// ok is false when no entry timestamp could be parsed.
func (l *GenericLog) ChronologicalRange() (start, end time.Time, ok bool) {
	if l == nil {
		return start, end, false
	}
	for _, e := range l.Entries {
		ts, err := ParseTimestamp(e.Timestamp)
		if err != nil {
			continue
		}
		if !ok || ts.Before(start) {
			start = ts
		}
		if !ok || ts.After(end) {
			end = ts
		}
		ok = true
	}
	return start, end, ok
}
