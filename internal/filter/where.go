package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
)

// WhereClause represents a parsed --where condition
type WhereClause struct {
	Field    string
	Operator string
	Value    string
	regex    *regexp.Regexp // Compiled regex for ~ and !~ operators
}

var whereFields = map[string]bool{
	"severity": true, "level": true, "message": true, "source": true,
	"timestamp": true, "raw": true, "line": true, "score": true,
}

// ParseWhereClause parses a clause like "severity>=warn" or "message~timeout".
// Supported operators: =, !=, ~, !~, >=, <=, ^, $
func ParseWhereClause(clause string) (*WhereClause, error) {
	// longest first so "!=" is not read as "="
	operators := []string{"!~", ">=", "<=", "!=", "~", "=", "^", "$"}

	for _, op := range operators {
		idx := strings.Index(clause, op)
		if idx <= 0 {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(clause[:idx]))
		value := strings.TrimSpace(clause[idx+len(op):])
		if field == "" || value == "" {
			return nil, fmt.Errorf("invalid where clause: %s", clause)
		}
		if !whereFields[field] {
			return nil, fmt.Errorf("unknown field %q in where clause (use severity, message, source, timestamp, raw, line, score)", field)
		}

		// quoted values may contain operator characters
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}

		wc := &WhereClause{Field: field, Operator: op, Value: value}
		if op == "~" || op == "!~" {
			re, err := regexp.Compile(value)
			if err != nil {
				return nil, fmt.Errorf("invalid regex in where clause '%s': %w", clause, err)
			}
			wc.regex = re
		}
		if (op == ">=" || op == "<=") && !wc.isSeverity() {
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return nil, fmt.Errorf("where clause '%s' compares %s with a non-number", clause, field)
			}
		}
		return wc, nil
	}

	return nil, fmt.Errorf("no valid operator found in where clause: %s (use =, !=, ~, !~, >=, <=, ^, $)", clause)
}

func (wc *WhereClause) isSeverity() bool {
	return wc.Field == "severity" || wc.Field == "level"
}

func (wc *WhereClause) isNumeric() bool {
	return wc.Field == "line" || wc.Field == "score"
}

// Match checks if a log entry matches this where clause
func (wc *WhereClause) Match(entry *domain.GenericLogEntry) bool {
	fieldValue := wc.fieldValue(entry)

	switch wc.Operator {
	case "=":
		if wc.isSeverity() {
			return entry.Severity.Normalize() == domain.Severity(wc.Value).Normalize()
		}
		if wc.isNumeric() {
			return wc.compareNumeric(entry) == 0
		}
		return fieldValue == wc.Value
	case "!=":
		if wc.isSeverity() {
			return entry.Severity.Normalize() != domain.Severity(wc.Value).Normalize()
		}
		if wc.isNumeric() {
			return wc.compareNumeric(entry) != 0
		}
		return fieldValue != wc.Value
	case "~":
		return wc.regex.MatchString(fieldValue)
	case "!~":
		return !wc.regex.MatchString(fieldValue)
	case "^":
		return strings.HasPrefix(fieldValue, wc.Value)
	case "$":
		return strings.HasSuffix(fieldValue, wc.Value)
	case ">=", "<=":
		var cmp int
		if wc.isSeverity() {
			cmp = entry.Severity.Priority() - domain.Severity(wc.Value).Priority()
		} else if wc.isNumeric() {
			cmp = wc.compareNumeric(entry)
		} else {
			return false
		}
		if wc.Operator == ">=" {
			return cmp >= 0
		}
		return cmp <= 0
	}
	return false
}

func (wc *WhereClause) fieldValue(entry *domain.GenericLogEntry) string {
	switch wc.Field {
	case "severity", "level":
		return string(entry.Severity)
	case "message":
		return entry.Message
	case "source":
		return entry.Source
	case "timestamp":
		return entry.Timestamp
	case "raw":
		return entry.RawLine
	case "line":
		return strconv.Itoa(entry.LineNumber)
	case "score":
		return strconv.FormatFloat(entry.RelevanceScore, 'f', -1, 64)
	default:
		return ""
	}
}

// compareNumeric returns the sign of entry value minus clause value.
// Values that are not numbers compare as unequal (-1).
func (wc *WhereClause) compareNumeric(entry *domain.GenericLogEntry) int {
	target, err := strconv.ParseFloat(wc.Value, 64)
	if err != nil {
		return -1
	}
	var v float64
	switch wc.Field {
	case "line":
		v = float64(entry.LineNumber)
	case "score":
		v = entry.RelevanceScore
	}
	switch {
	case v < target:
		return -1
	case v > target:
		return 1
	default:
		return 0
	}
}

// WhereFilter applies multiple where clauses (AND logic)
type WhereFilter struct {
	clauses []*WhereClause
}

// NewWhereFilter creates a filter from where clause strings. It returns
// nil for an empty list.
func NewWhereFilter(whereClauses []string) (*WhereFilter, error) {
	if len(whereClauses) == 0 {
		return nil, nil
	}
	f := &WhereFilter{}
	for _, clause := range whereClauses {
		wc, err := ParseWhereClause(clause)
		if err != nil {
			return nil, err
		}
		f.clauses = append(f.clauses, wc)
	}
	return f, nil
}

// Match returns true if the entry matches ALL where clauses
func (f *WhereFilter) Match(entry *domain.GenericLogEntry) bool {
	if f == nil {
		return true
	}
	for _, wc := range f.clauses {
		if !wc.Match(entry) {
			return false
		}
	}
	return true
}
