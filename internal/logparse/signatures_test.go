package logparse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/tracesift/internal/domain"
)

func TestNormalizeMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"numbers", "retry 3 of 5", "retry <n> of <n>"},
		{"hex address", "nil deref at 0xdeadbeef", "nil deref at <addr>"},
		{"uuid before numbers", "user 1234 id 550e8400-e29b-41d4-a716-446655440000", "user <n> id <uuid>"},
		{"surrounding space", "  spaced out  ", "spaced out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMessage(tt.input))
		})
	}

	t.Run("long messages are truncated", func(t *testing.T) {
		got := NormalizeMessage(strings.Repeat("x", 300))
		assert.LessOrEqual(t, len(got), maxSignatureLength+3)
		assert.True(t, strings.HasSuffix(got, "..."))
	})
}

func errorEntry(msg string) domain.GenericLogEntry {
	return domain.GenericLogEntry{Severity: "ERROR", IsError: true, Message: msg}
}

func TestErrorSignatures(t *testing.T) {
	entries := []domain.GenericLogEntry{
		errorEntry("disk full"),
		errorEntry("timeout after 30s"),
		{Severity: "INFO", Message: "timeout after 1s"},
		errorEntry("timeout after 5s"),
		errorEntry("timeout after 12s"),
	}

	assert.Equal(t, []string{"timeout after <n>s", "disk full"}, ErrorSignatures(entries, 10))
	assert.Equal(t, []string{"timeout after <n>s"}, ErrorSignatures(entries, 1))
	assert.Empty(t, ErrorSignatures(nil, 10))
}

func TestErrorSignaturesKeepFirstSeenOrderOnTies(t *testing.T) {
	entries := []domain.GenericLogEntry{errorEntry("b failed"), errorEntry("a failed")}
	assert.Equal(t, []string{"b failed", "a failed"}, ErrorSignatures(entries, 10))
}

func TestDetectPatterns(t *testing.T) {
	var entries []domain.GenericLogEntry
	for _, msg := range []string{"crash in worker 1", "crash in worker 2", "crash in worker 3", "crash in worker 4", "lone panic"} {
		entries = append(entries, domain.GenericLogEntry{Message: msg, IsAnomaly: true})
	}
	entries = append(entries, domain.GenericLogEntry{Message: "crash in worker 9"})

	patterns := DetectPatterns(entries)
	require.Len(t, patterns, 1, "single anomalies are not patterns")
	assert.Equal(t, "crash in worker <n>", patterns[0].Pattern)
	assert.Equal(t, 4, patterns[0].Count)
	assert.Equal(t, []string{"crash in worker 1", "crash in worker 2", "crash in worker 3"}, patterns[0].Samples)
}

func TestAnnotate(t *testing.T) {
	log := Parse(readFixture(t, "nginx_access.log"), domain.FamilyUnknown)
	Score(log)
	Annotate(log)

	assert.Equal(t, []string{"POST /api/orders HTTP/<n>.<n> <n> <n>"}, log.ErrorSignatures)
	assert.Empty(t, log.AnomalyPatterns)
}

func TestErrorPatterns(t *testing.T) {
	var entries []domain.GenericLogEntry
	for i := range 5 {
		entries = append(entries, errorEntry(fmt.Sprintf("upstream %d refused", i)))
	}
	entries = append(entries, errorEntry("disk full"))

	patterns := ErrorPatterns(entries, 10)
	require.Len(t, patterns, 2)
	assert.Equal(t, "upstream <n> refused", patterns[0].Pattern)
	assert.Equal(t, 5, patterns[0].Count)
	assert.Len(t, patterns[0].Samples, 3)
	assert.Equal(t, domain.PatternMatch{Pattern: "disk full", Count: 1, Samples: []string{"disk full"}}, patterns[1])
}
