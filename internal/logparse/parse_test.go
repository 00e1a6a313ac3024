package logparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vburojevic/tracesift/internal/domain"
)

func TestParseSyslog(t *testing.T) {
	log := Parse(readFixture(t, "syslog.log"), domain.FamilyUnknown)

	assert.Equal(t, domain.FamilySyslog, log.DetectedFamily)
	require.Len(t, log.Entries, 4)

	first := log.Entries[0]
	assert.Equal(t, "Mar  1 12:00:00", first.Timestamp)
	assert.Equal(t, domain.Severity("ERROR"), first.Severity)
	assert.Equal(t, "web01 nginx[812]", first.Source)
	assert.Equal(t, "upstream timed out (110: Connection timed out)", first.Message)
	assert.True(t, first.IsError)

	assert.Equal(t, domain.Severity("INFO"), log.Entries[1].Severity)
	assert.Equal(t, domain.Severity("WARNING"), log.Entries[2].Severity)

	last := log.Entries[3]
	assert.Equal(t, 5, last.LineNumber, "blank lines count toward numbering")
	assert.Equal(t, domain.Severity("CRITICAL"), last.Severity)
	assert.Equal(t, "worker crashed: out of memory", last.Message)

	assert.Equal(t, 2, log.TotalErrors)
	assert.Equal(t, 1, log.TotalWarnings)
	assert.Equal(t, 1, log.TotalInfo)
}

func TestParseNginxAccess(t *testing.T) {
	log := Parse(readFixture(t, "nginx_access.log"), domain.FamilyUnknown)

	assert.Equal(t, domain.FamilyNginx, log.DetectedFamily)
	require.Len(t, log.Entries, 3)

	e := log.Entries[1]
	assert.Equal(t, "01/Mar/2024:12:00:01 +0000", e.Timestamp)
	assert.Equal(t, "10.0.0.2", e.Source)
	assert.Equal(t, "POST /api/orders HTTP/1.1 502 157", e.Message)
	assert.True(t, e.IsError)

	assert.Equal(t, domain.Severity("INFO"), log.Entries[0].Severity)
	assert.Equal(t, domain.Severity("WARN"), log.Entries[2].Severity)
	assert.Equal(t, 1, log.TotalErrors)
	assert.Equal(t, 1, log.TotalWarnings)
}

func TestParseDocker(t *testing.T) {
	log := Parse(readFixture(t, "docker.log"), domain.FamilyUnknown)

	assert.Equal(t, domain.FamilyDocker, log.DetectedFamily)
	require.Len(t, log.Entries, 3)

	assert.Equal(t, "2024-03-01T12:00:00.123Z", log.Entries[0].Timestamp)
	assert.Equal(t, "stdout", log.Entries[0].Source)
	assert.Equal(t, domain.Severity("INFO"), log.Entries[0].Severity)
	assert.Equal(t, "server listening on :8080", log.Entries[0].Message)

	assert.Equal(t, domain.Severity("WARN"), log.Entries[1].Severity, "stderr without a level is a warning")
	assert.Equal(t, "deprecated flag --foo", log.Entries[1].Message)

	assert.Equal(t, "connection refused to db:5432", log.Entries[2].Message)
	assert.True(t, log.Entries[2].IsError)
}

func TestParseJSONStructured(t *testing.T) {
	log := NewParser(zap.NewNop()).Parse(readFixture(t, "app.jsonl"), domain.FamilyJSONStructured)

	require.Len(t, log.Entries, 3)

	info := log.Entries[0]
	assert.Equal(t, "2024-03-01T12:00:00Z", info.Timestamp)
	assert.Equal(t, domain.Severity("info"), info.Severity)
	assert.Equal(t, "request served", info.Message)
	assert.Equal(t, "http", info.Source)
	assert.NotEmpty(t, info.Metadata)
	assert.Nil(t, info.EmbeddedTrace)

	failed := log.Entries[1]
	assert.True(t, failed.IsError)
	require.NotNil(t, failed.EmbeddedTrace)
	assert.Equal(t, domain.LanguagePython, failed.EmbeddedTrace.Language)
	assert.Equal(t, "OperationalError", failed.EmbeddedTrace.ErrorType)
	assert.Equal(t, 9, failed.EmbeddedTrace.Frames[0].Line)

	noMessage := log.Entries[2]
	assert.Equal(t, `{"ts":"2024-03-01T12:00:02Z","lvl":"WARN","component":"cache","hits":3}`, noMessage.Message)
	assert.Equal(t, "cache", noMessage.Source)
	assert.Equal(t, domain.Severity("WARN"), noMessage.Severity)

	assert.Equal(t, 1, log.TotalErrors)
	assert.Equal(t, 1, log.TotalWarnings)
	assert.Equal(t, 1, log.TotalInfo)
	assert.Equal(t, "2024-03-01T12:00:00Z", log.TimeRangeStart)
	assert.Equal(t, "2024-03-01T12:00:02Z", log.TimeRangeEnd)
}

func TestParseKeepsUnparseableLines(t *testing.T) {
	log := Parse([]byte("ok\n{\"level\":\"error\",\"msg\":\"boom\"}\r\n"), domain.FamilyJSONStructured)
	require.Len(t, log.Entries, 2)

	assert.Equal(t, "ok", log.Entries[0].Message)
	assert.Equal(t, "ok", log.Entries[0].RawLine)
	assert.Empty(t, log.Entries[0].Severity)

	assert.Equal(t, "boom", log.Entries[1].Message)
	assert.Equal(t, `{"level":"error","msg":"boom"}`, log.Entries[1].RawLine)
}

func TestParseGenericLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		ok        bool
		timestamp string
		severity  string
		message   string
	}{
		{"iso with zone and level", "2024-01-15T10:30:00.123Z ERROR Something broke", true, "2024-01-15T10:30:00.123Z", "ERROR", "Something broke"},
		{"python logging with bracketed level", "2024-01-15 10:30:00,123 [WARNING] disk almost full", true, "2024-01-15 10:30:00,123", "WARNING", "disk almost full"},
		{"lower case level with colon", "info: started", true, "", "INFO", "started"},
		{"level followed by tab", "Debug\tverbose stuff", true, "", "DEBUG", "verbose stuff"},
		{"level must end at a separator", "ERRORS everywhere", true, "", "", "ERRORS everywhere"},
		{"bare level is a message", "ERROR", true, "", "", "ERROR"},
		{"too short", "ab", false, "", "", ""},
		{"timestamp without message", "2024-01-15T10:30:00Z", false, "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := parseGenericLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.timestamp, f.timestamp)
			assert.Equal(t, tt.severity, f.severity)
			assert.Equal(t, tt.message, f.message)
		})
	}
}

func TestParseSyslogLine(t *testing.T) {
	t.Run("rfc3164 with priority", func(t *testing.T) {
		f, ok := parseSyslogLine("<34>Oct 11 22:14:15 mymachine su: 'su root' failed")
		require.True(t, ok)
		assert.Equal(t, "CRITICAL", f.severity)
		assert.Equal(t, "Oct 11 22:14:15", f.timestamp)
		assert.Equal(t, "mymachine su", f.source)
		assert.Equal(t, "'su root' failed", f.message)
	})

	t.Run("iso timestamp token", func(t *testing.T) {
		f, ok := parseSyslogLine("2024-03-01T12:00:00Z host app: msg")
		require.True(t, ok)
		assert.Equal(t, "2024-03-01T12:00:00Z", f.timestamp)
		assert.Equal(t, "host app", f.source)
		assert.Empty(t, f.severity)
	})

	t.Run("short lines fail", func(t *testing.T) {
		_, ok := parseSyslogLine("a: b")
		assert.False(t, ok)
	})

	t.Run("lines without a colon separator fail", func(t *testing.T) {
		_, ok := parseSyslogLine("no colon separator here at all")
		assert.False(t, ok)
	})
}

func TestParseAccessLine(t *testing.T) {
	t.Run("nginx error log", func(t *testing.T) {
		f, ok := parseAccessLine("2024/03/01 12:00:00 [crit] 12#0: *5 connect() failed (111: Connection refused)")
		require.True(t, ok)
		assert.Equal(t, "CRITICAL", f.severity)
		assert.Equal(t, "2024/03/01 12:00:00", f.timestamp)
		assert.Equal(t, "12#0: *5 connect() failed (111: Connection refused)", f.message)
	})

	t.Run("unrelated line", func(t *testing.T) {
		_, ok := parseAccessLine("just words")
		assert.False(t, ok)
	})
}
