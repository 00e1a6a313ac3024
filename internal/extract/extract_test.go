package extract

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/trace"
)

const pyTrace = "Traceback (most recent call last):\n  File \"/app/a.py\", line 1, in f\n    g()\n  File \"/app/b.py\", line 2, in g\n    raise ValueError()\nValueError: boom"

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func jsonLine(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestFieldPathLookup(t *testing.T) {
	doc := gjson.Parse(`{"jsonPayload":{"message":"hi","a.b":{"c":1}},"@message":"aws","list":[1]}`)

	tests := []struct {
		name     string
		path     FieldPath
		expected string
		exists   bool
	}{
		{"nested path", ParsePath("jsonPayload.message"), "hi", true},
		{"at-sign key is literal", ParsePath("@message"), "aws", true},
		{"dotted key segment", FieldPath{"jsonPayload", "a.b", "c"}, "1", true},
		{"missing key", ParsePath("jsonPayload.nope"), "", false},
		{"walk through non-object", ParsePath("list.0"), "", false},
		{"nil path", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.path.Lookup(doc)
			assert.Equal(t, tt.exists, r.Exists())
			assert.Equal(t, tt.expected, r.String())
		})
	}
}

func TestPresets(t *testing.T) {
	gcp, ok := Preset("GCP")
	require.True(t, ok)
	assert.Equal(t, "textPayload", gcp.TextPayload.String())

	aws, ok := Preset("aws")
	require.True(t, ok)
	assert.Equal(t, "@message", aws.Message.String())
	assert.Equal(t, "logEvents", aws.LogEvents.String())
	assert.Nil(t, aws.TextPayload)

	_, ok = Preset("azure")
	assert.False(t, ok)
	assert.Equal(t, []string{"aws", "gcp"}, PresetNames())
}

func TestWithOverrides(t *testing.T) {
	m, err := GCPFields().WithOverrides(map[string]string{"message": "payload.msg", "text_payload": ""})
	require.NoError(t, err)
	assert.Equal(t, FieldPath{"payload", "msg"}, m.Message)
	assert.Nil(t, m.TextPayload)

	_, err = GCPFields().WithOverrides(map[string]string{"colour": "x"})
	assert.Error(t, err)
}

func TestExtractJSONLines(t *testing.T) {
	t.Run("priority order picks text payload first", func(t *testing.T) {
		line := jsonLine(t, map[string]any{
			"textPayload": pyTrace,
			"stack_trace": "other",
			"timestamp":   "2024-01-01T00:00:00Z",
			"severity":    "ERROR",
			"logName":     "projects/p/logs/app",
		})
		entries := New().Extract([]byte(line), domain.EnvelopeJSONLines)
		require.Len(t, entries, 1)
		assert.Equal(t, pyTrace, entries[0].Text)
		assert.Equal(t, "2024-01-01T00:00:00Z", entries[0].Timestamp)
		assert.Equal(t, "ERROR", entries[0].Severity)
		assert.Equal(t, "projects/p/logs/app", entries[0].Source)
	})

	t.Run("stack_trace is accepted without signature", func(t *testing.T) {
		line := jsonLine(t, map[string]any{"textPayload": "plain", "stack_trace": "whatever text"})
		entries := New().Extract([]byte(line), domain.EnvelopeJSONLines)
		require.Len(t, entries, 1)
		assert.Equal(t, "whatever text", entries[0].Text)
	})

	t.Run("nested error.stack field", func(t *testing.T) {
		line := jsonLine(t, map[string]any{"error": map[string]any{"stack": "TypeError: x\n    at f (a.js:1:1)"}})
		entries := New().Extract([]byte(line), domain.EnvelopeJSONLines)
		require.Len(t, entries, 1)
		assert.True(t, strings.HasPrefix(entries[0].Text, "TypeError"))
	})

	t.Run("json payload message beats top-level message", func(t *testing.T) {
		line := jsonLine(t, map[string]any{
			"jsonPayload": map[string]any{"message": "panic: inner"},
			"message":     "panic: outer",
		})
		entries := New().Extract([]byte(line), domain.EnvelopeJSONLines)
		require.Len(t, entries, 1)
		assert.Equal(t, "panic: inner", entries[0].Text)
	})

	t.Run("error field is the last resort", func(t *testing.T) {
		line := jsonLine(t, map[string]any{"message": "ok", "error": "panic: late"})
		entries := New().Extract([]byte(line), domain.EnvelopeJSONLines)
		require.Len(t, entries, 1)
		assert.Equal(t, "panic: late", entries[0].Text)
	})

	t.Run("fields without trace signatures are ignored", func(t *testing.T) {
		buf := `{"severity":"INFO","message":"ok"}` + "\n" + `{"textPayload":"hello"}`
		assert.Empty(t, New().Extract([]byte(buf), domain.EnvelopeJSONLines))
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		buf := "{not json\n" + `[1,2]` + "\n" + jsonLine(t, map[string]any{"textPayload": pyTrace})
		entries := New(WithLogger(zap.NewNop())).Extract([]byte(buf), domain.EnvelopeJSONLines)
		assert.Len(t, entries, 1)
	})
}

func TestExtractRoundTrip(t *testing.T) {
	const n = 3
	lines := make([]string, n)
	for i := range lines {
		lines[i] = jsonLine(t, map[string]any{"textPayload": pyTrace, "timestamp": "t" + string(rune('0'+i))})
	}
	buf := []byte(strings.Join(lines, "\n"))

	x := New()
	entries := x.Extract(buf, domain.EnvelopeAuto)
	require.Len(t, entries, n)
	for _, e := range entries {
		tr, ok := trace.NewPythonParser().Parse(e.Text).Get()
		require.True(t, ok)
		assert.Equal(t, 2, tr.FrameCount())
	}

	text := x.TraceText(buf, domain.EnvelopeAuto)
	assert.Contains(t, text, "--- Entry 2 (t1) ---")
	assert.Contains(t, text, "--- Entry 3 (t2) ---")

	tr, ok := trace.NewPythonParser().Parse(text).Get()
	require.True(t, ok)
	require.Equal(t, 2*n, tr.FrameCount())
	for i := 0; i < n; i++ {
		assert.Equal(t, "/app/a.py", tr.Frames[2*i].File)
		assert.Equal(t, "/app/b.py", tr.Frames[2*i+1].File)
	}
}

func TestTraceTextFallsBackToRaw(t *testing.T) {
	buf := []byte(`{"message":"nothing"}`)
	assert.Equal(t, string(buf), New().TraceText(buf, domain.EnvelopeJSONLines))
	assert.Equal(t, "raw text", New().TraceText([]byte("raw text"), domain.EnvelopeRaw))
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("non-object elements are ignored", func(t *testing.T) {
		buf := `[1, "x", {"textPayload": "panic: boom\n\ngoroutine 1 [running]:"}]`
		entries := New().Extract([]byte(buf), domain.EnvelopeJSONArray)
		require.Len(t, entries, 1)
	})

	t.Run("invalid array yields nothing", func(t *testing.T) {
		assert.Empty(t, New().Extract([]byte(`[{"a":`), domain.EnvelopeJSONArray))
	})

	t.Run("synthesizes a go trace from source locations", func(t *testing.T) {
		entries := New().Extract(readFixture(t, "gcp_split_panic.json"), domain.EnvelopeAuto)
		require.Len(t, entries, 1)

		e := entries[0]
		assert.Equal(t, "ERROR", e.Severity)
		assert.Equal(t, "2024-03-01T12:00:01.000Z", e.Timestamp)
		assert.True(t, strings.HasPrefix(e.Text, "Error: failed to process order\n\nCause: context deadline exceeded\n\ngoroutine 1 [running]:\n"))

		tr, ok := trace.NewGoParser().Parse(e.Text).Get()
		require.True(t, ok)
		require.Len(t, tr.Frames, 3)
		assert.Equal(t, "github.com/acme/orders.(*Worker).process", tr.Frames[0].Function)
		assert.Equal(t, 118, tr.Frames[0].Line)
		assert.Equal(t, 64, tr.Frames[1].Line)
		assert.Equal(t, "main.main", tr.Frames[2].Function)
		assert.Equal(t, "Error", tr.ErrorType)
	})

	t.Run("falls back to a failure message without error severity", func(t *testing.T) {
		buf := `[{"severity":"WARNING","message":"upload failed","sourceLocation":{"function":"main.up","file":"/a.go","line":3}}]`
		entries := New().Extract([]byte(buf), domain.EnvelopeJSONArray)
		require.Len(t, entries, 1)
		assert.True(t, strings.HasPrefix(entries[0].Text, "Error: upload failed\n\n"))
		assert.Contains(t, entries[0].Text, "main.up(...)\n\t/a.go:3 +0x0\n")
	})

	t.Run("caps synthesized frames", func(t *testing.T) {
		var objs []string
		for i := 0; i < 80; i++ {
			objs = append(objs, `{"severity":"ERROR","message":"boom","sourceLocation":{"function":"main.f","file":"/a.go","line":1}}`)
		}
		entries := New().Extract([]byte("["+strings.Join(objs, ",")+"]"), domain.EnvelopeJSONArray)
		require.Len(t, entries, 1)
		assert.Equal(t, maxSynthesizedFrames, strings.Count(entries[0].Text, "+0x0"))
	})

	t.Run("no source locations means no synthesis", func(t *testing.T) {
		buf := `[{"severity":"ERROR","message":"boom"}]`
		assert.Empty(t, New().Extract([]byte(buf), domain.EnvelopeJSONArray))
	})
}

func TestExtractAWSLogEvents(t *testing.T) {
	entries := New(WithFields(AWSFields())).Extract(readFixture(t, "aws_export.json"), domain.EnvelopeAuto)
	require.Len(t, entries, 2)

	assert.Contains(t, entries[0].Text, "ValueError: bad amount")
	assert.Equal(t, "1709294400100", entries[0].Timestamp)

	assert.Contains(t, entries[1].Text, "TypeError")
	assert.Equal(t, "2024-03-01 12:00:02.000", entries[1].Timestamp)
}

func TestExtractDelimited(t *testing.T) {
	t.Run("csv with multi-line quoted trace", func(t *testing.T) {
		entries := New().Extract(readFixture(t, "gcp_export.csv"), domain.EnvelopeAuto)
		require.Len(t, entries, 1)
		assert.Equal(t, "2024-03-01T12:00:05Z", entries[0].Timestamp)
		assert.Equal(t, "ERROR", entries[0].Severity)
		assert.Contains(t, entries[0].Text, `File "/app/main.py", line 7`)

		tr, ok := trace.NewPythonParser().Parse(entries[0].Text).Get()
		require.True(t, ok)
		assert.Equal(t, 1, tr.FrameCount())
	})

	t.Run("node trace in message column", func(t *testing.T) {
		buf := "timestamp,severity,message\n2024-01-01,ERROR,\"TypeError: x is not a function\n    at f (a.js:1:1)\"\n"
		entries := New().Extract([]byte(buf), domain.EnvelopeCSV)
		require.Len(t, entries, 1)
		assert.True(t, trace.LooksLikeTrace(entries[0].Text))

		tr, ok := trace.NewNodeParser().Parse(entries[0].Text).Get()
		require.True(t, ok)
		assert.Equal(t, 1, tr.FrameCount())
	})

	t.Run("tsv uses tab separator", func(t *testing.T) {
		buf := "Timestamp\tSeverity\tLog\n1\tERROR\tpanic: boom\n2\tINFO\tfine\n"
		entries := New().Extract([]byte(buf), domain.EnvelopeTSV)
		require.Len(t, entries, 1)
		assert.Equal(t, "panic: boom", entries[0].Text)
	})

	t.Run("missing text column yields nothing", func(t *testing.T) {
		buf := "timestamp,severity,code\n1,ERROR,panic: x\n"
		assert.Empty(t, New().Extract([]byte(buf), domain.EnvelopeCSV))
	})

	t.Run("textPayload column beats message column", func(t *testing.T) {
		buf := "message,textPayload\npanic: from message,panic: from payload\n"
		entries := New().Extract([]byte(buf), domain.EnvelopeCSV)
		require.Len(t, entries, 1)
		assert.Equal(t, "panic: from payload", entries[0].Text)
	})
}

func TestExtractDoesNotMutateInput(t *testing.T) {
	buf := readFixture(t, "gcp_export.csv")
	orig := append([]byte(nil), buf...)
	New().Extract(buf, domain.EnvelopeAuto)
	assert.Equal(t, orig, buf)
}
