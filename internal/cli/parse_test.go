package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParseCmd(t *testing.T, files ...string) *ParseCmd {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &ParseCmd{
		Files: files,
		Mode:  "auto",
		Input: InputFlags{
			InputFormat: "auto",
			Preset:      "gcp",
			Language:    "auto",
		},
		Jobs: 2,
	}
}

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

func TestParseCmd_Run(t *testing.T) {
	t.Run("parses a stack trace file", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, fixture("crash.txt"))

		require.NoError(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 1)
		rec := items[0]
		assert.Equal(t, "trace", rec["type"])
		assert.Equal(t, "python", rec["language"])
		assert.Equal(t, "ValueError", rec["error_type"])
		assert.Equal(t, "bad input", rec["error_message"])
		assert.EqualValues(t, 2, rec["frame_count"])
		assert.Equal(t, "2025-06-01T12:00:00Z", rec["generated_at"])
	})

	t.Run("parses a generic log with signatures", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, fixture("service.log"))

		require.NoError(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 1)
		rec := items[0]
		assert.Equal(t, "log", rec["type"])
		assert.EqualValues(t, 5, rec["total_entries"])
		assert.EqualValues(t, 2, rec["total_errors"])
		assert.EqualValues(t, 1, rec["total_warnings"])
		assert.Equal(t, []interface{}{"database connection refused after <n> retries"}, rec["error_signatures"])

		patterns := rec["patterns"].([]interface{})
		require.Len(t, patterns, 1)
		assert.Equal(t, true, patterns[0].(map[string]interface{})["is_new"])
	})

	t.Run("keeps argument order across files", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, fixture("service.log"), fixture("crash.txt"), fixture("service.log"))

		require.NoError(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 3)
		assert.Equal(t, "log", items[0]["type"])
		assert.Equal(t, "trace", items[1]["type"])
		assert.Equal(t, "log", items[2]["type"])
		assert.Equal(t, fixture("crash.txt"), items[1]["input"])
	})

	t.Run("reads stdin when no files are given", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		data, err := os.ReadFile(fixture("crash.txt"))
		require.NoError(t, err)
		globals.Stdin = strings.NewReader(string(data))
		cmd := newParseCmd(t)

		require.NoError(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 1)
		assert.Equal(t, "trace", items[0]["type"])
		assert.Equal(t, "stdin", items[0]["input"])
	})

	t.Run("reports missing files and still emits the rest", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, filepath.Join(t.TempDir(), "missing.log"), fixture("crash.txt"))

		err := cmd.Run(globals)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 of 2 inputs failed")

		items := decodeLines(t, stdout)
		require.Len(t, items, 2)
		assert.Equal(t, "error", items[0]["type"])
		assert.Equal(t, CodeReadFailed, items[0]["code"])
		assert.NotEmpty(t, items[0]["hint"])
		assert.Equal(t, "trace", items[1]["type"])
	})

	t.Run("empty input is a parse failure", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		globals.Stdin = strings.NewReader("  \n\n")
		cmd := newParseCmd(t)

		require.Error(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 1)
		assert.Equal(t, CodeParseFailed, items[0]["code"])
	})

	t.Run("demotes frameless trace text to a log", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		globals.Stdin = strings.NewReader("panic: something broke\nexit status 2\n")
		cmd := newParseCmd(t)
		cmd.Mode = "trace"

		require.NoError(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 1)
		assert.Equal(t, "log", items[0]["type"])
		assert.Equal(t, true, items[0]["demoted"])
	})

	t.Run("errors-only keeps error entries", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, fixture("service.log"))
		cmd.Filters.ErrorsOnly = true

		require.NoError(t, cmd.Run(globals))

		rec := decodeLines(t, stdout)[0]
		entries := rec["entries"].([]interface{})
		for _, e := range entries {
			entry := e.(map[string]interface{})
			assert.True(t, entry["is_error"] == true || entry["is_anomaly"] == true)
		}
		assert.EqualValues(t, 2, rec["total_errors"])
	})

	t.Run("where clauses filter entries", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, fixture("service.log"))
		cmd.Filters.Where = []string{"severity>=WARN", "message~slow"}

		require.NoError(t, cmd.Run(globals))

		rec := decodeLines(t, stdout)[0]
		assert.EqualValues(t, 1, rec["total_entries"])
		assert.EqualValues(t, 1, rec["total_warnings"])
	})

	t.Run("invalid where clause is a filter error", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, fixture("service.log"))
		cmd.Filters.Where = []string{"colour=red"}

		require.Error(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 1)
		assert.Equal(t, CodeInvalidFilter, items[0]["code"])
	})

	t.Run("unknown field key is a mapping error", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, fixture("service.log"))
		cmd.Input.Field = map[string]string{"colour": "a.b"}

		require.Error(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 1)
		assert.Equal(t, CodeInvalidMapping, items[0]["code"])
	})

	t.Run("max entries truncates output", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newParseCmd(t, fixture("service.log"))
		cmd.MaxEntries = 2

		require.NoError(t, cmd.Run(globals))

		rec := decodeLines(t, stdout)[0]
		assert.Len(t, rec["entries"], 2)
		assert.EqualValues(t, 3, rec["truncated_entries"])
	})

	t.Run("text format renders tables", func(t *testing.T) {
		globals, stdout, stderr := testGlobals("text")
		cmd := newParseCmd(t, fixture("crash.txt"), filepath.Join(t.TempDir(), "missing.log"))

		require.Error(t, cmd.Run(globals))

		assert.Contains(t, stdout.String(), "ValueError:")
		assert.Contains(t, stdout.String(), "/srv/app/main.py:6")
		assert.Contains(t, stderr.String(), "Error ["+CodeReadFailed+"]")
	})
}

func TestParseCmd_PersistPatterns(t *testing.T) {
	globals, _, _ := testGlobals("ndjson")
	path := filepath.Join(t.TempDir(), "patterns.json")

	run := func() map[string]interface{} {
		t.Helper()
		var out strings.Builder
		globals.Stdout = &out
		cmd := newParseCmd(t, fixture("service.log"))
		cmd.PersistPatterns = true
		cmd.PatternFile = path
		require.NoError(t, cmd.Run(globals))
		return decodeLines(t, strings.NewReader(out.String()))[0]
	}

	first := run()["patterns"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, first["is_new"])
	assert.FileExists(t, path)

	second := run()["patterns"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, false, second["is_new"])
	assert.EqualValues(t, 4, second["total_count"])
}

func TestParseCmd_CorruptPatternFileWarns(t *testing.T) {
	globals, stdout, _ := testGlobals("ndjson")
	path := filepath.Join(t.TempDir(), "patterns.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	cmd := newParseCmd(t, fixture("service.log"))
	cmd.PatternFile = path

	require.NoError(t, cmd.Run(globals))

	items := decodeLines(t, stdout)
	require.Len(t, items, 2)
	assert.Equal(t, "warning", items[0]["type"])
	assert.Equal(t, "log", items[1]["type"])
}

func TestDetectCmd_Run(t *testing.T) {
	t.Run("classifies each input", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &DetectCmd{
			Files: []string{fixture("crash.txt"), fixture("service.log")},
			Input: InputFlags{InputFormat: "auto", Preset: "gcp", Language: "auto"},
		}

		require.NoError(t, cmd.Run(globals))

		items := decodeLines(t, stdout)
		require.Len(t, items, 2)
		assert.Equal(t, "detection", items[0]["type"])
		assert.Equal(t, "stack-trace", items[0]["mode"])
		assert.Equal(t, "python", items[0]["language"])
		assert.Equal(t, "generic-log", items[1]["mode"])
		assert.Equal(t, "raw", items[1]["envelope"])
	})

	t.Run("language hint overrides scoring", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := &DetectCmd{
			Files: []string{fixture("crash.txt")},
			Input: InputFlags{InputFormat: "auto", Preset: "gcp", Language: "go"},
		}

		require.NoError(t, cmd.Run(globals))
		assert.Equal(t, "go", decodeLines(t, stdout)[0]["language"])
	})
}

func TestReadInputs(t *testing.T) {
	t.Run("stdin listed twice is an input error", func(t *testing.T) {
		inputs, err := readInputs(t.Context(), strings.NewReader("x"), []string{"-", "-"}, 0)
		require.NoError(t, err)
		require.Len(t, inputs, 2)
		assert.NoError(t, inputs[0].Err)
		assert.Equal(t, "x", string(inputs[0].Data))
		assert.Error(t, inputs[1].Err)
	})

	t.Run("non-file stdin is never a terminal", func(t *testing.T) {
		assert.False(t, stdinIsTerminal(strings.NewReader("")))
	})

	t.Run("honors cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_, err := readInputs(ctx, strings.NewReader(""), []string{fixture("crash.txt")}, 1)
		require.ErrorIs(t, err, context.Canceled)
	})
}
