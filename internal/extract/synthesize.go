package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

const maxSynthesizedFrames = 50

var (
	synthMessagePaths = []FieldPath{
		ParsePath("jsonPayload.message.message"),
		ParsePath("jsonPayload.message"),
		ParsePath("jsonPayload.msg"),
		ParsePath("textPayload"),
		ParsePath("message"),
	}
	synthCausePath = ParsePath("jsonPayload.message.variables.err")

	sourceLocationPaths = []FieldPath{
		ParsePath("sourceLocation"),
		{"jsonPayload", "logging.googleapis.com/sourceLocation"},
	}
)

// synthesizeGoTrace rebuilds a Go-style trace from Cloud Logging records
// that split a panic into one record per frame, each with a sourceLocation
// and no raw trace text.
func synthesizeGoTrace(root gjson.Result) (Entry, bool) {
	var (
		frames     []string
		preamble   string
		timestamp  string
		haveSource bool
		fallback   string
	)

	root.ForEach(func(_, obj gjson.Result) bool {
		if !obj.IsObject() {
			return true
		}
		severity := obj.Get("severity")
		loc, hasLoc := sourceLocation(obj)
		if severity.Exists() && hasLoc {
			haveSource = true
		}

		msg := synthMessage(obj)
		if preamble == "" && isFatalSeverity(severity.String()) && msg != "" {
			preamble = "Error: " + msg + "\n\n"
			if cause, ok := synthCausePath.LookupString(obj); ok && cause != "" {
				preamble += "Cause: " + cause + "\n\n"
			}
			timestamp = obj.Get("timestamp").String()
		}
		if fallback == "" && mentionsFailure(msg) {
			fallback = msg
		}

		if hasLoc && len(frames) < maxSynthesizedFrames {
			frames = append(frames, formatFrame(loc))
		}
		return true
	})

	if !haveSource {
		return Entry{}, false
	}
	if preamble == "" && fallback != "" {
		preamble = "Error: " + fallback + "\n\n"
	}
	if len(frames) == 0 && preamble == "" {
		return Entry{}, false
	}

	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("goroutine 1 [running]:\n")
	for _, f := range frames {
		b.WriteString(f)
	}
	return Entry{Text: b.String(), Timestamp: timestamp, Severity: "ERROR"}, true
}

func sourceLocation(obj gjson.Result) (gjson.Result, bool) {
	for _, p := range sourceLocationPaths {
		loc := p.Lookup(obj)
		if loc.IsObject() && loc.Get("function").Exists() && loc.Get("file").Exists() {
			return loc, true
		}
	}
	return gjson.Result{}, false
}

// formatFrame renders one sourceLocation as a Go function/location pair.
// The line may be a JSON string or number.
func formatFrame(loc gjson.Result) string {
	line := loc.Get("line")
	lineNo := line.Int()
	if line.Type == gjson.String {
		lineNo, _ = strconv.ParseInt(strings.TrimSpace(line.Str), 10, 64)
	}
	return fmt.Sprintf("%s(...)\n\t%s:%d +0x0\n", loc.Get("function").String(), loc.Get("file").String(), lineNo)
}

func synthMessage(obj gjson.Result) string {
	for _, p := range synthMessagePaths {
		if s, ok := p.LookupString(obj); ok && s != "" {
			return s
		}
	}
	return ""
}

func isFatalSeverity(s string) bool {
	switch strings.ToUpper(s) {
	case "ERROR", "CRITICAL", "FATAL":
		return true
	}
	return false
}

func mentionsFailure(msg string) bool {
	return strings.Contains(msg, "error") || strings.Contains(msg, "Error") ||
		strings.Contains(msg, "fail") || strings.Contains(msg, "Fail")
}
