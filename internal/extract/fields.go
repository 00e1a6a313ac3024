package extract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// FieldPath is a pre-split dot-notation path into a JSON record.
type FieldPath []string

// ParsePath splits "jsonPayload.message" into segments. An empty string
// yields a nil path.
func ParsePath(s string) FieldPath {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return FieldPath(strings.Split(s, "."))
}

// String joins the segments back with dots
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

// Join returns a new path with q appended
func (p FieldPath) Join(q FieldPath) FieldPath {
	out := make(FieldPath, 0, len(p)+len(q))
	out = append(out, p...)
	return append(out, q...)
}

// Lookup walks the path one segment at a time. Each segment is a literal
// key, so names such as "@message" are never read as gjson modifiers.
func (p FieldPath) Lookup(v gjson.Result) gjson.Result {
	if len(p) == 0 {
		return gjson.Result{}
	}
	cur := v
	for _, seg := range p {
		if !cur.IsObject() {
			return gjson.Result{}
		}
		cur = cur.Get(gjson.Escape(seg))
		if !cur.Exists() {
			return cur
		}
	}
	return cur
}

// LookupString returns the value at the path when it is a JSON string
func (p FieldPath) LookupString(v gjson.Result) (string, bool) {
	r := p.Lookup(v)
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

// FieldMapping names where a provider puts each field of interest.
// A nil path means the provider has no such field.
type FieldMapping struct {
	TextPayload FieldPath
	JSONPayload FieldPath
	Message     FieldPath
	StackTrace  FieldPath
	Timestamp   FieldPath
	Severity    FieldPath
	LogEvents   FieldPath
	Error       FieldPath
	Exception   FieldPath
	Traceback   FieldPath
}

// GCPFields is the Google Cloud Logging export layout
func GCPFields() FieldMapping {
	return FieldMapping{
		TextPayload: ParsePath("textPayload"),
		JSONPayload: ParsePath("jsonPayload"),
		Message:     ParsePath("message"),
		StackTrace:  ParsePath("stack_trace"),
		Timestamp:   ParsePath("timestamp"),
		Severity:    ParsePath("severity"),
		Error:       ParsePath("error"),
		Exception:   ParsePath("exception"),
		Traceback:   ParsePath("traceback"),
	}
}

// AWSFields is the CloudWatch Logs Insights / export layout
func AWSFields() FieldMapping {
	return FieldMapping{
		Message:   ParsePath("@message"),
		Timestamp: ParsePath("@timestamp"),
		LogEvents: ParsePath("logEvents"),
		Error:     ParsePath("errorMessage"),
		Exception: ParsePath("exception"),
		Traceback: ParsePath("stackTrace"),
	}
}

var presets = map[string]func() FieldMapping{
	"gcp": GCPFields,
	"aws": AWSFields,
}

// Preset returns a built-in mapping by name ("gcp" or "aws")
func Preset(name string) (FieldMapping, bool) {
	fn, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return FieldMapping{}, false
	}
	return fn(), true
}

// PresetNames lists the built-in mapping names
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithOverrides returns a copy of m with the named fields replaced. Keys are
// text_payload, json_payload, message, stack_trace, timestamp, severity,
// log_events, error, exception and traceback. An empty value clears the field.
func (m FieldMapping) WithOverrides(overrides map[string]string) (FieldMapping, error) {
	for key, value := range overrides {
		target := m.field(key)
		if target == nil {
			return m, fmt.Errorf("unknown field mapping key %q", key)
		}
		*target = ParsePath(value)
	}
	return m, nil
}

func (m *FieldMapping) field(key string) *FieldPath {
	switch strings.ToLower(strings.ReplaceAll(key, "-", "_")) {
	case "text_payload", "textpayload":
		return &m.TextPayload
	case "json_payload", "jsonpayload":
		return &m.JSONPayload
	case "message":
		return &m.Message
	case "stack_trace", "stacktrace":
		return &m.StackTrace
	case "timestamp":
		return &m.Timestamp
	case "severity":
		return &m.Severity
	case "log_events", "logevents":
		return &m.LogEvents
	case "error":
		return &m.Error
	case "exception":
		return &m.Exception
	case "traceback":
		return &m.Traceback
	}
	return nil
}

// eventFields is the mapping applied to each element of a log-events list.
// CloudWatch events carry plain "message" and "timestamp" keys.
func (m FieldMapping) eventFields() FieldMapping {
	ev := m
	ev.LogEvents = nil
	ev.Message = ParsePath("message")
	ev.Timestamp = ParsePath("timestamp")
	return ev
}
