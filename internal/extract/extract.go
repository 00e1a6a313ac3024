// Package extract pulls stack-trace text out of structured log exports
// (JSON lines, JSON arrays, CSV and TSV).
package extract

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/envelope"
	"github.com/vburojevic/tracesift/internal/textutil"
	"github.com/vburojevic/tracesift/internal/trace"
)

// Entry is one piece of trace-like text found in a structured record
type Entry struct {
	Text      string
	Timestamp string
	Severity  string
	Source    string
}

// traceFieldPaths are common exception field names searched after the
// mapped ones.
var traceFieldPaths = []FieldPath{
	ParsePath("exception"),
	ParsePath("traceback"),
	ParsePath("stacktrace"),
	ParsePath("stack_trace"),
	ParsePath("error.stack"),
	ParsePath("err.stack"),
}

var sourceFieldPaths = []FieldPath{
	ParsePath("logName"),
	ParsePath("@logStream"),
	ParsePath("logStream"),
	ParsePath("resource.type"),
	ParsePath("source"),
}

// Extractor finds trace text in structured records. It is safe for
// concurrent use; it holds no per-call state.
type Extractor struct {
	fields FieldMapping
	logger *zap.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithFields sets the field mapping. The default is GCPFields.
func WithFields(m FieldMapping) Option {
	return func(x *Extractor) { x.fields = m }
}

// WithLogger sets the logger used for skipped records
func WithLogger(l *zap.Logger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.logger = l
		}
	}
}

// New creates an Extractor
func New(opts ...Option) *Extractor {
	x := &Extractor{
		fields: GCPFields(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Fields returns the mapping in use
func (x *Extractor) Fields() FieldMapping {
	return x.fields
}

// Extract returns every trace-like entry in buf. Malformed records are
// logged and skipped. An empty result means nothing matched; it is never an
// error. buf is not modified.
func (x *Extractor) Extract(buf []byte, format domain.EnvelopeFormat) []Entry {
	switch envelope.Resolve(buf, format) {
	case domain.EnvelopeJSONLines:
		return x.extractJSONLines(buf)
	case domain.EnvelopeJSONArray:
		return x.extractJSONArray(buf)
	case domain.EnvelopeCSV:
		return x.extractDelimited(buf, ',')
	case domain.EnvelopeTSV:
		return x.extractDelimited(buf, '\t')
	default:
		return nil
	}
}

// TraceText concatenates the extracted entries into one text for the trace
// parsers. When nothing was extracted the raw buffer is returned as is.
func (x *Extractor) TraceText(buf []byte, format domain.EnvelopeFormat) string {
	return JoinEntries(x.Extract(buf, format), string(buf))
}

// JoinEntries joins entry texts with "--- Entry N (timestamp) ---"
// separators, or returns fallback for an empty list.
func JoinEntries(entries []Entry, fallback string) string {
	if len(entries) == 0 {
		return fallback
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			if e.Timestamp != "" {
				fmt.Fprintf(&b, "\n\n--- Entry %d (%s) ---\n\n", i+1, e.Timestamp)
			} else {
				fmt.Fprintf(&b, "\n\n--- Entry %d ---\n\n", i+1)
			}
		}
		b.WriteString(e.Text)
	}
	return b.String()
}

func (x *Extractor) extractJSONLines(buf []byte) []Entry {
	var entries []Entry
	for _, line := range textutil.Lines(string(buf)) {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		if !gjson.Valid(text) {
			x.logger.Debug("skipping malformed JSON record", zap.Int("line", line.Number))
			continue
		}
		obj := gjson.Parse(text)
		if !obj.IsObject() {
			x.logger.Debug("skipping non-object JSON record", zap.Int("line", line.Number))
			continue
		}
		entries = x.appendFromRecord(entries, obj, x.fields)
	}
	return entries
}

func (x *Extractor) extractJSONArray(buf []byte) []Entry {
	if !gjson.ValidBytes(buf) {
		x.logger.Debug("skipping malformed JSON array", zap.Int("bytes", len(buf)))
		return nil
	}
	root := gjson.ParseBytes(buf)
	if !root.IsArray() {
		return nil
	}

	var entries []Entry
	root.ForEach(func(_, value gjson.Result) bool {
		if value.IsObject() {
			entries = x.appendFromRecord(entries, value, x.fields)
		}
		return true
	})
	if len(entries) > 0 {
		return entries
	}

	if synth, ok := synthesizeGoTrace(root); ok {
		x.logger.Debug("synthesized trace from source locations")
		return []Entry{synth}
	}
	return nil
}

// appendFromRecord adds the record's own trace text, then the entries of
// its log-events list when the mapping names one.
func (x *Extractor) appendFromRecord(entries []Entry, obj gjson.Result, m FieldMapping) []Entry {
	if e, ok := fromRecord(obj, m); ok {
		entries = append(entries, e)
	}
	events := m.LogEvents.Lookup(obj)
	if !events.IsArray() {
		return entries
	}
	evFields := m.eventFields()
	events.ForEach(func(_, ev gjson.Result) bool {
		if ev.IsObject() {
			if e, ok := fromRecord(ev, evFields); ok {
				entries = append(entries, e)
			}
		}
		return true
	})
	return entries
}

// fromRecord runs the priority search over one object. The first accepted
// candidate wins.
func fromRecord(obj gjson.Result, m FieldMapping) (Entry, bool) {
	text, ok := FindTraceText(obj, m)
	if !ok {
		return Entry{}, false
	}
	e := Entry{Text: text}
	if ts := m.Timestamp.Lookup(obj); ts.Exists() {
		e.Timestamp = ts.String()
	}
	if sev := m.Severity.Lookup(obj); sev.Exists() {
		e.Severity = sev.String()
	}
	for _, p := range sourceFieldPaths {
		if s, ok := p.LookupString(obj); ok && s != "" {
			e.Source = s
			break
		}
	}
	return e, true
}

// FindTraceText runs the field-priority search over one JSON object and
// returns the first candidate that is accepted as trace text.
func FindTraceText(obj gjson.Result, m FieldMapping) (string, bool) {
	if s, ok := m.TextPayload.LookupString(obj); ok && trace.LooksLikeTrace(s) {
		return s, true
	}
	if s, ok := m.StackTrace.LookupString(obj); ok && strings.TrimSpace(s) != "" {
		return s, true
	}

	candidates := make([]FieldPath, 0, len(traceFieldPaths)+4)
	candidates = append(candidates, m.Exception, m.Traceback)
	candidates = append(candidates, traceFieldPaths...)
	if len(m.JSONPayload) > 0 && len(m.Message) > 0 {
		candidates = append(candidates, m.JSONPayload.Join(m.Message))
	}
	candidates = append(candidates, m.Message, m.Error)

	for _, p := range candidates {
		if s, ok := p.LookupString(obj); ok && trace.LooksLikeTrace(s) {
			return s, true
		}
	}
	return "", false
}
