package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/pipeline"
)

// SchemaVersion is stamped on every NDJSON record. It changes only when a
// record shape changes incompatibly.
const SchemaVersion = 1

// NDJSONWriter writes one JSON record per line
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
	clock   clock.Clock
}

// NewNDJSONWriter creates a new NDJSON writer. A nil clock uses wall time.
func NewNDJSONWriter(w io.Writer, clk clock.Clock) *NDJSONWriter {
	if clk == nil {
		clk = clock.New()
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep log text unescaped
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
		clock:   clk,
	}
}

// TraceOutput is the record for a parsed stack trace
type TraceOutput struct {
	Type              string              `json:"type"` // Always "trace"
	SchemaVersion     int                 `json:"schemaVersion"`
	GeneratedAt       string              `json:"generated_at"`
	Input             string              `json:"input,omitempty"`
	Language          domain.Language     `json:"language"`
	ErrorType         string              `json:"error_type,omitempty"`
	ErrorMessage      string              `json:"error_message,omitempty"`
	FrameCount        int                 `json:"frame_count"`
	ApplicationFrames int                 `json:"application_frames"`
	Frames            []domain.StackFrame `json:"frames"`
}

// LogOutput is the record for a generic log
type LogOutput struct {
	Type              string           `json:"type"` // Always "log"
	SchemaVersion     int              `json:"schemaVersion"`
	GeneratedAt       string           `json:"generated_at"`
	Input             string           `json:"input,omitempty"`
	Family            domain.LogFamily `json:"family"`
	FamilyDescription string           `json:"family_description"`
	Demoted           bool             `json:"demoted,omitempty"`

	TotalEntries  int `json:"total_entries"`
	TotalErrors   int `json:"total_errors"`
	TotalWarnings int `json:"total_warnings"`
	TotalInfo     int `json:"total_info"`

	TimeRangeStart string `json:"time_range_start,omitempty"`
	TimeRangeEnd   string `json:"time_range_end,omitempty"`
	EarliestTime   string `json:"earliest_time,omitempty"`
	LatestTime     string `json:"latest_time,omitempty"`

	ErrorSignatures []string               `json:"error_signatures,omitempty"`
	AnomalyPatterns []string               `json:"anomaly_patterns,omitempty"`
	KnownPatterns   []EnhancedPatternMatch `json:"patterns,omitempty"`

	Entries          []domain.GenericLogEntry `json:"entries"`
	TruncatedEntries int                      `json:"truncated_entries,omitempty"`
}

// DetectionOutput is the record for the detect command
type DetectionOutput struct {
	Type          string                 `json:"type"` // Always "detection"
	SchemaVersion int                    `json:"schemaVersion"`
	Input         string                 `json:"input,omitempty"`
	Envelope      domain.EnvelopeFormat  `json:"envelope"`
	Family        domain.LogFamily       `json:"family"`
	Mode          domain.AnalysisMode    `json:"mode"`
	Language      domain.Language        `json:"language"`
	Languages     []domain.LanguageScore `json:"languages"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Input         string `json:"input,omitempty"`
	Message       string `json:"message"`
}

// LogReport is a generic log plus the presentation choices for it
type LogReport struct {
	Input    string
	Log      *domain.GenericLog
	Demoted  bool
	Patterns []EnhancedPatternMatch
	// MaxEntries caps the emitted entries; zero means no cap
	MaxEntries int
}

// entries returns the entries to emit and how many were cut
func (r *LogReport) entries() ([]domain.GenericLogEntry, int) {
	all := r.Log.Entries
	if r.MaxEntries > 0 && len(all) > r.MaxEntries {
		return all[:r.MaxEntries], len(all) - r.MaxEntries
	}
	return all, 0
}

func (w *NDJSONWriter) now() string {
	return w.clock.Now().UTC().Format(time.RFC3339Nano)
}

// WriteTrace outputs a stack trace record
func (w *NDJSONWriter) WriteTrace(input string, tr *domain.StackTrace) error {
	frames := tr.Frames
	if frames == nil {
		frames = []domain.StackFrame{}
	}
	return w.encoder.Encode(&TraceOutput{
		Type:              "trace",
		SchemaVersion:     SchemaVersion,
		GeneratedAt:       w.now(),
		Input:             input,
		Language:          tr.Language,
		ErrorType:         tr.ErrorType,
		ErrorMessage:      tr.ErrorMessage,
		FrameCount:        tr.FrameCount(),
		ApplicationFrames: len(tr.ApplicationFrames()),
		Frames:            frames,
	})
}

// WriteLog outputs a generic log record
func (w *NDJSONWriter) WriteLog(r *LogReport) error {
	log := r.Log
	entries, truncated := r.entries()
	if entries == nil {
		entries = []domain.GenericLogEntry{}
	}
	out := &LogOutput{
		Type:              "log",
		SchemaVersion:     SchemaVersion,
		GeneratedAt:       w.now(),
		Input:             r.Input,
		Family:            log.DetectedFamily,
		FamilyDescription: log.FamilyDescription,
		Demoted:           r.Demoted,
		TotalEntries:      log.Len(),
		TotalErrors:       log.TotalErrors,
		TotalWarnings:     log.TotalWarnings,
		TotalInfo:         log.TotalInfo,
		TimeRangeStart:    log.TimeRangeStart,
		TimeRangeEnd:      log.TimeRangeEnd,
		ErrorSignatures:   log.ErrorSignatures,
		AnomalyPatterns:   log.AnomalyPatterns,
		KnownPatterns:     r.Patterns,
		Entries:           entries,
		TruncatedEntries:  truncated,
	}
	if start, end, ok := log.ChronologicalRange(); ok {
		out.EarliestTime = start.Format(time.RFC3339Nano)
		out.LatestTime = end.Format(time.RFC3339Nano)
	}
	return w.encoder.Encode(out)
}

// WriteDetection outputs a classification record
func (w *NDJSONWriter) WriteDetection(input string, d pipeline.Detection) error {
	return w.encoder.Encode(&DetectionOutput{
		Type:          "detection",
		SchemaVersion: SchemaVersion,
		Input:         input,
		Envelope:      d.Envelope,
		Family:        d.Family,
		Mode:          d.Mode,
		Language:      d.Language,
		Languages:     d.Languages,
	})
}

// WriteError outputs an error record
func (w *NDJSONWriter) WriteError(code, message, hint string) error {
	out := domain.NewErrorOutput(code, message)
	out.SchemaVersion = SchemaVersion
	out.Hint = hint
	return w.encoder.Encode(out)
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(input, message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Input:         input,
		Message:       message,
	})
}

// WriteRaw outputs any value as a JSON line
func (w *NDJSONWriter) WriteRaw(v any) error {
	return w.encoder.Encode(v)
}
