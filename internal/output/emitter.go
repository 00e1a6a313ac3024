package output

import (
	"io"

	"github.com/benbjohnson/clock"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/pipeline"
)

// Emitter renders pipeline results in one output format
type Emitter interface {
	WriteTrace(input string, tr *domain.StackTrace) error
	WriteLog(r *LogReport) error
	WriteDetection(input string, d pipeline.Detection) error
	WriteError(code, message, hint string) error
	WriteWarning(input, message string) error
}

// NewEmitter returns a text emitter for format "text" and an NDJSON
// emitter otherwise
func NewEmitter(format string, w io.Writer, clk clock.Clock) Emitter {
	if format == "text" {
		return NewTextWriter(w)
	}
	return NewNDJSONWriter(w, clk)
}

// WriteResult emits whichever model a pipeline result holds
func WriteResult(e Emitter, input string, res *pipeline.Result, patterns []EnhancedPatternMatch, maxEntries int) error {
	if res.Trace != nil {
		return e.WriteTrace(input, res.Trace)
	}
	return e.WriteLog(&LogReport{
		Input:      input,
		Log:        res.Log,
		Demoted:    res.Demoted,
		Patterns:   patterns,
		MaxEntries: maxEntries,
	})
}
