// Package envelope classifies the outer serialization of an input buffer.
package envelope

import (
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/textutil"
)

// headerKeywords mark the first line of a CSV/TSV export as a header row
var headerKeywords = []string{"timestamp", "severity", "message", "textPayload"}

// Detect returns the envelope format of buf. It is a pure function: the
// same bytes always yield the same format. An empty buffer is Raw.
func Detect(buf []byte) domain.EnvelopeFormat {
	s := strings.TrimLeft(string(buf), " \t\r\n")
	if s == "" {
		return domain.EnvelopeRaw
	}
	switch s[0] {
	case '[':
		return domain.EnvelopeJSONArray
	case '{':
		return domain.EnvelopeJSONLines
	}

	first := textutil.FirstLine(s)
	tabs := strings.Count(first, "\t")
	commas := strings.Count(first, ",")

	if (tabs >= 2 || (tabs > 0 && tabs >= commas)) && hasHeaderKeyword(first) {
		return domain.EnvelopeTSV
	}
	if (commas >= 2 || (commas > 0 && commas > tabs)) && hasHeaderKeyword(first) {
		return domain.EnvelopeCSV
	}
	return domain.EnvelopeRaw
}

// IsStructured reports whether buf is anything other than raw text
func IsStructured(buf []byte) bool {
	return Detect(buf) != domain.EnvelopeRaw
}

// Resolve returns hint unless it is Auto, in which case the buffer is
// classified.
func Resolve(buf []byte, hint domain.EnvelopeFormat) domain.EnvelopeFormat {
	if hint == "" || hint == domain.EnvelopeAuto {
		return Detect(buf)
	}
	return hint
}

func hasHeaderKeyword(line string) bool {
	for _, kw := range headerKeywords {
		if textutil.ContainsFold(line, kw) {
			return true
		}
	}
	return false
}
