package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/vburojevic/tracesift/internal/trace"
)

// textColumns are searched in priority order for the trace text column
var textColumns = []string{"textPayload", "message", "text", "log"}

// extractDelimited reads a CSV or TSV export with a header row. Rows whose
// text column does not look like a trace are dropped. A file without a
// text column yields no entries.
func (x *Extractor) extractDelimited(buf []byte, comma rune) []Entry {
	r := csv.NewReader(bytes.NewReader(buf))
	r.Comma = comma
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		x.logger.Debug("unreadable header row", zap.Error(err))
		return nil
	}
	textCol := -1
	for _, name := range textColumns {
		if textCol = columnIndex(header, name); textCol >= 0 {
			break
		}
	}
	if textCol < 0 {
		x.logger.Debug("no text column in header", zap.Strings("header", header))
		return nil
	}
	tsCol := columnIndex(header, "timestamp")
	sevCol := columnIndex(header, "severity")

	var entries []Entry
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			x.logger.Debug("skipping malformed row", zap.Error(err))
			continue
		}
		text := cell(row, textCol)
		if !trace.LooksLikeTrace(text) {
			continue
		}
		entries = append(entries, Entry{
			Text:      text,
			Timestamp: cell(row, tsCol),
			Severity:  cell(row, sevCol),
		})
	}
	return entries
}

func columnIndex(header []string, name string) int {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
