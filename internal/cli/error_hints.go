package cli

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/extract"
	"github.com/vburojevic/tracesift/internal/pipeline"
)

func hintForRead(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, fs.ErrNotExist) {
		return "Check the path; use '-' or omit files to read stdin"
	}
	if errors.Is(err, fs.ErrPermission) {
		return "The file is not readable by the current user"
	}
	return ""
}

func hintForParse(err error, mode domain.AnalysisMode) string {
	if !errors.Is(err, pipeline.ErrParseFailure) {
		return ""
	}
	if mode == domain.ModeStackTrace {
		return "No frames or log lines were found; the input may be empty or whitespace only"
	}
	return "The input is empty or whitespace only"
}

func hintForFilter(err error) string {
	if err == nil {
		return ""
	}
	return "Where clauses take field OP value, e.g. --where 'severity>=ERROR' --where 'message~timeout'. Regex values must compile."
}

func hintForMapping(err error) string {
	if err == nil {
		return ""
	}
	return "Field keys: text_payload, json_payload, message, stack_trace, timestamp, severity, log_events, error, exception, traceback. Presets: " + strings.Join(extract.PresetNames(), ", ")
}
