package cli

import (
	"github.com/vburojevic/tracesift/internal/output"
)

// CLIError carries a machine-readable code and an optional hint next to
// the message
type CLIError struct {
	Code    string
	Message string
	Hint    string
}

func (e *CLIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Error codes emitted in error records
const (
	CodeInvalidFilter  = "INVALID_FILTER"
	CodeInvalidMapping = "INVALID_FIELD_MAPPING"
	CodeNoInput        = "NO_INPUT"
	CodeReadFailed     = "READ_FAILED"
	CodeParseFailed    = "PARSE_FAILED"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so callers always get machine-readable failures.
// Text errors go to stderr.
func outputErrorCommon(globals *Globals, cerr *CLIError) error {
	if globals != nil {
		if globals.Format == "ndjson" {
			output.NewNDJSONWriter(globals.Stdout, globals.Clock).WriteError(cerr.Code, cerr.Message, cerr.Hint)
		} else {
			output.NewTextWriter(globals.Stderr).WriteError(cerr.Code, cerr.Message, cerr.Hint)
		}
	}
	return cerr
}
