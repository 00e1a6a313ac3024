package cli

import (
	"github.com/vburojevic/tracesift/internal/output"
)

// emitWarning respects format/quiet. NDJSON warnings go to stdout with the
// results; text warnings go to stderr.
func emitWarning(globals *Globals, input, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout, globals.Clock).WriteWarning(input, msg)
		return
	}
	output.NewTextWriter(globals.Stderr).WriteWarning(input, msg)
}
