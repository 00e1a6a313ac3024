package cli

import (
	"context"
	"fmt"

	"github.com/vburojevic/tracesift/internal/output"
)

// DetectCmd classifies inputs without parsing them
type DetectCmd struct {
	Files []string `arg:"" optional:"" help:"Input files ('-' or none reads stdin)"`

	Input InputFlags `embed:""`
}

// Run executes the detect command
func (c *DetectCmd) Run(globals *Globals) error {
	p, cerr := c.Input.newPipeline(globals)
	if cerr != nil {
		return outputErrorCommon(globals, cerr)
	}
	inputs, err := readInputs(context.Background(), globals.Stdin, c.Files, 0)
	if err != nil {
		return outputErrorCommon(globals, &CLIError{Code: CodeNoInput, Message: err.Error(), Hint: "Pass one or more files, or pipe input on stdin"})
	}

	emitter := output.NewEmitter(globals.Format, globals.Stdout, globals.Clock)
	failed := 0
	for _, in := range inputs {
		name := displayName(in.Name)
		if in.Err != nil {
			failed++
			outputErrorCommon(globals, &CLIError{Code: CodeReadFailed, Message: in.Err.Error(), Hint: hintForRead(in.Err)})
			continue
		}
		if err := emitter.WriteDetection(name, p.Detect(in.Data)); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}
