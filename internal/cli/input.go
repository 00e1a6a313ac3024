package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"
)

const stdinName = "-"

// maxInputBytes bounds a single input buffer
const maxInputBytes = 256 << 20

// input is one named buffer to classify
type input struct {
	Name string
	Data []byte
	Err  error
}

// errStdinIsTerminal is returned when no files are given and stdin is not
// redirected
var errStdinIsTerminal = errors.New("no input files and stdin is a terminal")

// stdinIsTerminal reports whether r is an interactive terminal
func stdinIsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// readInputs reads every named file concurrently, keeping argument order.
// "-" or an empty list reads stdin once. A failed file is reported in its
// slot's Err; only context cancellation fails the whole read.
func readInputs(ctx context.Context, stdin io.Reader, names []string, limit int) ([]input, error) {
	if len(names) == 0 {
		names = []string{stdinName}
	}
	for _, n := range names {
		if n == stdinName && stdinIsTerminal(stdin) {
			return nil, errStdinIsTerminal
		}
	}

	inputs := make([]input, len(names))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	stdinRead := false
	for i, name := range names {
		inputs[i].Name = name
		if name == stdinName {
			if stdinRead {
				inputs[i].Err = fmt.Errorf("stdin given more than once")
				continue
			}
			stdinRead = true
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			inputs[i].Data, inputs[i].Err = readInput(stdin, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return inputs, nil
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == stdinName {
		return readLimited(stdin, "stdin")
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, name)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInputBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxInputBytes {
		return nil, fmt.Errorf("read %s: input exceeds %d MiB", name, maxInputBytes>>20)
	}
	return data, nil
}

// displayName is the input label used in output records
func displayName(name string) string {
	if name == stdinName {
		return "stdin"
	}
	return name
}
