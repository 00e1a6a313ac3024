package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/filter"
	"github.com/vburojevic/tracesift/internal/logparse"
	"github.com/vburojevic/tracesift/internal/output"
	"github.com/vburojevic/tracesift/internal/pipeline"
)

const maxRecordedPatterns = 10

// ParseCmd parses stack traces or logs
type ParseCmd struct {
	Files []string `arg:"" optional:"" help:"Input files ('-' or none reads stdin)"`

	Mode string `short:"m" default:"${config_mode}" enum:"auto,trace,stack-trace,log,generic-log" help:"Analysis mode (auto picks from the log family)"`

	Input   InputFlags  `embed:""`
	Filters FilterFlags `embed:""`

	MaxEntries      int    `default:"${config_max_entries}" help:"Cap emitted log entries per input (0 = all)"`
	PersistPatterns bool   `help:"Save error patterns so later runs can mark them new or known"`
	PatternFile     string `help:"Pattern file path (default: ~/.tracesift/patterns.json)"`
	Jobs            int    `short:"j" default:"4" help:"Inputs parsed in parallel"`
}

type parseOutcome struct {
	name   string
	result *pipeline.Result
	err    *CLIError
}

// Run executes the parse command
func (c *ParseCmd) Run(globals *Globals) error {
	return c.run(context.Background(), globals)
}

func (c *ParseCmd) run(ctx context.Context, globals *Globals) error {
	log := globals.logger()

	p, cerr := c.Input.newPipeline(globals)
	if cerr != nil {
		return outputErrorCommon(globals, cerr)
	}
	f, err := c.Filters.build(globals.Config)
	if err != nil {
		return outputErrorCommon(globals, &CLIError{Code: CodeInvalidFilter, Message: err.Error(), Hint: hintForFilter(err)})
	}

	inputs, err := readInputs(ctx, globals.Stdin, c.Files, c.Jobs)
	if err != nil {
		return outputErrorCommon(globals, &CLIError{Code: CodeNoInput, Message: err.Error(), Hint: "Pass one or more files, or pipe input on stdin"})
	}

	mode := domain.ParseAnalysisMode(c.Mode)
	outcomes := make([]parseOutcome, len(inputs))
	var g errgroup.Group
	if c.Jobs > 0 {
		g.SetLimit(c.Jobs)
	}
	for i, in := range inputs {
		outcomes[i].name = displayName(in.Name)
		if in.Err != nil {
			outcomes[i].err = &CLIError{Code: CodeReadFailed, Message: in.Err.Error(), Hint: hintForRead(in.Err)}
			continue
		}
		g.Go(func() error {
			res, err := p.Parse(in.Data, mode)
			if err != nil {
				outcomes[i].err = &CLIError{
					Code:    CodeParseFailed,
					Message: fmt.Sprintf("%s: %v", outcomes[i].name, err),
					Hint:    hintForParse(err, mode),
				}
				return nil
			}
			outcomes[i].result = res
			return nil
		})
	}
	_ = g.Wait()

	store := c.patternStore(globals)
	emitter := output.NewEmitter(globals.Format, globals.Stdout, globals.Clock)

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			outputErrorCommon(globals, o.err)
			continue
		}
		res := o.result
		if res.Demoted && globals.Verbose {
			emitWarning(globals, o.name, "no stack frames found, parsed as a generic log")
		}

		var patterns []output.EnhancedPatternMatch
		if res.Log != nil {
			res.Log = filter.Apply(res.Log, f)
			patterns = errorPatterns(store, res.Log, c.persist(globals))
		}
		if err := output.WriteResult(emitter, o.name, res, patterns, c.maxEntries(globals)); err != nil {
			return err
		}
		log.Debug("emitted result",
			zap.String("input", o.name),
			zap.String("mode", string(res.Mode)),
			zap.Bool("demoted", res.Demoted))
	}

	if store != nil && c.persist(globals) {
		if err := store.Save(); err != nil {
			emitWarning(globals, "", fmt.Sprintf("failed to save patterns: %v", err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(outcomes))
	}
	return nil
}

func (c *ParseCmd) persist(globals *Globals) bool {
	return c.PersistPatterns || (globals.Config != nil && globals.Config.Patterns.Persist)
}

func (c *ParseCmd) maxEntries(globals *Globals) int {
	if c.MaxEntries > 0 || globals.Config == nil {
		return c.MaxEntries
	}
	return globals.Config.Output.MaxEntries
}

// patternStore opens the pattern file. A corrupt file is reported as a
// warning and replaced on the next save.
func (c *ParseCmd) patternStore(globals *Globals) *output.PatternStore {
	path := c.PatternFile
	if path == "" && globals.Config != nil {
		path = globals.Config.Patterns.File
	}
	store, err := output.NewPatternStore(path, globals.Clock)
	if err != nil {
		emitWarning(globals, "", fmt.Sprintf("ignoring pattern file: %v", err))
	}
	return store
}

// patterns groups the log's errors and marks each as new or known. Only
// persisting runs record them.
func errorPatterns(store *output.PatternStore, log *domain.GenericLog, record bool) []output.EnhancedPatternMatch {
	found := logparse.ErrorPatterns(log.Entries, maxRecordedPatterns)
	if len(found) == 0 || store == nil {
		return nil
	}
	if record {
		return store.RecordPatterns(found)
	}
	return store.AnnotatePatterns(found)
}
