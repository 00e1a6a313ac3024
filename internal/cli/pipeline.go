package cli

import (
	"fmt"
	"maps"

	"github.com/vburojevic/tracesift/internal/config"
	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/extract"
	"github.com/vburojevic/tracesift/internal/pipeline"
)

// InputFlags control how input buffers are classified
type InputFlags struct {
	InputFormat string            `short:"i" name:"input-format" default:"${config_input_format}" enum:"auto,raw,json,json-array,csv,tsv" help:"Envelope format of the input"`
	Preset      string            `short:"p" default:"${config_preset}" enum:"gcp,aws" help:"Field mapping preset for structured records"`
	Field       map[string]string `help:"Override a field path, e.g. --field message=payload.msg (repeatable)"`
	Language    string            `short:"l" default:"${config_language}" enum:"auto,python,go,node" help:"Trace language (auto scores the text)"`
}

// fieldMapping resolves the preset then applies config and flag overrides,
// flags last
func (f *InputFlags) fieldMapping(cfg *config.Config) (extract.FieldMapping, error) {
	m, ok := extract.Preset(f.Preset)
	if !ok {
		return m, fmt.Errorf("unknown field mapping preset %q", f.Preset)
	}
	overrides := map[string]string{}
	if cfg != nil {
		maps.Copy(overrides, cfg.Input.Fields)
	}
	maps.Copy(overrides, f.Field)
	return m.WithOverrides(overrides)
}

// newPipeline builds a pipeline from the flags
func (f *InputFlags) newPipeline(globals *Globals) (*pipeline.Pipeline, *CLIError) {
	fields, err := f.fieldMapping(globals.Config)
	if err != nil {
		return nil, &CLIError{Code: CodeInvalidMapping, Message: err.Error(), Hint: hintForMapping(err)}
	}
	return pipeline.New(
		pipeline.WithLogger(globals.logger()),
		pipeline.WithEnvelopeFormat(domain.ParseEnvelopeFormat(f.InputFormat)),
		pipeline.WithLanguage(domain.ParseLanguage(f.Language)),
		pipeline.WithFieldMapping(fields),
	), nil
}
