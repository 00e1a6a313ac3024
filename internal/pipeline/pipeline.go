// Package pipeline decides whether a buffer is a stack trace or a generic
// log and returns exactly one normalized model for it.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/envelope"
	"github.com/vburojevic/tracesift/internal/extract"
	"github.com/vburojevic/tracesift/internal/logparse"
	"github.com/vburojevic/tracesift/internal/trace"
)

// ErrParseFailure is returned when neither a stack trace nor any log entry
// could be recovered from the input
var ErrParseFailure = errors.New("unrecognized input")

// Result holds exactly one of Trace or Log, selected by Mode
type Result struct {
	Mode  domain.AnalysisMode
	Trace *domain.StackTrace
	Log   *domain.GenericLog
	// Demoted is set when a stack trace was attempted but no frames were found
	Demoted bool
}

// Pipeline is safe for concurrent use. Options are fixed at construction.
type Pipeline struct {
	logger    *zap.Logger
	extractor *extract.Extractor
	traces    *trace.Registry
	logs      *logparse.Parser
	language  domain.Language
	format    domain.EnvelopeFormat
	fields    extract.FieldMapping
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger. nil disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithLanguage skips language detection for stack traces
func WithLanguage(lang domain.Language) Option {
	return func(p *Pipeline) { p.language = lang }
}

// WithEnvelopeFormat skips envelope detection
func WithEnvelopeFormat(f domain.EnvelopeFormat) Option {
	return func(p *Pipeline) { p.format = f }
}

// WithFieldMapping sets the field mapping for structured records
func WithFieldMapping(m extract.FieldMapping) Option {
	return func(p *Pipeline) { p.fields = m }
}

// New creates a Pipeline. Defaults: no logging, auto-detected envelope and
// language, GCP field mapping.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger:   zap.NewNop(),
		language: domain.LanguageUnknown,
		format:   domain.EnvelopeAuto,
		fields:   extract.GCPFields(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.extractor = extract.New(extract.WithFields(p.fields), extract.WithLogger(p.logger))
	p.traces = trace.NewRegistry(p.logger)
	p.logs = logparse.NewParser(p.logger)
	return p
}

// Parse classifies buf and returns a stack trace or a scored generic log.
// In Auto mode the log-family classifier chooses; a stack-trace attempt
// that finds no frames is demoted to generic-log mode.
func (p *Pipeline) Parse(buf []byte, mode domain.AnalysisMode) (*Result, error) {
	family := domain.FamilyUnknown
	if mode == "" || mode == domain.ModeAuto {
		family = logparse.DetectFamily(buf)
		mode = domain.ModeGenericLog
		if family == domain.FamilyStackTrace {
			mode = domain.ModeStackTrace
		}
		p.logger.Debug("detected log family", zap.String("family", string(family)), zap.String("mode", string(mode)))
	}

	demoted := false
	if mode == domain.ModeStackTrace {
		if tr, ok := p.parseTrace(buf).Get(); ok {
			return &Result{Mode: domain.ModeStackTrace, Trace: tr}, nil
		}
		p.logger.Info("no stack frames found, falling back to generic log parsing")
		demoted = true
		family = p.demotedFamily(buf)
	}

	log := p.parseLog(buf, family)
	if log.Len() == 0 {
		return nil, fmt.Errorf("parse %d bytes: %w", len(buf), ErrParseFailure)
	}
	return &Result{Mode: domain.ModeGenericLog, Log: log, Demoted: demoted}, nil
}

func (p *Pipeline) parseTrace(buf []byte) domain.Result[*domain.StackTrace] {
	format := envelope.Resolve(buf, p.format)
	text := string(buf)
	if format != domain.EnvelopeRaw {
		entries := p.extractor.Extract(buf, format)
		p.logger.Debug("extracted structured entries",
			zap.String("envelope", string(format)),
			zap.Int("entries", len(entries)))
		text = extract.JoinEntries(entries, text)
	}
	return p.traces.Parse(text, p.language)
}

// demotedFamily keeps JSON lines on the JSON line parser after a failed
// trace attempt; any other buffer stays classified as trace-like text.
func (p *Pipeline) demotedFamily(buf []byte) domain.LogFamily {
	if envelope.Resolve(buf, p.format) == domain.EnvelopeJSONLines {
		return domain.FamilyJSONStructured
	}
	return domain.FamilyStackTrace
}

func (p *Pipeline) parseLog(buf []byte, family domain.LogFamily) *domain.GenericLog {
	log := p.logs.Parse(buf, family)
	logparse.Score(log)
	logparse.Annotate(log)
	return log
}
