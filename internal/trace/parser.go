// Package trace turns stack-trace text into ordered frames and an error
// identity. Each supported language has its own Parser; Registry picks one
// from a hint or from the language classifier.
package trace

import (
	"go.uber.org/zap"

	"github.com/vburojevic/tracesift/internal/domain"
)

// Parser converts trace text for one language. Zero frames is reported as
// NoMatch so callers can fall back to another strategy.
type Parser interface {
	Language() domain.Language
	Parse(text string) domain.Result[*domain.StackTrace]
}

// Registry maps languages to parsers
type Registry struct {
	parsers map[domain.Language]Parser
	logger  *zap.Logger
}

// NewRegistry creates a registry with the built-in parsers
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		parsers: make(map[domain.Language]Parser),
		logger:  logger,
	}
	r.Register(NewPythonParser())
	r.Register(NewGoParser())
	r.Register(NewNodeParser())
	return r
}

// Register adds or replaces the parser for p.Language()
func (r *Registry) Register(p Parser) {
	r.parsers[p.Language()] = p
}

// ParserFor returns the parser for a language
func (r *Registry) ParserFor(lang domain.Language) (Parser, bool) {
	p, ok := r.parsers[lang]
	return p, ok
}

// Parse parses text with the parser for hint, or for the detected language
// when hint is Unknown.
func (r *Registry) Parse(text string, hint domain.Language) domain.Result[*domain.StackTrace] {
	lang := hint
	if lang == "" || lang == domain.LanguageUnknown {
		lang = DetectLanguage(text)
		r.logger.Debug("detected trace language", zap.String("language", string(lang)))
	}
	p, ok := r.ParserFor(lang)
	if !ok {
		r.logger.Debug("no parser for language", zap.String("language", string(lang)))
		return domain.NoMatch[*domain.StackTrace]()
	}
	res := p.Parse(text)
	if tr, ok := res.Get(); ok {
		r.logger.Debug("parsed stack trace",
			zap.String("language", string(lang)),
			zap.Int("frames", tr.FrameCount()),
			zap.String("error_type", tr.ErrorType))
	} else {
		r.logger.Debug("trace text is unparseable", zap.String("language", string(lang)))
	}
	return res
}

var defaultRegistry = NewRegistry(nil)

// Parse parses text with the built-in parsers and no logging
func Parse(text string, hint domain.Language) domain.Result[*domain.StackTrace] {
	return defaultRegistry.Parse(text, hint)
}

func finish(tr *domain.StackTrace) domain.Result[*domain.StackTrace] {
	if len(tr.Frames) == 0 {
		return domain.NoMatch[*domain.StackTrace]()
	}
	return domain.Matched(tr)
}
