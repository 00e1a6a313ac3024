package logparse

import (
	"go.uber.org/zap"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/textutil"
	"github.com/vburojevic/tracesift/internal/trace"
)

// Parser turns a log buffer into a GenericLog
type Parser struct {
	logger *zap.Logger
	traces *trace.Registry
}

// NewParser creates a Parser. A nil logger disables logging.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{
		logger: logger,
		traces: trace.NewRegistry(logger),
	}
}

// Parse splits buf into lines and parses each with the family's line
// parser, falling back to the generic parser. Lines nothing can parse are
// kept with the raw line as message. The family is detected when hint is
// Unknown. Empty lines are skipped but still count toward line numbers.
func (p *Parser) Parse(buf []byte, hint domain.LogFamily) *domain.GenericLog {
	family := hint
	if family == "" || family == domain.FamilyUnknown {
		family = DetectFamily(buf)
	}
	log := domain.NewGenericLog(family)
	parsers := lineParsersFor(family)

	unparsed := 0
	for _, line := range textutil.Lines(string(buf)) {
		if line.Text == "" {
			continue
		}
		entry := domain.GenericLogEntry{
			Message:    line.Text,
			RawLine:    line.Text,
			LineNumber: line.Number,
		}
		if f, ok := parseLine(parsers, line.Text); ok {
			entry.Timestamp = f.timestamp
			entry.Severity = domain.Severity(f.severity)
			entry.Message = f.message
			entry.Source = f.source
			entry.Metadata = f.metadata
			if f.traceText != "" {
				entry.EmbeddedTrace = p.embeddedTrace(f.traceText)
			}
		} else {
			unparsed++
		}
		log.AddEntry(entry)
	}

	p.logger.Debug("parsed generic log",
		zap.String("family", string(family)),
		zap.Int("entries", log.Len()),
		zap.Int("unparsed", unparsed),
		zap.Int("errors", log.TotalErrors))
	return log
}

func (p *Parser) embeddedTrace(text string) *domain.StackTrace {
	tr, ok := p.traces.Parse(text, domain.LanguageUnknown).Get()
	if !ok {
		return nil
	}
	return tr
}

var defaultParser = NewParser(nil)

// Parse parses buf with a Parser that does not log
func Parse(buf []byte, hint domain.LogFamily) *domain.GenericLog {
	return defaultParser.Parse(buf, hint)
}

func lineParsersFor(family domain.LogFamily) []lineParser {
	switch family {
	case domain.FamilySyslog:
		return []lineParser{parseSyslogLine, parseGenericLine}
	case domain.FamilyJSONStructured:
		return []lineParser{parseJSONLine, parseGenericLine}
	case domain.FamilyNginx, domain.FamilyApache:
		return []lineParser{parseAccessLine, parseGenericLine}
	case domain.FamilyDocker:
		return []lineParser{parseDockerLine, parseGenericLine}
	default:
		return []lineParser{parseGenericLine}
	}
}

func parseLine(parsers []lineParser, line string) (lineFields, bool) {
	for _, parse := range parsers {
		if f, ok := parse(line); ok && f.message != "" {
			return f, true
		}
	}
	return lineFields{}, false
}
