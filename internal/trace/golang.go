package trace

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/textutil"
)

var (
	// Method receivers such as ".(*Store).Get" are kept as part of the name.
	goFuncRegex     = regexp.MustCompile(`^([^\s(]*[^\s(.](?:\.\(\*?[^\s()]+\)\.[^\s(]+)?)\(`)
	goLocationRegex = regexp.MustCompile(`^\s+([^:]+\.go):([0-9]+)`)
	goPanicRegex    = regexp.MustCompile(`^(panic|Error|error): (.*)$`)
)

// GoParser parses Go panics and runtime tracebacks
type GoParser struct{}

// NewGoParser creates a Go traceback parser
func NewGoParser() *GoParser {
	return &GoParser{}
}

// Language implements Parser
func (p *GoParser) Language() domain.Language { return domain.LanguageGo }

// Parse pairs each function header line with the location line that
// follows it. A header with no location before the next header is dropped.
func (p *GoParser) Parse(text string) domain.Result[*domain.StackTrace] {
	tr := &domain.StackTrace{Language: domain.LanguageGo, RawText: text}

	var pending string
	for _, line := range textutil.Lines(text) {
		if tr.ErrorType == "" {
			if m := goPanicRegex.FindStringSubmatch(line.Text); m != nil {
				tr.ErrorType = m[1]
				tr.ErrorMessage = strings.TrimSpace(m[2])
				continue
			}
		}
		if m := goFuncRegex.FindStringSubmatch(line.Text); m != nil {
			pending = m[1]
			continue
		}
		m := goLocationRegex.FindStringSubmatch(line.Text)
		if m == nil || pending == "" {
			continue
		}
		lineNo, _ := strconv.Atoi(m[2])
		frame := domain.StackFrame{
			Function: pending,
			File:     m[1],
			Line:     lineNo,
			Module:   goPackage(pending),
		}
		frame.IsStdlib, frame.IsThirdParty = classifyPath(domain.LanguageGo, frame.File)
		tr.Frames = append(tr.Frames, frame)
		pending = ""
	}
	return finish(tr)
}
