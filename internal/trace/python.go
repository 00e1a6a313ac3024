package trace

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/textutil"
)

var (
	pythonFrameRegex = regexp.MustCompile(`File "([^"]+)", line ([0-9]+)(?:, in ([^\s]+))?`)
	pythonErrorRegex = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_.]*(?:Error|Exception|Warning)): (.*)$`)
)

// PythonParser parses CPython tracebacks
type PythonParser struct{}

// NewPythonParser creates a Python traceback parser
func NewPythonParser() *PythonParser {
	return &PythonParser{}
}

// Language implements Parser
func (p *PythonParser) Language() domain.Language { return domain.LanguagePython }

// Parse collects every `File "...", line N, in fn` frame in order. The error
// identity is the last exception line, so a chained traceback reports the
// exception that was finally raised.
func (p *PythonParser) Parse(text string) domain.Result[*domain.StackTrace] {
	tr := &domain.StackTrace{Language: domain.LanguagePython, RawText: text}
	lines := textutil.Lines(text)

	for i, line := range lines {
		if m := pythonFrameRegex.FindStringSubmatch(line.Text); m != nil {
			lineNo, _ := strconv.Atoi(m[2])
			fn := m[3]
			if fn == "" {
				fn = "<module>"
			}
			frame := domain.StackFrame{
				Function: fn,
				File:     m[1],
				Line:     lineNo,
				Module:   pythonModule(m[1]),
				Context:  pythonContext(lines, i),
			}
			frame.IsStdlib, frame.IsThirdParty = classifyPath(domain.LanguagePython, frame.File)
			tr.Frames = append(tr.Frames, frame)
			continue
		}
		if m := pythonErrorRegex.FindStringSubmatch(line.Text); m != nil {
			tr.ErrorType = m[1]
			tr.ErrorMessage = strings.TrimSpace(m[2])
		}
	}
	return finish(tr)
}

// pythonContext returns the indented source line printed below a frame.
func pythonContext(lines []textutil.Line, i int) string {
	if i+1 >= len(lines) {
		return ""
	}
	next := lines[i+1].Text
	if next == "" || (next[0] != ' ' && next[0] != '\t') {
		return ""
	}
	if pythonFrameRegex.MatchString(next) {
		return ""
	}
	return strings.TrimSpace(next)
}
