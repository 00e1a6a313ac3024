package trace

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/textutil"
)

var (
	nodeFrameRegex = regexp.MustCompile(`at (?:async |new )?([^ ]+) \(((?:node:)?[^:]+):([0-9]+):([0-9]+)\)`)
	nodeBareRegex  = regexp.MustCompile(`at ((?:node:)?[^:\s()]+):([0-9]+):([0-9]+)`)
	nodeErrorRegex = regexp.MustCompile(`^([A-Za-z]+Error|[A-Za-z]+Exception): (.*)$`)
)

// NodeParser parses V8 stack traces from Node.js
type NodeParser struct{}

// NewNodeParser creates a Node.js stack trace parser
func NewNodeParser() *NodeParser {
	return &NodeParser{}
}

// Language implements Parser
func (p *NodeParser) Language() domain.Language { return domain.LanguageNode }

// Parse reads `at fn (path:line:col)` frames, and `at path:line:col` frames
// as <anonymous>. The error identity is the first Error/Exception line.
func (p *NodeParser) Parse(text string) domain.Result[*domain.StackTrace] {
	tr := &domain.StackTrace{Language: domain.LanguageNode, RawText: text}

	for _, line := range textutil.Lines(text) {
		if tr.ErrorType == "" {
			if m := nodeErrorRegex.FindStringSubmatch(strings.TrimSpace(line.Text)); m != nil {
				tr.ErrorType = m[1]
				tr.ErrorMessage = strings.TrimSpace(m[2])
				continue
			}
		}
		if frame, ok := parseNodeFrame(line.Text); ok {
			frame.IsStdlib, frame.IsThirdParty = classifyPath(domain.LanguageNode, frame.File)
			tr.Frames = append(tr.Frames, frame)
		}
	}
	return finish(tr)
}

func parseNodeFrame(line string) (domain.StackFrame, bool) {
	if m := nodeFrameRegex.FindStringSubmatch(line); m != nil {
		lineNo, _ := strconv.Atoi(m[3])
		col, _ := strconv.Atoi(m[4])
		return domain.StackFrame{Function: m[1], File: m[2], Line: lineNo, Column: col}, true
	}
	loc := nodeBareRegex.FindStringSubmatchIndex(line)
	if loc == nil || !atWordBoundary(line, loc[0]) {
		return domain.StackFrame{}, false
	}
	lineNo, _ := strconv.Atoi(line[loc[4]:loc[5]])
	col, _ := strconv.Atoi(line[loc[6]:loc[7]])
	return domain.StackFrame{
		Function: "<anonymous>",
		File:     line[loc[2]:loc[3]],
		Line:     lineNo,
		Column:   col,
	}, true
}

// atWordBoundary rejects matches where "at " is the tail of another word
// such as "format " or "Repeat ".
func atWordBoundary(line string, start int) bool {
	return start == 0 || line[start-1] == ' ' || line[start-1] == '\t'
}
