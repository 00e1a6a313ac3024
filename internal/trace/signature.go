package trace

import "strings"

// signature matches text when every group has at least one hit.
type signature [][]string

func (s signature) match(text string) bool {
	for _, group := range s {
		hit := false
		for _, needle := range group {
			if strings.Contains(text, needle) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

type signatureSet []signature

func (set signatureSet) match(text string) bool {
	for _, sig := range set {
		if sig.match(text) {
			return true
		}
	}
	return false
}

// extractSignatures accept a candidate field value as trace text.
var extractSignatures = signatureSet{
	{{"Traceback (most recent call last)"}},
	{{`File "`}, {", line "}},
	{{"panic:"}},
	{{"goroutine "}},
	{{".go:"}, {"+0x"}},
	{{"    at "}, {".js:", ".ts:"}},
	{{"at "}, {".java:"}},
	{{"Exception"}, {"\n\tat "}},
	{{"Error:", "Exception:"}, {"\n\t", "\n    at "}},
}

// familySignatures make a whole buffer classify as a stack trace.
var familySignatures = signatureSet{
	{{"Traceback (most recent call last)"}},
	{{`File "`}, {", line "}},
	{{"panic:"}},
	{{"goroutine "}, {".go:"}},
	{{"    at "}, {".js:", ".ts:"}},
	{{"\n\tat "}, {".java:"}},
	{{"Exception in thread"}},
}

// LooksLikeTrace reports whether a structured field value carries stack
// trace text. It also accepts Java traces and generic "Error:" text with
// indented continuation lines, which have no parser of their own.
func LooksLikeTrace(text string) bool {
	return text != "" && extractSignatures.match(text)
}

// HasTracePatterns reports whether a whole buffer should be treated as a
// stack trace by the log-family classifier.
func HasTracePatterns(text string) bool {
	return text != "" && familySignatures.match(text)
}
