package domain

// StackFrame is one call site in a stack trace
type StackFrame struct {
	Function     string `json:"function,omitempty"`
	File         string `json:"file,omitempty"`
	Line         int    `json:"line"`
	Column       int    `json:"column,omitempty"`
	Module       string `json:"module,omitempty"`
	Context      string `json:"context,omitempty"`
	IsStdlib     bool   `json:"is_stdlib"`
	IsThirdParty bool   `json:"is_third_party"`
}

// IsApplication reports whether the frame belongs to the user's own code
func (f StackFrame) IsApplication() bool {
	return !f.IsStdlib && !f.IsThirdParty
}

// StackTrace is a parsed trace. Frames keep the order they appear in the
// source text and are never re-sorted.
type StackTrace struct {
	Language     Language     `json:"language"`
	ErrorType    string       `json:"error_type,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	Frames       []StackFrame `json:"frames"`
	RawText      string       `json:"raw_text"`
}

// FrameCount returns the number of parsed frames
func (t *StackTrace) FrameCount() int {
	if t == nil {
		return 0
	}
	return len(t.Frames)
}

// ApplicationFrames returns frames that are neither stdlib nor third party
func (t *StackTrace) ApplicationFrames() []StackFrame {
	if t == nil {
		return nil
	}
	var out []StackFrame
	for _, f := range t.Frames {
		if f.IsApplication() {
			out = append(out, f)
		}
	}
	return out
}
