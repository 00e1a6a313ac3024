package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/pipeline"
)

const maxMessageWidth = 100

// TextWriter writes human-readable output
type TextWriter struct {
	w io.Writer
}

// NewTextWriter creates a new text writer
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// WriteTrace prints the error identity and a frame table
func (t *TextWriter) WriteTrace(input string, tr *domain.StackTrace) error {
	fmt.Fprintln(t.w, Styles.Header.Render(title("Stack trace", input)))
	fmt.Fprintf(t.w, "%s %s\n", Styles.Label.Render("Language:"), Styles.Value.Render(string(tr.Language)))
	if tr.ErrorType != "" || tr.ErrorMessage != "" {
		fmt.Fprintf(t.w, "%s %s\n", Styles.ErrorType.Render(tr.ErrorType+":"), tr.ErrorMessage)
	}
	fmt.Fprintf(t.w, "%s %d (%d application)\n\n",
		Styles.Label.Render("Frames:"), tr.FrameCount(), len(tr.ApplicationFrames()))

	table := tablewriter.NewWriter(t.w)
	table.Header("#", "Function", "Location", "Origin")
	for i, f := range tr.Frames {
		if err := table.Append([]string{strconv.Itoa(i + 1), f.Function, frameLocation(f), frameOrigin(f)}); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteLog prints totals, signatures, patterns, and an entry table
func (t *TextWriter) WriteLog(r *LogReport) error {
	log := r.Log
	fmt.Fprintln(t.w, Styles.Header.Render(title(log.FamilyDescription, r.Input)))

	status := StatusText(log.TotalErrors, log.TotalWarnings)
	fmt.Fprintf(t.w, "%s %s", Styles.Label.Render("Status:"), status)
	if r.Demoted {
		fmt.Fprint(t.w, Styles.Muted.Render(" (no stack frames, parsed as log)"))
	}
	fmt.Fprintln(t.w)

	fmt.Fprintf(t.w, "%s %d  %s %s  %s %s  %s %d\n",
		Styles.Label.Render("Entries:"), log.Len(),
		Styles.Label.Render("Errors:"), countStyle(log.TotalErrors, Styles.Danger),
		Styles.Label.Render("Warnings:"), countStyle(log.TotalWarnings, Styles.Warning),
		Styles.Label.Render("Info:"), log.TotalInfo)

	if start, end, ok := log.ChronologicalRange(); ok {
		fmt.Fprintf(t.w, "%s %s to %s\n", Styles.Label.Render("Time range:"),
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	if len(log.ErrorSignatures) > 0 {
		fmt.Fprintln(t.w)
		fmt.Fprintln(t.w, Styles.Label.Render("Error signatures:"))
		for _, sig := range log.ErrorSignatures {
			fmt.Fprintf(t.w, "  %s %s\n", Styles.Danger.Render("•"), sig)
		}
	}
	if len(r.Patterns) > 0 {
		fmt.Fprintln(t.w)
		fmt.Fprintln(t.w, Styles.Label.Render("Patterns:"))
		for _, p := range r.Patterns {
			tag := Styles.Muted.Render("known")
			if p.IsNew {
				tag = Styles.Warning.Render("NEW")
			}
			fmt.Fprintf(t.w, "  [%s] %dx %s\n", tag, p.Count, p.Pattern)
		}
	}
	if len(log.AnomalyPatterns) > 0 {
		fmt.Fprintln(t.w)
		fmt.Fprintln(t.w, Styles.Label.Render("Anomalies:"))
		for _, a := range log.AnomalyPatterns {
			fmt.Fprintf(t.w, "  %s %s\n", Styles.Warning.Render("•"), a)
		}
	}
	fmt.Fprintln(t.w)

	entries, truncated := r.entries()
	table := tablewriter.NewWriter(t.w)
	table.Header("Line", "Time", "Severity", "Source", "Score", "Message")
	for _, e := range entries {
		row := []string{
			strconv.Itoa(e.LineNumber),
			e.Timestamp,
			SeverityIndicator(e.Severity),
			e.Source,
			strconv.FormatFloat(e.RelevanceScore, 'f', 2, 64),
			truncate(e.Message, maxMessageWidth),
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	if truncated > 0 {
		fmt.Fprintln(t.w, Styles.Muted.Render(fmt.Sprintf("... %d more entries", truncated)))
	}
	return nil
}

// WriteDetection prints the classification of one input
func (t *TextWriter) WriteDetection(input string, d pipeline.Detection) error {
	fmt.Fprintln(t.w, Styles.Header.Render(title("Detection", input)))
	fmt.Fprintf(t.w, "%s %s\n", Styles.Label.Render("Envelope:"), Styles.Value.Render(string(d.Envelope)))
	fmt.Fprintf(t.w, "%s %s (%s)\n", Styles.Label.Render("Family:"), Styles.Value.Render(string(d.Family)), d.Family.Description())
	fmt.Fprintf(t.w, "%s %s\n", Styles.Label.Render("Mode:"), Styles.Value.Render(string(d.Mode)))
	fmt.Fprintf(t.w, "%s %s\n", Styles.Label.Render("Language:"), Styles.Value.Render(string(d.Language)))

	scores := make([]string, 0, len(d.Languages))
	for _, s := range d.Languages {
		scores = append(scores, fmt.Sprintf("%s=%d", s.Language, s.Score))
	}
	fmt.Fprintf(t.w, "%s %s\n", Styles.Label.Render("Scores:"), strings.Join(scores, " "))
	return nil
}

// WriteError prints an error with its code and optional hint
func (t *TextWriter) WriteError(code, message, hint string) error {
	fmt.Fprintf(t.w, "%s %s\n", Styles.Danger.Render(fmt.Sprintf("Error [%s]:", code)), message)
	if hint != "" {
		fmt.Fprintf(t.w, "%s %s\n", Styles.Label.Render("Hint:"), hint)
	}
	return nil
}

// WriteWarning prints a warning
func (t *TextWriter) WriteWarning(input, message string) error {
	if input != "" {
		message = input + ": " + message
	}
	fmt.Fprintf(t.w, "%s %s\n", Styles.Warning.Render("Warning:"), message)
	return nil
}

func title(kind, input string) string {
	if input == "" {
		return kind
	}
	return kind + " - " + input
}

func countStyle(n int, style lipgloss.Style) string {
	if n == 0 {
		return "0"
	}
	return style.Render(strconv.Itoa(n))
}

func frameLocation(f domain.StackFrame) string {
	if f.File == "" {
		return ""
	}
	loc := f.File + ":" + strconv.Itoa(f.Line)
	if f.Column > 0 {
		loc += ":" + strconv.Itoa(f.Column)
	}
	return loc
}

func frameOrigin(f domain.StackFrame) string {
	switch {
	case f.IsStdlib:
		return "stdlib"
	case f.IsThirdParty:
		return "third-party"
	default:
		return "app"
	}
}

// truncate shortens s to limit runes and flattens newlines
func truncate(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-3]) + "..."
}
