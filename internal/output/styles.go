package output

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vburojevic/tracesift/internal/domain"
)

// Styles holds all lipgloss styles for text output
var Styles = struct {
	// Severity styles
	Debug   lipgloss.Style
	Info    lipgloss.Style
	Default lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Fatal   lipgloss.Style

	// Trace styles
	ErrorType lipgloss.Style
	Location  lipgloss.Style
	Muted     lipgloss.Style

	// Summary styles
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
}{
	Debug:   lipgloss.NewStyle().Foreground(lipgloss.Color("243")),                            // Gray
	Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),                             // Cyan
	Default: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),                            // White
	Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color("214")),                            // Orange
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),                 // Red bold
	Fatal:   lipgloss.NewStyle().Foreground(lipgloss.Color("201")).Bold(true).Underline(true), // Magenta bold underline

	ErrorType: lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	Location:  lipgloss.NewStyle().Foreground(lipgloss.Color("33")), // Blue
	Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),

	Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(lipgloss.Color("239")),
	Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:   lipgloss.NewStyle().Bold(true),
	Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),  // Green
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red
}

// SeverityStyle returns the style for a severity by its priority
func SeverityStyle(sev domain.Severity) lipgloss.Style {
	switch p := sev.Priority(); {
	case sev == "":
		return Styles.Default
	case p >= 6:
		return Styles.Fatal
	case p == 5:
		return Styles.Error
	case p == 4:
		return Styles.Warn
	case p >= 2:
		return Styles.Info
	default:
		return Styles.Debug
	}
}

// SeverityIndicator returns a three letter severity tag
func SeverityIndicator(sev domain.Severity) string {
	switch p := sev.Priority(); {
	case sev == "":
		return "---"
	case p >= 7:
		return "FTL"
	case p == 6:
		return "CRT"
	case p == 5:
		return "ERR"
	case p == 4:
		return "WRN"
	case p >= 2:
		return "INF"
	default:
		return "DBG"
	}
}

// StatusText returns styled status text for a log's error counts
func StatusText(errors, warnings int) string {
	switch {
	case errors > 0:
		return Styles.Danger.Render("ERRORS DETECTED")
	case warnings > 0:
		return Styles.Warning.Render("WARNINGS DETECTED")
	default:
		return Styles.Success.Render("OK")
	}
}
