package domain

import "strings"

// EnvelopeFormat is the outer serialization wrapping a log or trace payload
type EnvelopeFormat string

const (
	EnvelopeAuto      EnvelopeFormat = "auto"
	EnvelopeRaw       EnvelopeFormat = "raw"
	EnvelopeJSONLines EnvelopeFormat = "json"
	EnvelopeJSONArray EnvelopeFormat = "json-array"
	EnvelopeCSV       EnvelopeFormat = "csv"
	EnvelopeTSV       EnvelopeFormat = "tsv"
)

// ParseEnvelopeFormat converts a user-supplied name to an EnvelopeFormat.
// Unknown names map to EnvelopeAuto.
func ParseEnvelopeFormat(s string) EnvelopeFormat {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "raw", "text":
		return EnvelopeRaw
	case "json", "jsonl", "ndjson", "json-lines":
		return EnvelopeJSONLines
	case "json-array", "array":
		return EnvelopeJSONArray
	case "csv":
		return EnvelopeCSV
	case "tsv":
		return EnvelopeTSV
	default:
		return EnvelopeAuto
	}
}

// Language is a source language with a supported trace parser
type Language string

const (
	LanguageUnknown Language = "unknown"
	LanguagePython  Language = "python"
	LanguageGo      Language = "go"
	LanguageNode    Language = "node"
)

// Languages lists the supported languages in tie-break order.
var Languages = []Language{LanguagePython, LanguageGo, LanguageNode}

// ParseLanguage converts a user-supplied hint to a Language
func ParseLanguage(s string) Language {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "python", "py":
		return LanguagePython
	case "go", "golang":
		return LanguageGo
	case "node", "nodejs", "javascript", "js", "typescript", "ts":
		return LanguageNode
	default:
		return LanguageUnknown
	}
}

// LanguageScore is the weighted signature score of one language (0-100)
type LanguageScore struct {
	Language Language `json:"language"`
	Score    int      `json:"score"`
}

// LogFamily is a coarse classification of where a generic log came from
type LogFamily string

const (
	FamilyUnknown        LogFamily = "unknown"
	FamilyStackTrace     LogFamily = "stack-trace"
	FamilyNginx          LogFamily = "nginx"
	FamilyApache         LogFamily = "apache"
	FamilySyslog         LogFamily = "syslog"
	FamilyDocker         LogFamily = "docker"
	FamilyKubernetes     LogFamily = "kubernetes"
	FamilyJSONStructured LogFamily = "json-structured"
	FamilyCustom         LogFamily = "custom"
)

var familyDescriptions = map[LogFamily]string{
	FamilyUnknown:        "Unknown format",
	FamilyStackTrace:     "Stack trace",
	FamilyNginx:          "Nginx access/error log",
	FamilyApache:         "Apache access/error log",
	FamilySyslog:         "Syslog (RFC 3164/5424)",
	FamilyDocker:         "Docker container log",
	FamilyKubernetes:     "Kubernetes pod log",
	FamilyJSONStructured: "JSON structured log",
	FamilyCustom:         "Custom application log",
}

// Description returns a human readable name for the family
func (f LogFamily) Description() string {
	if d, ok := familyDescriptions[f]; ok {
		return d
	}
	return familyDescriptions[FamilyUnknown]
}

// ParseLogFamily converts a family name to a LogFamily
func ParseLogFamily(s string) LogFamily {
	f := LogFamily(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := familyDescriptions[f]; ok {
		return f
	}
	switch f {
	case "json":
		return FamilyJSONStructured
	case "k8s":
		return FamilyKubernetes
	case "trace", "stacktrace":
		return FamilyStackTrace
	}
	return FamilyUnknown
}

// AnalysisMode is the dispatcher's choice between the two output models
type AnalysisMode string

const (
	ModeAuto       AnalysisMode = "auto"
	ModeStackTrace AnalysisMode = "stack-trace"
	ModeGenericLog AnalysisMode = "generic-log"
)

// ParseAnalysisMode converts a user-supplied mode name to an AnalysisMode
func ParseAnalysisMode(s string) AnalysisMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "stack-trace", "stacktrace":
		return ModeStackTrace
	case "log", "generic", "generic-log":
		return ModeGenericLog
	default:
		return ModeAuto
	}
}
