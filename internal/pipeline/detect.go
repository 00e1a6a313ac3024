package pipeline

import (
	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/envelope"
	"github.com/vburojevic/tracesift/internal/logparse"
	"github.com/vburojevic/tracesift/internal/trace"
)

// Detection reports what the classifiers see in a buffer without parsing it
type Detection struct {
	Envelope  domain.EnvelopeFormat  `json:"envelope"`
	Family    domain.LogFamily       `json:"family"`
	Mode      domain.AnalysisMode    `json:"mode"`
	Language  domain.Language        `json:"language"`
	Languages []domain.LanguageScore `json:"languages"`
}

// Detect runs the envelope, family and language classifiers on buf. The
// language scores are computed over the extracted trace text when the
// buffer is structured.
func (p *Pipeline) Detect(buf []byte) Detection {
	d := Detection{
		Envelope: envelope.Resolve(buf, p.format),
		Family:   logparse.DetectFamily(buf),
		Mode:     domain.ModeGenericLog,
	}
	if d.Family == domain.FamilyStackTrace {
		d.Mode = domain.ModeStackTrace
	}

	text := string(buf)
	if d.Envelope != domain.EnvelopeRaw {
		text = p.extractor.TraceText(buf, d.Envelope)
	}
	d.Languages = trace.ScoreLanguages(text)
	d.Language = p.language
	if d.Language == "" || d.Language == domain.LanguageUnknown {
		d.Language = trace.DetectLanguage(text)
	}
	return d
}
