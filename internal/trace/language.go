package trace

import (
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
)

const maxLanguageScore = 100

type weightedPattern struct {
	needle string
	weight int
}

var languageSignatures = map[domain.Language][]weightedPattern{
	domain.LanguagePython: {
		{"Traceback (most recent call last)", 50},
		{`File "`, 20},
		{`.py", line`, 30},
		{"ModuleNotFoundError", 20},
		{"ImportError", 15},
		{"AttributeError", 15},
		{"KeyError", 15},
	},
	domain.LanguageGo: {
		{"panic:", 40},
		{"goroutine ", 30},
		{".go:", 20},
		{"+0x", 10},
		{"runtime.", 15},
	},
	domain.LanguageNode: {
		{"    at ", 25},
		{".js:", 20},
		{".ts:", 20},
		{"TypeError:", 20},
		{"ReferenceError:", 20},
		{"SyntaxError:", 15},
		{"node_modules", 10},
	},
}

// ScoreLanguages scores text against each supported language. Scores are
// additive per matched signature and capped at 100.
func ScoreLanguages(text string) []domain.LanguageScore {
	scores := make([]domain.LanguageScore, len(domain.Languages))
	for i, lang := range domain.Languages {
		score := 0
		for _, p := range languageSignatures[lang] {
			if strings.Contains(text, p.needle) {
				score += p.weight
			}
		}
		scores[i] = domain.LanguageScore{Language: lang, Score: min(score, maxLanguageScore)}
	}
	return scores
}

// DetectLanguage returns the highest scoring language. Ties go to the
// earlier language in domain.Languages; all-zero scores give Unknown.
func DetectLanguage(text string) domain.Language {
	best := domain.LanguageScore{Language: domain.LanguageUnknown}
	for _, s := range ScoreLanguages(text) {
		if s.Score > best.Score {
			best = s
		}
	}
	return best.Language
}
