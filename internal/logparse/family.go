// Package logparse classifies generic logs by family, parses their lines
// into entries, and scores entries for relevance.
package logparse

import (
	"strings"

	"github.com/vburojevic/tracesift/internal/domain"
	"github.com/vburojevic/tracesift/internal/textutil"
	"github.com/vburojevic/tracesift/internal/trace"
)

const maxSampleLines = 20

// familyRule counts sample lines matching a shape. The family wins when the
// count exceeds sample/divisor.
type familyRule struct {
	family  domain.LogFamily
	match   func(line string) bool
	divisor int
}

// familyRules are evaluated in order; the first winner is returned.
var familyRules = []familyRule{
	{domain.FamilyJSONStructured, looksLikeJSONLine, 2},
	{domain.FamilyNginx, looksLikeAccessLine, 2},
	{domain.FamilySyslog, looksLikeSyslogLine, 2},
	{domain.FamilyDocker, looksLikeDockerLine, 3},
}

var kubernetesKeywords = []string{"kube-", "pod/", "namespace=", "kubernetes"}

// DetectFamily guesses the log family of buf. Stack-trace signatures win
// over any line shape so a trace inside a generic log is still recognized.
func DetectFamily(buf []byte) domain.LogFamily {
	content := string(buf)
	if content == "" {
		return domain.FamilyUnknown
	}
	if trace.HasTracePatterns(content) {
		return domain.FamilyStackTrace
	}

	counts := make([]int, len(familyRules))
	sample := 0
	for _, line := range textutil.Lines(content) {
		if sample >= maxSampleLines {
			break
		}
		if line.Text == "" {
			continue
		}
		for i, rule := range familyRules {
			if rule.match(line.Text) {
				counts[i]++
			}
		}
		sample++
	}
	if sample == 0 {
		return domain.FamilyUnknown
	}

	for i, rule := range familyRules {
		if counts[i] > sample/rule.divisor {
			return rule.family
		}
	}
	if textutil.ContainsAny(content, kubernetesKeywords...) {
		return domain.FamilyKubernetes
	}
	return domain.FamilyCustom
}

func looksLikeJSONLine(line string) bool {
	return len(line) > 2 && line[0] == '{'
}

// looksLikeAccessLine approximates `1.2.3.4 - - [ts] "GET / HTTP/1.1"`:
// a bracket before the first quote, with a dot before the bracket.
func looksLikeAccessLine(line string) bool {
	if len(line) <= 20 {
		return false
	}
	bracket := strings.IndexByte(line, '[')
	quote := strings.IndexByte(line, '"')
	if bracket < 0 || quote < 0 || bracket > quote {
		return false
	}
	return strings.IndexByte(line[:bracket], '.') >= 0
}

func looksLikeSyslogLine(line string) bool {
	if len(line) <= 15 {
		return false
	}
	lead := line[0] == '<' || (isLetter(line[0]) && isLetter(line[1]) && isLetter(line[2]) && line[3] == ' ')
	return lead && strings.Contains(line, ": ")
}

// looksLikeDockerLine matches `<RFC3339 timestamp> stdout|stderr ...` or
// lines mentioning docker or containers.
func looksLikeDockerLine(line string) bool {
	if len(line) <= 30 {
		return false
	}
	if _, _, ok := dockerStream(line); ok {
		return true
	}
	return strings.Contains(line, "docker") || strings.Contains(line, "container")
}

// dockerStream finds " stdout " or " stderr " right after a leading
// timestamp. The stream marker sits at byte 23 for millisecond timestamps
// and a few bytes either side for other precisions.
func dockerStream(line string) (stream string, at int, ok bool) {
	for i := 19; i <= 36 && i+8 <= len(line); i++ {
		switch line[i : i+8] {
		case " stdout ":
			return "stdout", i, true
		case " stderr ":
			return "stderr", i, true
		}
	}
	return "", 0, false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
