package logparse

import (
	"testing"

	"github.com/vburojevic/tracesift/internal/domain"
)

func FuzzParse(f *testing.F) {
	for _, name := range []string{"syslog.log", "nginx_access.log", "docker.log", "app.jsonl"} {
		f.Add(readFixture(f, name))
	}
	f.Add([]byte("<999>x: y"))
	f.Add([]byte("2024-01-01T00:00:00Z [ERROR"))
	f.Add([]byte("{\"level\":1}\n\n\r\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		log := Parse(data, domain.FamilyUnknown)
		Score(log)
		Annotate(log)

		counted := 0
		for _, e := range log.Entries {
			if e.RelevanceScore < 0 || e.RelevanceScore > 1 {
				t.Fatalf("score out of range: %v", e.RelevanceScore)
			}
			if e.LineNumber < 1 {
				t.Fatalf("line number %d", e.LineNumber)
			}
			if e.IsError {
				counted++
			}
		}
		if counted != log.TotalErrors {
			t.Fatalf("TotalErrors %d, counted %d", log.TotalErrors, counted)
		}
	})
}
