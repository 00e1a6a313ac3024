package logparse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/vburojevic/tracesift/internal/extract"
	"github.com/vburojevic/tracesift/internal/textutil"
)

// lineFields is what a line parser recovers from one line
type lineFields struct {
	timestamp string
	severity  string
	message   string
	source    string
	metadata  json.RawMessage
	traceText string
}

// lineParser returns false when the line does not have its shape
type lineParser func(line string) (lineFields, bool)

// syslogLevels maps the low three bits of a <PRI> value to a severity
var syslogLevels = [8]string{"EMERG", "ALERT", "CRITICAL", "ERROR", "WARNING", "NOTICE", "INFO", "DEBUG"}

// parseSyslogLine reads `<PRI>Mmm dd hh:mm:ss host tag[pid]: message`.
// The priority and BSD timestamp are optional; without a BSD timestamp the
// first space-delimited token (at most 30 bytes) is taken as the timestamp.
func parseSyslogLine(line string) (lineFields, bool) {
	if len(line) < 10 {
		return lineFields{}, false
	}
	var f lineFields
	p := line
	if p[0] == '<' {
		if end := strings.IndexByte(p, '>'); end > 1 {
			if pri, err := strconv.Atoi(p[1:end]); err == nil && pri >= 0 {
				f.severity = syslogLevels[pri&7]
				p = p[end+1:]
			}
		}
	}

	colon := strings.Index(p, ": ")
	if colon < 0 {
		return lineFields{}, false
	}
	head := p[:colon]
	f.message = p[colon+2:]

	if isBSDTimestamp(head) {
		f.timestamp = head[:15]
		f.source = strings.TrimSpace(head[15:])
	} else if space := strings.IndexByte(head, ' '); space >= 0 {
		f.timestamp = head[:min(space, 30)]
		f.source = head[space+1:]
	}
	return f, true
}

// isBSDTimestamp matches "Jan  2 15:04:05" at the start of s
func isBSDTimestamp(s string) bool {
	return len(s) >= 15 &&
		isLetter(s[0]) && isLetter(s[1]) && isLetter(s[2]) && s[3] == ' ' &&
		s[6] == ' ' && s[9] == ':' && s[12] == ':'
}

var (
	jsonTimestampKeys = []string{"timestamp", "time", "@timestamp", "ts", "datetime", "date"}
	jsonSeverityKeys  = []string{"level", "severity", "loglevel", "log_level", "lvl"}
	jsonMessageKeys   = []string{"message", "msg", "@message", "text", "log"}
	jsonSourceKeys    = []string{"source", "logger", "service", "component", "name"}
)

// parseJSONLine reads one JSON object. Objects without a message key have
// their compact form used as the message. The object is kept as metadata.
func parseJSONLine(line string) (lineFields, bool) {
	if !gjson.Valid(line) {
		return lineFields{}, false
	}
	obj := gjson.Parse(line)
	if !obj.IsObject() {
		return lineFields{}, false
	}
	compact := obj.Get("@ugly").Raw

	f := lineFields{
		timestamp: firstString(obj, jsonTimestampKeys),
		severity:  firstString(obj, jsonSeverityKeys),
		message:   firstString(obj, jsonMessageKeys),
		source:    firstString(obj, jsonSourceKeys),
		metadata:  json.RawMessage(compact),
	}
	if f.message == "" {
		f.message = compact
	}
	if text, ok := extract.FindTraceText(obj, extract.GCPFields()); ok {
		f.traceText = text
	}
	return f, true
}

func firstString(obj gjson.Result, keys []string) string {
	for _, k := range keys {
		if v := obj.Get(gjson.Escape(k)); v.Type == gjson.String {
			return v.Str
		}
	}
	return ""
}

// genericLevels are tried in order; WARN precedes WARNING so "[WARNING]"
// only matches the longer token.
var genericLevels = []string{"ERROR", "WARN", "WARNING", "INFO", "DEBUG", "FATAL", "CRITICAL", "TRACE", "NOTICE"}

// parseGenericLine reads an optional ISO-8601 timestamp, an optional
// `[LEVEL]` or `LEVEL:` token, and treats the rest as the message.
func parseGenericLine(line string) (lineFields, bool) {
	if len(line) < 3 {
		return lineFields{}, false
	}
	var f lineFields
	p := line

	if isISOTimestamp(p) {
		end := 19
		for end < len(p) && isTimestampTail(p[end]) {
			end++
		}
		f.timestamp = p[:end]
		p = strings.TrimLeft(p[end:], " ")
	}

	f.severity, p = cutLevel(p)
	if p == "" {
		return lineFields{}, false
	}
	f.message = p
	return f, true
}

func isISOTimestamp(p string) bool {
	return len(p) > 19 && p[4] == '-' && p[7] == '-' && (p[10] == 'T' || p[10] == ' ') && p[13] == ':'
}

// isTimestampTail accepts fractional seconds and zone suffixes
func isTimestampTail(c byte) bool {
	return (c >= '0' && c <= '9') || c == 'Z' || c == '+' || c == '-' || c == '.' || c == ':' || c == ','
}

// cutLevel strips a leading severity token and returns it upper-cased
func cutLevel(p string) (string, string) {
	for _, lvl := range genericLevels {
		n := len(lvl)
		if strings.HasPrefix(p, "[") {
			if len(p) > n+1 && textutil.HasPrefixFold(p[1:], lvl) && p[n+1] == ']' {
				return lvl, strings.TrimLeft(p[n+2:], " \t")
			}
			continue
		}
		if len(p) > n && textutil.HasPrefixFold(p, lvl) && (p[n] == ':' || p[n] == ' ' || p[n] == '\t') {
			rest := p[n:]
			rest = strings.TrimPrefix(rest, ":")
			return lvl, strings.TrimLeft(rest, " \t")
		}
	}
	return "", p
}

var (
	accessLineRegex  = regexp.MustCompile(`^(\S+) \S+ \S+ \[([^\]]+)\] "([^"]*)" (\d{3}) (\S+)`)
	nginxErrorRegex  = regexp.MustCompile(`^(\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}) \[(\w+)\] (.*)$`)
	nginxErrorLevels  = map[string]string{"emerg": "EMERG", "alert": "ALERT", "crit": "CRITICAL", "error": "ERROR", "warn": "WARN", "notice": "NOTICE", "info": "INFO", "debug": "DEBUG"}
)

// parseAccessLine reads nginx/apache combined access lines and nginx
// error-log lines. Access severity comes from the status class.
func parseAccessLine(line string) (lineFields, bool) {
	if m := accessLineRegex.FindStringSubmatch(line); m != nil {
		return lineFields{
			timestamp: m[2],
			severity:  statusSeverity(m[4]),
			message:   m[3] + " " + m[4] + " " + m[5],
			source:    m[1],
		}, true
	}
	if m := nginxErrorRegex.FindStringSubmatch(line); m != nil {
		sev, ok := nginxErrorLevels[strings.ToLower(m[2])]
		if !ok {
			sev = strings.ToUpper(m[2])
		}
		return lineFields{timestamp: m[1], severity: sev, message: m[3], source: "nginx"}, true
	}
	return lineFields{}, false
}

func statusSeverity(status string) string {
	switch status[0] {
	case '5':
		return "ERROR"
	case '4':
		return "WARN"
	default:
		return "INFO"
	}
}

// parseDockerLine reads `<timestamp> stdout|stderr [F|P] message`. The
// message is run through the generic parser for a severity token; stderr
// output without one counts as a warning.
func parseDockerLine(line string) (lineFields, bool) {
	stream, at, ok := dockerStream(line)
	if !ok {
		return lineFields{}, false
	}
	rest := line[at+8:]
	if len(rest) > 2 && (rest[0] == 'F' || rest[0] == 'P') && rest[1] == ' ' {
		rest = rest[2:]
	}
	f := lineFields{timestamp: line[:at], source: stream, message: rest}
	if inner, ok := parseGenericLine(rest); ok {
		f.severity = inner.severity
		f.message = inner.message
	}
	if f.severity == "" && stream == "stderr" {
		f.severity = "WARN"
	}
	return f, true
}
