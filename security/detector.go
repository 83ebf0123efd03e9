package security

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

type ThreatKind string

const (
	ThreatBot            ThreatKind = "bot"
	ThreatSQLi           ThreatKind = "sqli"
	ThreatXSS            ThreatKind = "xss"
	ThreatPathTraversal  ThreatKind = "path_traversal"
	ThreatSuspiciousPath ThreatKind = "suspicious_path"

	// not a detector result, but it feeds the suspicion score the same way
	ThreatRateLimited ThreatKind = "rate_limited"
)

// Severe threats are rejected outright; the rest are only scored.
func (k ThreatKind) Severe() bool {
	return k == ThreatSQLi || k == ThreatXSS || k == ThreatPathTraversal
}

type Threat struct {
	Kind   ThreatKind `json:"kind"`
	Source string     `json:"source"` // user_agent, path, query, referer
}

type target int

const (
	targetUserAgent target = iota
	targetPath
	targetInput
	targetRawUri
)

type pattern struct {
	kind   ThreatKind
	target target
	re     *regexp2.Regexp
}

const matchTimeout = 25 * time.Millisecond

var patternDefs = []struct {
	kind   ThreatKind
	target target
	expr   string
}{
	{ThreatBot, targetUserAgent, `\b(sqlmap|nikto|nmap|masscan|zgrab|acunetix|nessus|wpscan|dirbuster|gobuster|ffuf)\b`},

	{ThreatSQLi, targetInput, `\bunion\b[\s(]+(all\s+)?select\b`},
	{ThreatSQLi, targetInput, `'\s*(or|and)\s+'?\d*'?\s*=\s*'?\d*`},
	{ThreatSQLi, targetInput, `\bor\s+1\s*=\s*1\b`},
	{ThreatSQLi, targetInput, `;\s*(drop|truncate|delete|insert|update|alter)\s+`},
	{ThreatSQLi, targetInput, `\b(sleep|benchmark|pg_sleep)\s*\(`},
	{ThreatSQLi, targetInput, `\binformation_schema\b`},

	{ThreatXSS, targetInput, `<\s*script\b`},
	{ThreatXSS, targetInput, `javascript\s*:`},
	{ThreatXSS, targetInput, `\bon(error|load|click|mouseover|focus|submit)\s*=`},
	{ThreatXSS, targetInput, `<\s*(iframe|object|embed|svg)\b`},
	{ThreatXSS, targetInput, `document\.(cookie|location)`},

	{ThreatPathTraversal, targetRawUri, `(\.\.[/\\])|(%2e%2e(%2f|%5c|/))|(%252e%252e)`},
	{ThreatPathTraversal, targetInput, `\.\.[/\\]`},

	{ThreatSuspiciousPath, targetPath, `^/(\.env|\.git|\.aws|\.ds_store|wp-admin|wp-login\.php|xmlrpc\.php|phpmyadmin|server-status|cgi-bin|vendor/phpunit)`},
}

// Detector classifies requests against a fixed set of patterns. Every match runs with a
// timeout; a timed-out match counts as no match.
type Detector struct {
	patterns []pattern
}

func NewDetector() *Detector {
	d := &Detector{}
	for _, def := range patternDefs {
		re := regexp2.MustCompile(def.expr, regexp2.IgnoreCase)
		re.MatchTimeout = matchTimeout
		d.patterns = append(d.patterns, pattern{kind: def.kind, target: def.target, re: re})
	}
	return d
}

// Inspect returns at most one threat per kind.
func (d *Detector) Inspect(r *http.Request) []Threat {
	ua := r.UserAgent()
	path := r.URL.Path
	rawUri := r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		rawUri += "?" + r.URL.RawQuery
	}

	inputs := []struct {
		source string
		value  string
	}{
		{"path", path},
		{"query", decodeQuery(r.URL.RawQuery)},
		{"referer", r.Referer()},
	}

	seen := map[ThreatKind]bool{}
	var threats []Threat

	add := func(kind ThreatKind, source string) {
		if seen[kind] {
			return
		}
		seen[kind] = true
		threats = append(threats, Threat{Kind: kind, Source: source})
	}

	for _, p := range d.patterns {
		if seen[p.kind] {
			continue
		}
		switch p.target {
		case targetUserAgent:
			if d.match(p, ua) {
				add(p.kind, "user_agent")
			}
		case targetPath:
			if d.match(p, path) {
				add(p.kind, "path")
			}
		case targetRawUri:
			if d.match(p, rawUri) {
				add(p.kind, "path")
			}
		case targetInput:
			for _, in := range inputs {
				if in.value != "" && d.match(p, in.value) {
					add(p.kind, in.source)
					break
				}
			}
		}
	}

	return threats
}

func (d *Detector) match(p pattern, s string) bool {
	if s == "" {
		return false
	}
	ok, err := p.re.MatchString(s)
	if err != nil {
		zap.L().Warn("threat pattern match failed", zap.String("kind", string(p.kind)), zap.Error(err))
		return false
	}
	return ok
}

func decodeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return strings.ReplaceAll(raw, "+", " ")
	}
	return decoded
}
