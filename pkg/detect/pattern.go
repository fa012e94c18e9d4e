package detect

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/finding"
)

// Pattern is one entry of the baseline detection catalog.
type Pattern struct {
	Type  string
	Regex *regexp.Regexp
}

// PatternDetector is the always-on baseline stage. It scans text against a
// fixed catalog of category patterns and emits one finding per
// non-overlapping, case-insensitive match.
type PatternDetector struct {
	patterns []Pattern
}

// NewPatternDetector compiles the catalog.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{patterns: compileCatalog()}
}

func compileCatalog() []Pattern {
	return []Pattern{
		{Type: "email", Regex: regexp.MustCompile(`(?i)[a-zA-Z0-9._%+-]+@(?:[a-zA-Z0-9-]+\.)+[a-zA-Z]{2,}`)},
		{Type: "aws_key", Regex: regexp.MustCompile(`(?i)AKIA[0-9A-Z]{16}`)},
		{Type: "google_api_key", Regex: regexp.MustCompile(`(?i)AIza[0-9A-Za-z\-_]{35}`)},
		{Type: "github_token", Regex: regexp.MustCompile(`(?i)ghp_[a-zA-Z0-9]{36}`)},
		{Type: "openai_key", Regex: regexp.MustCompile(`(?i)sk-[a-zA-Z0-9]{48}`)},
		{Type: "private_key", Regex: regexp.MustCompile(`(?i)-----BEGIN (?:RSA |EC |DSA | )PRIVATE KEY-----`)},
		{Type: "sql_dump", Regex: regexp.MustCompile(`(?i)CREATE TABLE|INSERT INTO|DROP TABLE`)},
		{Type: "password_alike", Regex: regexp.MustCompile(`(?i)(?:password|pwd|secret|auth_token)\s*[:=]\s*["']?([a-zA-Z0-9_@#$%^&+=]{4,})["']?`)},
		{Type: "env_exposure", Regex: regexp.MustCompile(`(?i)(?:DB_PASSWORD|AWS_SECRET_ACCESS_KEY|STRIPE_KEY)\s*=`)},
	}
}

// Types returns the catalog's finding types in scan order.
func (d *PatternDetector) Types() []string {
	out := make([]string, len(d.patterns))
	for i, p := range d.patterns {
		out[i] = p.Type
	}
	return out
}

// Detect scans text against the catalog. Matches within one pattern are
// non-overlapping; each finding carries the literal match and a bounded
// context snippet. Confidence is 1.0 for every baseline finding.
func (d *PatternDetector) Detect(text string) []finding.Finding {
	findings := []finding.Finding{}
	if text == "" {
		return findings
	}

	for _, p := range d.patterns {
		for _, loc := range p.Regex.FindAllStringIndex(text, -1) {
			findings = append(findings, finding.Finding{
				Type:       p.Type,
				Match:      text[loc[0]:loc[1]],
				Context:    Snippet(text, loc[0], loc[1]),
				Source:     finding.SourcePattern,
				Confidence: defaults.PatternConfidence,
			})
		}
	}
	return findings
}

// Snippet extracts a context window of defaults.ContextWindow bytes on
// each side of text[start:end] (fewer at the string boundaries), widened
// to rune boundaries, with newlines collapsed to spaces and the result
// wrapped in ellipses.
func Snippet(text string, start, end int) string {
	lo := start - defaults.ContextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + defaults.ContextWindow
	if hi > len(text) {
		hi = len(text)
	}
	for lo > 0 && !utf8.RuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	window := strings.NewReplacer("\n", " ", "\r", " ").Replace(text[lo:hi])
	return "..." + strings.TrimSpace(window) + "..."
}
