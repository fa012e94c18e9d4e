// Package nlp is the contextual detector stage: entity extraction and
// linguistic proximity analysis that surfaces credential-bearing sentences
// the regex catalog misses.
package nlp

import (
	"context"
	"strings"

	"github.com/jdkato/prose/v2"

	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/detect"
	"github.com/dorkscan/dorkscan/pkg/finding"
)

// maxTextLen bounds how much text the tokenizer and entity extractor see.
const maxTextLen = 50000

// credentialKeywords are tokens that suggest a nearby secret.
var credentialKeywords = map[string]bool{
	"password": true, "passwd": true, "pwd": true, "secret": true,
	"key": true, "token": true, "api_key": true, "apikey": true,
	"credential": true, "auth": true, "authorization": true,
	"access_token": true, "refresh_token": true, "private_key": true,
	"secret_key": true,
}

// proximityKeywords gate entity findings: an extracted entity only counts
// when one of these appears within defaults.ProximityWindow characters.
var proximityKeywords = []string{"database", "admin", "root", "config"}

// assignmentTokens mark an assignment or copula next to a credential
// keyword ("password is ...", "key: ...").
var assignmentTokens = map[string]bool{"=": true, ":": true, "is": true}

// tokenWindow is how many tokens on each side of a credential keyword are
// searched for an assignment token.
const tokenWindow = 10

// Detector implements detect.Analyzer.
type Detector struct {
	// extract returns named entities in the text. Injected for tests;
	// defaults to the prose NER model.
	extract func(text string) []string
}

// NewDetector creates the contextual detector. The prose model ships with
// the library, so construction cannot fail; per-document errors degrade to
// an empty contribution.
func NewDetector() *Detector {
	return &Detector{extract: proseEntities}
}

// Name implements detect.Analyzer.
func (d *Detector) Name() string { return "contextual" }

// Analyze emits credential-context findings (confidence 0.7) and
// sensitive-organization findings (confidence 0.6), appended after the
// baseline set by the ensemble.
func (d *Detector) Analyze(_ context.Context, content *detect.Content) []finding.Finding {
	if content == nil || content.Text == "" {
		return nil
	}
	text := content.Text
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}

	findings := d.credentialContexts(text)
	findings = append(findings, d.sensitiveEntities(text)...)
	return findings
}

// credentialContexts flags credential keywords with an assignment or
// copula token nearby.
func (d *Detector) credentialContexts(text string) []finding.Finding {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false))
	if err != nil {
		return nil
	}
	tokens := doc.Tokens()

	var findings []finding.Finding
	for i, tok := range tokens {
		if !credentialKeywords[strings.ToLower(tok.Text)] {
			continue
		}
		lo := i - tokenWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + tokenWindow
		if hi > len(tokens) {
			hi = len(tokens)
		}
		for j := lo; j < hi; j++ {
			if j == i || !assignmentTokens[strings.ToLower(tokens[j].Text)] {
				continue
			}
			findings = append(findings, finding.Finding{
				Type:       "credential_context",
				Match:      tok.Text,
				Context:    joinTokens(tokens[lo:hi]),
				Source:     finding.SourceContext,
				Confidence: defaults.AssignmentConfidence,
			})
			break
		}
	}
	return findings
}

// sensitiveEntities flags named entities co-occurring with infrastructure
// keywords inside the proximity window.
func (d *Detector) sensitiveEntities(text string) []finding.Finding {
	var findings []finding.Finding

	for _, entity := range d.extract(text) {
		idx := strings.Index(text, entity)
		if idx < 0 {
			continue
		}
		lo := idx - defaults.ProximityWindow
		if lo < 0 {
			lo = 0
		}
		hi := idx + len(entity) + defaults.ProximityWindow
		if hi > len(text) {
			hi = len(text)
		}
		// Lowercase the window after slicing: case folding can change
		// byte lengths, so offsets into text do not survive ToLower.
		window := strings.ToLower(text[lo:hi])

		for _, kw := range proximityKeywords {
			if strings.Contains(window, kw) {
				findings = append(findings, finding.Finding{
					Type:       "sensitive_organization",
					Match:      entity,
					Context:    window,
					Source:     finding.SourceContext,
					Confidence: defaults.EntityConfidence,
				})
				break
			}
		}
	}
	return findings
}

func joinTokens(tokens []prose.Token) string {
	parts := make([]string, len(tokens))
	for i, tok := range tokens {
		parts[i] = tok.Text
	}
	return strings.Join(parts, " ")
}

func proseEntities(text string) []string {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, ent := range doc.Entities() {
		if !seen[ent.Text] {
			seen[ent.Text] = true
			out = append(out, ent.Text)
		}
	}
	return out
}
