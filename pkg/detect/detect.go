// Package detect composes the detector ensemble that turns fetched page
// content into typed findings.
//
// The ensemble runs a fixed stage order: the baseline pattern detector
// (always on), the contextual detector, the threat classifier, and the
// visual detector. Optional stages are explicit no-op variants when
// disabled; a stage failure never discards what earlier stages produced.
package detect

import (
	"context"

	"github.com/dorkscan/dorkscan/pkg/finding"
)

// Content is the fetched material handed to the ensemble for one URL.
type Content struct {
	URL        string `json:"url"`
	HTML       string `json:"html"`
	Text       string `json:"text"`
	Screenshot []byte `json:"screenshot,omitempty"`
}

// Analyzer is an ensemble stage that emits additional findings.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, content *Content) []finding.Finding
}

// Enricher is an ensemble stage that mutates existing findings in place,
// attaching severity and confidence metadata. It never appends.
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, content *Content, findings []finding.Finding)
}

// Options selects the optional ensemble stages. A nil field means the stage
// is disabled and is replaced with an explicit no-op variant.
type Options struct {
	Contextual Analyzer
	Classifier Enricher
	Visual     Analyzer
}

// Ensemble is the ordered set of detector stages for one page's content.
type Ensemble struct {
	baseline   *PatternDetector
	contextual Analyzer
	classifier Enricher
	visual     Analyzer
}

// NewEnsemble builds an ensemble with the baseline detector plus the given
// optional stages.
func NewEnsemble(opts Options) *Ensemble {
	e := &Ensemble{
		baseline:   NewPatternDetector(),
		contextual: opts.Contextual,
		classifier: opts.Classifier,
		visual:     opts.Visual,
	}
	if e.contextual == nil {
		e.contextual = NoopAnalyzer("contextual")
	}
	if e.classifier == nil {
		e.classifier = NoopEnricher("classifier")
	}
	if e.visual == nil {
		e.visual = NoopAnalyzer("visual")
	}
	return e
}

// Analyze runs every stage in order and returns the accumulated findings.
// It never panics; empty content yields an empty list. The baseline seed
// set survives any later stage failing or misbehaving.
func (e *Ensemble) Analyze(ctx context.Context, content *Content) []finding.Finding {
	if content == nil || (content.Text == "" && len(content.Screenshot) == 0) {
		return []finding.Finding{}
	}

	findings := e.baseline.Detect(content.Text)
	findings = append(findings, safeAnalyze(ctx, e.contextual, content)...)
	safeEnrich(ctx, e.classifier, content, findings)
	findings = append(findings, safeAnalyze(ctx, e.visual, content)...)
	return findings
}

// safeAnalyze isolates a stage: a panic inside it is swallowed and the
// stage contributes nothing.
func safeAnalyze(ctx context.Context, a Analyzer, content *Content) (out []finding.Finding) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
		}
	}()
	return a.Analyze(ctx, content)
}

func safeEnrich(ctx context.Context, e Enricher, content *Content, findings []finding.Finding) {
	defer func() {
		_ = recover()
	}()
	e.Enrich(ctx, content, findings)
}

type noopAnalyzer string

func (n noopAnalyzer) Name() string { return string(n) }
func (n noopAnalyzer) Analyze(context.Context, *Content) []finding.Finding {
	return nil
}

type noopEnricher string

func (n noopEnricher) Name() string                                          { return string(n) }
func (n noopEnricher) Enrich(context.Context, *Content, []finding.Finding) {}

// NoopAnalyzer returns a disabled analyzer stage with the given name.
func NoopAnalyzer(name string) Analyzer { return noopAnalyzer(name) }

// NoopEnricher returns a disabled enricher stage with the given name.
func NoopEnricher(name string) Enricher { return noopEnricher(name) }
