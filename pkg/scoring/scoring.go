// Package scoring converts a finding list into a confidence-weighted risk
// score and a discrete risk level.
package scoring

import (
	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/finding"
)

// Weights maps a finding type to its score weight. Types absent from the
// map use defaults.DefaultWeight.
type Weights map[string]float64

// Thresholds are the score cut-offs for the risk levels.
type Thresholds struct {
	High   int `json:"high" yaml:"high"`
	Medium int `json:"medium" yaml:"medium"`
}

// DefaultThresholds returns the fixed default level mapping (75/40).
func DefaultThresholds() Thresholds {
	return Thresholds{High: defaults.ThresholdHigh, Medium: defaults.ThresholdMedium}
}

// DefaultWeights returns the baseline catalog weights.
func DefaultWeights() Weights {
	return Weights{
		"email":          10,
		"aws_key":        40,
		"google_api_key": 35,
		"github_token":   40,
		"openai_key":     35,
		"private_key":    50,
		"sql_dump":       30,
		"password_alike": 25,
		"env_exposure":   45,
		"visual_exposure": 30,
	}
}

// Scorer holds a fixed scoring configuration.
type Scorer struct {
	Weights    Weights
	MaxScore   int
	Thresholds Thresholds
}

// New creates a scorer. Zero or missing values fall back to defaults.
func New(weights Weights, maxScore int) *Scorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	if maxScore <= 0 {
		maxScore = defaults.MaxRiskScore
	}
	return &Scorer{Weights: weights, MaxScore: maxScore, Thresholds: DefaultThresholds()}
}

// Score accumulates weight * effective confidence over all findings,
// clips to [0, MaxScore] and truncates to an integer.
//
// Effective confidence applies two independent discount multipliers:
// classifier severity LOW halves it, and a context the classifier failed
// to verify multiplies it by 0.3. The score is monotonic non-decreasing in
// any finding's weight or confidence.
func (s *Scorer) Score(findings []finding.Finding) (int, finding.RiskLevel) {
	total := 0.0
	for i := range findings {
		f := &findings[i]

		weight, ok := s.Weights[f.Type]
		if !ok {
			weight = defaults.DefaultWeight
		}

		confidence := f.Confidence
		if f.Severity == finding.SeverityLow {
			confidence *= defaults.LowSeverityDiscount
		}
		if !f.Verified() {
			confidence *= defaults.UnverifiedDiscount
		}

		total += weight * confidence
	}

	if total < 0 {
		total = 0
	}
	if total > float64(s.MaxScore) {
		total = float64(s.MaxScore)
	}
	score := int(total)
	return score, s.Level(score)
}

// Level maps a score to its risk bucket. Pure and deterministic for fixed
// thresholds.
func (s *Scorer) Level(score int) finding.RiskLevel {
	switch {
	case score >= s.Thresholds.High:
		return finding.RiskHigh
	case score >= s.Thresholds.Medium:
		return finding.RiskMedium
	case score > 0:
		return finding.RiskLow
	default:
		return finding.RiskNone
	}
}

// Score is the package-level convenience form using default thresholds.
func Score(findings []finding.Finding, weights Weights, maxScore int) (int, finding.RiskLevel) {
	return New(weights, maxScore).Score(findings)
}
