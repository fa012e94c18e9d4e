// Package finding defines the canonical finding and scan result types shared
// by the detector ensemble, the risk scorer, and the orchestrator.
package finding

// Source identifies which ensemble stage produced a finding.
type Source string

const (
	// SourcePattern marks findings emitted by the baseline regex detector.
	SourcePattern Source = "pattern"

	// SourceContext marks findings emitted by the contextual (NLP) detector.
	SourceContext Source = "context"

	// SourceML marks enrichment attached by the threat classifier.
	SourceML Source = "ml"

	// SourceVision marks findings emitted by the visual detector.
	SourceVision Source = "vision"
)

// Severity is the classifier-assigned severity of a single finding.
// Distinct from RiskLevel, which grades a whole URL.
type Severity string

const (
	SeverityLow     Severity = "LOW"
	SeverityMedium  Severity = "MEDIUM"
	SeverityHigh    Severity = "HIGH"
	SeverityUnknown Severity = "UNKNOWN"
)

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityUnknown:
		return true
	}
	return false
}

// Finding is one detected indicator of sensitive exposure within fetched
// content. Type, Match, Context, Source and the initial Confidence are set
// once by the emitting stage; later ensemble stages may attach enrichment
// fields (Severity, MLConfidence, ContextVerified, MLLabel) and adjust
// Confidence, but never change Type or Match.
type Finding struct {
	Type       string  `json:"type"`
	Match      string  `json:"match"`
	Context    string  `json:"context"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`

	// Enrichment fields attached by the threat classifier. ContextVerified
	// is a pointer so "never classified" is distinguishable from "verified
	// false"; the scorer only discounts the latter.
	Severity        Severity `json:"severity,omitempty"`
	MLConfidence    float64  `json:"ml_confidence,omitempty"`
	MLLabel         string   `json:"ml_label,omitempty"`
	ContextVerified *bool    `json:"context_verified,omitempty"`
}

// Verified reports whether the classifier confirmed this finding's context.
// Returns true when the finding was never classified, so unenriched
// findings are not discounted.
func (f *Finding) Verified() bool {
	return f.ContextVerified == nil || *f.ContextVerified
}

// RiskLevel is the coarse per-URL risk bucket derived from the numeric
// risk score.
type RiskLevel string

const (
	RiskNone   RiskLevel = "NONE"
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ScanResult holds the outcome of analyzing one successfully fetched URL.
// Immutable after creation.
type ScanResult struct {
	URL       string    `json:"url"`
	Findings  []Finding `json:"findings"`
	RiskScore int       `json:"risk_score"`
	RiskLevel RiskLevel `json:"risk_level"`
}
