// Package defaults provides canonical default values for the entire codebase.
// This is the single source of truth for runtime configuration defaults.
//
// Usage:
//
//	cfg.Scoring.MaxScore = defaults.MaxRiskScore
//	window := defaults.ContextWindow
//
// Do not hardcode values like `MaxScore: 100` elsewhere; reference the
// appropriate constant from this package.
package defaults

import "time"

// Version is the current dorkscan version
const Version = "1.2.0"

// ============================================================================
// DETECTION SETTINGS
// ============================================================================

const (
	// ContextWindow is the number of characters captured on each side of a
	// pattern match when building the finding context snippet (50)
	ContextWindow = 50

	// ProximityWindow is the character radius used by the contextual
	// detector when checking entity/keyword co-occurrence (100)
	ProximityWindow = 100

	// PatternConfidence is the confidence assigned to baseline regex
	// findings (1.0)
	PatternConfidence = 1.0

	// EntityConfidence is the confidence for entity-based contextual
	// findings (0.6)
	EntityConfidence = 0.6

	// AssignmentConfidence is the confidence for keyword+assignment
	// proximity findings (0.7)
	AssignmentConfidence = 0.7

	// VisionConfidence is the confidence for screenshot-classified visual
	// exposures (0.8)
	VisionConfidence = 0.8

	// VisionHeuristicConfidence is the confidence when the visual detector
	// falls back to text keywords (0.4)
	VisionHeuristicConfidence = 0.4

	// ClassifierLabelFloor is the minimum classification score retained as
	// document metadata (0.3)
	ClassifierLabelFloor = 0.3

	// ClassifierVerifyFloor is the minimum top-label confidence for a
	// finding to count as context-verified (0.5)
	ClassifierVerifyFloor = 0.5

	// ClassifierSampleLen is how many characters of a document are sent to
	// the classifier (500)
	ClassifierSampleLen = 500
)

// ============================================================================
// SCORING SETTINGS
// ============================================================================

const (
	// MaxRiskScore caps the accumulated risk score per URL (100)
	MaxRiskScore = 100

	// DefaultWeight applies to finding types absent from the weight map (10)
	DefaultWeight = 10

	// ThresholdHigh is the minimum score for risk level HIGH (75)
	ThresholdHigh = 75

	// ThresholdMedium is the minimum score for risk level MEDIUM (40)
	ThresholdMedium = 40

	// LowSeverityDiscount multiplies confidence when the classifier marked
	// a finding LOW severity (0.5)
	LowSeverityDiscount = 0.5

	// UnverifiedDiscount multiplies confidence when the classifier could
	// not verify the finding's context (0.3)
	UnverifiedDiscount = 0.3
)

// ============================================================================
// FETCH / SEARCH SETTINGS
// ============================================================================

const (
	// FetchTimeout is the per-page browser navigation timeout (10s)
	FetchTimeout = 10 * time.Second

	// RateLimitDelay is the politeness delay between consecutive page
	// fetches (2s)
	RateLimitDelay = 2 * time.Second

	// ViewportWidth and ViewportHeight size the headless browser window
	ViewportWidth  = 1280
	ViewportHeight = 800

	// MaxResultsPerDork bounds search results per dork query (10)
	MaxResultsPerDork = 10

	// SearchTimeout is the per-query search API timeout (15s)
	SearchTimeout = 15 * time.Second

	// OSINTTimeout is the Shodan host lookup timeout (20s)
	OSINTTimeout = 20 * time.Second

	// ClassifierTimeout is the per-call inference API timeout (30s)
	ClassifierTimeout = 30 * time.Second
)

// HighRiskPorts are service ports flagged as high-risk exposures when found
// open during the OSINT footprint scan.
var HighRiskPorts = []int{3306, 5432, 27017, 6379, 21, 22, 23, 445, 3389}

// IsHighRiskPort reports whether the port is in HighRiskPorts.
func IsHighRiskPort(port int) bool {
	for _, p := range HighRiskPorts {
		if p == port {
			return true
		}
	}
	return false
}

// ============================================================================
// SERVER SETTINGS
// ============================================================================

const (
	// ServerReadTimeout for the HTTP API server (10s)
	ServerReadTimeout = 10 * time.Second

	// ServerWriteTimeout for the HTTP API server (30s)
	ServerWriteTimeout = 30 * time.Second

	// MetricsPort is the default Prometheus metrics port (9090)
	MetricsPort = 9090

	// ReportsDir is the default directory for generated report artifacts
	ReportsDir = "reports"
)
