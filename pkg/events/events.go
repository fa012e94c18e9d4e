// Package events defines the progress events a scan emits to live
// observers. All events are designed for JSON serialization over the
// WebSocket stream.
//
// Every event carries the id of the scan that produced it, so subscribers
// can demultiplex events from concurrently running jobs.
package events

import (
	"time"

	"github.com/dorkscan/dorkscan/pkg/finding"
	"github.com/dorkscan/dorkscan/pkg/osint"
	"github.com/dorkscan/dorkscan/pkg/report"
)

// Kind identifies the event payload shape.
type Kind string

const (
	// KindLog carries a human-readable progress message.
	KindLog Kind = "log"
	// KindResult carries one ScanResult as it is produced.
	KindResult Kind = "result"
	// KindOSINT carries the network footprint side-channel payload.
	KindOSINT Kind = "osint"
	// KindFinalResults is the single terminal event bundling everything.
	KindFinalResults Kind = "final_results"
)

// Event is the base interface for all scan events.
type Event interface {
	EventKind() Kind
	ScanID() string
	Timestamp() time.Time
}

// BaseEvent contains the envelope fields shared by all events.
// It is embedded in the concrete event types.
type BaseEvent struct {
	Kind Kind      `json:"type"`
	Scan string    `json:"scan_id"`
	Time time.Time `json:"timestamp"`
}

// EventKind returns the payload kind.
func (e BaseEvent) EventKind() Kind { return e.Kind }

// ScanID returns the id of the job that produced this event.
func (e BaseEvent) ScanID() string { return e.Scan }

// Timestamp returns when the event was produced.
func (e BaseEvent) Timestamp() time.Time { return e.Time }

func newBase(kind Kind, scanID string) BaseEvent {
	return BaseEvent{Kind: kind, Scan: scanID, Time: time.Now()}
}

// LogEvent reports coarse scan progress.
type LogEvent struct {
	BaseEvent
	Message string `json:"message"`
}

// NewLog creates a log event.
func NewLog(scanID, message string) LogEvent {
	return LogEvent{BaseEvent: newBase(KindLog, scanID), Message: message}
}

// ResultEvent carries one per-URL scan result.
type ResultEvent struct {
	BaseEvent
	Result finding.ScanResult `json:"data"`
}

// NewResult creates a result event.
func NewResult(scanID string, result finding.ScanResult) ResultEvent {
	return ResultEvent{BaseEvent: newBase(KindResult, scanID), Result: result}
}

// OSINTEvent carries the network footprint discovered before page scanning.
type OSINTEvent struct {
	BaseEvent
	Footprint *osint.Footprint `json:"data"`
}

// NewOSINT creates an osint event.
func NewOSINT(scanID string, fp *osint.Footprint) OSINTEvent {
	return OSINTEvent{BaseEvent: newBase(KindOSINT, scanID), Footprint: fp}
}

// ScanStats aggregates one job's outcome counts.
type ScanStats struct {
	TotalDorks  int `json:"total_dorks,omitempty"`
	URLsFound   int `json:"urls_found"`
	URLsScanned int `json:"urls_scanned"`
	HighRisk    int `json:"high_risk"`
	MediumRisk  int `json:"medium_risk"`
	LowRisk     int `json:"low_risk"`
}

// Count records one result's risk level in the stats.
func (s *ScanStats) Count(level finding.RiskLevel) {
	switch level {
	case finding.RiskHigh:
		s.HighRisk++
	case finding.RiskMedium:
		s.MediumRisk++
	case finding.RiskLow:
		s.LowRisk++
	}
}

// FinalBundle is the terminal payload: the full result set, aggregate
// stats, generated report artifacts and the optional OSINT footprint.
type FinalBundle struct {
	Results []finding.ScanResult `json:"results"`
	Stats   ScanStats            `json:"stats"`
	Reports report.Artifacts     `json:"reports"`
	OSINT   *osint.Footprint     `json:"osint,omitempty"`
}

// FinalResultsEvent is emitted exactly once, after the scan loop and
// report persistence complete.
type FinalResultsEvent struct {
	BaseEvent
	Bundle FinalBundle `json:"data"`
}

// NewFinalResults creates the terminal event.
func NewFinalResults(scanID string, bundle FinalBundle) FinalResultsEvent {
	return FinalResultsEvent{BaseEvent: newBase(KindFinalResults, scanID), Bundle: bundle}
}
