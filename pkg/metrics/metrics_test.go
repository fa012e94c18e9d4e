package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dorkscan/dorkscan/pkg/events"
	"github.com/dorkscan/dorkscan/pkg/finding"
	"github.com/dorkscan/dorkscan/pkg/osint"
)

func newTestCollector(t *testing.T, port int) *Collector {
	t.Helper()
	c, err := NewCollector(Options{Port: port})
	if err != nil {
		t.Fatalf("NewCollector: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestResultEventCounters(t *testing.T) {
	c := newTestCollector(t, 19391)

	result := finding.ScanResult{
		URL: "http://example.com",
		Findings: []finding.Finding{
			{Type: "aws_key", Source: finding.SourcePattern},
			{Type: "email", Source: finding.SourcePattern},
			{Type: "email", Source: finding.SourcePattern},
		},
		RiskScore: 60,
		RiskLevel: finding.RiskMedium,
	}
	if err := c.Send(events.NewResult("scan-1", result)); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got := testutil.ToFloat64(c.urlsScannedTotal.WithLabelValues("MEDIUM")); got != 1 {
		t.Errorf("urls scanned MEDIUM = %v", got)
	}
	if got := testutil.ToFloat64(c.findingsTotal.WithLabelValues("email", "pattern")); got != 2 {
		t.Errorf("email findings = %v", got)
	}
	if got := testutil.ToFloat64(c.findingsTotal.WithLabelValues("aws_key", "pattern")); got != 1 {
		t.Errorf("aws_key findings = %v", got)
	}
}

func TestOSINTAndFinalEvents(t *testing.T) {
	c := newTestCollector(t, 19392)

	fp := &osint.Footprint{
		Enabled: true,
		Exposures: []osint.ServiceExposure{
			{Port: 3306}, {Port: 6379},
		},
	}
	if err := c.Send(events.NewOSINT("scan-1", fp)); err != nil {
		t.Fatalf("Send osint: %v", err)
	}
	if err := c.Send(events.NewFinalResults("scan-1", events.FinalBundle{})); err != nil {
		t.Fatalf("Send final: %v", err)
	}

	if got := testutil.ToFloat64(c.osintExposures); got != 2 {
		t.Errorf("osint exposures = %v", got)
	}
	if got := testutil.ToFloat64(c.scansCompleted); got != 1 {
		t.Errorf("scans completed = %v", got)
	}
}

func TestLogEventsIgnored(t *testing.T) {
	c := newTestCollector(t, 19393)
	if err := c.Send(events.NewLog("scan-1", "starting")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := testutil.ToFloat64(c.scansCompleted); got != 0 {
		t.Errorf("log event moved a counter: %v", got)
	}
}

func TestSendAfterClose(t *testing.T) {
	c := newTestCollector(t, 19394)
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Send(events.NewFinalResults("scan-1", events.FinalBundle{})); err != nil {
		t.Fatalf("Send after close: %v", err)
	}
	if got := testutil.ToFloat64(c.scansCompleted); got != 0 {
		t.Errorf("closed collector counted an event: %v", got)
	}
	// Double close is a no-op.
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
