package finding

import (
	"encoding/json"
	"testing"
)

func TestSeverityIsValid(t *testing.T) {
	valid := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityUnknown}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("Severity(%q).IsValid() = false, want true", s)
		}
	}
	if Severity("CRITICAL").IsValid() {
		t.Error(`Severity("CRITICAL").IsValid() = true, want false`)
	}
	if Severity("").IsValid() {
		t.Error(`Severity("").IsValid() = true, want false`)
	}
}

func TestFindingVerified(t *testing.T) {
	f := Finding{Type: "email", Match: "a@b.com"}
	if !f.Verified() {
		t.Error("unclassified finding should count as verified")
	}

	yes, no := true, false
	f.ContextVerified = &yes
	if !f.Verified() {
		t.Error("ContextVerified=true should be verified")
	}
	f.ContextVerified = &no
	if f.Verified() {
		t.Error("ContextVerified=false should not be verified")
	}
}

func TestFindingJSONOmitsUnsetEnrichment(t *testing.T) {
	f := Finding{
		Type:       "aws_key",
		Match:      "AKIA1234567890ABCDEF",
		Context:    "...key...",
		Source:     SourcePattern,
		Confidence: 1.0,
	}
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"severity", "ml_confidence", "context_verified", "ml_label"} {
		if _, ok := m[key]; ok {
			t.Errorf("unenriched finding JSON should omit %q", key)
		}
	}
	if m["source"] != "pattern" {
		t.Errorf("source = %v, want pattern", m["source"])
	}
}

func TestScanResultJSONShape(t *testing.T) {
	r := ScanResult{
		URL:       "http://example.com",
		Findings:  []Finding{{Type: "email", Match: "x@y.z", Source: SourcePattern, Confidence: 1}},
		RiskScore: 15,
		RiskLevel: RiskLow,
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m["risk_level"] != "LOW" {
		t.Errorf("risk_level = %v, want LOW", m["risk_level"])
	}
	if _, ok := m["findings"]; !ok {
		t.Error("findings key missing")
	}
}
