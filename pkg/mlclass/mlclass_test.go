package mlclass

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/detect"
	"github.com/dorkscan/dorkscan/pkg/finding"
)

func newTestClassifier(t *testing.T, handler http.HandlerFunc) *Classifier {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClassifier("test-key")
	c.baseURL = srv.URL
	return c
}

func respond(t *testing.T, w http.ResponseWriter, labels []string, scores []float64) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{"labels": labels, "scores": scores})
	if err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestClassify(t *testing.T) {
	var gotBody inferenceRequest
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		respond(t, w,
			[]string{"credential leak", "api key exposure", "benign content"},
			[]float64{0.91, 0.42, 0.12})
	})

	cls, err := c.Classify(context.Background(), "password = hunter22")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if cls.TopLabel != "credential leak" || cls.TopConfidence != 0.91 {
		t.Errorf("top = %q/%v", cls.TopLabel, cls.TopConfidence)
	}
	// 0.12 is below the retention floor.
	if len(cls.Labels) != 2 {
		t.Errorf("retained labels = %v, want 2", cls.Labels)
	}
	if len(gotBody.Parameters.CandidateLabels) != len(ThreatLabels) {
		t.Errorf("candidate labels = %d, want %d", len(gotBody.Parameters.CandidateLabels), len(ThreatLabels))
	}
	if !gotBody.Parameters.MultiLabel {
		t.Error("multi_label not set")
	}
}

func TestClassifyTruncatesSample(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		var req inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Inputs) != defaults.ClassifierSampleLen {
			t.Errorf("sample length = %d, want %d", len(req.Inputs), defaults.ClassifierSampleLen)
		}
		respond(t, w, []string{"benign content"}, []float64{0.2})
	})

	_, err := c.Classify(context.Background(), strings.Repeat("a", defaults.ClassifierSampleLen*3))
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
}

func TestClassifyServerError(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	if _, err := c.Classify(context.Background(), "text"); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestSeverityRules(t *testing.T) {
	tests := []struct {
		label string
		conf  float64
		want  finding.Severity
	}{
		{"private key exposure", 0.9, finding.SeverityHigh},
		{"credential leak", 0.61, finding.SeverityHigh},
		{"credential leak", 0.55, finding.SeverityMedium}, // below HIGH bar, above 0.4 fallback
		{"api key exposure", 0.6, finding.SeverityMedium},
		{"api key exposure", 0.45, finding.SeverityMedium}, // fallback rule
		{"benign content", 0.95, finding.SeverityLow},
		{"path traversal vulnerability", 0.45, finding.SeverityMedium},
		{"path traversal vulnerability", 0.3, finding.SeverityLow},
	}
	for _, tt := range tests {
		cls := &Classification{TopLabel: tt.label, TopConfidence: tt.conf}
		if got := Severity(cls); got != tt.want {
			t.Errorf("Severity(%q, %v) = %v, want %v", tt.label, tt.conf, got, tt.want)
		}
	}
	if got := Severity(nil); got != finding.SeverityUnknown {
		t.Errorf("Severity(nil) = %v", got)
	}
}

func TestEnrich(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, []string{"credential leak", "benign content"}, []float64{0.88, 0.1})
	})

	findings := []finding.Finding{
		{Type: "password_alike", Match: "password=x", Context: "...password=x...", Source: finding.SourcePattern, Confidence: 1.0},
		{Type: "credential_context", Match: "password", Source: finding.SourceContext, Confidence: 0.7},
	}
	c.Enrich(context.Background(), &detect.Content{Text: "page text"}, findings)

	got := findings[0]
	if got.Severity != finding.SeverityHigh {
		t.Errorf("severity = %v", got.Severity)
	}
	if got.MLLabel != "credential leak" || got.MLConfidence != 0.88 {
		t.Errorf("ml fields = %q/%v", got.MLLabel, got.MLConfidence)
	}
	if got.Confidence != 0.88 {
		t.Errorf("confidence = %v, want classifier top confidence", got.Confidence)
	}
	if got.ContextVerified == nil || !*got.ContextVerified {
		t.Error("high-confidence finding should be verified")
	}

	// Contextual findings keep their rule-assigned values.
	ctxFinding := findings[1]
	if ctxFinding.Confidence != 0.7 || ctxFinding.MLLabel != "" || ctxFinding.ContextVerified != nil {
		t.Errorf("contextual finding mutated: %+v", ctxFinding)
	}
}

func TestEnrichLowConfidenceUnverified(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		respond(t, w, []string{"api key exposure"}, []float64{0.35})
	})

	findings := []finding.Finding{
		{Type: "aws_key", Source: finding.SourcePattern, Context: "...AKIA...", Confidence: 1.0},
	}
	c.Enrich(context.Background(), &detect.Content{Text: "t"}, findings)

	if findings[0].ContextVerified == nil || *findings[0].ContextVerified {
		t.Error("0.35 confidence should not verify")
	}
	if findings[0].Severity != finding.SeverityLow {
		t.Errorf("severity = %v", findings[0].Severity)
	}
}

func TestEnrichDisabled(t *testing.T) {
	c := NewClassifier("")
	if c.Enabled() {
		t.Fatal("classifier without key reports enabled")
	}
	findings := []finding.Finding{{Type: "email", Source: finding.SourcePattern, Confidence: 1.0}}
	c.Enrich(context.Background(), &detect.Content{Text: "t"}, findings)
	if findings[0].Severity != "" || findings[0].ContextVerified != nil {
		t.Errorf("disabled classifier mutated finding: %+v", findings[0])
	}
}

func TestEnrichSurvivesBackendFailure(t *testing.T) {
	c := newTestClassifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	findings := []finding.Finding{{Type: "email", Source: finding.SourcePattern, Context: "...a@b.c...", Confidence: 1.0}}
	c.Enrich(context.Background(), &detect.Content{Text: "t"}, findings)
	if findings[0].Severity != "" {
		t.Errorf("failed classification mutated finding: %+v", findings[0])
	}
}
