package scoring

import (
	"testing"

	"github.com/dorkscan/dorkscan/pkg/finding"
)

func boolPtr(b bool) *bool { return &b }

func TestScore_EmptyFindings(t *testing.T) {
	score, level := Score(nil, nil, 100)
	if score != 0 {
		t.Errorf("score = %d, want 0", score)
	}
	if level != finding.RiskNone {
		t.Errorf("level = %q, want NONE", level)
	}
}

func TestScore_DefaultWeightForUnknownType(t *testing.T) {
	fs := []finding.Finding{{Type: "something_new", Confidence: 1.0}}
	score, level := Score(fs, Weights{}, 100)
	if score != 10 {
		t.Errorf("score = %d, want default weight 10", score)
	}
	if level != finding.RiskLow {
		t.Errorf("level = %q, want LOW", level)
	}
}

func TestScore_LowSeverityDiscount(t *testing.T) {
	fs := []finding.Finding{{
		Type:       "aws_key",
		Confidence: 1.0,
		Severity:   finding.SeverityLow,
	}}
	score, _ := Score(fs, Weights{"aws_key": 40}, 100)
	if score != 20 {
		t.Errorf("score = %d, want 40 * 1.0 * 0.5 = 20", score)
	}
}

func TestScore_UnverifiedDiscount(t *testing.T) {
	fs := []finding.Finding{{
		Type:            "aws_key",
		Confidence:      1.0,
		ContextVerified: boolPtr(false),
	}}
	score, _ := Score(fs, Weights{"aws_key": 40}, 100)
	if score != 12 {
		t.Errorf("score = %d, want 40 * 1.0 * 0.3 = 12", score)
	}
}

func TestScore_DiscountsCompose(t *testing.T) {
	fs := []finding.Finding{{
		Type:            "aws_key",
		Confidence:      1.0,
		Severity:        finding.SeverityLow,
		ContextVerified: boolPtr(false),
	}}
	score, _ := Score(fs, Weights{"aws_key": 100}, 100)
	// 100 * 1.0 * 0.5 * 0.3 = 15
	if score != 15 {
		t.Errorf("score = %d, want 15", score)
	}
}

func TestScore_VerifiedTrueNotDiscounted(t *testing.T) {
	fs := []finding.Finding{{
		Type:            "aws_key",
		Confidence:      1.0,
		ContextVerified: boolPtr(true),
	}}
	score, _ := Score(fs, Weights{"aws_key": 40}, 100)
	if score != 40 {
		t.Errorf("score = %d, want 40", score)
	}
}

func TestScore_ClippedToMaxScore(t *testing.T) {
	var fs []finding.Finding
	for i := 0; i < 10; i++ {
		fs = append(fs, finding.Finding{Type: "private_key", Confidence: 1.0})
	}
	score, level := Score(fs, Weights{"private_key": 50}, 100)
	if score != 100 {
		t.Errorf("score = %d, want clipped 100", score)
	}
	if level != finding.RiskHigh {
		t.Errorf("level = %q, want HIGH", level)
	}
}

func TestLevel_StepFunction(t *testing.T) {
	s := New(nil, 100)
	tests := []struct {
		score int
		want  finding.RiskLevel
	}{
		{0, finding.RiskNone},
		{1, finding.RiskLow},
		{39, finding.RiskLow},
		{40, finding.RiskMedium},
		{74, finding.RiskMedium},
		{75, finding.RiskHigh},
		{100, finding.RiskHigh},
	}
	for _, tt := range tests {
		if got := s.Level(tt.score); got != tt.want {
			t.Errorf("Level(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScore_MonotonicInConfidenceAndWeight(t *testing.T) {
	base := []finding.Finding{
		{Type: "email", Confidence: 0.4},
		{Type: "aws_key", Confidence: 0.9},
	}
	scoreAt := func(conf, weight float64) int {
		fs := make([]finding.Finding, len(base))
		copy(fs, base)
		fs[0].Confidence = conf
		s, _ := Score(fs, Weights{"email": weight, "aws_key": 40}, 100)
		return s
	}

	prev := -1
	for conf := 0.0; conf <= 1.0; conf += 0.1 {
		got := scoreAt(conf, 10)
		if got < prev {
			t.Fatalf("score decreased as confidence rose: %d -> %d at conf %.1f", prev, got, conf)
		}
		prev = got
	}

	prev = -1
	for weight := 0.0; weight <= 60; weight += 10 {
		got := scoreAt(0.5, weight)
		if got < prev {
			t.Fatalf("score decreased as weight rose: %d -> %d at weight %.0f", prev, got, weight)
		}
		prev = got
	}
}

func TestScore_RemovingFindingNeverIncreasesScore(t *testing.T) {
	fs := []finding.Finding{
		{Type: "email", Confidence: 1.0},
		{Type: "aws_key", Confidence: 1.0},
		{Type: "sql_dump", Confidence: 0.6, Severity: finding.SeverityLow},
	}
	full, _ := Score(fs, nil, 100)
	for drop := range fs {
		subset := append([]finding.Finding{}, fs[:drop]...)
		subset = append(subset, fs[drop+1:]...)
		partial, _ := Score(subset, nil, 100)
		if partial > full {
			t.Errorf("dropping finding %d raised score %d -> %d", drop, full, partial)
		}
	}
}
