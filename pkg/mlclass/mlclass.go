// Package mlclass is the ensemble's threat classifier stage. It sends
// finding contexts to a hosted zero-shot classification endpoint and maps
// the top label onto a severity, a verification flag, and an adjusted
// confidence. Without credentials the stage is a no-op.
package mlclass

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/detect"
	"github.com/dorkscan/dorkscan/pkg/finding"
)

// DefaultEndpoint is the hosted inference URL for the default NLI model.
const DefaultEndpoint = "https://api-inference.huggingface.co/models/valhalla/distilbart-mnli-12-1"

// ThreatLabels is the fixed candidate taxonomy for zero-shot
// classification, ordered by rough severity.
var ThreatLabels = []string{
	"credential leak",
	"api key exposure",
	"database configuration",
	"private key exposure",
	"authentication token",
	"sensitive file exposure",
	"sql injection vulnerability",
	"path traversal vulnerability",
	"benign content",
}

var highSeverityLabels = map[string]bool{
	"private key exposure":        true,
	"database configuration":      true,
	"credential leak":             true,
	"sql injection vulnerability": true,
}

var mediumSeverityLabels = map[string]bool{
	"api key exposure":        true,
	"authentication token":    true,
	"sensitive file exposure": true,
}

// LabelScore is one retained classification label.
type LabelScore struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classification is the outcome of classifying one text sample.
type Classification struct {
	Labels        []LabelScore `json:"classifications,omitempty"`
	TopLabel      string       `json:"top_threat"`
	TopConfidence float64      `json:"top_confidence"`
}

// Classifier calls a zero-shot classification endpoint. It implements
// detect.Enricher.
type Classifier struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewClassifier creates a classifier bound to the default endpoint. An
// empty apiKey yields a disabled classifier whose Enrich does nothing.
func NewClassifier(apiKey string) *Classifier {
	return &Classifier{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaults.ClassifierTimeout},
		baseURL:    DefaultEndpoint,
	}
}

// Enabled reports whether the classifier has credentials.
func (c *Classifier) Enabled() bool { return c.apiKey != "" }

// Name implements detect.Enricher.
func (c *Classifier) Name() string { return "classifier" }

// Enrich classifies the context window of every non-contextual finding and
// attaches severity, label, and confidence in place. Contextual findings
// already carry rule-assigned confidences and are left alone. Individual
// classification failures leave the affected finding unenriched.
func (c *Classifier) Enrich(ctx context.Context, content *detect.Content, findings []finding.Finding) {
	if !c.Enabled() || content == nil {
		return
	}
	for i := range findings {
		if findings[i].Source == finding.SourceContext {
			continue
		}
		sample := findings[i].Context
		if sample == "" {
			sample = content.Text
		}
		cls, err := c.Classify(ctx, sample)
		if err != nil {
			continue
		}
		verified := cls.TopConfidence > defaults.ClassifierVerifyFloor
		findings[i].Severity = Severity(cls)
		findings[i].MLLabel = cls.TopLabel
		findings[i].MLConfidence = cls.TopConfidence
		findings[i].Confidence = cls.TopConfidence
		findings[i].ContextVerified = &verified
	}
}

// Classify runs one zero-shot classification over a bounded text sample.
func (c *Classifier) Classify(ctx context.Context, text string) (*Classification, error) {
	if len(text) > defaults.ClassifierSampleLen {
		text = text[:defaults.ClassifierSampleLen]
	}

	payload := inferenceRequest{Inputs: text}
	payload.Parameters.CandidateLabels = ThreatLabels
	payload.Parameters.MultiLabel = true

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference API error: %d", resp.StatusCode)
	}

	var out inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Labels) == 0 || len(out.Labels) != len(out.Scores) {
		return nil, fmt.Errorf("inference API returned %d labels, %d scores", len(out.Labels), len(out.Scores))
	}

	cls := &Classification{
		TopLabel:      out.Labels[0],
		TopConfidence: out.Scores[0],
	}
	for i, label := range out.Labels {
		if out.Scores[i] > defaults.ClassifierLabelFloor {
			cls.Labels = append(cls.Labels, LabelScore{Label: label, Confidence: out.Scores[i]})
		}
	}
	return cls, nil
}

// Severity maps a classification onto a severity level.
func Severity(cls *Classification) finding.Severity {
	if cls == nil {
		return finding.SeverityUnknown
	}
	switch {
	case highSeverityLabels[cls.TopLabel] && cls.TopConfidence > 0.6:
		return finding.SeverityHigh
	case mediumSeverityLabels[cls.TopLabel] && cls.TopConfidence > 0.5:
		return finding.SeverityMedium
	case cls.TopLabel == "benign content":
		return finding.SeverityLow
	case cls.TopConfidence > 0.4:
		return finding.SeverityMedium
	default:
		return finding.SeverityLow
	}
}

type inferenceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
		MultiLabel      bool     `json:"multi_label"`
	} `json:"parameters"`
}

type inferenceResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}
