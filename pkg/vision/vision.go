// Package vision is the ensemble's visual auditor: it sends page
// screenshots to an OpenAI-compatible vision model and flags sensitive UI
// surfaces (admin dashboards, camera feeds, directory listings) that never
// appear in the page text. Without a screenshot it falls back to a cheap
// text heuristic.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/detect"
	"github.com/dorkscan/dorkscan/pkg/finding"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
	maxTokens       = 150
)

// targetElements are the UI surfaces the model is asked to recognize.
var targetElements = []string{
	"admin dashboard",
	"login page with hardcoded credentials",
	"cctv camera feed",
	"database management interface (phpmyadmin/kibana/grafana)",
	"directory listing",
	"error page with stack trace",
	"exposed source code",
	"cloud storage bucket with files",
}

// Auditor classifies screenshots via a vision model. It implements
// detect.Analyzer.
type Auditor struct {
	apiKey     string
	model      string
	httpClient *http.Client
	baseURL    string
}

// NewAuditor creates an auditor. An empty apiKey yields a heuristic-only
// auditor that never calls the API.
func NewAuditor(apiKey string) *Auditor {
	return &Auditor{
		apiKey:     apiKey,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaults.ClassifierTimeout},
		baseURL:    defaultEndpoint,
	}
}

// Enabled reports whether the auditor has credentials.
func (a *Auditor) Enabled() bool { return a.apiKey != "" }

// Name implements detect.Analyzer.
func (a *Auditor) Name() string { return "vision" }

// Analyze classifies the screenshot when one is present: with credentials
// it calls the vision model, without them it contributes nothing. Only
// text-only content falls back to the heuristic. A sensitive
// classification yields exactly one visual_exposure finding. API failures
// contribute nothing.
func (a *Auditor) Analyze(ctx context.Context, content *detect.Content) []finding.Finding {
	if content == nil {
		return nil
	}

	if len(content.Screenshot) > 0 {
		if !a.Enabled() {
			return nil
		}
		classification, analysis, err := a.classifyScreenshot(ctx, content.Screenshot)
		if err != nil || classification == "benign" {
			return nil
		}
		return []finding.Finding{{
			Type:       "visual_exposure",
			Match:      classification,
			Context:    analysis,
			Source:     finding.SourceVision,
			Confidence: defaults.VisionConfidence,
		}}
	}

	return heuristic(content.Text)
}

// heuristic is the degraded path for content without a screenshot.
func heuristic(text string) []finding.Finding {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "dashboard") && !strings.Contains(lower, "admin") {
		return nil
	}
	return []finding.Finding{{
		Type:       "visual_exposure",
		Match:      "potential admin dashboard (heuristic)",
		Context:    "Detected via visual pattern matching.",
		Source:     finding.SourceVision,
		Confidence: defaults.VisionHeuristicConfidence,
	}}
}

func (a *Auditor) classifyScreenshot(ctx context.Context, screenshot []byte) (classification, analysis string, err error) {
	prompt := fmt.Sprintf(
		"Analyze this website screenshot for security exposures. Is it one of these: %s? "+
			"Respond with 'TYPE: [type]' and a brief justification. "+
			"If nothing sensitive is found, respond 'TYPE: benign'.",
		strings.Join(targetElements, ", "))

	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(screenshot)
	payload := chatRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []chatPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &chatImage{URL: imageURL}},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", a.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("vision API error: %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	if len(out.Choices) == 0 {
		return "", "", fmt.Errorf("vision API returned no choices")
	}

	analysis = out.Choices[0].Message.Content
	return parseClassification(analysis), analysis, nil
}

// parseClassification pulls the label out of a "TYPE: <label>" response.
// Anything unparseable is treated as benign.
func parseClassification(analysis string) string {
	_, after, found := strings.Cut(analysis, "TYPE:")
	if !found {
		return "benign"
	}
	label, _, _ := strings.Cut(after, "\n")
	return strings.ToLower(strings.TrimSpace(label))
}

type chatImage struct {
	URL string `json:"url"`
}

type chatPart struct {
	Type     string     `json:"type"`
	Text     string     `json:"text,omitempty"`
	ImageURL *chatImage `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string     `json:"role"`
	Content []chatPart `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
