package relevance

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jindalsaj/aura/pkg/gemini"
)

// Verdict is a classifier's refinement of a keyword-matched item.
type Verdict struct {
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Classifier refines relevance decisions for items that already passed the
// keyword stage. Any error means "unavailable" and the caller falls back.
type Classifier interface {
	Classify(ctx context.Context, text string, properties []string) (*Verdict, error)
}

// GeminiClassifier asks Gemini to judge how strongly an item relates to the
// user's properties.
type GeminiClassifier struct {
	service *gemini.GeminiService
}

func NewGeminiClassifier(service *gemini.GeminiService) *GeminiClassifier {
	return &GeminiClassifier{service: service}
}

func (c *GeminiClassifier) Classify(ctx context.Context, text string, properties []string) (*Verdict, error) {
	prompt := fmt.Sprintf(`You judge whether a piece of personal data relates to managing these properties:
%s

Respond with ONLY a JSON object, no markdown fences:
{"confidence": <0.0-1.0>, "reason": "<one short sentence>"}

DATA:
%s`, strings.Join(properties, "\n"), truncate(text, 4000))

	raw, err := c.service.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var verdict Verdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &verdict); err != nil {
		return nil, fmt.Errorf("unparseable classifier response: %w", err)
	}
	if verdict.Confidence < 0 {
		verdict.Confidence = 0
	}
	if verdict.Confidence > 1 {
		verdict.Confidence = 1
	}
	return &verdict, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
