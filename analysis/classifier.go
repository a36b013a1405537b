// Package analysis wraps the external AI collaborator behind a narrow
// interface so the core never depends on nondeterministic stand-ins.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"civicreport/models"
)

// Classification is the collaborator's judgement of a report.
type Classification struct {
	Category        string   `json:"category"`
	Confidence      float64  `json:"confidence"`
	DetectedObjects []string `json:"detectedObjects"`
	Sentiment       string   `json:"sentiment"`
	SeverityScore   float64  `json:"severityScore"`
}

// Classifier judges the category and severity of a submitted report.
type Classifier interface {
	Classify(ctx context.Context, report *models.Report) (*Classification, error)
}

// OpenAIClassifier implements Classifier with a chat completion call.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier creates a classifier using the given API key and model.
func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	return &OpenAIClassifier{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

const classifyPrompt = `You triage civic issue reports. Given a report, respond with a single JSON object:
{"category": one of [pothole, garbage, streetlight, water, road, drainage, other],
 "confidence": 0..1,
 "detectedObjects": short noun list,
 "sentiment": one of [negative, neutral, positive],
 "severityScore": 0..1}
Respond with JSON only, no prose.`

// Classify sends the report text to the model and parses its judgement.
func (c *OpenAIClassifier) Classify(ctx context.Context, report *models.Report) (*Classification, error) {
	input := fmt.Sprintf("Title: %s\nDescription: %s\nAddress: %s",
		report.Title, report.Description, report.Address)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifyPrompt},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classification returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	// Some models wrap JSON in a code fence.
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var result Classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &result); err != nil {
		return nil, fmt.Errorf("failed to parse classification: %w", err)
	}

	if !models.IsValidCategory(result.Category) {
		result.Category = models.CategoryOther
	}
	return &result, nil
}
