package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Reviewer judges one extracted sample.
type Reviewer interface {
	Review(ctx context.Context, sample Sample) (*Verdict, error)
}

// OpenAIReviewer reviews samples through the OpenAI chat completions API.
type OpenAIReviewer struct {
	client openai.Client
	model  string
}

func NewOpenAIReviewer(apiKey, model string) *OpenAIReviewer {
	return &OpenAIReviewer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (r *OpenAIReviewer) Review(ctx context.Context, sample Sample) (*Verdict, error) {
	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt()),
			openai.UserMessage(buildUserPrompt(sample)),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("requesting review: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("review response had no choices")
	}
	return parseVerdict(resp.Choices[0].Message.Content)
}

// parseVerdict accepts strict JSON first. Models occasionally answer in
// prose anyway, so a reply leading with the verdict word still counts.
func parseVerdict(text string) (*Verdict, error) {
	text = strings.TrimSpace(text)

	var verdict Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err == nil && verdict.Status != "" {
		verdict.Status = strings.ToUpper(verdict.Status)
		if verdict.Status != StatusPass && verdict.Status != StatusFlag {
			return nil, fmt.Errorf("unexpected verdict status %q", verdict.Status)
		}
		return &verdict, nil
	}

	upper := strings.ToUpper(text)
	if strings.HasPrefix(upper, StatusPass) {
		return &Verdict{Status: StatusPass, Notes: text}, nil
	}
	if strings.HasPrefix(upper, StatusFlag) {
		return &Verdict{Status: StatusFlag, Notes: text}, nil
	}
	return nil, fmt.Errorf("unparseable verdict: %q", text)
}
