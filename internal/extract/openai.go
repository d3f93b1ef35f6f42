package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tervyx/claimpipe/internal/model"
)

const extractionPrompt = `Extract ALL health, efficacy, or medical claims from this product page.

RULES:
- Return verbatim claim text (no paraphrasing)
- Include quantifiers (percentages, numbers, timeframes)
- Classify claim_type: efficacy | safety | mechanism | medical
- Extract implied_outcome if obvious (sleep, hair_growth, weight_loss, pain_relief, etc.)
- DO NOT make judgments or evaluations
- DO NOT add claims that are not in the text

Return a JSON object:
{"claims": [{"text": "verbatim claim text", "claim_type": "efficacy", "implied_outcome": "sleep_quality", "quantifier": "87%"}]}

Product text:
`

// OpenAIProvider extracts claims through an OpenAI-compatible chat
// API. Temperature is pinned to zero and JSON mode is enforced so the
// call is as deterministic as the API allows.
type OpenAIProvider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIProvider creates a provider for the given model. baseURL
// may point at any OpenAI-compatible endpoint.
func NewOpenAIProvider(apiKey, baseURL, modelName string, maxTokens int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &OpenAIProvider{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     modelName,
		maxTokens: maxTokens,
	}, nil
}

// Name returns the model name stamped into extraction metadata
func (p *OpenAIProvider) Name() string {
	return p.model
}

// Extract sends the page sections to the chat API and parses the
// returned claim list
func (p *OpenAIProvider) Extract(ctx context.Context, sections []Section) ([]model.RawClaim, error) {
	if len(sections) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&sb, "[%s]\n%s\n\n", strings.ToUpper(s.Kind), s.Text)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		MaxTokens:   p.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: extractionPrompt + sb.String(),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from %s", p.model)
	}

	var parsed struct {
		Claims []struct {
			Text           string `json:"text"`
			ClaimType      string `json:"claim_type"`
			ImpliedOutcome string `json:"implied_outcome"`
			Quantifier     string `json:"quantifier"`
		} `json:"claims"`
	}
	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	claims := make([]model.RawClaim, 0, len(parsed.Claims))
	for _, c := range parsed.Claims {
		claims = append(claims, model.RawClaim{
			Text:           c.Text,
			ClaimType:      c.ClaimType,
			ImpliedOutcome: c.ImpliedOutcome,
			Quantifier:     c.Quantifier,
			Source:         string(model.SourceText),
		})
	}
	return claims, nil
}
