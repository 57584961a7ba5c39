package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/yourusername/resumatch-api/internal/apperror"
)

const defaultGeminiModel = "gemini-2.5-pro"

// GeminiClient calls the Gemini API with a JSON response MIME type.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Invoke(ctx context.Context, spec Spec, payload string) (json.RawMessage, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(spec.Instruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}
	if spec.MaxTokens > 0 {
		config.MaxOutputTokens = int32(spec.MaxTokens)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(payload), config)
	if err != nil {
		return nil, apperror.NewUpstream("gemini generate content failed", err)
	}

	return extractObject(spec, resp.Text())
}
