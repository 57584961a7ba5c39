package ai

import (
	"context"
	"encoding/json"

	"github.com/sashabaranov/go-openai"

	"github.com/yourusername/resumatch-api/internal/apperror"
)

const defaultOpenAIModel = openai.GPT4o

// OpenAIClient calls chat completions in JSON-object response mode.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(config), model: model}
}

func (c *OpenAIClient) Invoke(ctx context.Context, spec Spec, payload string) (json.RawMessage, error) {
	req := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: spec.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: spec.Instruction},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, apperror.NewUpstream("openai chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperror.NewSchema(spec.Name+": openai returned no choices", nil)
	}

	return extractObject(spec, resp.Choices[0].Message.Content)
}
