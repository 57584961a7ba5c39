package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yourusername/resumatch-api/internal/apperror"
)

const defaultClaudeModel = "claude-sonnet-4-5-20250929"

// ClaudeClient wraps the Anthropic Messages API
type ClaudeClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewClaudeClient(apiKey, baseURL, model string) *ClaudeClient {
	if model == "" {
		model = defaultClaudeModel
	}
	return &ClaudeClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// ── Anthropic API request/response types ──────────────

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Invoke sends the instruction as the system prompt and the payload as the
// single user message, and returns the JSON object Claude produced.
func (c *ClaudeClient) Invoke(ctx context.Context, spec Spec, payload string) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, apperror.NewUpstream("Claude API key not configured", nil)
	}

	maxTokens := spec.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}

	reqBody := claudeRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    spec.Instruction + "\n\nRespond with ONLY a JSON object (no markdown, no backticks, no explanation).",
		Messages: []claudeMessage{
			{Role: "user", Content: payload},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperror.NewInternal("marshaling claude request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, apperror.NewInternal("creating claude request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperror.NewUpstream("calling Claude API", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewUpstream("reading Claude response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewUpstream(fmt.Sprintf("Claude API returned %d", resp.StatusCode), fmt.Errorf("%s", truncate(string(body), 500)))
	}

	var claudeResp claudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return nil, apperror.NewUpstream("parsing Claude envelope", err)
	}

	if len(claudeResp.Content) == 0 {
		return nil, apperror.NewSchema(spec.Name+": empty response from Claude", nil)
	}

	return extractObject(spec, claudeResp.Content[0].Text)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
