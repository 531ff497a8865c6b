// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/proposal-engine/internal/httputil"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

const (
	// DefaultClaudeModel is used when neither config nor caller names a model.
	DefaultClaudeModel = "claude-3-sonnet-20240229"

	claudeBaseURL    = "https://api.anthropic.com"
	claudeAPIVersion = "2023-06-01"
	claudeMaxTokens  = 4000
)

// Claude calls the Anthropic Messages API.
type Claude struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

// NewClaude builds the adapter.
func NewClaude(cfg types.ProviderConfig, client *http.Client) *Claude {
	return &Claude{
		APIKey:  cfg.APIKey,
		BaseURL: orDefault(cfg.BaseURL, claudeBaseURL),
		Model:   orDefault(cfg.Model, DefaultClaudeModel),
		Client:  client,
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
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
}

// Name returns "claude".
func (c *Claude) Name() types.ProviderName { return types.ProviderClaude }

// Invoke returns the first text block of the reply, or "" when the reply
// has none.
func (c *Claude) Invoke(ctx context.Context, prompt, model string, timeout time.Duration) (string, error) {
	if c.APIKey == "" {
		return "", &ProviderError{Provider: types.ProviderClaude, Cause: ErrMissingAPIKey}
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	req := claudeRequest{
		Model:     orDefault(model, c.Model),
		MaxTokens: claudeMaxTokens,
		Messages:  []claudeMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": claudeAPIVersion,
	}

	var resp claudeResponse
	url := strings.TrimRight(c.BaseURL, "/") + "/v1/messages"
	if err := httputil.PostJSON(ctx, clientOr(c.Client), url, headers, req, &resp); err != nil {
		return "", &ProviderError{Provider: types.ProviderClaude, Cause: err}
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
