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
	// DefaultSiliconFlowModel is used when neither config nor caller names a model.
	DefaultSiliconFlowModel = "Qwen/Qwen2.5-7B-Instruct"

	siliconFlowBaseURL     = "https://api.siliconflow.cn/v1"
	siliconFlowMaxTokens   = 4000
	siliconFlowTemperature = 0.7
)

// SiliconFlow calls the OpenAI-compatible chat completions endpoint hosted
// by SiliconFlow.
type SiliconFlow struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

// NewSiliconFlow builds the adapter.
func NewSiliconFlow(cfg types.ProviderConfig, client *http.Client) *SiliconFlow {
	return &SiliconFlow{
		APIKey:  cfg.APIKey,
		BaseURL: orDefault(cfg.BaseURL, siliconFlowBaseURL),
		Model:   orDefault(cfg.Model, DefaultSiliconFlowModel),
		Client:  client,
	}
}

type siliconFlowRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type siliconFlowResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Name returns "siliconflow".
func (s *SiliconFlow) Name() types.ProviderName { return types.ProviderSiliconFlow }

// Invoke returns the content of the first choice.
func (s *SiliconFlow) Invoke(ctx context.Context, prompt, model string, timeout time.Duration) (string, error) {
	if s.APIKey == "" {
		return "", &ProviderError{Provider: types.ProviderSiliconFlow, Cause: ErrMissingAPIKey}
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	req := siliconFlowRequest{
		Model:       orDefault(model, s.Model),
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   siliconFlowMaxTokens,
		Temperature: siliconFlowTemperature,
	}

	var resp siliconFlowResponse
	url := strings.TrimRight(s.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + s.APIKey}
	if err := httputil.PostJSON(ctx, clientOr(s.Client), url, headers, req, &resp); err != nil {
		return "", &ProviderError{Provider: types.ProviderSiliconFlow, Cause: err}
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
