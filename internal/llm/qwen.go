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
	// DefaultQwenModel is used when neither config nor caller names a model.
	DefaultQwenModel = "qwen-max"

	qwenBaseURL = "https://dashscope.aliyuncs.com"
	qwenPath    = "/api/v1/services/aigc/text-generation/generation"
)

// Qwen calls the DashScope text-generation API in message result format.
type Qwen struct {
	APIKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

// NewQwen builds the adapter.
func NewQwen(cfg types.ProviderConfig, client *http.Client) *Qwen {
	return &Qwen{
		APIKey:  cfg.APIKey,
		BaseURL: orDefault(cfg.BaseURL, qwenBaseURL),
		Model:   orDefault(cfg.Model, DefaultQwenModel),
		Client:  client,
	}
}

type qwenRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []chatMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		ResultFormat string `json:"result_format"`
	} `json:"parameters"`
}

type qwenResponse struct {
	Output struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	RequestID string `json:"request_id"`
}

// chatMessage is the role/content pair shared by the OpenAI-style wire
// formats.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Name returns "qwen".
func (q *Qwen) Name() types.ProviderName { return types.ProviderQwen }

// Invoke returns the content of the first output choice.
func (q *Qwen) Invoke(ctx context.Context, prompt, model string, timeout time.Duration) (string, error) {
	if q.APIKey == "" {
		return "", &ProviderError{Provider: types.ProviderQwen, Cause: ErrMissingAPIKey}
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	var req qwenRequest
	req.Model = orDefault(model, q.Model)
	req.Input.Messages = []chatMessage{{Role: "user", Content: prompt}}
	req.Parameters.ResultFormat = "message"

	var resp qwenResponse
	url := strings.TrimRight(q.BaseURL, "/") + qwenPath
	headers := map[string]string{"Authorization": "Bearer " + q.APIKey}
	if err := httputil.PostJSON(ctx, clientOr(q.Client), url, headers, req, &resp); err != nil {
		return "", &ProviderError{Provider: types.ProviderQwen, Cause: err}
	}

	if len(resp.Output.Choices) == 0 {
		return "", nil
	}
	return resp.Output.Choices[0].Message.Content, nil
}
