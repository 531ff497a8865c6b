// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

// DefaultOpenAIModel is used when neither config nor caller names a model.
const DefaultOpenAIModel = openai.GPT3Dot5Turbo

// OpenAI calls the chat completions endpoint through go-openai.
type OpenAI struct {
	client *openai.Client
	model  string
	hasKey bool
}

// NewOpenAI builds the adapter. cfg.BaseURL overrides the API root
// (it must include the /v1 suffix).
func NewOpenAI(cfg types.ProviderConfig, httpClient *http.Client) *OpenAI {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		oc.HTTPClient = httpClient
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(oc),
		model:  orDefault(cfg.Model, DefaultOpenAIModel),
		hasKey: cfg.APIKey != "",
	}
}

// Name returns "openai".
func (o *OpenAI) Name() types.ProviderName { return types.ProviderOpenAI }

// Invoke sends prompt as a single user message.
func (o *OpenAI) Invoke(ctx context.Context, prompt, model string, timeout time.Duration) (string, error) {
	if !o.hasKey {
		return "", &ProviderError{Provider: types.ProviderOpenAI, Cause: ErrMissingAPIKey}
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: orDefault(model, o.model),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &ProviderError{Provider: types.ProviderOpenAI, Cause: err}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
