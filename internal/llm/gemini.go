// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

// DefaultGeminiModel is used when neither config nor caller names a model.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini calls generateContent on the Gemini API through the genai SDK.
type Gemini struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewGemini builds the adapter. The SDK client is created per call so that
// a missing key surfaces as a provider failure instead of a startup error.
func NewGemini(cfg types.ProviderConfig, httpClient *http.Client) *Gemini {
	return &Gemini{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      orDefault(cfg.Model, DefaultGeminiModel),
		httpClient: httpClient,
	}
}

// Name returns "gemini".
func (g *Gemini) Name() types.ProviderName { return types.ProviderGemini }

// Invoke sends prompt as a single user turn and returns the text of the
// first candidate. A reply without candidates yields "".
func (g *Gemini) Invoke(ctx context.Context, prompt, model string, timeout time.Duration) (string, error) {
	if g.apiKey == "" {
		return "", &ProviderError{Provider: types.ProviderGemini, Cause: ErrMissingAPIKey}
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      g.apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", providerErr(types.ProviderGemini, "creating client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, orDefault(model, g.model), genai.Text(prompt), nil)
	if err != nil {
		return "", &ProviderError{Provider: types.ProviderGemini, Cause: err}
	}
	return resp.Text(), nil
}
