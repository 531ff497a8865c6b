// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm talks to the text-generation providers and implements the
// fallback policy across them.
//
// Each provider adapter performs exactly one call per Invoke. The Invoker
// owns retries: it walks the providers in priority order, treats errors and
// blank replies alike as failures, and sweeps the list again after a fixed
// delay until its pass budget runs out.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

// Provider is one text-generation backend. Invoke sends prompt to model
// (the adapter default when empty) and returns the reply text. timeout
// bounds the single call; zero means no extra deadline beyond ctx.
//
// Implementations return *ProviderError for every failure and never a
// partial reply. A successful but empty reply is returned as "".
type Provider interface {
	Name() types.ProviderName
	Invoke(ctx context.Context, prompt, model string, timeout time.Duration) (string, error)
}

// ErrMissingAPIKey is the cause reported when a provider has no key.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrEmptyResponse is the cause reported when a reply carries no text.
var ErrEmptyResponse = errors.New("empty response")

// ProviderError attributes a failure to a provider.
type ProviderError struct {
	Provider types.ProviderName
	Cause    error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Cause)
}

func (e *ProviderError) Unwrap() error { return e.Cause }

func providerErr(name types.ProviderName, format string, args ...any) error {
	return &ProviderError{Provider: name, Cause: fmt.Errorf(format, args...)}
}

// ErrExhausted is matched by errors.Is when every provider failed on every
// pass.
var ErrExhausted = errors.New("all providers failed")

// ExhaustedError is returned by Invoker.Generate when the fallback budget is
// spent. LastErr is the last failure observed.
type ExhaustedError struct {
	Passes  int
	LastErr error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all providers failed after %d passes: %v", e.Passes, e.LastErr)
}

// Is reports ErrExhausted.
func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// withTimeout derives the per-call context.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func clientOr(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}

// callClient returns a copy of c without a client-wide Timeout. The per-call
// deadline set by withTimeout is the only bound on a model call.
func callClient(c *http.Client) *http.Client {
	cp := *clientOr(c)
	cp.Timeout = 0
	return &cp
}

// NewProviders builds every adapter from cfg, sharing client for the
// adapters that speak plain HTTP. Adapters without a key are still built and
// fail fast at call time.
func NewProviders(cfg types.LLMConfig, client *http.Client) map[types.ProviderName]Provider {
	client = callClient(client)
	return map[types.ProviderName]Provider{
		types.ProviderOpenAI:      NewOpenAI(cfg.OpenAI, client),
		types.ProviderGemini:      NewGemini(cfg.Gemini, client),
		types.ProviderClaude:      NewClaude(cfg.Claude, client),
		types.ProviderQwen:        NewQwen(cfg.Qwen, client),
		types.ProviderSiliconFlow: NewSiliconFlow(cfg.SiliconFlow, client),
	}
}
