// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the proposal-engine
// pipeline: generation requests, research records, arXiv papers, proposal
// requests, and the process configuration.
package types

import (
	"fmt"
	"strings"
	"time"
)

// ProviderName identifies an LLM generation backend.
type ProviderName string

const (
	// ProviderAuto selects the fallback invoker instead of a single provider.
	ProviderAuto        ProviderName = "auto"
	ProviderOpenAI      ProviderName = "openai"
	ProviderGemini      ProviderName = "gemini"
	ProviderClaude      ProviderName = "claude"
	ProviderQwen        ProviderName = "qwen"
	ProviderSiliconFlow ProviderName = "siliconflow"
)

// KnownProviders lists every concrete provider in the default priority order.
var KnownProviders = []ProviderName{
	ProviderGemini,
	ProviderOpenAI,
	ProviderSiliconFlow,
	ProviderQwen,
	ProviderClaude,
}

// ParseProviderName normalizes s and reports whether it names auto or a
// known provider. An empty string is auto.
func ParseProviderName(s string) (ProviderName, bool) {
	name := ProviderName(strings.ToLower(strings.TrimSpace(s)))
	if name == "" || name == ProviderAuto {
		return ProviderAuto, true
	}
	for _, p := range KnownProviders {
		if p == name {
			return name, true
		}
	}
	return name, false
}

// GenerationRequest is one prompt submitted for text generation.
type GenerationRequest struct {
	// Prompt is the full text sent to the model.
	Prompt string `json:"prompt" yaml:"prompt"`

	// Provider is ProviderAuto for fallback across all providers, or the
	// name of a single provider to call without fallback.
	Provider ProviderName `json:"provider" yaml:"provider"`

	// Timeout bounds each individual provider call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ProviderResult records the outcome of one provider attempt.
type ProviderResult struct {
	Provider  ProviderName  `json:"provider"`
	Text      string        `json:"text,omitempty"`
	Succeeded bool          `json:"succeeded"`
	Err       error         `json:"-"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Outcome returns a short label for metrics and logs: "ok", "empty", or "error".
func (r ProviderResult) Outcome() string {
	switch {
	case r.Succeeded:
		return "ok"
	case r.Err != nil:
		return "error"
	default:
		return "empty"
	}
}

func (r ProviderResult) String() string {
	return fmt.Sprintf("%s:%s", r.Provider, r.Outcome())
}
