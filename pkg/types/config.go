// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by every network client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout for search, scrape, and arXiv calls.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "proposal-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ProviderConfig configures a single LLM provider adapter.
type ProviderConfig struct {
	// APIKey authenticates against the provider. Empty disables the provider
	// at call time (the adapter fails fast).
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Model is the model identifier sent with every request.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// BaseURL overrides the provider endpoint root.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// LLMConfig holds the fallback policy and per-provider settings.
type LLMConfig struct {
	// Priority is the provider order tried on every fallback pass.
	Priority []ProviderName `json:"priority" yaml:"priority" mapstructure:"priority"`

	// MaxRetries is the number of full passes over Priority (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RetryDelay is the wait between passes (default 5s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`

	// Timeout is the default per-call timeout when a request sets none.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	OpenAI      ProviderConfig `json:"openai" yaml:"openai" mapstructure:"openai"`
	Gemini      ProviderConfig `json:"gemini" yaml:"gemini" mapstructure:"gemini"`
	Claude      ProviderConfig `json:"claude" yaml:"claude" mapstructure:"claude"`
	Qwen        ProviderConfig `json:"qwen" yaml:"qwen" mapstructure:"qwen"`
	SiliconFlow ProviderConfig `json:"siliconflow" yaml:"siliconflow" mapstructure:"siliconflow"`
}

// Provider returns the settings block for name.
func (c LLMConfig) Provider(name ProviderName) ProviderConfig {
	switch name {
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderGemini:
		return c.Gemini
	case ProviderClaude:
		return c.Claude
	case ProviderQwen:
		return c.Qwen
	case ProviderSiliconFlow:
		return c.SiliconFlow
	}
	return ProviderConfig{}
}

// ScraperBackend selects the single-page scraper.
type ScraperBackend string

const (
	ScraperSerper ScraperBackend = "serper"
	ScraperDirect ScraperBackend = "direct"
)

// ResearchConfig holds settings for the search-then-scrape pipeline.
type ResearchConfig struct {
	// Attempts is the retry budget of each search and scrape call (default 3).
	Attempts int `json:"attempts" yaml:"attempts" mapstructure:"attempts"`

	// RetryDelay is the fixed wait between attempts (default 5s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`

	// ResultsPerKeyword caps search links per keyword (default 3).
	ResultsPerKeyword int `json:"results_per_keyword" yaml:"results_per_keyword" mapstructure:"results_per_keyword"`

	// IncludeDomains restricts web search to these domains.
	IncludeDomains []string `json:"include_domains" yaml:"include_domains" mapstructure:"include_domains"`

	// Scraper selects the page scraper: serper or direct.
	Scraper ScraperBackend `json:"scraper" yaml:"scraper" mapstructure:"scraper"`

	TavilyAPIKey  string `json:"tavily_api_key,omitempty" yaml:"tavily_api_key,omitempty" mapstructure:"tavily_api_key"`
	TavilyBaseURL string `json:"tavily_base_url,omitempty" yaml:"tavily_base_url,omitempty" mapstructure:"tavily_base_url"`
	SerperAPIKey  string `json:"serper_api_key,omitempty" yaml:"serper_api_key,omitempty" mapstructure:"serper_api_key"`
	SerperBaseURL string `json:"serper_base_url,omitempty" yaml:"serper_base_url,omitempty" mapstructure:"serper_base_url"`
}

// ArxivConfig holds settings for the bibliographic search.
type ArxivConfig struct {
	// BaseURL is the arXiv query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxResults is the page size of each keyword-group query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// PaperDelay is the pause after each successful group query (default 2s).
	PaperDelay time.Duration `json:"paper_delay" yaml:"paper_delay" mapstructure:"paper_delay"`
}

// ServerConfig holds settings for the HTTP front end.
type ServerConfig struct {
	Addr           string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
	// MaterialsRoot is the directory HTTP callers may name materialFiles
	// in. Empty rejects every materialFiles entry.
	MaterialsRoot string `json:"materials_root" yaml:"materials_root" mapstructure:"materials_root"`
}

// ArchiveConfig controls the optional SQLite record of completed runs.
type ArchiveConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// Config groups every setting of the process. It is loaded once at startup
// and treated as immutable afterwards.
type Config struct {
	HTTP     HTTPConfig     `json:"http" yaml:"http" mapstructure:"http"`
	LLM      LLMConfig      `json:"llm" yaml:"llm" mapstructure:"llm"`
	Research ResearchConfig `json:"research" yaml:"research" mapstructure:"research"`
	Arxiv    ArxivConfig    `json:"arxiv" yaml:"arxiv" mapstructure:"arxiv"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Archive  ArchiveConfig  `json:"archive" yaml:"archive" mapstructure:"archive"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
