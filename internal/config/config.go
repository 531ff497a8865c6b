// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the process configuration from a YAML file,
// PROPOSAL_ENGINE_* environment variables, the secrets directory, the
// provider API key variables, and a .env file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/secrets"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// Name is the config file base name and the directory name under
// ~/.config.
const Name = "proposal-engine"

// EnvPrefix prefixes every environment override, e.g.
// PROPOSAL_ENGINE_LLM_MAX_RETRIES.
const EnvPrefix = "PROPOSAL_ENGINE"

// Options controls where Load looks.
type Options struct {
	// File is an explicit config file. Empty searches ./proposal-engine.yaml
	// and ~/.config/proposal-engine/proposal-engine.yaml.
	File string

	// SecretsDir holds one file per API key (default .secrets/).
	SecretsDir string

	// Getenv reads the provider key variables. Nil uses os.Getenv.
	Getenv func(string) string

	// EnvFile is a dotenv file consulted after the environment (default
	// .env). A missing file is ignored.
	EnvFile string

	Log *zap.Logger
}

// keySource ties a config key to its secrets file and legacy variable.
type keySource struct {
	key    string
	secret string
	env    string
}

var keySources = []keySource{
	{"llm.openai.api_key", secrets.OpenAIKey, "OPENAI_API_KEY"},
	{"llm.gemini.api_key", secrets.GeminiKey, "GEMINI_API_KEY"},
	{"llm.claude.api_key", secrets.ClaudeKey, "CLAUDE_API_KEY"},
	{"llm.qwen.api_key", secrets.QwenKey, "ALI_BAILIAN_API_KEY"},
	{"llm.siliconflow.api_key", secrets.SiliconFlowKey, "SILICONFLOW_API_KEY"},
	{"research.tavily_api_key", secrets.TavilyKey, "TAVILY_API_KEY"},
	{"research.serper_api_key", secrets.SerperKey, "SERPER_API_KEY"},
}

// SetDefaults registers every key with its default value. Registering
// keys is also what lets AutomaticEnv override them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.timeout", 60*time.Second)
	v.SetDefault("http.user_agent", "proposal-engine/0.1")

	v.SetDefault("llm.priority", []string{"gemini", "openai", "siliconflow", "qwen", "claude"})
	v.SetDefault("llm.max_retries", 3)
	v.SetDefault("llm.retry_delay", 5*time.Second)
	v.SetDefault("llm.timeout", 60*time.Second)
	for _, p := range types.KnownProviders {
		v.SetDefault("llm."+string(p)+".api_key", "")
		v.SetDefault("llm."+string(p)+".model", "")
		v.SetDefault("llm."+string(p)+".base_url", "")
	}

	v.SetDefault("research.attempts", 3)
	v.SetDefault("research.retry_delay", 5*time.Second)
	v.SetDefault("research.results_per_keyword", 3)
	v.SetDefault("research.include_domains", []string{"zhihu.com"})
	v.SetDefault("research.scraper", string(types.ScraperSerper))
	v.SetDefault("research.tavily_api_key", "")
	v.SetDefault("research.tavily_base_url", "")
	v.SetDefault("research.serper_api_key", "")
	v.SetDefault("research.serper_base_url", "")

	v.SetDefault("arxiv.base_url", "http://export.arxiv.org/api/query")
	v.SetDefault("arxiv.max_results", 10)
	v.SetDefault("arxiv.paper_delay", 2*time.Second)

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.request_timeout", 10*time.Minute)
	v.SetDefault("server.materials_root", "data/materials")

	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.path", filepath.Join("data", "proposals.db"))

	v.SetDefault("log.development", false)
}

// New returns a viper instance with defaults, the file search path, and
// environment overrides configured. Callers may bind flags to it before
// calling Load.
func New(opts Options) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any), merges API keys from the secrets
// directory and the provider environment variables, and decodes the result.
// A missing config file is not an error; a malformed one is.
func Load(v *viper.Viper, opts Options) (*types.Config, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		log.Debug("using config file", zap.String("path", v.ConfigFileUsed()))
	}

	dir := opts.SecretsDir
	if dir == "" {
		dir = secrets.DefaultDir
	}
	loaded, err := secrets.Load(dir, log)
	if err != nil {
		return nil, err
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	for _, src := range keySources {
		if v.GetString(src.key) != "" {
			continue
		}
		if s, ok := loaded[src.secret]; ok {
			v.Set(src.key, s)
			log.Debug("api key from secrets", zap.String("key", src.key))
			continue
		}
		if e := getenv(src.env); e != "" {
			v.Set(src.key, e)
		} else if e := dotenv[src.env]; e != "" {
			v.Set(src.key, e)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readEnvFile parses path (default .env) without touching the process
// environment.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		path = ".env"
	}
	vals, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return vals, nil
}

// Validate rejects settings no component can run with.
func Validate(cfg *types.Config) error {
	for _, p := range cfg.LLM.Priority {
		if _, ok := types.ParseProviderName(string(p)); !ok || p == types.ProviderAuto {
			return fmt.Errorf("llm.priority: unknown provider %q", p)
		}
	}
	switch cfg.Research.Scraper {
	case types.ScraperSerper, types.ScraperDirect:
	default:
		return fmt.Errorf("research.scraper: unknown backend %q", cfg.Research.Scraper)
	}
	if cfg.LLM.MaxRetries < 0 || cfg.Research.Attempts < 0 {
		return errors.New("retry counts must not be negative")
	}
	return nil
}
