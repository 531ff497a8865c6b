// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/proposal-engine/internal/httputil"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

const tavilyBaseURL = "https://api.tavily.com"

// DefaultIncludeDomains restricts web search when no domains are configured.
var DefaultIncludeDomains = []string{"zhihu.com"}

// TavilyClient searches the web through the Tavily search API.
type TavilyClient struct {
	APIKey         string
	BaseURL        string
	IncludeDomains []string
	Client         *http.Client
}

// NewTavily builds a client from the research settings.
func NewTavily(cfg types.ResearchConfig, client *http.Client) *TavilyClient {
	t := &TavilyClient{
		APIKey:         cfg.TavilyAPIKey,
		BaseURL:        cfg.TavilyBaseURL,
		IncludeDomains: cfg.IncludeDomains,
		Client:         client,
	}
	if t.BaseURL == "" {
		t.BaseURL = tavilyBaseURL
	}
	if len(t.IncludeDomains) == 0 {
		t.IncludeDomains = DefaultIncludeDomains
	}
	return t
}

type tavilyRequest struct {
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	MaxResults     int      `json:"max_results"`
	TimeRange      string   `json:"time_range"`
	IncludeAnswer  string   `json:"include_answer"`
	IncludeDomains []string `json:"include_domains"`
}

type tavilyResponse struct {
	Results []struct {
		URL   string  `json:"url"`
		Title string  `json:"title"`
		Score float64 `json:"score"`
	} `json:"results"`
}

// Search runs an advanced search over the past year and returns the result
// URLs in ranked order.
func (t *TavilyClient) Search(ctx context.Context, keyword string, limit int) ([]string, error) {
	if t.APIKey == "" {
		return nil, errors.New("tavily: missing API key")
	}
	if limit <= 0 {
		return nil, nil
	}

	req := tavilyRequest{
		Query:          keyword,
		SearchDepth:    "advanced",
		MaxResults:     limit,
		TimeRange:      "year",
		IncludeAnswer:  "advanced",
		IncludeDomains: t.IncludeDomains,
	}
	headers := map[string]string{"Authorization": "Bearer " + t.APIKey}

	var resp tavilyResponse
	url := strings.TrimRight(t.BaseURL, "/") + "/search"
	client := t.Client
	if client == nil {
		client = http.DefaultClient
	}
	if err := httputil.PostJSON(ctx, client, url, headers, req, &resp); err != nil {
		return nil, fmt.Errorf("tavily search %q: %w", keyword, err)
	}

	urls := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}
