// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/proposal-engine/internal/httputil"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

const serperBaseURL = "https://scrape.serper.dev"

// SerperScraper renders pages through the Serper scrape API.
type SerperScraper struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewSerper builds a scraper from the research settings.
func NewSerper(cfg types.ResearchConfig, client *http.Client) *SerperScraper {
	s := &SerperScraper{APIKey: cfg.SerperAPIKey, BaseURL: cfg.SerperBaseURL, Client: client}
	if s.BaseURL == "" {
		s.BaseURL = serperBaseURL
	}
	return s
}

type serperRequest struct {
	URL             string `json:"url"`
	IncludeMarkdown bool   `json:"includeMarkdown"`
}

type serperResponse struct {
	Text     string         `json:"text"`
	Markdown *string        `json:"markdown"`
	Metadata map[string]any `json:"metadata"`
}

// Scrape requests the Markdown rendering of url. A reply without a markdown
// field yields a Page with empty content.
func (s *SerperScraper) Scrape(ctx context.Context, url string) (Page, error) {
	if s.APIKey == "" {
		return Page{}, errors.New("serper: missing API key")
	}

	var resp serperResponse
	headers := map[string]string{"X-API-KEY": s.APIKey}
	if err := httputil.PostJSON(ctx, s.Client, s.BaseURL, headers, serperRequest{URL: url, IncludeMarkdown: true}, &resp); err != nil {
		return Page{}, fmt.Errorf("serper scrape %s: %w", url, err)
	}

	page := Page{Metadata: resp.Metadata}
	if resp.Markdown != nil {
		page.Content = *resp.Markdown
	}
	if title, ok := resp.Metadata["title"].(string); ok {
		page.Title = title
	}
	return page, nil
}
