// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape fetches single web pages and returns their main content as
// Markdown-style text.
package scrape

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

// Page is the scraped payload. Content is empty when the backend returned
// no Markdown for the page.
type Page struct {
	Content  string         `json:"content"`
	Title    string         `json:"title,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Scraper fetches one page.
type Scraper interface {
	Scrape(ctx context.Context, url string) (Page, error)
}

// New returns the scraper selected by cfg.Scraper.
func New(cfg types.ResearchConfig, httpCfg types.HTTPConfig, client *http.Client) (Scraper, error) {
	switch cfg.Scraper {
	case "", types.ScraperSerper:
		return NewSerper(cfg, client), nil
	case types.ScraperDirect:
		return NewDirect(httpCfg, client), nil
	}
	return nil, fmt.Errorf("unknown scraper %q (want %s or %s)", cfg.Scraper, types.ScraperSerper, types.ScraperDirect)
}
