// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the web-search and bibliographic APIs that feed
// the research pipeline and the proposal generator.
package search

import (
	"context"

	"github.com/pdiddy/proposal-engine/pkg/types"
)

// Searcher returns up to limit result URLs for keyword, best match first.
type Searcher interface {
	Search(ctx context.Context, keyword string, limit int) ([]string, error)
}

// PaperSearcher looks up papers matching every phrase in group.
type PaperSearcher interface {
	SearchPapers(ctx context.Context, group []string) (types.PaperSearchResult, error)
}
