// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// KeywordQuery is a single web search request.
type KeywordQuery struct {
	Keyword string `json:"keyword" yaml:"keyword"`

	// Limit caps the number of links returned for the keyword.
	Limit int `json:"limit" yaml:"limit"`
}

// SearchLink is one ranked search hit for a keyword.
type SearchLink struct {
	URL           string `json:"url" yaml:"url"`
	SourceKeyword string `json:"source_keyword" yaml:"source_keyword"`
}

// ScrapeRecord is the unit of research output: a keyword, the link it led
// to, and the validated page content.
type ScrapeRecord struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Link    string `json:"link" yaml:"link"`
	Content string `json:"content" yaml:"content"`
}
