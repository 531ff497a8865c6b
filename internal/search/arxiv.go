// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/proposal-engine/internal/httputil"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "http://export.arxiv.org/api/query"

const defaultArxivMaxResults = 10

// ArxivClient queries the arXiv Atom API.
type ArxivClient struct {
	// BaseURL overrides arxivAPIBase when set.
	BaseURL string

	// Start is the zero-based offset of the first result.
	Start int

	// MaxResults is the page size (default 10).
	MaxResults int

	UserAgent string
	Client    *http.Client
}

// NewArxiv builds a client from the arXiv and HTTP settings.
func NewArxiv(cfg types.ArxivConfig, httpCfg types.HTTPConfig, client *http.Client) *ArxivClient {
	return &ArxivClient{
		BaseURL:    cfg.BaseURL,
		MaxResults: cfg.MaxResults,
		UserAgent:  httpCfg.UserAgent,
		Client:     client,
	}
}

// SearchPapers returns the entries matching every phrase of group, sorted
// by relevance.
func (c *ArxivClient) SearchPapers(ctx context.Context, group []string) (types.PaperSearchResult, error) {
	q := buildArxivQuery(group)
	if q == "" {
		return types.PaperSearchResult{}, errors.New("empty arXiv query")
	}

	base := c.BaseURL
	if base == "" {
		base = arxivAPIBase
	}
	maxResults := c.MaxResults
	if maxResults <= 0 {
		maxResults = defaultArxivMaxResults
	}

	// search_query is already escaped; url.Values would re-escape the % signs.
	u := fmt.Sprintf("%s?search_query=%s&sortBy=relevance&start=%d&max_results=%d", base, q, c.Start, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return types.PaperSearchResult{}, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.Client, req, 0)
	if err != nil {
		return types.PaperSearchResult{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.PaperSearchResult{}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return types.PaperSearchResult{}, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return feed.result(), nil
}

// buildArxivQuery quotes each phrase and joins them with "+", the arXiv
// encoding of a space, e.g. all:%22graph%20neural%20network%22+all:%22gnn%22.
func buildArxivQuery(group []string) string {
	var parts []string
	for _, kw := range group {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		quoted := strings.ReplaceAll(url.QueryEscape(`"`+kw+`"`), "+", "%20")
		parts = append(parts, "all:"+quoted)
	}
	return strings.Join(parts, "+")
}

// Atom feed with the OpenSearch and arXiv extensions. Elements are matched
// by local name.
type arxivFeed struct {
	TotalResults string       `xml:"totalResults"`
	StartIndex   string       `xml:"startIndex"`
	ItemsPerPage string       `xml:"itemsPerPage"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string        `xml:"id"`
	Title           string        `xml:"title"`
	Summary         string        `xml:"summary"`
	Published       string        `xml:"published"`
	Updated         string        `xml:"updated"`
	Authors         []arxivAuthor `xml:"author"`
	Links           []arxivLink   `xml:"link"`
	DOI             string        `xml:"doi"`
	Comment         string        `xml:"comment"`
	JournalRef      string        `xml:"journal_ref"`
	PrimaryCategory *arxivTerm    `xml:"primary_category"`
	Categories      []arxivTerm   `xml:"category"`
}

type arxivAuthor struct {
	Name        string `xml:"name"`
	Affiliation string `xml:"affiliation"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Type  string `xml:"type,attr"`
	Title string `xml:"title,attr"`
}

type arxivTerm struct {
	Term string `xml:"term,attr"`
}

func (f arxivFeed) result() types.PaperSearchResult {
	out := types.PaperSearchResult{
		TotalResults: atoi(f.TotalResults),
		StartIndex:   atoi(f.StartIndex),
		ItemsPerPage: atoi(f.ItemsPerPage),
		Entries:      make([]types.PaperRecord, 0, len(f.Entries)),
	}
	for _, e := range f.Entries {
		rec := types.PaperRecord{
			ID:         strings.TrimSpace(e.ID),
			Title:      strings.TrimSpace(e.Title),
			Summary:    strings.TrimSpace(e.Summary),
			Published:  strings.TrimSpace(e.Published),
			Updated:    strings.TrimSpace(e.Updated),
			Authors:    []types.PaperAuthor{},
			Links:      []types.PaperLink{},
			DOI:        strings.TrimSpace(e.DOI),
			Comment:    strings.TrimSpace(e.Comment),
			JournalRef: strings.TrimSpace(e.JournalRef),
		}
		for _, a := range e.Authors {
			rec.Authors = append(rec.Authors, types.PaperAuthor{
				Name:        strings.TrimSpace(a.Name),
				Affiliation: strings.TrimSpace(a.Affiliation),
			})
		}
		for _, l := range e.Links {
			rec.Links = append(rec.Links, types.PaperLink{Href: l.Href, Rel: l.Rel, Type: l.Type, Title: l.Title})
		}
		if e.PrimaryCategory != nil {
			rec.PrimaryCategory = e.PrimaryCategory.Term
		}
		for _, c := range e.Categories {
			rec.Categories = append(rec.Categories, c.Term)
		}
		out.Entries = append(out.Entries, rec)
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

// ArxivID pulls the bare arXiv ID from an entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func ArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
