// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/proposal-engine/internal/httputil"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// --- Tavily ---

func TestTavilySearch(t *testing.T) {
	var got tavilyRequest
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"answer":"...","results":[
			{"url":"https://zhuanlan.zhihu.com/p/1","title":"a","score":0.9},
			{"url":"https://www.zhihu.com/question/2","title":"b","score":0.8},
			{"url":"","title":"blank"}
		]}`)
	}))
	defer ts.Close()

	c := NewTavily(types.ResearchConfig{TavilyAPIKey: "tvly-key", TavilyBaseURL: ts.URL}, ts.Client())
	urls, err := c.Search(context.Background(), "量子计算", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://zhuanlan.zhihu.com/p/1", "https://www.zhihu.com/question/2"}, urls)

	assert.Equal(t, "Bearer tvly-key", auth)
	assert.Equal(t, tavilyRequest{
		Query:          "量子计算",
		SearchDepth:    "advanced",
		MaxResults:     3,
		TimeRange:      "year",
		IncludeAnswer:  "advanced",
		IncludeDomains: []string{"zhihu.com"},
	}, got)
}

func TestTavilySearch_TruncatesToLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"results":[{"url":"u1"},{"url":"u2"},{"url":"u3"}]}`)
	}))
	defer ts.Close()

	c := NewTavily(types.ResearchConfig{TavilyAPIKey: "k", TavilyBaseURL: ts.URL}, ts.Client())
	urls, err := c.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, urls)
}

func TestTavilySearch_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"detail":"Unauthorized"}`, http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewTavily(types.ResearchConfig{TavilyAPIKey: "bad", TavilyBaseURL: ts.URL}, ts.Client())
	_, err := c.Search(context.Background(), "q", 3)
	var se *httputil.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)

	_, err = NewTavily(types.ResearchConfig{}, nil).Search(context.Background(), "q", 3)
	assert.ErrorContains(t, err, "missing API key")
}

func TestTavilySearch_ZeroLimit(t *testing.T) {
	c := NewTavily(types.ResearchConfig{TavilyAPIKey: "k", TavilyBaseURL: "http://unused.invalid"}, nil)
	urls, err := c.Search(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, urls)
}

// --- arXiv ---

const sampleArxivFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"
      xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/"
      xmlns:arxiv="http://arxiv.org/schemas/atom">
  <title type="html">ArXiv Query</title>
  <opensearch:totalResults>1520</opensearch:totalResults>
  <opensearch:startIndex>0</opensearch:startIndex>
  <opensearch:itemsPerPage>2</opensearch:itemsPerPage>
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <updated>2023-08-02T00:41:18Z</updated>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All You Need</title>
    <summary>
  We propose a new architecture based solely on attention mechanisms.
    </summary>
    <author><name>Ashish Vaswani</name><arxiv:affiliation>Google Brain</arxiv:affiliation></author>
    <author><name>Noam Shazeer</name></author>
    <arxiv:comment>15 pages, 5 figures</arxiv:comment>
    <link href="http://arxiv.org/abs/1706.03762v7" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v7" rel="related" type="application/pdf"/>
    <arxiv:primary_category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.CL" scheme="http://arxiv.org/schemas/atom"/>
    <category term="cs.LG" scheme="http://arxiv.org/schemas/atom"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <updated>2019-05-24T20:37:26Z</updated>
    <published>2018-10-11T00:50:01Z</published>
    <title>BERT: Pre-training of Deep Bidirectional Transformers</title>
    <summary>We introduce BERT.</summary>
    <author><name>Jacob Devlin</name></author>
    <arxiv:doi>10.18653/v1/N19-1423</arxiv:doi>
    <arxiv:journal_ref>NAACL 2019</arxiv:journal_ref>
  </entry>
</feed>`

func TestArxivSearchPapers(t *testing.T) {
	var rawQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		assert.Equal(t, "proposal-engine/test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, sampleArxivFeed)
	}))
	defer ts.Close()

	old := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = old }()

	c := &ArxivClient{MaxResults: 2, UserAgent: "proposal-engine/test", Client: ts.Client()}
	res, err := c.SearchPapers(context.Background(), []string{"attention mechanism", "transformer"})
	require.NoError(t, err)

	assert.Equal(t,
		"search_query=all:%22attention%20mechanism%22+all:%22transformer%22&sortBy=relevance&start=0&max_results=2",
		rawQuery)

	assert.Equal(t, 1520, res.TotalResults)
	assert.Equal(t, 0, res.StartIndex)
	assert.Equal(t, 2, res.ItemsPerPage)
	require.Len(t, res.Entries, 2)

	first := res.Entries[0]
	assert.Equal(t, "http://arxiv.org/abs/1706.03762v7", first.ID)
	assert.Equal(t, "Attention Is All You Need", first.Title)
	assert.Equal(t, "We propose a new architecture based solely on attention mechanisms.", first.Summary)
	assert.Equal(t, "2017-06-12T17:57:34Z", first.Published)
	assert.Equal(t, "2023-08-02T00:41:18Z", first.Updated)
	assert.Equal(t, []types.PaperAuthor{
		{Name: "Ashish Vaswani", Affiliation: "Google Brain"},
		{Name: "Noam Shazeer"},
	}, first.Authors)
	require.Len(t, first.Links, 2)
	assert.Equal(t, types.PaperLink{Href: "http://arxiv.org/pdf/1706.03762v7", Rel: "related", Type: "application/pdf", Title: "pdf"}, first.Links[1])
	assert.Equal(t, "15 pages, 5 figures", first.Comment)
	assert.Equal(t, "cs.CL", first.PrimaryCategory)
	assert.Equal(t, []string{"cs.CL", "cs.LG"}, first.Categories)

	second := res.Entries[1]
	assert.Equal(t, "10.18653/v1/N19-1423", second.DOI)
	assert.Equal(t, "NAACL 2019", second.JournalRef)
	assert.Empty(t, second.PrimaryCategory)
	assert.Nil(t, second.Categories)
}

func TestArxivSearchPapers_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := &ArxivClient{BaseURL: ts.URL, Client: ts.Client()}
	_, err := c.SearchPapers(context.Background(), []string{"x"})
	assert.ErrorContains(t, err, "HTTP 503")

	_, err = c.SearchPapers(context.Background(), []string{" ", ""})
	assert.ErrorContains(t, err, "empty arXiv query")
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		group []string
		want  string
	}{
		{[]string{"quantum computing"}, "all:%22quantum%20computing%22"},
		{[]string{"a", "b"}, "all:%22a%22+all:%22b%22"},
		{[]string{"R&D", "c++"}, "all:%22R%26D%22+all:%22c%2B%2B%22"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := buildArxivQuery(tt.group); got != tt.want {
			t.Errorf("buildArxivQuery(%q) = %q, want %q", tt.group, got, tt.want)
		}
	}
}

func TestArxivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"http://arxiv.org/abs/hep-th/9901001v1", "hep-th/9901001"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ArxivID(tt.input); got != tt.want {
				t.Errorf("ArxivID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
