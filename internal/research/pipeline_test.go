// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/proposal-engine/internal/metrics"
	"github.com/pdiddy/proposal-engine/internal/resilience"
	"github.com/pdiddy/proposal-engine/internal/scrape"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

var errDown = errors.New("service down")

type fakeSearcher struct {
	results map[string][]string
	fail    map[string]int // failures before success; -1 = always
	calls   map[string]int
}

func (f *fakeSearcher) Search(_ context.Context, kw string, limit int) ([]string, error) {
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[kw]++
	if n, ok := f.fail[kw]; ok && (n < 0 || f.calls[kw] <= n) {
		return nil, errDown
	}
	urls := f.results[kw]
	if len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

type fakeScraper struct {
	pages map[string]string
	fail  map[string]bool
	calls []string
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (scrape.Page, error) {
	f.calls = append(f.calls, url)
	if f.fail[url] {
		return scrape.Page{}, errDown
	}
	return scrape.Page{Content: f.pages[url]}, nil
}

func newPipeline(t *testing.T, s *fakeSearcher, sc *fakeScraper) *Pipeline {
	return &Pipeline{
		Searcher: s,
		Scraper:  sc,
		Policy:   resilience.Policy{Attempts: 3, Delay: time.Millisecond},
		Log:      zaptest.NewLogger(t),
	}
}

func TestRun_SentinelFiltered(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"k": {"L"}}}
	sc := &fakeScraper{pages: map[string]string{"L": VerificationWall}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"k"}, 3)
	assert.Empty(t, got)
}

func TestRun_SentinelLookalikeKept(t *testing.T) {
	// Only an exact match is the verification wall.
	s := &fakeSearcher{results: map[string][]string{"k": {"L"}}}
	sc := &fakeScraper{pages: map[string]string{"L": VerificationWall + "\n"}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"k"}, 3)
	assert.Len(t, got, 1)
}

func TestRun_DistinctContentKept(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"k": {"L"}}}
	sc := &fakeScraper{pages: map[string]string{"L": "real content"}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"k"}, 3)
	assert.Equal(t, []types.ScrapeRecord{{Keyword: "k", Link: "L", Content: "real content"}}, got)
}

func TestRun_Ordering(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		"K1": {"L1a", "L1b"},
		"K2": {"L2a"},
	}}
	sc := &fakeScraper{pages: map[string]string{"L1a": "a", "L1b": "b", "L2a": "c"}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"K1", "K2"}, 3)
	require.Len(t, got, 3)
	assert.Equal(t, []types.ScrapeRecord{
		{Keyword: "K1", Link: "L1a", Content: "a"},
		{Keyword: "K1", Link: "L1b", Content: "b"},
		{Keyword: "K2", Link: "L2a", Content: "c"},
	}, got)
}

func TestRun_FailedKeywordContinues(t *testing.T) {
	s := &fakeSearcher{
		results: map[string][]string{"bad": {"x"}, "good": {"G"}},
		fail:    map[string]int{"bad": -1},
	}
	sc := &fakeScraper{pages: map[string]string{"G": "g"}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"bad", "good"}, 3)
	assert.Equal(t, []types.ScrapeRecord{{Keyword: "good", Link: "G", Content: "g"}}, got)
	assert.Equal(t, 3, s.calls["bad"], "search retried up to the policy budget")
	assert.Equal(t, []string{"G"}, sc.calls)
}

func TestRun_SearchRecoversOnRetry(t *testing.T) {
	s := &fakeSearcher{
		results: map[string][]string{"k": {"L"}},
		fail:    map[string]int{"k": 2},
	}
	sc := &fakeScraper{pages: map[string]string{"L": "page"}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"k"}, 3)
	assert.Len(t, got, 1)
	assert.Equal(t, 3, s.calls["k"])
}

func TestRun_FailedScrapeAndEmptyDropped(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"k": {"broken", "empty", "ok"}}}
	sc := &fakeScraper{
		pages: map[string]string{"empty": "", "ok": "fine"},
		fail:  map[string]bool{"broken": true},
	}
	m := metrics.New()
	p := newPipeline(t, s, sc)
	p.Metrics = m

	got := p.Run(context.Background(), []string{"k"}, 3)
	assert.Equal(t, []types.ScrapeRecord{{Keyword: "k", Link: "ok", Content: "fine"}}, got)
	assert.Equal(t, []string{"broken", "broken", "broken", "empty", "ok"}, sc.calls)

	// The failed scrape degrades to an empty page and is counted with it.
	expected := `
# HELP proposal_scrape_filtered_total Scraped pages dropped by the validity filter, labeled by reason.
# TYPE proposal_scrape_filtered_total counter
proposal_scrape_filtered_total{reason="empty"} 2
# HELP proposal_research_records_total Scrape records kept by the research pipeline.
# TYPE proposal_research_records_total counter
proposal_research_records_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"proposal_scrape_filtered_total", "proposal_research_records_total"))
}

func TestRun_NoDeduplication(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"a": {"L"}, "b": {"L"}}}
	sc := &fakeScraper{pages: map[string]string{"L": "same"}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"a", "b"}, 3)
	assert.Len(t, got, 2)
}

func TestRun_LimitPassedToSearch(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{"k": {"1", "2", "3", "4"}}}
	sc := &fakeScraper{pages: map[string]string{"1": "a", "2": "b", "3": "c", "4": "d"}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"k"}, 2)
	assert.Len(t, got, 2)
}

func TestRun_CancelledReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &fakeSearcher{results: map[string][]string{"k1": {"L1"}, "k2": {"L2"}}}
	sc := &cancellingScraper{pages: map[string]string{"L1": "one", "L2": "two"}, cancel: cancel}

	p := &Pipeline{Searcher: s, Scraper: sc, Policy: resilience.Policy{Attempts: 1}}
	got := p.Run(ctx, []string{"k1", "k2"}, 3)
	assert.Equal(t, []types.ScrapeRecord{{Keyword: "k1", Link: "L1", Content: "one"}}, got)
}

// cancellingScraper cancels the run after the first page.
type cancellingScraper struct {
	pages  map[string]string
	cancel context.CancelFunc
}

func (c *cancellingScraper) Scrape(_ context.Context, url string) (scrape.Page, error) {
	defer c.cancel()
	return scrape.Page{Content: c.pages[url]}, nil
}

// TestRun_QuantumComputing walks the documented end-to-end scenario: two
// links, one behind the verification wall.
func TestRun_QuantumComputing(t *testing.T) {
	s := &fakeSearcher{results: map[string][]string{
		"quantum computing": {"https://zhuanlan.zhihu.com/p/a", "https://zhuanlan.zhihu.com/p/b"},
	}}
	sc := &fakeScraper{pages: map[string]string{
		"https://zhuanlan.zhihu.com/p/a": "# 量子计算入门\n\n量子比特可以处于叠加态。",
		"https://zhuanlan.zhihu.com/p/b": VerificationWall,
	}}

	got := newPipeline(t, s, sc).Run(context.Background(), []string{"quantum computing"}, 3)
	require.Len(t, got, 1)
	assert.Equal(t, "quantum computing", got[0].Keyword)
	assert.Equal(t, "https://zhuanlan.zhihu.com/p/a", got[0].Link)
	assert.Contains(t, got[0].Content, "量子比特")
}
