// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research gathers web material for a list of keywords: it searches
// each keyword, scrapes every hit, and keeps the pages whose content is
// usable.
//
// The run is strictly sequential and never fails as a whole. A keyword whose
// search exhausts its retries contributes nothing; a page whose scrape
// exhausts its retries, comes back empty, or shows the verification wall is
// dropped.
package research

import (
	"context"

	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/logging"
	"github.com/pdiddy/proposal-engine/internal/metrics"
	"github.com/pdiddy/proposal-engine/internal/resilience"
	"github.com/pdiddy/proposal-engine/internal/scrape"
	"github.com/pdiddy/proposal-engine/internal/search"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// VerificationWall is the page body served instead of the article when the
// site suspects automated access. It is matched exactly.
const VerificationWall = "# 安全验证\n\n## 进入知乎\n\n系统监测到您的网络环境存在异常，为保证您的正常访问，请点击下方验证按钮进行验证。在您验证完成前，该提示将多次出现。"

// Pipeline runs search-then-scrape over keywords.
type Pipeline struct {
	Searcher search.Searcher
	Scraper  scrape.Scraper

	// Policy is applied to every search and every scrape call.
	Policy resilience.Policy

	// Sentinel replaces VerificationWall when set.
	Sentinel string

	Log     *zap.Logger
	Metrics *metrics.Metrics
}

// New returns a pipeline with the given collaborators and retry settings.
func New(s search.Searcher, sc scrape.Scraper, cfg types.ResearchConfig, log *zap.Logger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		Searcher: s,
		Scraper:  sc,
		Policy:   resilience.Policy{Attempts: cfg.Attempts, Delay: cfg.RetryDelay},
		Log:      log,
		Metrics:  m,
	}
}

// Run processes keywords in order and returns the surviving records, in
// keyword order and then search rank. limit caps the links per keyword.
// Duplicate links across keywords are kept.
//
// When ctx is cancelled Run stops and returns what it has gathered.
func (p *Pipeline) Run(ctx context.Context, keywords []string, limit int) []types.ScrapeRecord {
	log := logging.OrNop(p.Log)
	sentinel := p.Sentinel
	if sentinel == "" {
		sentinel = VerificationWall
	}

	records := []types.ScrapeRecord{}
	for _, kw := range keywords {
		if ctx.Err() != nil {
			break
		}

		links := p.links(ctx, kw, limit, log)
		log.Info("search complete", zap.String("keyword", kw), zap.Int("links", len(links)))

		for _, link := range links {
			if ctx.Err() != nil {
				break
			}
			page := resilience.Fetch(ctx, p.Policy, log, "scrape "+link.URL, func(ctx context.Context) (scrape.Page, error) {
				return p.Scraper.Scrape(ctx, link.URL)
			})

			switch page.Content {
			case "":
				p.Metrics.ObserveFiltered(metrics.ReasonEmpty)
				continue
			case sentinel:
				p.Metrics.ObserveFiltered(metrics.ReasonSentinel)
				log.Debug("verification wall dropped", zap.String("link", link.URL))
				continue
			}

			records = append(records, types.ScrapeRecord{
				Keyword: link.SourceKeyword,
				Link:    link.URL,
				Content: page.Content,
			})
			p.Metrics.ObserveRecord()
		}
	}

	if err := ctx.Err(); err != nil {
		log.Warn("research interrupted", zap.Error(err), zap.Int("records", len(records)))
	}
	return records
}

// links searches one keyword through the retry policy.
func (p *Pipeline) links(ctx context.Context, kw string, limit int, log *zap.Logger) []types.SearchLink {
	urls := resilience.Fetch(ctx, p.Policy, log, "search "+kw, func(ctx context.Context) ([]string, error) {
		return p.Searcher.Search(ctx, kw, limit)
	})

	links := make([]types.SearchLink, 0, len(urls))
	for _, u := range urls {
		links = append(links, types.SearchLink{URL: u, SourceKeyword: kw})
	}
	return links
}
