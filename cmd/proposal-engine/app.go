// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/archive"
	"github.com/pdiddy/proposal-engine/internal/httputil"
	"github.com/pdiddy/proposal-engine/internal/llm"
	"github.com/pdiddy/proposal-engine/internal/metrics"
	"github.com/pdiddy/proposal-engine/internal/proposal"
	"github.com/pdiddy/proposal-engine/internal/research"
	"github.com/pdiddy/proposal-engine/internal/resilience"
	"github.com/pdiddy/proposal-engine/internal/scrape"
	"github.com/pdiddy/proposal-engine/internal/search"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// app holds the wired components shared by the subcommands.
type app struct {
	metrics   *metrics.Metrics
	invoker   *llm.Invoker
	pipeline  *research.Pipeline
	arxiv     *search.ArxivClient
	archive   *archive.Store
	generator *proposal.Generator
}

// newApp builds every component from c. The archive is opened only when
// enabled.
func newApp(c *types.Config, log *zap.Logger) (*app, error) {
	client := httputil.NewClient(c.HTTP)
	m := metrics.New()

	registered := llm.NewProviders(c.LLM, client)
	providers := make([]llm.Provider, 0, len(registered))
	for _, name := range types.KnownProviders {
		providers = append(providers, registered[name])
	}
	invoker := llm.NewInvoker(providers, llm.Options{
		Priority:   c.LLM.Priority,
		MaxRetries: c.LLM.MaxRetries,
		RetryDelay: c.LLM.RetryDelay,
		Timeout:    c.LLM.Timeout,
		Log:        log.Named("llm"),
		Observer:   m,
	})

	scraper, err := scrape.New(c.Research, c.HTTP, client)
	if err != nil {
		return nil, err
	}
	pipeline := research.New(search.NewTavily(c.Research, client), scraper, c.Research, log.Named("research"), m)
	arxiv := search.NewArxiv(c.Arxiv, c.HTTP, client)

	a := &app{
		metrics:  m,
		invoker:  invoker,
		pipeline: pipeline,
		arxiv:    arxiv,
	}
	a.generator = &proposal.Generator{
		LLM:           invoker,
		Research:      pipeline,
		Papers:        arxiv,
		PaperPolicy:   resilience.Policy{Attempts: c.Research.Attempts, Delay: c.Research.RetryDelay},
		PaperDelay:    c.Arxiv.PaperDelay,
		ResearchLimit: c.Research.ResultsPerKeyword,
		Log:           log.Named("proposal"),
	}

	if c.Archive.Enabled {
		store, err := archive.Open(c.Archive.Path)
		if err != nil {
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		a.archive = store
		a.generator.Archive = store
	}
	return a, nil
}

func (a *app) Close() error {
	if a.archive != nil {
		return a.archive.Close()
	}
	return nil
}
