// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package proposal produces a thesis proposal and an experiment design from
// a title and research plan. Before drafting, it gathers web research and
// arXiv references, both of which are best effort: their failures are
// logged and the drafts are written with whatever context is available.
package proposal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/proposal-engine/internal/extract"
	"github.com/pdiddy/proposal-engine/internal/logging"
	"github.com/pdiddy/proposal-engine/internal/resilience"
	"github.com/pdiddy/proposal-engine/internal/search"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

const (
	keywordTimeout = 60 * time.Second
	draftTimeout   = 120 * time.Second

	defaultResearchLimit = 3
	defaultPaperDelay    = 2 * time.Second
)

// ErrInvalidRequest is wrapped by every validation failure.
var ErrInvalidRequest = errors.New("invalid proposal request")

// TextGenerator produces text for a prompt; *llm.Invoker implements it.
type TextGenerator interface {
	Generate(ctx context.Context, req types.GenerationRequest) (string, error)
}

// Researcher gathers web material for keywords; *research.Pipeline
// implements it.
type Researcher interface {
	Run(ctx context.Context, keywords []string, limit int) []types.ScrapeRecord
}

// Recorder stores a finished run and returns its ID.
type Recorder interface {
	Record(ctx context.Context, req types.ProposalRequest, res types.ProposalResult) (string, error)
}

// Generator runs the proposal workflow. LLM is required; Research, Papers,
// and Archive are optional.
type Generator struct {
	LLM      TextGenerator
	Research Researcher
	Papers   search.PaperSearcher
	Archive  Recorder

	// PaperPolicy retries each arXiv query.
	PaperPolicy resilience.Policy

	// PaperDelay is the pause after each successful arXiv query (default 2s).
	PaperDelay time.Duration

	// ResearchLimit caps links per search keyword (default 3).
	ResearchLimit int

	Log *zap.Logger
}

// Normalize validates req and fills the default level and country.
func Normalize(req types.ProposalRequest) (types.ProposalRequest, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Details = strings.TrimSpace(req.Details)
	if req.Title == "" && req.Details == "" {
		return req, fmt.Errorf("%w: 请提供论文标题或研究方案", ErrInvalidRequest)
	}

	level, ok := types.ParseAcademicLevel(string(req.AcademicLevel))
	if !ok {
		return req, fmt.Errorf("%w: 学术层次必须是以下之一: %s", ErrInvalidRequest, joinLevels())
	}
	country, ok := types.ParseCountry(string(req.Country))
	if !ok {
		return req, fmt.Errorf("%w: 国家必须是以下之一: %s", ErrInvalidRequest, joinCountries())
	}
	req.AcademicLevel = level
	req.Country = country
	return req, nil
}

func joinLevels() string {
	parts := make([]string, len(types.AcademicLevels))
	for i, l := range types.AcademicLevels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}

func joinCountries() string {
	parts := make([]string, len(types.Countries))
	for i, c := range types.Countries {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

// Generate runs the workflow: research keywords and web research, arXiv
// keyword groups and paper search (skipped when paper materials are given),
// then the proposal and the experiment design.
//
// Only drafting failures are returned. When the experiment design fails
// the returned result still carries the proposal.
func (g *Generator) Generate(ctx context.Context, req types.ProposalRequest) (types.ProposalResult, error) {
	log := logging.OrNop(g.Log)

	req, err := Normalize(req)
	if err != nil {
		return types.ProposalResult{}, err
	}
	if g.LLM == nil {
		return types.ProposalResult{}, errors.New("proposal: no text generator configured")
	}

	result := types.ProposalResult{
		Research: []types.ScrapeRecord{},
		Papers:   []types.PaperRecord{},
	}
	proposals, experiments, papers := splitMaterials(req.Materials)
	complete := req.Title != "" && req.Details != ""

	log.Info("generating proposal",
		zap.String("title", req.Title),
		zap.String("level", string(req.AcademicLevel)),
		zap.String("country", string(req.Country)),
		zap.Int("materials", len(req.Materials)))

	if complete {
		result.Keywords, result.Research = g.gatherResearch(ctx, req, log)
	}

	var paperContext any = result.Papers
	switch {
	case len(papers) > 0:
		paperContext = papers
	case complete:
		result.PaperKeywords, result.Papers = g.gatherPapers(ctx, req, log)
		paperContext = result.Papers
	}

	data := promptData{
		Title:   req.Title,
		Details: req.Details,
		Level:   string(req.AcademicLevel),
		Country: string(req.Country),
	}
	if data.Background, err = toJSON(backgroundOf(req, complete), true); err != nil {
		return result, fmt.Errorf("encoding background: %w", err)
	}
	if data.Papers, err = toJSON(paperContext, true); err != nil {
		return result, fmt.Errorf("encoding papers: %w", err)
	}
	if data.Research, err = toJSON(result.Research, true); err != nil {
		return result, fmt.Errorf("encoding research: %w", err)
	}

	tmpl := draftProposalTmpl
	if len(proposals) > 0 {
		tmpl = polishProposalTmpl
		if data.Existing, err = toJSON(proposals, false); err != nil {
			return result, fmt.Errorf("encoding proposal materials: %w", err)
		}
	}
	text, err := g.draft(ctx, tmpl, data)
	if err != nil {
		return result, fmt.Errorf("generating proposal: %w", err)
	}
	result.Proposal = text
	log.Info("proposal drafted", zap.Int("chars", len(text)))

	data.Proposal = result.Proposal
	data.Existing = ""
	tmpl = draftExperimentTmpl
	if len(experiments) > 0 {
		tmpl = refineExperimentTmpl
		if data.Existing, err = toJSON(experiments, false); err != nil {
			return result, fmt.Errorf("encoding experiment materials: %w", err)
		}
	}
	text, err = g.draft(ctx, tmpl, data)
	if err != nil {
		return result, fmt.Errorf("generating experiment design: %w", err)
	}
	result.ExperimentDesign = text
	log.Info("experiment design drafted", zap.Int("chars", len(text)))

	if g.Archive != nil {
		id, err := g.Archive.Record(ctx, req, result)
		if err != nil {
			log.Warn("archiving run failed", zap.Error(err))
		} else {
			log.Info("run archived", zap.String("id", id))
		}
	}
	return result, nil
}

func backgroundOf(req types.ProposalRequest, complete bool) background {
	bg := background{Level: string(req.AcademicLevel), Country: string(req.Country)}
	if complete {
		bg.Title = req.Title
		bg.Details = req.Details
	}
	return bg
}

// draft renders tmpl, asks the model, and unwraps a fenced Markdown reply.
func (g *Generator) draft(ctx context.Context, tmpl *template.Template, data promptData) (string, error) {
	prompt, err := render(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	text, err := g.LLM.Generate(ctx, types.GenerationRequest{
		Prompt:   prompt,
		Provider: types.ProviderAuto,
		Timeout:  draftTimeout,
	})
	if err != nil {
		return "", err
	}
	return extract.Markdown(text), nil
}

// gatherResearch asks for search keywords and runs the web research.
func (g *Generator) gatherResearch(ctx context.Context, req types.ProposalRequest, log *zap.Logger) ([]string, []types.ScrapeRecord) {
	records := []types.ScrapeRecord{}
	if g.Research == nil {
		return nil, records
	}

	reply, err := g.ask(ctx, searchKeywordsTmpl, req)
	if err != nil {
		log.Error("search keyword generation failed", zap.Error(err))
		return nil, records
	}
	keywords := extract.List(reply, log)
	if len(keywords) == 0 {
		return nil, records
	}
	log.Info("search keywords", zap.Strings("keywords", keywords))

	limit := g.ResearchLimit
	if limit <= 0 {
		limit = defaultResearchLimit
	}
	records = g.Research.Run(ctx, keywords, limit)
	log.Info("web research complete", zap.Int("records", len(records)))
	return keywords, records
}

// gatherPapers asks for arXiv keyword groups and queries each group.
func (g *Generator) gatherPapers(ctx context.Context, req types.ProposalRequest, log *zap.Logger) ([][]string, []types.PaperRecord) {
	papers := []types.PaperRecord{}
	if g.Papers == nil {
		return nil, papers
	}

	reply, err := g.ask(ctx, paperKeywordsTmpl, req)
	if err != nil {
		log.Error("paper keyword generation failed", zap.Error(err))
		return nil, papers
	}
	groups := extract.Groups(reply, log)
	if len(groups) == 0 {
		return nil, papers
	}

	delay := g.PaperDelay
	if delay == 0 {
		delay = defaultPaperDelay
	}
	for _, group := range groups {
		res, err := resilience.Do(ctx, g.PaperPolicy, func(ctx context.Context) (types.PaperSearchResult, error) {
			return g.Papers.SearchPapers(ctx, group)
		})
		if err != nil {
			log.Warn("arXiv search failed", zap.Strings("group", group), zap.Error(err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		papers = append(papers, res.Entries...)
		if err := resilience.Sleep(ctx, delay); err != nil {
			break
		}
	}
	log.Info("arXiv search complete", zap.Int("papers", len(papers)))
	return groups, papers
}

// ask renders a keyword prompt and sends it with the keyword timeout.
func (g *Generator) ask(ctx context.Context, tmpl *template.Template, req types.ProposalRequest) (string, error) {
	prompt, err := render(tmpl, promptData{
		Title:   req.Title,
		Details: req.Details,
		Level:   string(req.AcademicLevel),
	})
	if err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", tmpl.Name(), err)
	}
	return g.LLM.Generate(ctx, types.GenerationRequest{
		Prompt:   prompt,
		Provider: types.ProviderAuto,
		Timeout:  keywordTimeout,
	})
}
