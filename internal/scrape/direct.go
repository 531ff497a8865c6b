// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/pdiddy/proposal-engine/internal/httputil"
	"github.com/pdiddy/proposal-engine/pkg/types"
)

// maxPageBytes caps how much HTML is read from one page.
const maxPageBytes = 5 << 20

// DirectScraper fetches a page itself, isolates the main article with
// readability, and renders the article blocks as Markdown-style text.
type DirectScraper struct {
	UserAgent string
	Client    *http.Client
}

// NewDirect builds a scraper that needs no API key.
func NewDirect(httpCfg types.HTTPConfig, client *http.Client) *DirectScraper {
	return &DirectScraper{UserAgent: httpCfg.UserAgent, Client: client}
}

// Scrape downloads rawURL and extracts its readable content.
func (d *DirectScraper) Scrape(ctx context.Context, rawURL string) (Page, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, fmt.Errorf("parsing url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := httputil.DoWithRetry(ctx, d.Client, req, 0)
	if err != nil {
		return Page{}, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, &httputil.StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Page{}, fmt.Errorf("reading %s: %w", rawURL, err)
	}

	article, err := readability.NewParser().Parse(strings.NewReader(string(body)), parsed)
	if err != nil {
		return Page{}, fmt.Errorf("extracting article: %w", err)
	}

	content, err := renderBlocks(article.Content)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Content:  content,
		Title:    normalizeText(article.Title),
		Metadata: map[string]any{"url": rawURL},
	}, nil
}

// renderBlocks walks the block elements of the article HTML and writes one
// paragraph per block: headings get # prefixes, list items a dash, and
// preformatted text a code fence.
func renderBlocks(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing article html: %w", err)
	}

	var blocks []string
	doc.Find("h1,h2,h3,h4,p,li,pre,table").Each(func(_ int, s *goquery.Selection) {
		// Paragraphs nested in list items are covered by the item itself.
		if goquery.NodeName(s) == "p" && s.ParentsFiltered("li").Length() > 0 {
			return
		}

		switch tag := goquery.NodeName(s); tag {
		case "pre":
			if code := strings.TrimSpace(s.Text()); code != "" {
				blocks = append(blocks, "```\n"+code+"\n```")
			}
		case "table":
			if rows := renderTable(s); rows != "" {
				blocks = append(blocks, rows)
			}
		default:
			text := normalizeText(s.Text())
			if text == "" {
				return
			}
			switch tag {
			case "h1", "h2", "h3", "h4":
				text = strings.Repeat("#", int(tag[1]-'0')) + " " + text
			case "li":
				text = "- " + text
			}
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n"), nil
}

func renderTable(s *goquery.Selection) string {
	var rows []string
	s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th,td").Each(func(_ int, c *goquery.Selection) {
			cells = append(cells, normalizeText(c.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
		}
	})
	return strings.Join(rows, "\n")
}

// normalizeText joins the non-blank lines of input with single spaces.
func normalizeText(input string) string {
	var b strings.Builder
	b.Grow(len(input))
	scanner := bufio.NewScanner(strings.NewReader(input))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(line)
		}
	}
	return b.String()
}
