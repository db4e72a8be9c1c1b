package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/lysyi3m/pitch-post/app/fetch"
	"golang.org/x/text/unicode/norm"
)

type Page struct {
	URL      *url.URL
	HTML     []byte
	Document *goquery.Document
}

func NewPage(link string, html []byte) (*Page, error) {
	pageURL, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	return &Page{URL: pageURL, HTML: html, Document: doc}, nil
}

// Extractor resolves the body text of an article page by trying its
// strategies in order; the first non-empty result wins.
type Extractor struct {
	fetcher    *fetch.Client
	strategies []Strategy
	timeout    time.Duration
}

func NewExtractor(fetcher *fetch.Client, timeout time.Duration, strategies ...Strategy) *Extractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}

	return &Extractor{
		fetcher:    fetcher,
		strategies: strategies,
		timeout:    timeout,
	}
}

// Extract returns "" with a nil error when the page holds no usable text.
func (e *Extractor) Extract(ctx context.Context, link string) (string, error) {
	data, err := e.fetcher.Get(ctx, link, e.timeout)
	if err != nil {
		return "", err
	}

	page, err := NewPage(link, data)
	if err != nil {
		return "", err
	}

	body, strategy := e.Run(page)
	if body != "" {
		slog.Debug("Content extracted", "url", link, "strategy", strategy, "content_length", len(body))
	}

	return body, nil
}

// Run applies the strategies to an already fetched page and reports which
// one produced the body.
func (e *Extractor) Run(page *Page) (string, string) {
	for _, strategy := range e.strategies {
		if body := JoinParagraphs(strategy.Extract(page)); body != "" {
			return body, strategy.Name()
		}
	}
	return "", ""
}

// JoinParagraphs trims the paragraphs, drops empty ones and joins the rest
// with blank lines.
func JoinParagraphs(paragraphs []string) string {
	kept := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return norm.NFC.String(strings.Join(kept, "\n\n"))
}
