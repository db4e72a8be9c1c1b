package extract

import (
	"bytes"
	"strings"

	"codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"
)

// Strategy pulls candidate paragraphs out of a page. An empty result means
// the strategy does not apply and the next one is tried.
type Strategy interface {
	Name() string
	Extract(page *Page) []string
}

// DefaultStrategies is the order used for article pages: known body
// containers first, then readability, then every paragraph in the body.
func DefaultStrategies() []Strategy {
	return []Strategy{
		SelectorStrategy{Container: "div.article-body"},
		SelectorStrategy{Container: "div.story-body"},
		SelectorStrategy{Container: "article"},
		ReadabilityStrategy{},
		ParagraphsStrategy{},
	}
}

// SelectorStrategy collects the <p> elements of the first element matching Container.
type SelectorStrategy struct {
	Container string
}

func (s SelectorStrategy) Name() string {
	return "selector:" + s.Container
}

func (s SelectorStrategy) Extract(page *Page) []string {
	container := page.Document.Find(s.Container).First()
	if container.Length() == 0 {
		return nil
	}
	return paragraphTexts(container.Find("p"))
}

type ReadabilityStrategy struct{}

func (ReadabilityStrategy) Name() string {
	return "readability"
}

func (ReadabilityStrategy) Extract(page *Page) []string {
	if len(page.HTML) == 0 {
		return nil
	}

	article, err := readability.FromReader(bytes.NewReader(page.HTML), page.URL)
	if err != nil {
		return nil
	}

	return strings.Split(article.TextContent, "\n")
}

// ParagraphsStrategy collects every <p> in the body.
type ParagraphsStrategy struct{}

func (ParagraphsStrategy) Name() string {
	return "paragraphs"
}

func (ParagraphsStrategy) Extract(page *Page) []string {
	return paragraphTexts(page.Document.Find("body p"))
}

func paragraphTexts(selection *goquery.Selection) []string {
	texts := make([]string, 0, selection.Length())
	selection.Each(func(_ int, p *goquery.Selection) {
		texts = append(texts, p.Text())
	})
	return texts
}
