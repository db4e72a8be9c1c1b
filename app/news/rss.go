package news

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/pitch-post/app/fetch"
	"github.com/mmcdole/gofeed"
)

// RSSSource reads an RSS or Atom feed and maps its items to summaries.
type RSSSource struct {
	config       *Config
	fetcher      *fetch.Client
	gofeedParser *gofeed.Parser
}

func NewRSSSource(config *Config, fetcher *fetch.Client) *RSSSource {
	return &RSSSource{
		config:       config,
		fetcher:      fetcher,
		gofeedParser: gofeed.NewParser(),
	}
}

func (s *RSSSource) Config() *Config {
	return s.config
}

func (s *RSSSource) Fetch(ctx context.Context) ([]ArticleSummary, error) {
	data, err := s.fetcher.Get(ctx, s.config.URL, time.Duration(s.config.Settings.Timeout)*time.Second)
	if err != nil {
		return nil, err
	}

	return s.parse(data)
}

func (s *RSSSource) parse(data []byte) ([]ArticleSummary, error) {
	feed, err := s.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	summaries := make([]ArticleSummary, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		summary := ArticleSummary{
			ID:          cmp.Or(item.GUID, item.Link),
			Headline:    strings.TrimSpace(item.Title),
			Description: item.Description,
			Kind:        "Story",
			WebLink:     item.Link,
		}
		if summary.ID == "" {
			continue
		}

		// RFC3339 in UTC keeps timestamps comparable with other sources.
		if item.PublishedParsed != nil {
			summary.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		} else if item.UpdatedParsed != nil {
			summary.PublishedAt = item.UpdatedParsed.UTC().Format(time.RFC3339)
		}

		if item.Image != nil {
			summary.ImageLink = item.Image.URL
		}

		for _, enclosure := range item.Enclosures {
			if enclosure == nil {
				continue
			}
			switch {
			case strings.HasPrefix(enclosure.Type, "video/"):
				summary.Kind = KindMedia
			case strings.HasPrefix(enclosure.Type, "image/") && summary.ImageLink == "":
				summary.ImageLink = enclosure.URL
			}
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}
