package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lysyi3m/pitch-post/app/fetch"
)

type espnResponse struct {
	Articles []espnArticle `json:"articles"`
}

type espnArticle struct {
	ID          json.RawMessage `json:"id"`
	Headline    string          `json:"headline"`
	Description string          `json:"description"`
	Published   string          `json:"published"`
	Type        string          `json:"type"`
	Links       struct {
		Web struct {
			Href string `json:"href"`
		} `json:"web"`
	} `json:"links"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
}

// ESPNSource reads the site API news endpoint of one league.
type ESPNSource struct {
	config  *Config
	fetcher *fetch.Client
}

func NewESPNSource(config *Config, fetcher *fetch.Client) *ESPNSource {
	return &ESPNSource{
		config:  config,
		fetcher: fetcher,
	}
}

func (s *ESPNSource) Config() *Config {
	return s.config
}

func (s *ESPNSource) Fetch(ctx context.Context) ([]ArticleSummary, error) {
	data, err := s.fetcher.Get(ctx, s.config.URL, time.Duration(s.config.Settings.Timeout)*time.Second)
	if err != nil {
		return nil, err
	}

	return parseESPN(data)
}

func parseESPN(data []byte) ([]ArticleSummary, error) {
	var resp espnResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode ESPN response: %w", err)
	}

	summaries := make([]ArticleSummary, 0, len(resp.Articles))
	for _, article := range resp.Articles {
		id := normalizeID(article.ID)
		if id == "" {
			continue
		}

		summary := ArticleSummary{
			ID:          id,
			Headline:    article.Headline,
			Description: article.Description,
			PublishedAt: article.Published,
			Kind:        article.Type,
			WebLink:     article.Links.Web.Href,
		}
		if len(article.Images) > 0 {
			summary.ImageLink = article.Images[0].URL
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// normalizeID accepts both numeric and string identifiers.
func normalizeID(raw json.RawMessage) string {
	id := strings.TrimSpace(string(raw))
	if id == "" || id == "null" {
		return ""
	}
	return strings.Trim(id, `"`)
}
