package news

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/lysyi3m/pitch-post/app/fetch"
)

type Source interface {
	Config() *Config
	Fetch(ctx context.Context) ([]ArticleSummary, error)
}

var (
	_ Source = (*ESPNSource)(nil)
	_ Source = (*RSSSource)(nil)
)

// NewSources builds one Source per config according to its type.
func NewSources(configs []*Config, fetcher *fetch.Client) ([]Source, error) {
	sources := make([]Source, 0, len(configs))
	for _, config := range configs {
		switch config.Type {
		case SourceTypeESPN:
			sources = append(sources, NewESPNSource(config, fetcher))
		case SourceTypeRSS:
			sources = append(sources, NewRSSSource(config, fetcher))
		default:
			return nil, fmt.Errorf("unsupported source type %q for %s", config.Type, config.Name)
		}
	}
	return sources, nil
}

type Collector struct {
	sources []Source
}

func NewCollector(sources []Source) *Collector {
	return &Collector{sources: sources}
}

// Collect fetches every source, tags the summaries with their source and
// league, drops media items and orders the rest newest first. A failing
// source is logged and contributes nothing.
func (c *Collector) Collect(ctx context.Context) []ArticleSummary {
	var (
		all    []ArticleSummary
		failed int
	)

	for _, source := range c.sources {
		if ctx.Err() != nil {
			break
		}

		config := source.Config()

		items, err := source.Fetch(ctx)
		if err != nil {
			failed++
			slog.Warn("Failed to fetch source", "source", config.Name, "url", config.URL, "error", err)
			continue
		}

		for i := range items {
			items[i].SourceLabel = cmp.Or(config.Label, config.Name)
			items[i].LeagueLabel = cmp.Or(config.League, config.Name)
		}

		fetched := len(items)
		items = ApplyFilters(items, config.Filters)

		slog.Debug("Source fetched", "source", config.Name, "items", fetched, "kept", len(items))
		all = append(all, items...)
	}

	candidates := FilterMedia(all)
	SortNewestFirst(candidates)

	slog.Info("Candidates collected",
		"sources", len(c.sources),
		"failed", failed,
		"total", len(all),
		"candidates", len(candidates))

	return candidates
}

func FilterMedia(items []ArticleSummary) []ArticleSummary {
	result := make([]ArticleSummary, 0, len(items))
	for _, item := range items {
		if !item.IsMedia() {
			result = append(result, item)
		}
	}
	return result
}

// SortNewestFirst orders by PublishedAt descending, keeping the relative
// order of equal timestamps.
func SortNewestFirst(items []ArticleSummary) {
	slices.SortStableFunc(items, func(a, b ArticleSummary) int {
		return strings.Compare(b.PublishedAt, a.PublishedAt)
	})
}
