package news

import (
	"strings"
)

// KindMedia marks video and other non-text summaries.
const KindMedia = "Media"

type ArticleSummary struct {
	ID          string
	Headline    string
	Description string
	PublishedAt string // ISO-8601, compared lexicographically
	Kind        string
	WebLink     string
	ImageLink   string
	SourceLabel string
	LeagueLabel string
}

func (a ArticleSummary) IsMedia() bool {
	return strings.EqualFold(a.Kind, KindMedia)
}

type SourceType string

const (
	SourceTypeESPN SourceType = "espn"
	SourceTypeRSS  SourceType = "rss"
)

// Configuration types

type Config struct {
	Name     string         // Derived from filename (without .yml extension)
	Type     SourceType     `yaml:"type"`
	URL      string         `yaml:"url"`
	Label    string         `yaml:"label"`
	League   string         `yaml:"league"`
	Settings ConfigSettings `yaml:"settings"`
	Filters  []ConfigFilter `yaml:"filters"`
}

type ConfigSettings struct {
	Enabled bool `yaml:"enabled"`
	Timeout int  `yaml:"timeout"` // seconds
}

type ConfigFilter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}
