package database

import (
	"time"
)

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// PublishedArticle is one History entry: an article that was published successfully.
type PublishedArticle struct {
	ArticleID   string
	Source      string
	League      string
	Headline    string
	Link        string
	RemoteID    string // post ID returned by the publisher
	PublishedAt time.Time
}

type Setting struct {
	Name      string
	Value     string
	UpdatedAt time.Time
}

type Run struct {
	ID         string
	Trigger    string // schedule, manual or startup
	Status     RunStatus
	Published  int
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time
}

type Event struct {
	ID        int64
	RunID     string
	Level     string
	ArticleID string
	Message   string
	CreatedAt time.Time
}
