package api

import (
	"time"

	"github.com/lysyi3m/pitch-post/app/database"
	"github.com/lysyi3m/pitch-post/app/news"
	"github.com/lysyi3m/pitch-post/app/tasks"
)

type SourceCounter interface {
	GetConfigCount() int
}

var _ SourceCounter = (*news.ConfigCache)(nil)

type Handler struct {
	history   database.HistoryRepository
	settings  database.SettingsRepository
	runs      database.RunRepository
	events    database.EventRepository
	sources   SourceCounter
	scheduler tasks.TaskSchedulerInterface
	version   string
}

type settingResponse struct {
	Name       string     `json:"name"`
	Configured bool       `json:"configured"`
	Value      string     `json:"value,omitempty"` // masked
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

type settingRequest struct {
	Value string `json:"value" binding:"required"`
}

type runResponse struct {
	ID         string     `json:"id"`
	Trigger    string     `json:"trigger"`
	Status     string     `json:"status"`
	Published  int        `json:"published"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type eventResponse struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Level     string    `json:"level"`
	ArticleID string    `json:"article_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type historyResponse struct {
	ArticleID   string    `json:"article_id"`
	Source      string    `json:"source"`
	League      string    `json:"league"`
	Headline    string    `json:"headline"`
	Link        string    `json:"link"`
	RemoteID    string    `json:"remote_id,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

func toRunResponse(run database.Run) runResponse {
	return runResponse{
		ID:         run.ID,
		Trigger:    run.Trigger,
		Status:     string(run.Status),
		Published:  run.Published,
		Error:      run.Error,
		StartedAt:  run.StartedAt,
		FinishedAt: run.FinishedAt,
	}
}

func toEventResponse(event database.Event) eventResponse {
	return eventResponse{
		ID:        event.ID,
		RunID:     event.RunID,
		Level:     event.Level,
		ArticleID: event.ArticleID,
		Message:   event.Message,
		CreatedAt: event.CreatedAt,
	}
}

func toHistoryResponse(article database.PublishedArticle) historyResponse {
	return historyResponse{
		ArticleID:   article.ArticleID,
		Source:      article.Source,
		League:      article.League,
		Headline:    article.Headline,
		Link:        article.Link,
		RemoteID:    article.RemoteID,
		PublishedAt: article.PublishedAt,
	}
}
