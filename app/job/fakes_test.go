package job

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lysyi3m/pitch-post/app/database"
	"github.com/lysyi3m/pitch-post/app/news"
	"github.com/lysyi3m/pitch-post/app/publish"
	"github.com/lysyi3m/pitch-post/app/rewrite"
)

type MockCollector struct {
	items []news.ArticleSummary
	calls int
}

func (m *MockCollector) Collect(ctx context.Context) []news.ArticleSummary {
	m.calls++
	return append([]news.ArticleSummary(nil), m.items...)
}

type MockExtractor struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
}

func (m *MockExtractor) Extract(ctx context.Context, link string) (string, error) {
	m.calls = append(m.calls, link)
	if err, ok := m.errs[link]; ok {
		return "", err
	}
	if body, ok := m.bodies[link]; ok {
		return body, nil
	}
	return "Body of " + link, nil
}

// MockRewriter fails for headlines listed in fail.
type MockRewriter struct {
	fail  map[string]error
	calls []string
}

func (m *MockRewriter) Rewrite(ctx context.Context, pool *rewrite.CredentialPool, in rewrite.Input) (rewrite.Styled, error) {
	m.calls = append(m.calls, in.Headline)
	if err, ok := m.fail[in.Headline]; ok {
		return rewrite.Styled{}, err
	}
	return rewrite.Styled{Headline: "TH " + in.Headline, Body: "TH " + in.Body}, nil
}

// MockClient is a rewrite backend that always reports the given error.
type MockClient struct {
	err   error
	calls int
}

func (m *MockClient) Name() string {
	return "mock"
}

func (m *MockClient) Complete(ctx context.Context, apiKey, prompt string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return `{"headline": "TH", "body": "TH body"}`, nil
}

type MockPublisher struct {
	fail  map[string]bool // by link
	posts []publish.Post
}

func (m *MockPublisher) Name() string {
	return "mock"
}

func (m *MockPublisher) Publish(ctx context.Context, post publish.Post) (string, error) {
	if m.fail[post.Link] {
		return "", errors.New("publish rejected")
	}
	m.posts = append(m.posts, post)
	return fmt.Sprintf("post-%d", len(m.posts)), nil
}

type MockResolver struct {
	publisher publish.Publisher
	err       error
}

func (m *MockResolver) Publisher(ctx context.Context) (publish.Publisher, error) {
	return m.publisher, m.err
}

type MockSettings struct {
	values map[string]string
}

func (m *MockSettings) Get(ctx context.Context, name string) (string, bool, error) {
	value, ok := m.values[name]
	return value, ok, nil
}

// MemoryHistory is an in-memory database.HistoryRepository.
type MemoryHistory struct {
	ids       []string
	appended  []database.PublishedArticle
	loadErr   error
	appendErr error
}

func (m *MemoryHistory) GetPublishedIDs(ctx context.Context) ([]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]string(nil), m.ids...), nil
}

func (m *MemoryHistory) GetRecent(ctx context.Context, limit int) ([]database.PublishedArticle, error) {
	return m.appended, nil
}

func (m *MemoryHistory) GetCount(ctx context.Context) (int, error) {
	return len(m.ids), nil
}

func (m *MemoryHistory) Append(ctx context.Context, article database.PublishedArticle) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	for _, id := range m.ids {
		if id == article.ArticleID {
			return nil
		}
	}
	m.ids = append(m.ids, article.ArticleID)
	m.appended = append(m.appended, article)
	return nil
}

type MemoryRuns struct {
	runs []database.Run
}

func (m *MemoryRuns) GetRun(ctx context.Context, id string) (*database.Run, error) {
	for i := range m.runs {
		if m.runs[i].ID == id {
			return &m.runs[i], nil
		}
	}
	return nil, nil
}

func (m *MemoryRuns) GetLatestRun(ctx context.Context) (*database.Run, error) {
	if len(m.runs) == 0 {
		return nil, nil
	}
	return &m.runs[len(m.runs)-1], nil
}

func (m *MemoryRuns) GetRuns(ctx context.Context, limit int) ([]database.Run, error) {
	return m.runs, nil
}

func (m *MemoryRuns) StartRun(ctx context.Context, trigger string) (*database.Run, error) {
	run := database.Run{
		ID:        fmt.Sprintf("run-%d", len(m.runs)+1),
		Trigger:   trigger,
		Status:    database.RunStatusRunning,
		StartedAt: time.Now(),
	}
	m.runs = append(m.runs, run)
	return &run, nil
}

func (m *MemoryRuns) FinishRun(ctx context.Context, id string, status database.RunStatus, published int, errMsg string) error {
	for i := range m.runs {
		if m.runs[i].ID == id {
			now := time.Now()
			m.runs[i].Status = status
			m.runs[i].Published = published
			m.runs[i].Error = errMsg
			m.runs[i].FinishedAt = &now
			return nil
		}
	}
	return fmt.Errorf("run %s not found", id)
}

type MemoryEvents struct {
	events []database.Event
	err    error
}

func (m *MemoryEvents) GetRunEvents(ctx context.Context, runID string) ([]database.Event, error) {
	var result []database.Event
	for _, e := range m.events {
		if e.RunID == runID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *MemoryEvents) GetRecentEvents(ctx context.Context, limit int) ([]database.Event, error) {
	return m.events, nil
}

func (m *MemoryEvents) Append(ctx context.Context, event database.Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func (m *MemoryEvents) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
