package job

import (
	"context"

	"github.com/lysyi3m/pitch-post/app/news"
	"github.com/lysyi3m/pitch-post/app/publish"
	"github.com/lysyi3m/pitch-post/app/rewrite"
)

// What started a run.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
	TriggerStartup  = "startup"
)

type CandidateSource interface {
	Collect(ctx context.Context) []news.ArticleSummary
}

type BodyExtractor interface {
	Extract(ctx context.Context, link string) (string, error)
}

type Rewriter interface {
	Rewrite(ctx context.Context, pool *rewrite.CredentialPool, in rewrite.Input) (rewrite.Styled, error)
}

type PublisherResolver interface {
	Publisher(ctx context.Context) (publish.Publisher, error)
}

type SettingsReader interface {
	Get(ctx context.Context, name string) (string, bool, error)
}

// History is the in-memory view of published article IDs for one run.
type History map[string]struct{}

func NewHistory(ids []string) History {
	h := make(History, len(ids))
	for _, id := range ids {
		h[id] = struct{}{}
	}
	return h
}

func (h History) Contains(id string) bool {
	_, ok := h[id]
	return ok
}

func (h History) Add(id string) {
	h[id] = struct{}{}
}

// Result summarizes one run.
type Result struct {
	RunID      string
	Candidates int
	Published  int
	Skipped    int
	Failed     int
}
