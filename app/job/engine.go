package job

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/pitch-post/app/cfg"
	"github.com/lysyi3m/pitch-post/app/database"
	"github.com/lysyi3m/pitch-post/app/news"
	"github.com/lysyi3m/pitch-post/app/publish"
	"github.com/lysyi3m/pitch-post/app/rewrite"
)

// Deps wires the collaborators of a run into the Engine.
type Deps struct {
	Collector  CandidateSource
	Extractor  BodyExtractor
	Rewriter   Rewriter
	Publishers PublisherResolver
	Settings   SettingsReader
	History    database.HistoryRepository
	Runs       database.RunRepository
	Events     database.EventRepository

	// FallbackKeys are used when no rewriter keys are stored in settings.
	FallbackKeys []string
	MaxPosts     int
}

type Engine struct {
	collector    CandidateSource
	extractor    BodyExtractor
	rewriter     Rewriter
	publishers   PublisherResolver
	settings     SettingsReader
	history      database.HistoryRepository
	runs         database.RunRepository
	events       database.EventRepository
	fallbackKeys []string
	maxPosts     int
}

func NewEngine(deps Deps) *Engine {
	maxPosts := deps.MaxPosts
	if maxPosts < 1 || maxPosts > cfg.MaxPostsCeiling {
		maxPosts = cfg.MaxPostsCeiling
	}

	return &Engine{
		collector:    deps.Collector,
		extractor:    deps.Extractor,
		rewriter:     deps.Rewriter,
		publishers:   deps.Publishers,
		settings:     deps.Settings,
		history:      deps.History,
		runs:         deps.Runs,
		events:       deps.Events,
		fallbackKeys: deps.FallbackKeys,
		maxPosts:     maxPosts,
	}
}

// Run executes one job: it loads History, builds a fresh credential pool,
// collects candidates and processes them until the post cap is reached or
// candidates run out. The returned error is non-nil only for failures that
// end the run early.
func (e *Engine) Run(ctx context.Context, trigger string) (*Result, error) {
	run, err := e.runs.StartRun(ctx, trigger)
	if err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}

	start := time.Now()
	slog.Info("Run started", "run_id", run.ID, "trigger", trigger)

	result, runErr := e.execute(ctx, run.ID)
	result.RunID = run.ID

	status := database.RunStatusSuccess
	errMsg := ""
	if runErr != nil {
		status = database.RunStatusFailed
		errMsg = runErr.Error()
		e.record(ctx, run.ID, slog.LevelError, "", "Run failed: "+errMsg)
	}

	// Bookkeeping must survive a canceled run context.
	finishCtx := context.WithoutCancel(ctx)
	if err := e.runs.FinishRun(finishCtx, run.ID, status, result.Published, errMsg); err != nil {
		slog.Error("Failed to finish run", "run_id", run.ID, "error", err)
		if runErr == nil {
			runErr = fmt.Errorf("failed to finish run: %w", err)
		}
	}

	slog.Info("Run finished",
		"run_id", run.ID,
		"status", status,
		"candidates", result.Candidates,
		"published", result.Published,
		"skipped", result.Skipped,
		"failed", result.Failed,
		"duration", time.Since(start))

	return result, runErr
}

func (e *Engine) execute(ctx context.Context, runID string) (*Result, error) {
	result := &Result{}

	ids, err := e.history.GetPublishedIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load history: %w", err)
	}
	history := NewHistory(ids)

	keys, err := e.credentials(ctx)
	if err != nil {
		return result, err
	}
	pool := rewrite.NewCredentialPool(keys)
	if pool.Len() == 0 {
		e.record(ctx, runID, slog.LevelWarn, "", "No rewriter credentials configured, articles will be skipped")
	}

	publisher, err := e.publishers.Publisher(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to resolve publisher: %w", err)
	}

	candidates := e.collector.Collect(ctx)
	e.record(ctx, runID, slog.LevelInfo, "", fmt.Sprintf("Collected %d candidates, %d already published", len(candidates), len(history)))

	return e.Process(ctx, runID, candidates, history, pool, publisher)
}

// Process walks the candidates in order and publishes at most maxPosts of
// them. Per-article failures are recorded and skipped; only a History write
// failure or cancellation stops the loop early.
func (e *Engine) Process(ctx context.Context, runID string, candidates []news.ArticleSummary, history History, pool *rewrite.CredentialPool, publisher publish.Publisher) (*Result, error) {
	result := &Result{Candidates: len(candidates)}

	for _, article := range candidates {
		if result.Published >= e.maxPosts {
			e.record(ctx, runID, slog.LevelInfo, "", fmt.Sprintf("Post cap of %d reached", e.maxPosts))
			break
		}

		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run interrupted: %w", err)
		}

		if article.ID == "" || history.Contains(article.ID) {
			result.Skipped++
			continue
		}

		if reason := missingData(article); reason != "" {
			result.Skipped++
			e.record(ctx, runID, slog.LevelInfo, article.ID, "Skipped: "+reason)
			continue
		}

		if pool.Len() == 0 || pool.Exhausted() {
			result.Skipped++
			e.record(ctx, runID, slog.LevelInfo, article.ID, "Skipped: no usable rewriter credentials")
			continue
		}

		body, err := e.extractor.Extract(ctx, article.WebLink)
		if err != nil {
			result.Skipped++
			e.record(ctx, runID, slog.LevelWarn, article.ID, fmt.Sprintf("Skipped: content extraction failed: %v", err))
			continue
		}
		if strings.TrimSpace(body) == "" {
			result.Skipped++
			e.record(ctx, runID, slog.LevelInfo, article.ID, "Skipped: no article body found")
			continue
		}

		styled, err := e.rewriter.Rewrite(ctx, pool, rewrite.Input{Headline: article.Headline, Body: body})
		if err != nil {
			result.Failed++
			e.record(ctx, runID, slog.LevelWarn, article.ID, fmt.Sprintf("Rewrite failed: %v", err))
			continue
		}

		postID, err := publisher.Publish(ctx, publish.Post{
			Headline:    styled.Headline,
			Body:        styled.Body,
			ImageURL:    article.ImageLink,
			SourceLabel: article.SourceLabel,
			Link:        article.WebLink,
		})
		if err != nil {
			result.Failed++
			e.record(ctx, runID, slog.LevelWarn, article.ID, fmt.Sprintf("Publish to %s failed: %v", publisher.Name(), err))
			continue
		}

		history.Add(article.ID)
		entry := database.PublishedArticle{
			ArticleID:   article.ID,
			Source:      article.SourceLabel,
			League:      article.LeagueLabel,
			Headline:    article.Headline,
			Link:        article.WebLink,
			RemoteID:    postID,
			PublishedAt: time.Now(),
		}
		if err := e.history.Append(context.WithoutCancel(ctx), entry); err != nil {
			return result, fmt.Errorf("failed to record published article %s: %w", article.ID, err)
		}

		result.Published++
		e.record(ctx, runID, slog.LevelInfo, article.ID, fmt.Sprintf("Published to %s as %s", publisher.Name(), postID))
	}

	return result, nil
}

// credentials returns the stored rewriter keys, or the configured fallback
// when none are stored.
func (e *Engine) credentials(ctx context.Context) ([]string, error) {
	if e.settings != nil {
		raw, _, err := e.settings.Get(ctx, database.SettingRewriterKeys)
		if err != nil {
			return nil, fmt.Errorf("failed to load rewriter keys: %w", err)
		}
		if keys := rewrite.ParseKeys(raw); len(keys) > 0 {
			return keys, nil
		}
	}
	return e.fallbackKeys, nil
}

func missingData(article news.ArticleSummary) string {
	switch {
	case article.WebLink == "":
		return "no article link"
	case article.ImageLink == "":
		return "no image"
	default:
		return ""
	}
}

// record logs a run event and appends it to the event log. Event log
// failures are logged and otherwise ignored.
func (e *Engine) record(ctx context.Context, runID string, level slog.Level, articleID, message string) {
	attrs := []any{"run_id", runID}
	if articleID != "" {
		attrs = append(attrs, "article_id", articleID)
	}
	slog.Log(ctx, level, message, attrs...)

	if e.events == nil {
		return
	}

	event := database.Event{
		RunID:     runID,
		Level:     strings.ToLower(level.String()),
		ArticleID: articleID,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := e.events.Append(context.WithoutCancel(ctx), event); err != nil {
		slog.Warn("Failed to write run event", "run_id", runID, "error", err)
	}
}
