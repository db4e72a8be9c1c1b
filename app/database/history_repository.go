package database

import (
	"context"
	"fmt"
	"time"
)

var historyColumns = []string{"article_id", "source", "league", "headline", "link", "remote_id", "published_at"}

type historyRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) GetPublishedIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.query(ctx, r.db.builder.Select("article_id").From("published_articles"))
	if err != nil {
		return nil, fmt.Errorf("failed to load published IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan published ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate published IDs: %w", err)
	}

	return ids, nil
}

func (r *historyRepository) GetRecent(ctx context.Context, limit int) ([]PublishedArticle, error) {
	query := r.db.builder.
		Select(historyColumns...).
		From("published_articles").
		OrderBy("published_at DESC").
		Limit(uint64(limit))

	rows, err := r.db.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent history: %w", err)
	}
	defer rows.Close()

	var articles []PublishedArticle
	for rows.Next() {
		var a PublishedArticle
		if err := rows.Scan(&a.ArticleID, &a.Source, &a.League, &a.Headline, &a.Link, &a.RemoteID, &a.PublishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return articles, nil
}

func (r *historyRepository) GetCount(ctx context.Context) (int, error) {
	row, err := r.db.queryRow(ctx, r.db.builder.Select("COUNT(*)").From("published_articles"))
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}

	return count, nil
}

func (r *historyRepository) Append(ctx context.Context, article PublishedArticle) error {
	if article.ArticleID == "" {
		return fmt.Errorf("article ID is required")
	}

	publishedAt := article.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}

	query := r.db.builder.
		Insert("published_articles").
		Columns(historyColumns...).
		Values(article.ArticleID, article.Source, article.League, article.Headline, article.Link, article.RemoteID, publishedAt.UTC()).
		Suffix("ON CONFLICT (article_id) DO NOTHING")

	if _, err := r.db.exec(ctx, query); err != nil {
		return fmt.Errorf("failed to append history entry %s: %w", article.ArticleID, err)
	}

	return nil
}

