package database

import (
	"context"
	"testing"
	"time"
)

func TestHistoryRepositoryAppendIsEffectiveOnce(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()

	article := PublishedArticle{
		ArticleID: "40001",
		Source:    "ESPN",
		League:    "Premier League",
		Headline:  "Late winner at Anfield",
		Link:      "https://www.espn.com/soccer/story/_/id/40001",
		RemoteID:  "page_1",
	}

	if err := repo.Append(ctx, article); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := repo.Append(ctx, article); err != nil {
		t.Fatalf("Expected duplicate append to be harmless, got %v", err)
	}

	count, err := repo.GetCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 history entry, got %d", count)
	}

	ids, err := repo.GetPublishedIDs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "40001" {
		t.Errorf("Expected IDs [40001], got %v", ids)
	}
}

func TestHistoryRepositoryAppendRequiresID(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))

	if err := repo.Append(context.Background(), PublishedArticle{}); err == nil {
		t.Error("Expected error for empty article ID")
	}
}

func TestHistoryRepositoryGetRecent(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		err := repo.Append(ctx, PublishedArticle{
			ArticleID:   id,
			Headline:    "headline " + id,
			PublishedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	recent, err := repo.GetRecent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}

	if len(recent) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(recent))
	}
	if recent[0].ArticleID != "c" || recent[1].ArticleID != "b" {
		t.Errorf("Expected newest first [c b], got [%s %s]", recent[0].ArticleID, recent[1].ArticleID)
	}
	if !recent[0].PublishedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("Expected published_at %v, got %v", base.Add(2*time.Hour), recent[0].PublishedAt)
	}
}

func TestHistoryRepositoryEmpty(t *testing.T) {
	repo := NewHistoryRepository(newTestDB(t))

	ids, err := repo.GetPublishedIDs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("Expected no IDs, got %v", ids)
	}
}
