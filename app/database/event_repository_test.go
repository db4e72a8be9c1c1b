package database

import (
	"context"
	"testing"
	"time"
)

func TestEventRepositoryAppendAndList(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	events := []Event{
		{RunID: "run-1", Level: "INFO", Message: "Run started"},
		{RunID: "run-1", Level: "WARN", ArticleID: "42", Message: "No body extracted"},
		{RunID: "run-2", Level: "INFO", Message: "Run started"},
	}
	for _, e := range events {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	runEvents, err := repo.GetRunEvents(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(runEvents) != 2 {
		t.Fatalf("Expected 2 events for run-1, got %d", len(runEvents))
	}
	if runEvents[1].ArticleID != "42" || runEvents[1].Level != "WARN" {
		t.Errorf("Expected second event for article 42 at WARN, got %+v", runEvents[1])
	}
	if runEvents[0].ID >= runEvents[1].ID {
		t.Error("Expected run events in insertion order")
	}

	recent, err := repo.GetRecentEvents(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].RunID != "run-2" {
		t.Errorf("Expected most recent event from run-2, got %+v", recent)
	}
}

func TestEventRepositoryDeleteBefore(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	old := Event{RunID: "old", Level: "INFO", Message: "old", CreatedAt: now.Add(-48 * time.Hour)}
	fresh := Event{RunID: "fresh", Level: "INFO", Message: "fresh", CreatedAt: now}

	for _, e := range []Event{old, fresh} {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := repo.DeleteBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted event, got %d", deleted)
	}

	remaining, err := repo.GetRecentEvents(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].RunID != "fresh" {
		t.Errorf("Expected only the fresh event to remain, got %+v", remaining)
	}
}
