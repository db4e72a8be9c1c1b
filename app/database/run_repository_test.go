package database

import (
	"context"
	"testing"
)

func TestRunRepositoryLifecycle(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	ctx := context.Background()

	run, err := repo.StartRun(ctx, "manual")
	if err != nil {
		t.Fatal(err)
	}
	if run.ID == "" {
		t.Fatal("Expected run ID to be generated")
	}
	if run.Status != RunStatusRunning {
		t.Errorf("Expected status '%s', got '%s'", RunStatusRunning, run.Status)
	}

	if err := repo.FinishRun(ctx, run.ID, RunStatusSuccess, 3, ""); err != nil {
		t.Fatal(err)
	}

	stored, err := repo.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil {
		t.Fatal("Expected run to be found")
	}
	if stored.Trigger != "manual" {
		t.Errorf("Expected trigger 'manual', got '%s'", stored.Trigger)
	}
	if stored.Status != RunStatusSuccess {
		t.Errorf("Expected status '%s', got '%s'", RunStatusSuccess, stored.Status)
	}
	if stored.Published != 3 {
		t.Errorf("Expected 3 published, got %d", stored.Published)
	}
	if stored.FinishedAt == nil {
		t.Error("Expected finished_at to be set")
	}
}

func TestRunRepositoryGetUnknownRun(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	run, err := repo.GetRun(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if run != nil {
		t.Errorf("Expected nil run, got %+v", run)
	}
}

func TestRunRepositoryFinishUnknownRun(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))

	if err := repo.FinishRun(context.Background(), "missing", RunStatusFailed, 0, "boom"); err == nil {
		t.Error("Expected error for unknown run")
	}
}

func TestRunRepositoryLatestAndList(t *testing.T) {
	repo := NewRunRepository(newTestDB(t))
	ctx := context.Background()

	latest, err := repo.GetLatestRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Errorf("Expected no latest run on empty table, got %+v", latest)
	}

	first, err := repo.StartRun(ctx, "startup")
	if err != nil {
		t.Fatal(err)
	}
	second, err := repo.StartRun(ctx, "schedule")
	if err != nil {
		t.Fatal(err)
	}

	latest, err = repo.GetLatestRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Errorf("Expected latest run '%s', got %+v", second.ID, latest)
	}
	if latest != nil && latest.FinishedAt != nil {
		t.Error("Expected unfinished run to have nil finished_at")
	}

	runs, err := repo.GetRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[1].ID != first.ID {
		t.Errorf("Expected oldest run last, got '%s'", runs[1].ID)
	}
}
