package cache

import (
	"context"
	"testing"

	"github.com/nhle/taskboard/internal/model"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(":memory:")
	if err != nil {
		t.Fatalf("creating test cache: %v", err)
	}

	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("closing test cache: %v", err)
		}
	})

	return c
}

func TestBoardRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	board := &model.Board{
		ProjectID: "p1",
		Columns: []model.Column{
			{ID: "c1", DisplayLabel: "To Do", Cards: []model.Card{
				{ID: "t1", Title: "Write docs", Position: 0, ColumnID: "c1"},
			}},
		},
	}

	if err := c.SaveBoard(ctx, board); err != nil {
		t.Fatalf("saving board: %v", err)
	}

	got, fetchedAt, err := c.LoadBoard(ctx, "p1")
	if err != nil {
		t.Fatalf("loading board: %v", err)
	}
	if got == nil {
		t.Fatal("expected a cached board")
	}
	if fetchedAt.IsZero() {
		t.Error("expected a fetched_at timestamp")
	}
	if got.Columns[0].Cards[0].Title != "Write docs" {
		t.Errorf("card title = %q", got.Columns[0].Cards[0].Title)
	}
}

func TestLoadBoardMissingProject(t *testing.T) {
	c := newTestCache(t)

	got, _, err := c.LoadBoard(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Error("expected nil board for an uncached project")
	}
}

func TestSaveBoardReplacesPrevious(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	first := &model.Board{ProjectID: "p1", Columns: []model.Column{{ID: "c1"}}}
	second := &model.Board{ProjectID: "p1", Columns: []model.Column{{ID: "c1"}, {ID: "c2"}}}

	if err := c.SaveBoard(ctx, first); err != nil {
		t.Fatalf("saving first snapshot: %v", err)
	}
	if err := c.SaveBoard(ctx, second); err != nil {
		t.Fatalf("saving second snapshot: %v", err)
	}

	got, _, err := c.LoadBoard(ctx, "p1")
	if err != nil {
		t.Fatalf("loading board: %v", err)
	}
	if len(got.Columns) != 2 {
		t.Errorf("columns = %d, want 2 (latest snapshot)", len(got.Columns))
	}
}

func TestProjectsRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	projects := []model.Project{
		{ID: "p2", Name: "Zeta"},
		{ID: "p1", Name: "Alpha"},
	}
	if err := c.SaveProjects(ctx, projects); err != nil {
		t.Fatalf("saving projects: %v", err)
	}

	got, err := c.LoadProjects(ctx)
	if err != nil {
		t.Fatalf("loading projects: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("projects = %d, want 2", len(got))
	}
	if got[0].Name != "Alpha" {
		t.Errorf("first project = %q, want Alpha (name order)", got[0].Name)
	}

	// A second save replaces, not appends.
	if err := c.SaveProjects(ctx, projects[:1]); err != nil {
		t.Fatalf("re-saving projects: %v", err)
	}
	got, err = c.LoadProjects(ctx)
	if err != nil {
		t.Fatalf("reloading projects: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("projects after replace = %d, want 1", len(got))
	}
}
