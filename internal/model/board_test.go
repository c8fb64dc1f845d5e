package model

import "testing"

func TestResolveDisplayLabel(t *testing.T) {
	tests := []struct {
		name    string
		column  Column
		ordinal int
		want    string
	}{
		{"name wins", Column{Name: "To Do", Title: "Backlog"}, 0, "To Do"},
		{"title fallback", Column{Title: "Backlog"}, 0, "Backlog"},
		{"synthesized", Column{}, 0, "Column 1"},
		{"synthesized uses ordinal", Column{}, 4, "Column 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.column.ResolveDisplayLabel(tt.ordinal); got != tt.want {
				t.Errorf("ResolveDisplayLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChecklistProgress(t *testing.T) {
	card := Card{Checklist: []ChecklistItem{
		{ID: "i1", Done: true},
		{ID: "i2", Done: false},
		{ID: "i3", Done: true},
	}}

	done, total := card.ChecklistProgress()
	if done != 2 || total != 3 {
		t.Errorf("ChecklistProgress() = (%d, %d), want (2, 3)", done, total)
	}

	done, total = Card{}.ChecklistProgress()
	if done != 0 || total != 0 {
		t.Errorf("empty checklist = (%d, %d), want (0, 0)", done, total)
	}
}

func TestBoardLookups(t *testing.T) {
	b := &Board{
		ProjectID: "p1",
		Columns: []Column{
			{ID: "c1", Cards: []Card{{ID: "t1"}, {ID: "t2"}}},
			{ID: "c2", Cards: []Card{{ID: "t3"}}},
		},
	}

	if col, idx := b.ColumnByID("c2"); col == nil || idx != 1 {
		t.Errorf("ColumnByID(c2) = (%v, %d), want column at index 1", col, idx)
	}
	if col, idx := b.ColumnByID("nope"); col != nil || idx != -1 {
		t.Errorf("ColumnByID(nope) = (%v, %d), want (nil, -1)", col, idx)
	}

	if colIdx, cardIdx := b.FindCard("t3"); colIdx != 1 || cardIdx != 0 {
		t.Errorf("FindCard(t3) = (%d, %d), want (1, 0)", colIdx, cardIdx)
	}
	if colIdx, cardIdx := b.FindCard("nope"); colIdx != -1 || cardIdx != -1 {
		t.Errorf("FindCard(nope) = (%d, %d), want (-1, -1)", colIdx, cardIdx)
	}

	if got := b.CardCount(); got != 3 {
		t.Errorf("CardCount() = %d, want 3", got)
	}
}
