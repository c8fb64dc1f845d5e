package model

import (
	"fmt"
	"time"
)

// Assignee is a person assigned to a card.
type Assignee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ChecklistItem is a simple sub-entry within a card.
// Its lifecycle is bound to the parent card (the backend cascades deletes).
type ChecklistItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// Card is a single unit of work on the board. It belongs to exactly one
// column at a time; Position is a dense 0-based index within that column.
type Card struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ColumnID    string          `json:"column_id"`
	Position    int             `json:"position"`
	Assignees   []Assignee      `json:"assignees,omitempty"`
	StartDate   *time.Time      `json:"start_date,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Checklist   []ChecklistItem `json:"checklist,omitempty"`

	// Completed is the card's explicit completion flag, when the backend
	// provides one.
	Completed bool `json:"completed"`

	// Progress is a 0-100 percentage reported by the backend.
	Progress int `json:"progress"`
}

// ChecklistProgress returns the number of completed checklist items and the
// checklist total. The ratio is always derived, never stored.
func (c Card) ChecklistProgress() (done, total int) {
	for _, item := range c.Checklist {
		if item.Done {
			done++
		}
	}
	return done, len(c.Checklist)
}

// Column is a workflow stage holding an ordered list of cards.
type Column struct {
	ID string `json:"id"`

	// Name and Title are the raw labels as returned by the backend; either
	// may be empty. DisplayLabel is the resolved label and is always set
	// once a board has been normalized.
	Name         string `json:"name,omitempty"`
	Title        string `json:"title,omitempty"`
	DisplayLabel string `json:"display_label"`

	// Position determines left-to-right render order. Column order is
	// assigned by the backend; columns are never reordered locally.
	Position int `json:"position"`

	// WIPLimit caps the card count when present. It is advisory only.
	WIPLimit *int `json:"wip_limit,omitempty"`

	// Stage is a workflow keyword (e.g. "deployed") some backends attach
	// to a column in place of a meaningful label.
	Stage string `json:"stage,omitempty"`

	// StatusCode is the backend's numeric workflow status for the column;
	// 0 means the backend did not report one.
	StatusCode int `json:"status_code,omitempty"`

	Cards []Card `json:"cards"`
}

// ResolveDisplayLabel returns the column's display label: the name if set,
// else the title, else a synthesized "Column N" where N is ordinal+1.
func (c Column) ResolveDisplayLabel(ordinal int) string {
	if c.Name != "" {
		return c.Name
	}
	if c.Title != "" {
		return c.Title
	}
	return fmt.Sprintf("Column %d", ordinal+1)
}

// Board is the full snapshot of one project's task board: an ordered list
// of columns, each carrying its ordered cards.
type Board struct {
	ProjectID string   `json:"project_id"`
	Columns   []Column `json:"columns"`
}

// ColumnByID returns the column with the given id and its index, or nil
// and -1 when no column matches.
func (b *Board) ColumnByID(id string) (*Column, int) {
	for i := range b.Columns {
		if b.Columns[i].ID == id {
			return &b.Columns[i], i
		}
	}
	return nil, -1
}

// FindCard returns the column index and card index of the card with the
// given id, or (-1, -1) when the card is not on the board.
func (b *Board) FindCard(cardID string) (colIdx, cardIdx int) {
	for i := range b.Columns {
		for j := range b.Columns[i].Cards {
			if b.Columns[i].Cards[j].ID == cardID {
				return i, j
			}
		}
	}
	return -1, -1
}

// CardCount returns the total number of cards across all columns.
func (b *Board) CardCount() int {
	n := 0
	for i := range b.Columns {
		n += len(b.Columns[i].Cards)
	}
	return n
}
