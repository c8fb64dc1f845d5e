package model

import "time"

// CardFields carries the editable fields of a card for create and update
// calls. Nil pointers mean "leave unchanged" on update.
type CardFields struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssigneeIDs []string   `json:"assignee_ids,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ChecklistFields carries the editable fields of a checklist item.
type ChecklistFields struct {
	Title *string `json:"title,omitempty"`
	Done  *bool   `json:"done,omitempty"`
}

// MoveRequest describes a card move as the backend expects it: the target
// column, the target column's ordinal, and the row the card lands on.
type MoveRequest struct {
	TargetColumnID    string `json:"targetColumnId"`
	TargetColumnOrder int    `json:"targetColumnOrder"`
	TargetRowOrder    int    `json:"targetRowOrder"`
}
