package api

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexID is an identifier that the backend serializes as either a JSON
// string or a JSON number depending on the entity. It always unmarshals
// to its string form.
type FlexID string

// UnmarshalJSON accepts both "42" and 42.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

// FlexStatus is a workflow status that may arrive as a keyword string
// ("done"), a number (5), or a numeric string ("5").
type FlexStatus struct {
	// Keyword is the textual status, empty when the value was numeric.
	Keyword string

	// Code is the numeric status, 0 when the value was a keyword.
	Code int
}

// UnmarshalJSON decodes a string, numeric string, or number status.
func (f *FlexStatus) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = FlexStatus{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if code, err := strconv.Atoi(s); err == nil {
			*f = FlexStatus{Code: code}
			return nil
		}
		*f = FlexStatus{Keyword: s}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexStatus{Code: int(n)}
	return nil
}

// boardResponse is the response from GET /api/projects/{id}/task-board.
type boardResponse struct {
	Columns []wireColumn `json:"columns"`
}

// wireColumn is a board column as the backend serializes it. Name, title,
// status, and cards are all optional.
type wireColumn struct {
	ColumnID FlexID     `json:"columnId"`
	Name     string     `json:"name"`
	Title    string     `json:"title"`
	Position int        `json:"position"`
	WIPLimit *int       `json:"workInProgressLimit"`
	Status   FlexStatus `json:"status"`
	Stage    string     `json:"stage"`
	Cards    []wireCard `json:"cards"`
}

// wireCard is a task card as the backend serializes it.
type wireCard struct {
	TaskID      FlexID       `json:"taskId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ColumnID    FlexID       `json:"columnId"`
	RowOrder    int          `json:"rowOrder"`
	Assignees   []wireMember `json:"assignees"`
	StartDate   string       `json:"startDate"`
	DueDate     string       `json:"dueDate"`
	Checklist   []wireCheck  `json:"checklist"`
	IsCompleted bool         `json:"isCompleted"`
	Progress    float64      `json:"progress"`
}

// wireCheck is a checklist item as the backend serializes it.
type wireCheck struct {
	ItemID      FlexID `json:"itemId"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// wireMember is a person reference (assignee or team member).
type wireMember struct {
	MemberID FlexID `json:"memberId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// wireProject is a project as the backend serializes it.
type wireProject struct {
	ProjectID FlexID `json:"projectId"`
	Name      string `json:"name"`
}

// ErrorResponse is the backend's standard error payload.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
