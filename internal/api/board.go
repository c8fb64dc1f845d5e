package api

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/taskboard/internal/model"
)

// Adapter exposes the backend's board operations as typed methods over
// the normalized model entities. It is the only place wire shapes are
// translated; everything above it works with internal/model types.
type Adapter struct {
	client *Client
}

// NewAdapter creates a new backend adapter.
func NewAdapter(baseURL, token string) *Adapter {
	return &Adapter{client: NewClient(baseURL, token)}
}

// GetProjects retrieves the projects visible to the current user.
func (a *Adapter) GetProjects(ctx context.Context) ([]model.Project, error) {
	var wire []wireProject
	if err := a.client.Get(ctx, "/api/projects", &wire); err != nil {
		return nil, fmt.Errorf("fetching projects: %w", err)
	}

	projects := make([]model.Project, 0, len(wire))
	for _, p := range wire {
		projects = append(projects, model.Project{
			ID:   string(p.ProjectID),
			Name: p.Name,
		})
	}
	return projects, nil
}

// GetTeamMembers retrieves the team members available for assignment.
func (a *Adapter) GetTeamMembers(ctx context.Context) ([]model.Member, error) {
	var wire []wireMember
	if err := a.client.Get(ctx, "/api/team-members", &wire); err != nil {
		return nil, fmt.Errorf("fetching team members: %w", err)
	}

	members := make([]model.Member, 0, len(wire))
	for _, m := range wire {
		members = append(members, model.Member{
			ID:    string(m.MemberID),
			Name:  m.Name,
			Email: m.Email,
		})
	}
	return members, nil
}

// GetTaskBoard retrieves the canonical board for a project.
func (a *Adapter) GetTaskBoard(ctx context.Context, projectID string) (*model.Board, error) {
	path := "/api/projects/" + projectID + "/task-board"

	var resp boardResponse
	if err := a.client.Get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("fetching board for project %s: %w", projectID, err)
	}

	board := &model.Board{
		ProjectID: projectID,
		Columns:   make([]model.Column, 0, len(resp.Columns)),
	}
	for _, col := range resp.Columns {
		board.Columns = append(board.Columns, columnToModel(col))
	}
	return board, nil
}

// CreateBoardColumn appends a new column to the project's board.
func (a *Adapter) CreateBoardColumn(
	ctx context.Context,
	projectID string,
	name string,
) (*model.Column, error) {
	path := "/api/projects/" + projectID + "/board-columns"
	payload := map[string]string{"name": name}

	var wire wireColumn
	if err := a.client.Post(ctx, path, payload, &wire); err != nil {
		return nil, fmt.Errorf("creating column %q: %w", name, err)
	}
	col := columnToModel(wire)
	return &col, nil
}

// UpdateBoardColumn renames a column. The caller passes the column's
// current WIP limit so the backend does not drop it on update.
func (a *Adapter) UpdateBoardColumn(
	ctx context.Context,
	columnID string,
	name string,
	wipLimit *int,
) (*model.Column, error) {
	path := "/api/board-columns/" + columnID
	payload := map[string]interface{}{"name": name}
	if wipLimit != nil {
		payload["workInProgressLimit"] = *wipLimit
	}

	var wire wireColumn
	if err := a.client.Put(ctx, path, payload, &wire); err != nil {
		return nil, fmt.Errorf("updating column %s: %w", columnID, err)
	}
	col := columnToModel(wire)
	return &col, nil
}

// DeleteBoardColumn removes a column. Cards in the deleted column are
// orphaned by the backend.
func (a *Adapter) DeleteBoardColumn(ctx context.Context, columnID string) error {
	if err := a.client.Delete(ctx, "/api/board-columns/"+columnID); err != nil {
		return fmt.Errorf("deleting column %s: %w", columnID, err)
	}
	return nil
}

// CreateTask creates a new card in the given column.
func (a *Adapter) CreateTask(
	ctx context.Context,
	columnID string,
	fields model.CardFields,
) (*model.Card, error) {
	payload := map[string]interface{}{
		"columnId":    columnID,
		"title":       fields.Title,
		"description": fields.Description,
	}
	if len(fields.AssigneeIDs) > 0 {
		payload["assigneeIds"] = fields.AssigneeIDs
	}
	if fields.StartDate != nil {
		payload["startDate"] = fields.StartDate.Format(time.RFC3339)
	}
	if fields.DueDate != nil {
		payload["dueDate"] = fields.DueDate.Format(time.RFC3339)
	}

	var wire wireCard
	if err := a.client.Post(ctx, "/api/tasks", payload, &wire); err != nil {
		return nil, fmt.Errorf("creating task %q: %w", fields.Title, err)
	}
	card := cardToModel(wire)
	return &card, nil
}

// UpdateTask edits a card in place.
func (a *Adapter) UpdateTask(
	ctx context.Context,
	taskID string,
	fields model.CardFields,
) (*model.Card, error) {
	payload := map[string]interface{}{
		"title":       fields.Title,
		"description": fields.Description,
	}
	if fields.AssigneeIDs != nil {
		payload["assigneeIds"] = fields.AssigneeIDs
	}
	if fields.StartDate != nil {
		payload["startDate"] = fields.StartDate.Format(time.RFC3339)
	}
	if fields.DueDate != nil {
		payload["dueDate"] = fields.DueDate.Format(time.RFC3339)
	}

	var wire wireCard
	if err := a.client.Put(ctx, "/api/tasks/"+taskID, payload, &wire); err != nil {
		return nil, fmt.Errorf("updating task %s: %w", taskID, err)
	}
	card := cardToModel(wire)
	return &card, nil
}

// DeleteTask removes a card. The backend cascades the card's checklist.
func (a *Adapter) DeleteTask(ctx context.Context, taskID string) error {
	if err := a.client.Delete(ctx, "/api/tasks/"+taskID); err != nil {
		return fmt.Errorf("deleting task %s: %w", taskID, err)
	}
	return nil
}

// MoveTask moves a card to a target column and row.
func (a *Adapter) MoveTask(
	ctx context.Context,
	taskID string,
	mv model.MoveRequest,
) error {
	path := "/api/tasks/" + taskID + "/move"
	if err := a.client.Post(ctx, path, mv, nil); err != nil {
		return fmt.Errorf("moving task %s: %w", taskID, err)
	}
	return nil
}

// AddChecklistItem appends a checklist item to a card.
func (a *Adapter) AddChecklistItem(
	ctx context.Context,
	taskID string,
	title string,
) (*model.ChecklistItem, error) {
	path := "/api/tasks/" + taskID + "/checklist-items"
	payload := map[string]string{"title": title}

	var wire wireCheck
	if err := a.client.Post(ctx, path, payload, &wire); err != nil {
		return nil, fmt.Errorf("adding checklist item to %s: %w", taskID, err)
	}
	item := checkToModel(wire)
	return &item, nil
}

// UpdateChecklistItem edits or toggles a checklist item.
func (a *Adapter) UpdateChecklistItem(
	ctx context.Context,
	itemID string,
	fields model.ChecklistFields,
) (*model.ChecklistItem, error) {
	payload := map[string]interface{}{}
	if fields.Title != nil {
		payload["title"] = *fields.Title
	}
	if fields.Done != nil {
		payload["isCompleted"] = *fields.Done
	}

	var wire wireCheck
	path := "/api/checklist-items/" + itemID
	if err := a.client.Put(ctx, path, payload, &wire); err != nil {
		return nil, fmt.Errorf("updating checklist item %s: %w", itemID, err)
	}
	item := checkToModel(wire)
	return &item, nil
}

// DeleteChecklistItem removes a checklist item.
func (a *Adapter) DeleteChecklistItem(ctx context.Context, itemID string) error {
	if err := a.client.Delete(ctx, "/api/checklist-items/"+itemID); err != nil {
		return fmt.Errorf("deleting checklist item %s: %w", itemID, err)
	}
	return nil
}

// columnToModel converts a wire column into a model.Column. Cards are
// guaranteed non-nil even when the backend omits them; display labels are
// resolved later during snapshot normalization, which knows the ordinal.
func columnToModel(col wireColumn) model.Column {
	cards := make([]model.Card, 0, len(col.Cards))
	for _, wc := range col.Cards {
		cards = append(cards, cardToModel(wc))
	}

	return model.Column{
		ID:         string(col.ColumnID),
		Name:       col.Name,
		Title:      col.Title,
		Position:   col.Position,
		WIPLimit:   col.WIPLimit,
		Stage:      stageKeyword(col),
		StatusCode: col.Status.Code,
		Cards:      cards,
	}
}

// stageKeyword prefers the explicit stage field, falling back to a
// textual status keyword.
func stageKeyword(col wireColumn) string {
	if col.Stage != "" {
		return col.Stage
	}
	return col.Status.Keyword
}

// cardToModel converts a wire card into a model.Card.
func cardToModel(wc wireCard) model.Card {
	assignees := make([]model.Assignee, 0, len(wc.Assignees))
	for _, m := range wc.Assignees {
		assignees = append(assignees, model.Assignee{
			ID:   string(m.MemberID),
			Name: m.Name,
		})
	}

	var checklist []model.ChecklistItem
	for _, item := range wc.Checklist {
		checklist = append(checklist, checkToModel(item))
	}

	return model.Card{
		ID:          string(wc.TaskID),
		Title:       wc.Title,
		Description: wc.Description,
		ColumnID:    string(wc.ColumnID),
		Position:    wc.RowOrder,
		Assignees:   assignees,
		StartDate:   parseBackendTime(wc.StartDate),
		DueDate:     parseBackendTime(wc.DueDate),
		Checklist:   checklist,
		Completed:   wc.IsCompleted,
		Progress:    int(wc.Progress),
	}
}

// checkToModel converts a wire checklist item into a model.ChecklistItem.
func checkToModel(item wireCheck) model.ChecklistItem {
	return model.ChecklistItem{
		ID:    string(item.ItemID),
		Title: item.Title,
		Done:  item.IsCompleted,
	}
}

// parseBackendTime parses a backend timestamp string. The backend emits
// RFC 3339 but older records carry a date-only form.
func parseBackendTime(s string) *time.Time {
	if s == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
