package board

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

// API is the backend surface the Controller depends on. *api.Adapter
// satisfies it; tests substitute a fake with call counters.
type API interface {
	GetTaskBoard(ctx context.Context, projectID string) (*model.Board, error)
	CreateBoardColumn(ctx context.Context, projectID, name string) (*model.Column, error)
	UpdateBoardColumn(ctx context.Context, columnID, name string, wipLimit *int) (*model.Column, error)
	DeleteBoardColumn(ctx context.Context, columnID string) error
	CreateTask(ctx context.Context, columnID string, fields model.CardFields) (*model.Card, error)
	UpdateTask(ctx context.Context, taskID string, fields model.CardFields) (*model.Card, error)
	DeleteTask(ctx context.Context, taskID string) error
	MoveTask(ctx context.Context, taskID string, mv model.MoveRequest) error
	AddChecklistItem(ctx context.Context, taskID, title string) (*model.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, itemID string, fields model.ChecklistFields) (*model.ChecklistItem, error)
	DeleteChecklistItem(ctx context.Context, itemID string) error
}

// Controller owns the capacity invariants and is the single mutation
// entry point for the board. Every operation either completes and ends in
// a canonical reload, or returns a typed error with the last-good
// snapshot retained. Capacity and validation failures are raised before
// any network call.
type Controller struct {
	mu      sync.Mutex
	backend API
	store   *Store
	metrics metricsCache

	projectID string

	// loadSeq is a monotonically increasing counter for issued loads.
	// A reload response is installed only if its counter is still the
	// latest and the project has not changed underneath it, so stale
	// responses from a project switch are discarded.
	loadSeq  uint64
	inflight int
}

// NewController creates a Controller over the given backend.
func NewController(backend API) *Controller {
	return &Controller{
		backend: backend,
		store:   NewStore(),
	}
}

// Snapshot returns the current board snapshot.
func (c *Controller) Snapshot() *model.Board {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Snapshot()
}

// Metrics returns the derived rollups for the current snapshot,
// memoized by snapshot identity.
func (c *Controller) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics.get(c.store.Snapshot())
}

// ProjectID returns the currently selected project.
func (c *Controller) ProjectID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectID
}

// Reloading reports whether a board load is in flight. The presentation
// layer disables move interaction while this is true to avoid operating
// on a stale snapshot.
func (c *Controller) Reloading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// LoadBoard fetches the canonical board for projectID and installs it.
// On failure the store is left unchanged and the error is surfaced; there
// is no automatic retry. A response that arrives after a newer load was
// issued (or after the project changed) is discarded.
func (c *Controller) LoadBoard(ctx context.Context, projectID string) error {
	c.mu.Lock()
	c.projectID = projectID
	c.loadSeq++
	seq := c.loadSeq
	c.inflight++
	c.mu.Unlock()

	b, err := c.backend.GetTaskBoard(ctx, projectID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		return err
	}
	if seq != c.loadSeq || projectID != c.projectID {
		// Stale response; a newer load owns the snapshot now.
		return nil
	}
	c.store.Replace(b)
	return nil
}

// reload re-fetches the canonical board for the selected project.
func (c *Controller) reload(ctx context.Context) error {
	return c.LoadBoard(ctx, c.ProjectID())
}

// CreateColumn appends a column to the project's board and reloads.
// Duplicate names are permitted; the backend assigns column order. A
// non-nil wipLimit is applied to the new column in a follow-up update,
// since column creation does not carry one.
func (c *Controller) CreateColumn(ctx context.Context, projectID, name string, wipLimit *int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrColumnNameRequired
	}
	if len(c.Snapshot().Columns) >= MaxColumns {
		return &CapacityError{Resource: "columns", Limit: MaxColumns}
	}

	col, err := c.backend.CreateBoardColumn(ctx, projectID, name)
	if err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	if wipLimit != nil && col != nil && col.ID != "" {
		if _, err := c.backend.UpdateBoardColumn(ctx, col.ID, name, wipLimit); err != nil {
			return c.resyncOnNotFound(ctx, err)
		}
	}
	return c.reload(ctx)
}

// RenameColumn renames a column in place, then reloads. A nil wipLimit
// preserves the column's existing limit; a non-nil one replaces it.
func (c *Controller) RenameColumn(ctx context.Context, columnID, name string, wipLimit *int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrColumnNameRequired
	}

	if wipLimit == nil {
		if col, _ := c.Snapshot().ColumnByID(columnID); col != nil {
			wipLimit = col.WIPLimit
		}
	}

	if _, err := c.backend.UpdateBoardColumn(ctx, columnID, name, wipLimit); err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	return c.reload(ctx)
}

// DeleteColumn removes a column and reloads. Confirming destructive
// intent is the presentation layer's job; no confirmation happens here.
func (c *Controller) DeleteColumn(ctx context.Context, columnID string) error {
	if err := c.backend.DeleteBoardColumn(ctx, columnID); err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	return c.reload(ctx)
}

// CreateCard creates a card in the given column and reloads.
func (c *Controller) CreateCard(ctx context.Context, columnID string, fields model.CardFields) error {
	if columnID == "" {
		return ErrNoColumnSelected
	}
	if c.Snapshot().CardCount() >= MaxTasks {
		return &CapacityError{Resource: "tasks", Limit: MaxTasks}
	}

	if _, err := c.backend.CreateTask(ctx, columnID, fields); err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	return c.reload(ctx)
}

// UpdateCard edits a card in place and reloads. Capacity is not
// re-checked; edits never change the total count.
func (c *Controller) UpdateCard(ctx context.Context, cardID string, fields model.CardFields) error {
	if _, err := c.backend.UpdateTask(ctx, cardID, fields); err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	return c.reload(ctx)
}

// DeleteCard removes a card and reloads.
func (c *Controller) DeleteCard(ctx context.Context, cardID string) error {
	if err := c.backend.DeleteTask(ctx, cardID); err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	return c.reload(ctx)
}

// MoveCard moves a card to destColumnID at destIndex.
//
// The move is applied to the local snapshot first so the drop is visible
// immediately, then sent to the backend, and finally superseded by a
// canonical reload whether the backend call succeeded or not. A drop on
// the card's current position is skipped entirely, with no network call.
func (c *Controller) MoveCard(ctx context.Context, cardID, destColumnID string, destIndex int) error {
	c.mu.Lock()
	cur := c.store.Snapshot()

	srcIdx, cardIdx := cur.FindCard(cardID)
	dstCol, dstIdx := cur.ColumnByID(destColumnID)
	if srcIdx < 0 || dstIdx < 0 {
		c.mu.Unlock()
		return c.resyncOnNotFound(ctx, &api.NotFoundError{Path: "task " + cardID})
	}

	sourceColumnID := cur.Columns[srcIdx].ID
	if sourceColumnID == destColumnID && cardIdx == destIndex {
		c.mu.Unlock()
		return nil
	}

	// Optimistic local mutation ahead of server confirmation.
	c.store.MoveCard(cardID, sourceColumnID, destColumnID, destIndex)
	mv := model.MoveRequest{
		TargetColumnID:    destColumnID,
		TargetColumnOrder: dstCol.Position,
		TargetRowOrder:    destIndex,
	}
	c.mu.Unlock()

	moveErr := c.backend.MoveTask(ctx, cardID, mv)

	// The canonical board always wins over the optimistic value.
	reloadErr := c.reload(ctx)
	return errors.Join(moveErr, reloadErr)
}

// AddChecklistItem appends a checklist item to a card and reloads.
// Checklist mutations have no optimistic path; they happen inside a
// focused dialog where a round-trip is acceptable.
func (c *Controller) AddChecklistItem(ctx context.Context, cardID, title string) error {
	if _, err := c.backend.AddChecklistItem(ctx, cardID, title); err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	return c.reload(ctx)
}

// UpdateChecklistItem edits or toggles a checklist item and reloads.
func (c *Controller) UpdateChecklistItem(ctx context.Context, itemID string, fields model.ChecklistFields) error {
	if _, err := c.backend.UpdateChecklistItem(ctx, itemID, fields); err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	return c.reload(ctx)
}

// DeleteChecklistItem removes a checklist item and reloads.
func (c *Controller) DeleteChecklistItem(ctx context.Context, itemID string) error {
	if err := c.backend.DeleteChecklistItem(ctx, itemID); err != nil {
		return c.resyncOnNotFound(ctx, err)
	}
	return c.reload(ctx)
}

// resyncOnNotFound reloads the board when a mutation referenced a stale
// identifier, so the local snapshot catches up with whoever deleted the
// entity. The original error is surfaced either way.
func (c *Controller) resyncOnNotFound(ctx context.Context, err error) error {
	if api.IsNotFound(err) && c.ProjectID() != "" {
		if reloadErr := c.reload(ctx); reloadErr != nil {
			return errors.Join(err, reloadErr)
		}
	}
	return err
}
