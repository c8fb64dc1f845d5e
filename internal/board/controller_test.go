package board

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/model"
)

// colUpdate records the arguments of one UpdateBoardColumn call.
type colUpdate struct {
	columnID string
	name     string
	wipLimit *int
}

// fakeAPI is an in-memory backend with per-operation call counters.
type fakeAPI struct {
	mu         sync.Mutex
	boards     map[string]*model.Board
	calls      map[string]int
	moveReqs   []model.MoveRequest
	colUpdates []colUpdate

	moveErr   error
	deleteErr error

	// holds blocks GetTaskBoard for a project until the channel closes,
	// to simulate a slow in-flight load.
	holds map[string]chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		boards: map[string]*model.Board{},
		calls:  map[string]int{},
		holds:  map[string]chan struct{}{},
	}
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeAPI) resetCalls() {
	f.mu.Lock()
	f.calls = map[string]int{}
	f.mu.Unlock()
}

// cloneBoard returns an independent copy so normalization inside the
// controller cannot mutate the fake's canonical data.
func cloneBoard(b *model.Board) *model.Board {
	if b == nil {
		return nil
	}
	out := &model.Board{ProjectID: b.ProjectID, Columns: make([]model.Column, len(b.Columns))}
	copy(out.Columns, b.Columns)
	for i := range out.Columns {
		cards := make([]model.Card, len(b.Columns[i].Cards))
		copy(cards, b.Columns[i].Cards)
		out.Columns[i].Cards = cards
	}
	return out
}

func (f *fakeAPI) GetTaskBoard(ctx context.Context, projectID string) (*model.Board, error) {
	f.record("GetTaskBoard")
	f.mu.Lock()
	hold := f.holds[projectID]
	b := f.boards[projectID]
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if b == nil {
		return nil, &api.NotFoundError{Path: "project " + projectID}
	}
	return cloneBoard(b), nil
}

func (f *fakeAPI) CreateBoardColumn(ctx context.Context, projectID, name string) (*model.Column, error) {
	f.record("CreateBoardColumn")
	return &model.Column{ID: "new", Name: name}, nil
}

func (f *fakeAPI) UpdateBoardColumn(ctx context.Context, columnID, name string, wipLimit *int) (*model.Column, error) {
	f.record("UpdateBoardColumn")
	f.mu.Lock()
	f.colUpdates = append(f.colUpdates, colUpdate{columnID: columnID, name: name, wipLimit: wipLimit})
	f.mu.Unlock()
	return &model.Column{ID: columnID, Name: name, WIPLimit: wipLimit}, nil
}

func (f *fakeAPI) DeleteBoardColumn(ctx context.Context, columnID string) error {
	f.record("DeleteBoardColumn")
	return nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, columnID string, fields model.CardFields) (*model.Card, error) {
	f.record("CreateTask")
	return &model.Card{ID: "new", Title: fields.Title, ColumnID: columnID}, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, taskID string, fields model.CardFields) (*model.Card, error) {
	f.record("UpdateTask")
	return &model.Card{ID: taskID, Title: fields.Title}, nil
}

func (f *fakeAPI) DeleteTask(ctx context.Context, taskID string) error {
	f.record("DeleteTask")
	return f.deleteErr
}

func (f *fakeAPI) MoveTask(ctx context.Context, taskID string, mv model.MoveRequest) error {
	f.record("MoveTask")
	f.mu.Lock()
	f.moveReqs = append(f.moveReqs, mv)
	f.mu.Unlock()
	return f.moveErr
}

func (f *fakeAPI) AddChecklistItem(ctx context.Context, taskID, title string) (*model.ChecklistItem, error) {
	f.record("AddChecklistItem")
	return &model.ChecklistItem{ID: "new", Title: title}, nil
}

func (f *fakeAPI) UpdateChecklistItem(ctx context.Context, itemID string, fields model.ChecklistFields) (*model.ChecklistItem, error) {
	f.record("UpdateChecklistItem")
	return &model.ChecklistItem{ID: itemID}, nil
}

func (f *fakeAPI) DeleteChecklistItem(ctx context.Context, itemID string) error {
	f.record("DeleteChecklistItem")
	return nil
}

func loadedController(t *testing.T, f *fakeAPI, projectID string) *Controller {
	t.Helper()
	c := NewController(f)
	if err := c.LoadBoard(context.Background(), projectID); err != nil {
		t.Fatalf("loading board: %v", err)
	}
	return c
}

func TestLoadBoardInstallsNormalizedSnapshot(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = &model.Board{ProjectID: "p1", Columns: []model.Column{
		{ID: "1", Name: "To Do", Cards: nil},
	}}

	c := loadedController(t, f, "p1")

	b := c.Snapshot()
	if len(b.Columns) != 1 {
		t.Fatalf("columns = %d, want 1", len(b.Columns))
	}
	if b.Columns[0].Cards == nil || len(b.Columns[0].Cards) != 0 {
		t.Error("expected an empty, non-nil card slice")
	}

	m := c.Metrics()
	if m.TotalTasks != 0 {
		t.Errorf("TotalTasks = %d, want 0", m.TotalTasks)
	}
	if m.RemainingCapacity != MaxTasks {
		t.Errorf("RemainingCapacity = %d, want %d", m.RemainingCapacity, MaxTasks)
	}
}

func TestLoadBoardFailureRetainsSnapshot(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = &model.Board{ProjectID: "p1", Columns: []model.Column{
		{ID: "c1", Name: "To Do", Cards: []model.Card{{ID: "t1"}}},
	}}

	c := loadedController(t, f, "p1")

	if err := c.LoadBoard(context.Background(), "missing"); err == nil {
		t.Fatal("expected an error for an unknown project")
	}

	// Last-good snapshot retained.
	if got := c.Snapshot().CardCount(); got != 1 {
		t.Errorf("CardCount = %d, want 1", got)
	}
}

func TestCreateColumnCapacityFailsFast(t *testing.T) {
	f := newFakeAPI()
	full := &model.Board{ProjectID: "p1"}
	for i := 0; i < MaxColumns; i++ {
		full.Columns = append(full.Columns, model.Column{ID: fmt.Sprintf("c%d", i)})
	}
	f.boards["p1"] = full

	c := loadedController(t, f, "p1")
	f.resetCalls()

	err := c.CreateColumn(context.Background(), "p1", "Overflow", nil)
	if !IsCapacityExceeded(err) {
		t.Fatalf("err = %v, want CapacityError", err)
	}
	if n := f.count("CreateBoardColumn"); n != 0 {
		t.Errorf("CreateBoardColumn called %d times, want 0", n)
	}
	if n := f.count("GetTaskBoard"); n != 0 {
		t.Errorf("GetTaskBoard called %d times, want 0", n)
	}
}

func TestCreateColumnRequiresName(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = &model.Board{ProjectID: "p1"}
	c := loadedController(t, f, "p1")
	f.resetCalls()

	if err := c.CreateColumn(context.Background(), "p1", "   ", nil); !errors.Is(err, ErrColumnNameRequired) {
		t.Fatalf("err = %v, want ErrColumnNameRequired", err)
	}
	if n := f.count("CreateBoardColumn"); n != 0 {
		t.Errorf("CreateBoardColumn called %d times, want 0", n)
	}
}

func TestCreateCardCapacityFailsFast(t *testing.T) {
	f := newFakeAPI()
	full := &model.Board{ProjectID: "p1", Columns: []model.Column{{ID: "c1", Name: "All"}}}
	for i := 0; i < MaxTasks; i++ {
		full.Columns[0].Cards = append(full.Columns[0].Cards, model.Card{ID: fmt.Sprintf("t%d", i)})
	}
	f.boards["p1"] = full

	c := loadedController(t, f, "p1")
	f.resetCalls()

	err := c.CreateCard(context.Background(), "c1", model.CardFields{Title: "One more"})
	if !IsCapacityExceeded(err) {
		t.Fatalf("err = %v, want CapacityError", err)
	}
	if n := f.count("CreateTask"); n != 0 {
		t.Errorf("CreateTask called %d times, want 0", n)
	}
}

func TestCreateCardRequiresColumn(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = &model.Board{ProjectID: "p1"}
	c := loadedController(t, f, "p1")
	f.resetCalls()

	err := c.CreateCard(context.Background(), "", model.CardFields{Title: "Orphan"})
	if !errors.Is(err, ErrNoColumnSelected) {
		t.Fatalf("err = %v, want ErrNoColumnSelected", err)
	}
	if n := f.count("CreateTask"); n != 0 {
		t.Errorf("CreateTask called %d times, want 0", n)
	}
}

func TestMoveCardIssuesMoveAndSingleReload(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = threeColumnBoard()

	c := loadedController(t, f, "p1")
	f.resetCalls()

	if err := c.MoveCard(context.Background(), "t3", "c2", 0); err != nil {
		t.Fatalf("moving card: %v", err)
	}

	if n := f.count("MoveTask"); n != 1 {
		t.Errorf("MoveTask called %d times, want 1", n)
	}
	if n := f.count("GetTaskBoard"); n != 1 {
		t.Errorf("GetTaskBoard called %d times, want 1", n)
	}

	mv := f.moveReqs[0]
	if mv.TargetColumnID != "c2" || mv.TargetRowOrder != 0 {
		t.Errorf("move request = %+v", mv)
	}
	if mv.TargetColumnOrder != 1 {
		t.Errorf("TargetColumnOrder = %d, want 1", mv.TargetColumnOrder)
	}
}

func TestMoveCardSamePositionSkipsNetwork(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = threeColumnBoard()

	c := loadedController(t, f, "p1")
	f.resetCalls()

	if err := c.MoveCard(context.Background(), "t2", "c1", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := f.count("MoveTask"); n != 0 {
		t.Errorf("MoveTask called %d times, want 0", n)
	}
	if n := f.count("GetTaskBoard"); n != 0 {
		t.Errorf("GetTaskBoard called %d times, want 0", n)
	}
}

func TestMoveCardFailureReloadsCanonical(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = threeColumnBoard()
	f.moveErr = &api.StatusError{StatusCode: 500, Message: "boom"}

	c := loadedController(t, f, "p1")
	f.resetCalls()

	err := c.MoveCard(context.Background(), "t3", "c2", 0)
	if err == nil {
		t.Fatal("expected the backend failure to surface")
	}

	// The canonical board wins over the optimistic mutation.
	b := c.Snapshot()
	if !sameIDs(b.Columns[0].Cards, "t1", "t2", "t3") {
		t.Errorf("source column = %v, want canonical order", cardIDs(b.Columns[0].Cards))
	}
	if n := f.count("GetTaskBoard"); n != 1 {
		t.Errorf("GetTaskBoard called %d times, want 1", n)
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = &model.Board{ProjectID: "p1", Columns: []model.Column{{ID: "c1", Name: "P1 col"}}}
	f.boards["p2"] = &model.Board{ProjectID: "p2", Columns: []model.Column{{ID: "c2", Name: "P2 col"}}}

	hold := make(chan struct{})
	f.holds["p1"] = hold

	c := NewController(f)

	done := make(chan error, 1)
	go func() {
		done <- c.LoadBoard(context.Background(), "p1")
	}()

	// Wait until the slow p1 fetch is in flight.
	deadline := time.After(2 * time.Second)
	for f.count("GetTaskBoard") == 0 {
		select {
		case <-deadline:
			t.Fatal("p1 fetch never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	// The user switches projects while p1 is still loading.
	if err := c.LoadBoard(context.Background(), "p2"); err != nil {
		t.Fatalf("loading p2: %v", err)
	}

	close(hold)
	if err := <-done; err != nil {
		t.Fatalf("p1 load returned error: %v", err)
	}

	b := c.Snapshot()
	if b.ProjectID != "p2" {
		t.Fatalf("snapshot project = %q, want p2 (stale p1 response must be discarded)", b.ProjectID)
	}
	if b.Columns[0].ID != "c2" {
		t.Errorf("snapshot column = %q, want c2", b.Columns[0].ID)
	}
}

func TestDeleteCardNotFoundResyncs(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = threeColumnBoard()
	f.deleteErr = &api.NotFoundError{Path: "task t1"}

	c := loadedController(t, f, "p1")
	f.resetCalls()

	err := c.DeleteCard(context.Background(), "t1")
	if !api.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if n := f.count("GetTaskBoard"); n != 1 {
		t.Errorf("GetTaskBoard called %d times, want 1 (resync)", n)
	}
}

func TestRenameColumnPreservesWIPLimit(t *testing.T) {
	f := newFakeAPI()
	limit := 3
	f.boards["p1"] = &model.Board{ProjectID: "p1", Columns: []model.Column{
		{ID: "c1", Name: "Review", WIPLimit: &limit},
	}}

	c := loadedController(t, f, "p1")

	if err := c.RenameColumn(context.Background(), "c1", "QA Review", nil); err != nil {
		t.Fatalf("renaming column: %v", err)
	}
	if n := f.count("UpdateBoardColumn"); n != 1 {
		t.Errorf("UpdateBoardColumn called %d times, want 1", n)
	}
	upd := f.colUpdates[0]
	if upd.wipLimit == nil || *upd.wipLimit != 3 {
		t.Errorf("wipLimit = %v, want existing limit 3 preserved", upd.wipLimit)
	}
}

func TestRenameColumnSetsNewWIPLimit(t *testing.T) {
	f := newFakeAPI()
	old := 3
	f.boards["p1"] = &model.Board{ProjectID: "p1", Columns: []model.Column{
		{ID: "c1", Name: "Review", WIPLimit: &old},
	}}

	c := loadedController(t, f, "p1")

	newLimit := 7
	if err := c.RenameColumn(context.Background(), "c1", "Review", &newLimit); err != nil {
		t.Fatalf("updating column: %v", err)
	}

	upd := f.colUpdates[0]
	if upd.columnID != "c1" {
		t.Errorf("columnID = %q, want c1", upd.columnID)
	}
	if upd.wipLimit == nil || *upd.wipLimit != 7 {
		t.Errorf("wipLimit = %v, want 7", upd.wipLimit)
	}
}

func TestCreateColumnAppliesWIPLimit(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = &model.Board{ProjectID: "p1"}

	c := loadedController(t, f, "p1")
	f.resetCalls()

	limit := 4
	if err := c.CreateColumn(context.Background(), "p1", "Review", &limit); err != nil {
		t.Fatalf("creating column: %v", err)
	}

	if n := f.count("CreateBoardColumn"); n != 1 {
		t.Errorf("CreateBoardColumn called %d times, want 1", n)
	}
	if n := f.count("UpdateBoardColumn"); n != 1 {
		t.Errorf("UpdateBoardColumn called %d times, want 1", n)
	}
	if n := f.count("GetTaskBoard"); n != 1 {
		t.Errorf("GetTaskBoard called %d times, want 1", n)
	}

	upd := f.colUpdates[0]
	if upd.columnID != "new" || upd.wipLimit == nil || *upd.wipLimit != 4 {
		t.Errorf("update = %+v, want new column with limit 4", upd)
	}
}

func TestCreateColumnWithoutWIPLimitSkipsUpdate(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = &model.Board{ProjectID: "p1"}

	c := loadedController(t, f, "p1")
	f.resetCalls()

	if err := c.CreateColumn(context.Background(), "p1", "Review", nil); err != nil {
		t.Fatalf("creating column: %v", err)
	}
	if n := f.count("UpdateBoardColumn"); n != 0 {
		t.Errorf("UpdateBoardColumn called %d times, want 0", n)
	}
}

func TestChecklistOperationsReloadAfter(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = threeColumnBoard()

	c := loadedController(t, f, "p1")

	done := true
	ops := []struct {
		name string
		op   func() error
	}{
		{"AddChecklistItem", func() error {
			return c.AddChecklistItem(context.Background(), "t1", "Write release notes")
		}},
		{"UpdateChecklistItem", func() error {
			return c.UpdateChecklistItem(context.Background(), "i1", model.ChecklistFields{Done: &done})
		}},
		{"DeleteChecklistItem", func() error {
			return c.DeleteChecklistItem(context.Background(), "i1")
		}},
	}

	for _, tt := range ops {
		f.resetCalls()
		if err := tt.op(); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if n := f.count(tt.name); n != 1 {
			t.Errorf("%s called %d times, want 1", tt.name, n)
		}
		if n := f.count("GetTaskBoard"); n != 1 {
			t.Errorf("%s: GetTaskBoard called %d times, want 1 (reload after)", tt.name, n)
		}
	}
}

func TestTotalsHoldAfterOperations(t *testing.T) {
	f := newFakeAPI()
	f.boards["p1"] = threeColumnBoard()

	c := loadedController(t, f, "p1")

	ops := []func() error{
		func() error { return c.MoveCard(context.Background(), "t1", "c3", 0) },
		func() error { return c.CreateCard(context.Background(), "c1", model.CardFields{Title: "x"}) },
		func() error { return c.DeleteCard(context.Background(), "t4") },
	}

	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		b := c.Snapshot()
		sum := 0
		for _, col := range b.Columns {
			sum += len(col.Cards)
		}
		if m := c.Metrics(); m.TotalTasks != sum {
			t.Errorf("op %d: TotalTasks = %d, column sum = %d", i, m.TotalTasks, sum)
		}
	}
}
