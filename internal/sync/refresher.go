package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/model"
)

// RefreshState represents the current state of the background refresher.
type RefreshState int

const (
	RefreshIdle RefreshState = iota
	RefreshRunning
	RefreshError
)

// Status holds the refresher's current state.
type Status struct {
	State       RefreshState
	LastRefresh time.Time
	Error       error
}

// BoardRefreshedMsg is a tea.Msg sent when a background reload completes.
// The Board and Metrics are the post-reload values; on error they hold
// the retained last-good snapshot.
type BoardRefreshedMsg struct {
	Board   *model.Board
	Metrics board.Metrics
	Err     error
}

// loadTimeout is the maximum time allowed for a single canonical reload.
const loadTimeout = 30 * time.Second

// Refresher periodically re-fetches the canonical board for the selected
// project so the local snapshot does not drift from the backend between
// user interactions.
type Refresher struct {
	ctrl     *board.Controller
	interval time.Duration

	resultCh  chan BoardRefreshedMsg
	triggerCh chan struct{}
	stopCh    chan struct{}

	mu      gosync.Mutex
	status  Status
	running bool
}

// New creates a Refresher over the given controller.
func New(ctrl *board.Controller, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 120 * time.Second
	}
	return &Refresher{
		ctrl:      ctrl,
		interval:  interval,
		resultCh:  make(chan BoardRefreshedMsg, 16),
		triggerCh: make(chan struct{}, 16),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the refresh loop and returns a command that subscribes
// to its results.
func (r *Refresher) Start() tea.Cmd {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	go r.loop()

	return r.waitForResult()
}

// Stop halts the refresh loop.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}

	close(r.stopCh)
	r.running = false
}

// Refresh triggers an immediate reload of the selected project's board.
func (r *Refresher) Refresh() tea.Cmd {
	select {
	case r.triggerCh <- struct{}{}:
	default:
		// A refresh is already queued.
	}
	return nil
}

// GetStatus returns the refresher's current status.
func (r *Refresher) GetStatus() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh
// result. Call this after processing a BoardRefreshedMsg to keep
// listening.
func (r *Refresher) WaitForNextResult() tea.Cmd {
	return r.waitForResult()
}

func (r *Refresher) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.refreshOnce()
		case <-r.triggerCh:
			r.refreshOnce()
		}
	}
}

// refreshOnce performs a single canonical reload and publishes the result.
// Projects without a selection are skipped.
func (r *Refresher) refreshOnce() {
	projectID := r.ctrl.ProjectID()
	if projectID == "" {
		return
	}

	r.setStatus(RefreshRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	err := r.ctrl.LoadBoard(ctx, projectID)
	if err != nil {
		r.setStatus(RefreshError, err)
	} else {
		r.setStatus(RefreshIdle, nil)
	}

	r.sendResult(BoardRefreshedMsg{
		Board:   r.ctrl.Snapshot(),
		Metrics: r.ctrl.Metrics(),
		Err:     err,
	})
}

func (r *Refresher) setStatus(state RefreshState, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.status.State = state
	r.status.Error = err
	if state == RefreshIdle && err == nil {
		r.status.LastRefresh = time.Now()
	}
}

// sendResult sends a result without blocking the loop.
func (r *Refresher) sendResult(msg BoardRefreshedMsg) {
	select {
	case r.resultCh <- msg:
	default:
		// Drop if the channel is full to avoid blocking the refresher.
	}
}

func (r *Refresher) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-r.resultCh
		if !ok {
			return nil
		}
		return result
	}
}
