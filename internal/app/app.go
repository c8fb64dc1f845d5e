package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/cache"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
	appsync "github.com/nhle/taskboard/internal/sync"
	"github.com/nhle/taskboard/internal/ui/boardview"
	"github.com/nhle/taskboard/internal/ui/cardform"
	"github.com/nhle/taskboard/internal/ui/checklist"
	"github.com/nhle/taskboard/internal/ui/columnform"
	"github.com/nhle/taskboard/internal/ui/projectpicker"
)

// opTimeout bounds a single backend mutation including its reload.
const opTimeout = 30 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewPicker ViewState = iota
	ViewBoard
	ViewCardForm
	ViewColumnForm
	ViewChecklist
	ViewHelp
)

// boardLoadedMsg carries the result of a foreground board load. When the
// backend is unreachable and a cached snapshot exists, cached is set and
// the snapshot is shown read-only until a refresh succeeds.
type boardLoadedMsg struct {
	board   *model.Board
	metrics board.Metrics
	cached  bool
	err     error
}

// opDoneMsg carries the result of a board mutation.
type opDoneMsg struct {
	err error
}

// membersLoadedMsg carries the team members for the assignee selector.
type membersLoadedMsg struct {
	members []model.Member
}

// Deps bundles the wiring the root model needs.
type Deps struct {
	Config     *model.AppConfig
	ConfigPath string
	Adapter    *api.Adapter
	Cache      *cache.Cache
	Ctrl       *board.Controller
	Refresher  *appsync.Refresher
}

// Model is the root Bubble Tea model that manages view routing and
// dispatches board mutations to the controller.
type Model struct {
	currentView  ViewState
	previousView ViewState

	cfg       *model.AppConfig
	cfgPath   string
	adapter   *api.Adapter
	cache     *cache.Cache
	ctrl      *board.Controller
	refresher *appsync.Refresher
	keys      *keys.KeyMap

	boardView  boardview.Model
	cardForm   cardform.Model
	columnForm columnform.Model
	checklist  checklist.Model
	picker     projectpicker.Model
	helpView   help.Model

	ready  bool
	width  int
	height int
}

// New creates the root application model.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()

	hv := help.New()
	hv.ShowAll = true

	m := Model{
		currentView: ViewPicker,
		cfg:         d.Config,
		cfgPath:     d.ConfigPath,
		adapter:     d.Adapter,
		cache:       d.Cache,
		ctrl:        d.Ctrl,
		refresher:   d.Refresher,
		keys:        k,
		boardView:   boardview.New(k, 80, 24),
		cardForm:    cardform.New(80, 24),
		columnForm:  columnform.New(80, 24),
		checklist:   checklist.New(k, 80, 24),
		helpView:    hv,
	}
	m.picker = projectpicker.New(m.loadProjects, k, 80, 24)

	if d.Config.Board.ProjectID != "" {
		m.currentView = ViewBoard
		m.boardView.SetBusy(true)
	}
	return m
}

// Init starts the background refresher and either opens the configured
// project or the project picker.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refresher.Start()}

	if m.cfg.Board.ProjectID != "" {
		cmds = append(cmds,
			m.loadBoard(m.cfg.Board.ProjectID),
			m.loadMembers(),
		)
	} else {
		cmds = append(cmds, m.picker.Init())
	}

	return tea.Batch(cmds...)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.boardView.SetSize(msg.Width, msg.Height)
		m.cardForm.SetSize(msg.Width, msg.Height)
		m.columnForm.SetSize(msg.Width, msg.Height)
		m.checklist.SetSize(msg.Width, msg.Height)
		m.picker.SetSize(msg.Width, msg.Height)
		m.helpView.Width = msg.Width
		// Forward to the active view so huh forms can lay themselves out.
		return m.updateActiveView(msg)

	case boardLoadedMsg:
		m.boardView.SetBusy(false)
		if msg.err != nil {
			m.boardView.SetError(errorText(msg.err))
		} else {
			m.boardView.SetError("")
		}
		if msg.board != nil {
			m.boardView.SetBoard(msg.board, msg.metrics)
			if msg.cached {
				m.boardView.SetError("Backend unreachable; showing cached board.")
			}
		}
		return m, nil

	case opDoneMsg:
		m.boardView.SetBusy(false)
		if msg.err != nil {
			m.boardView.SetError(errorText(msg.err))
		} else {
			m.boardView.SetError("")
		}
		b := m.ctrl.Snapshot()
		m.boardView.SetBoard(b, m.ctrl.Metrics())
		if m.currentView == ViewChecklist {
			// The reload may have changed or removed the card under edit.
			if colIdx, cardIdx := b.FindCard(m.checklist.CardID()); colIdx >= 0 {
				m.checklist.SetCard(b.Columns[colIdx].Cards[cardIdx])
			} else {
				m.currentView = ViewBoard
			}
		}
		return m, m.saveSnapshot()

	case membersLoadedMsg:
		m.cardForm.SetMembers(msg.members)
		return m, nil

	case appsync.BoardRefreshedMsg:
		waitCmd := m.refresher.WaitForNextResult()
		m.boardView.SetBusy(false)
		if msg.Err != nil {
			// Keep the retained snapshot; surface transient failures only
			// on the board so forms are not interrupted.
			if m.currentView == ViewBoard {
				m.boardView.SetError(errorText(msg.Err))
			}
			return m, waitCmd
		}
		m.boardView.SetError("")
		m.boardView.SetBoard(msg.Board, msg.Metrics)
		return m, tea.Batch(waitCmd, m.saveSnapshot())

	case projectpicker.ProjectSelectedMsg:
		return m.selectProject(msg.Project)

	case projectpicker.CloseMsg:
		// Without a selected project there is no board to return to.
		if m.ctrl.ProjectID() == "" {
			return m, nil
		}
		m.currentView = ViewBoard
		return m, nil

	case boardview.MoveRequestedMsg:
		m.boardView.SetBusy(true)
		return m, m.runOp(func(ctx context.Context) error {
			return m.ctrl.MoveCard(ctx, msg.CardID, msg.DestColumnID, msg.DestIndex)
		})

	case boardview.NewCardMsg:
		if msg.ColumnID == "" {
			m.boardView.SetError(errorText(board.ErrNoColumnSelected))
			return m, nil
		}
		m.previousView = m.currentView
		m.currentView = ViewCardForm
		return m, m.cardForm.StartCreate(msg.ColumnID)

	case boardview.EditCardMsg:
		m.previousView = m.currentView
		m.currentView = ViewCardForm
		return m, m.cardForm.StartEdit(msg.Card)

	case boardview.DeleteCardMsg:
		m.boardView.SetBusy(true)
		return m, m.runOp(func(ctx context.Context) error {
			return m.ctrl.DeleteCard(ctx, msg.CardID)
		})

	case boardview.ChecklistMsg:
		m.previousView = m.currentView
		m.currentView = ViewChecklist
		m.checklist.SetCard(msg.Card)
		return m, nil

	case checklist.ToggleItemMsg:
		done := msg.Done
		return m, m.runOp(func(ctx context.Context) error {
			return m.ctrl.UpdateChecklistItem(ctx, msg.ItemID, model.ChecklistFields{Done: &done})
		})

	case checklist.AddItemMsg:
		return m, m.runOp(func(ctx context.Context) error {
			return m.ctrl.AddChecklistItem(ctx, msg.CardID, msg.Title)
		})

	case checklist.DeleteItemMsg:
		return m, m.runOp(func(ctx context.Context) error {
			return m.ctrl.DeleteChecklistItem(ctx, msg.ItemID)
		})

	case checklist.CloseMsg:
		m.currentView = ViewBoard
		return m, nil

	case boardview.NewColumnMsg:
		m.previousView = m.currentView
		m.currentView = ViewColumnForm
		return m, m.columnForm.StartCreate()

	case boardview.RenameColumnMsg:
		m.previousView = m.currentView
		m.currentView = ViewColumnForm
		return m, m.columnForm.StartRename(msg.Column.ID, msg.Column.DisplayLabel, msg.Column.WIPLimit)

	case boardview.DeleteColumnMsg:
		m.boardView.SetBusy(true)
		return m, m.runOp(func(ctx context.Context) error {
			return m.ctrl.DeleteColumn(ctx, msg.ColumnID)
		})

	case boardview.RefreshMsg:
		m.boardView.SetBusy(true)
		return m, m.refresher.Refresh()

	case cardform.SubmitMsg:
		m.currentView = ViewBoard
		m.boardView.SetBusy(true)
		return m, m.runOp(func(ctx context.Context) error {
			if msg.CardID == "" {
				return m.ctrl.CreateCard(ctx, msg.ColumnID, msg.Fields)
			}
			return m.ctrl.UpdateCard(ctx, msg.CardID, msg.Fields)
		})

	case cardform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case columnform.SubmitMsg:
		m.currentView = ViewBoard
		m.boardView.SetBusy(true)
		projectID := m.ctrl.ProjectID()
		return m, m.runOp(func(ctx context.Context) error {
			if msg.ColumnID == "" {
				return m.ctrl.CreateColumn(ctx, projectID, msg.Name, msg.WIPLimit)
			}
			return m.ctrl.RenameColumn(ctx, msg.ColumnID, msg.Name, msg.WIPLimit)
		})

	case columnform.CancelMsg:
		m.currentView = ViewBoard
		return m, nil

	case tea.KeyMsg:
		if mdl, cmd, handled := m.handleGlobalKey(msg); handled {
			return mdl, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKey handles keys that work regardless of the active view.
// Form views swallow everything so typed text is never intercepted.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if m.currentView == ViewCardForm || m.currentView == ViewColumnForm {
		return m, nil, false
	}
	if m.currentView == ViewChecklist && m.checklist.InForm() {
		return m, nil, false
	}

	switch msg.String() {
	case "ctrl+c":
		m.refresher.Stop()
		return m, tea.Quit, true

	case "q":
		if m.currentView == ViewBoard || m.currentView == ViewPicker {
			m.refresher.Stop()
			return m, tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}

	case "p":
		if m.currentView == ViewBoard {
			m.previousView = m.currentView
			m.currentView = ViewPicker
			return m, m.picker.Init(), true
		}
	}

	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewPicker:
		m.picker, cmd = m.picker.Update(msg)
	case ViewBoard:
		m.boardView, cmd = m.boardView.Update(msg)
	case ViewCardForm:
		m.cardForm, cmd = m.cardForm.Update(msg)
	case ViewColumnForm:
		m.columnForm, cmd = m.columnForm.Update(msg)
	case ViewChecklist:
		m.checklist, cmd = m.checklist.Update(msg)
	}

	return m, cmd
}

// View renders the active view.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	switch m.currentView {
	case ViewPicker:
		return m.picker.View()
	case ViewCardForm:
		return m.cardForm.View()
	case ViewColumnForm:
		return m.columnForm.View()
	case ViewChecklist:
		return m.checklist.View()
	case ViewHelp:
		return lipgloss.NewStyle().Padding(1, 2).Render(m.helpView.View(m.keys))
	default:
		return m.boardView.View()
	}
}

// selectProject switches the board to the chosen project and persists the
// choice so the next start opens it directly.
func (m Model) selectProject(p model.Project) (tea.Model, tea.Cmd) {
	m.currentView = ViewBoard
	m.boardView.SetBusy(true)
	m.boardView.SetError("")

	m.cfg.Board.ProjectID = p.ID
	if m.cfgPath != "" {
		// Best effort; a read-only config dir should not break switching.
		_ = model.SaveConfig(m.cfgPath, m.cfg)
	}

	return m, tea.Batch(
		m.loadBoard(p.ID),
		m.loadMembers(),
	)
}

// loadBoard fetches the canonical board, falling back to the cached
// snapshot when the backend is unreachable.
func (m Model) loadBoard(projectID string) tea.Cmd {
	ctrl := m.ctrl
	c := m.cache
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		err := ctrl.LoadBoard(ctx, projectID)
		if err == nil {
			b := ctrl.Snapshot()
			if c != nil {
				_ = c.SaveBoard(context.Background(), b)
			}
			return boardLoadedMsg{board: b, metrics: ctrl.Metrics()}
		}

		if c != nil {
			if cached, _, cacheErr := c.LoadBoard(context.Background(), projectID); cacheErr == nil && cached != nil {
				return boardLoadedMsg{
					board:   cached,
					metrics: board.DeriveMetrics(cached),
					cached:  true,
					err:     err,
				}
			}
		}
		return boardLoadedMsg{err: err}
	}
}

// loadMembers fetches the team members for the assignee selector. A
// failure is silent; the card form simply omits the assignee field.
func (m Model) loadMembers() tea.Cmd {
	adapter := m.adapter
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		members, err := adapter.GetTeamMembers(ctx)
		if err != nil {
			return membersLoadedMsg{}
		}
		return membersLoadedMsg{members: members}
	}
}

// loadProjects backs the project picker: backend first, cache on failure.
func (m Model) loadProjects(ctx context.Context) ([]model.Project, error) {
	projects, err := m.adapter.GetProjects(ctx)
	if err == nil {
		if m.cache != nil {
			_ = m.cache.SaveProjects(ctx, projects)
		}
		return projects, nil
	}

	if m.cache != nil {
		if cached, cacheErr := m.cache.LoadProjects(ctx); cacheErr == nil && len(cached) > 0 {
			return cached, nil
		}
	}
	return nil, err
}

// runOp executes a controller mutation off the UI loop.
func (m Model) runOp(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return opDoneMsg{err: op(ctx)}
	}
}

// saveSnapshot persists the current snapshot so the board is available
// offline on the next start.
func (m Model) saveSnapshot() tea.Cmd {
	c := m.cache
	ctrl := m.ctrl
	return func() tea.Msg {
		if c == nil {
			return nil
		}
		b := ctrl.Snapshot()
		if b == nil || b.ProjectID == "" {
			return nil
		}
		_ = c.SaveBoard(context.Background(), b)
		return nil
	}
}

// errorText maps typed errors to short status-bar messages.
func errorText(err error) string {
	var capErr *board.CapacityError
	switch {
	case errors.As(err, &capErr):
		return fmt.Sprintf("Board is full: at most %d %s.", capErr.Limit, capErr.Resource)
	case errors.Is(err, board.ErrNoColumnSelected):
		return "Select a column first."
	case errors.Is(err, board.ErrColumnNameRequired):
		return "Column name is required."
	case api.IsAuthError(err):
		return "Authentication failed. Check your API token."
	case api.IsNotFound(err):
		return "That item no longer exists; the board was resynced."
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
