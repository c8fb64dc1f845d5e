package boardview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

// MoveRequestedMsg is emitted when the user drops a grabbed card.
type MoveRequestedMsg struct {
	CardID       string
	DestColumnID string
	DestIndex    int
}

// NewCardMsg asks the app to open the card form for the given column.
type NewCardMsg struct {
	ColumnID string
}

// EditCardMsg asks the app to open the card form for an existing card.
type EditCardMsg struct {
	Card model.Card
}

// DeleteCardMsg asks the app to delete the selected card.
type DeleteCardMsg struct {
	CardID string
}

// ChecklistMsg asks the app to open the checklist editor for a card.
type ChecklistMsg struct {
	Card model.Card
}

// NewColumnMsg asks the app to open the column form.
type NewColumnMsg struct{}

// RenameColumnMsg asks the app to open the column form for a rename.
type RenameColumnMsg struct {
	Column model.Column
}

// DeleteColumnMsg asks the app to delete the selected column.
type DeleteColumnMsg struct {
	ColumnID string
}

// RefreshMsg asks the app to reload the canonical board.
type RefreshMsg struct{}

// Model renders one project's board as side-by-side columns and turns
// keyboard interaction into intent messages for the app to execute.
type Model struct {
	board   *model.Board
	metrics board.Metrics
	keys    *keys.KeyMap

	selCol  int
	selCard int

	// Move mode: the selected card is grabbed and arrows steer the drop
	// target until enter confirms or esc cancels.
	moving     bool
	grabCardID string
	dropCol    int
	dropIdx    int

	// busy disables structural interaction while a reload is in flight,
	// so a drop is never computed against a stale snapshot.
	busy bool

	errText string
	width   int
	height  int
}

// New creates a board view.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		board:  &model.Board{},
		keys:   k,
		width:  width,
		height: height,
	}
}

// SetBoard installs a new snapshot and its metrics, clamping the
// selection to the new shape.
func (m *Model) SetBoard(b *model.Board, metrics board.Metrics) {
	m.board = b
	m.metrics = metrics
	m.clampSelection()
	if m.moving {
		// The snapshot changed under the grab; drop out of move mode.
		m.moving = false
	}
}

// SetBusy toggles the reload-in-flight state.
func (m *Model) SetBusy(busy bool) {
	m.busy = busy
}

// SetError shows an error in the status bar. An empty string clears it.
func (m *Model) SetError(text string) {
	m.errText = text
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SelectedColumn returns the currently selected column, or nil on an
// empty board.
func (m Model) SelectedColumn() *model.Column {
	if m.selCol < 0 || m.selCol >= len(m.board.Columns) {
		return nil
	}
	return &m.board.Columns[m.selCol]
}

// SelectedCard returns the currently selected card, or nil.
func (m Model) SelectedCard() *model.Card {
	col := m.SelectedColumn()
	if col == nil || m.selCard < 0 || m.selCard >= len(col.Cards) {
		return nil
	}
	return &col.Cards[m.selCard]
}

// Update handles key events for the board view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.moving {
		return m.updateMoving(keyMsg)
	}
	return m.updateNormal(keyMsg)
}

func (m Model) updateNormal(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keys
	switch {
	case matches(msg, k.Left):
		if m.selCol > 0 {
			m.selCol--
			m.clampSelection()
		}
	case matches(msg, k.Right):
		if m.selCol < len(m.board.Columns)-1 {
			m.selCol++
			m.clampSelection()
		}
	case matches(msg, k.Up):
		if m.selCard > 0 {
			m.selCard--
		}
	case matches(msg, k.Down):
		if col := m.SelectedColumn(); col != nil && m.selCard < len(col.Cards)-1 {
			m.selCard++
		}
	case matches(msg, k.MoveCard):
		if m.busy {
			return m, nil
		}
		if card := m.SelectedCard(); card != nil {
			m.moving = true
			m.grabCardID = card.ID
			m.dropCol = m.selCol
			m.dropIdx = m.selCard
		}
	case matches(msg, k.NewCard):
		if col := m.SelectedColumn(); col != nil {
			return m, emit(NewCardMsg{ColumnID: col.ID})
		}
		return m, emit(NewCardMsg{})
	case matches(msg, k.EditCard):
		if card := m.SelectedCard(); card != nil {
			return m, emit(EditCardMsg{Card: *card})
		}
	case matches(msg, k.DeleteCard):
		if card := m.SelectedCard(); card != nil {
			return m, emit(DeleteCardMsg{CardID: card.ID})
		}
	case matches(msg, k.Checklist):
		if card := m.SelectedCard(); card != nil {
			return m, emit(ChecklistMsg{Card: *card})
		}
	case matches(msg, k.NewColumn):
		return m, emit(NewColumnMsg{})
	case matches(msg, k.RenameColumn):
		if col := m.SelectedColumn(); col != nil {
			return m, emit(RenameColumnMsg{Column: *col})
		}
	case matches(msg, k.DeleteColumn):
		if col := m.SelectedColumn(); col != nil {
			return m, emit(DeleteColumnMsg{ColumnID: col.ID})
		}
	case matches(msg, k.Refresh):
		return m, emit(RefreshMsg{})
	}
	return m, nil
}

func (m Model) updateMoving(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keys
	switch {
	case matches(msg, k.Left):
		if m.dropCol > 0 {
			m.dropCol--
			m.clampDrop()
		}
	case matches(msg, k.Right):
		if m.dropCol < len(m.board.Columns)-1 {
			m.dropCol++
			m.clampDrop()
		}
	case matches(msg, k.Up):
		if m.dropIdx > 0 {
			m.dropIdx--
		}
	case matches(msg, k.Down):
		m.dropIdx++
		m.clampDrop()
	case matches(msg, k.Select):
		m.moving = false
		dest := m.board.Columns[m.dropCol]
		return m, emit(MoveRequestedMsg{
			CardID:       m.grabCardID,
			DestColumnID: dest.ID,
			DestIndex:    m.dropIdx,
		})
	case matches(msg, k.Back):
		m.moving = false
	}
	return m, nil
}

// View renders the board with a metrics status bar.
func (m Model) View() string {
	if len(m.board.Columns) == 0 {
		return metaStyle.Render("No columns yet. Press N to create one.")
	}

	cols := make([]string, 0, len(m.board.Columns))
	for i := range m.board.Columns {
		cols = append(cols, m.renderColumn(i))
	}

	boardRow := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	return boardRow + "\n" + m.statusBar()
}

func (m Model) renderColumn(idx int) string {
	col := m.board.Columns[idx]

	header := columnHeaderStyle.Render(col.DisplayLabel)
	count := fmt.Sprintf("%d", len(col.Cards))
	if col.WIPLimit != nil {
		count = fmt.Sprintf("%d/%d", len(col.Cards), *col.WIPLimit)
		if len(col.Cards) > *col.WIPLimit {
			count = wipOverLimitStyle.Render(count)
		}
	}

	var sb strings.Builder
	sb.WriteString(header + " " + metaStyle.Render(count) + "\n")

	for j := range col.Cards {
		if m.moving && idx == m.dropCol && j == m.dropIdx {
			sb.WriteString(dropMarkerStyle.Render("▸ drop here") + "\n")
		}
		sb.WriteString(m.renderCard(idx, j) + "\n")
	}
	if m.moving && idx == m.dropCol && m.dropIdx >= len(col.Cards) {
		sb.WriteString(dropMarkerStyle.Render("▸ drop here") + "\n")
	}

	style := columnStyle
	if idx == m.selCol {
		style = selectedColumnStyle
	}
	return style.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) renderCard(colIdx, cardIdx int) string {
	card := m.board.Columns[colIdx].Cards[cardIdx]

	title := truncate(card.Title, columnWidth-4)
	line := title
	if done, total := card.ChecklistProgress(); total > 0 {
		line += metaStyle.Render(fmt.Sprintf(" [%d/%d]", done, total))
	}

	switch {
	case m.moving && card.ID == m.grabCardID:
		return grabbedCardStyle.Render(line)
	case !m.moving && colIdx == m.selCol && cardIdx == m.selCard:
		return selectedCardStyle.Render(line)
	default:
		return cardStyle.Render(line)
	}
}

func (m Model) statusBar() string {
	parts := []string{
		fmt.Sprintf("%d tasks", m.metrics.TotalTasks),
		fmt.Sprintf("%d done / %d in progress", m.metrics.Completed, m.metrics.InProgress),
		fmt.Sprintf("%d slots left", m.metrics.RemainingCapacity),
	}
	if m.busy {
		parts = append(parts, "reloading…")
	}
	if m.moving {
		parts = append(parts, "move: arrows to aim, enter to drop, esc to cancel")
	}

	bar := statusBarStyle.Render(strings.Join(parts, "  ·  "))
	if m.errText != "" {
		bar += "\n" + errorStyle.Render(m.errText)
	}
	return bar
}

func (m *Model) clampSelection() {
	if m.selCol >= len(m.board.Columns) {
		m.selCol = len(m.board.Columns) - 1
	}
	if m.selCol < 0 {
		m.selCol = 0
	}
	if col := m.SelectedColumn(); col != nil {
		if m.selCard >= len(col.Cards) {
			m.selCard = len(col.Cards) - 1
		}
	}
	if m.selCard < 0 {
		m.selCard = 0
	}
}

func (m *Model) clampDrop() {
	if m.dropCol < 0 || m.dropCol >= len(m.board.Columns) {
		return
	}
	max := len(m.board.Columns[m.dropCol].Cards)
	if m.dropIdx > max {
		m.dropIdx = max
	}
	if m.dropIdx < 0 {
		m.dropIdx = 0
	}
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func matches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}

func truncate(s string, max int) string {
	if max <= 1 || len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
