package checklist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

// ToggleItemMsg asks the app to flip a checklist item's done state.
type ToggleItemMsg struct {
	ItemID string
	Done   bool
}

// AddItemMsg asks the app to append a checklist item to the card.
type AddItemMsg struct {
	CardID string
	Title  string
}

// DeleteItemMsg asks the app to remove a checklist item.
type DeleteItemMsg struct {
	ItemID string
}

// CloseMsg signals the parent to close the checklist editor.
type CloseMsg struct{}

type checklistMode int

const (
	modeList checklistMode = iota
	modeAdd
)

type formBindings struct {
	title string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	itemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Padding(0, 1)
	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Strikethrough(true).
			Padding(0, 1)
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// Model is the Bubble Tea model for editing one card's checklist.
type Model struct {
	mode        checklistMode
	keys        *keys.KeyMap
	card        model.Card
	selectedIdx int
	form        *huh.Form
	fb          *formBindings
	width       int
	height      int
}

// New creates a checklist editor.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		keys:   k,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetCard installs the card whose checklist is being edited, clamping
// the selection to the new item count.
func (m *Model) SetCard(card model.Card) {
	m.card = card
	if m.selectedIdx >= len(card.Checklist) {
		m.selectedIdx = len(card.Checklist) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

// CardID returns the id of the card being edited.
func (m Model) CardID() string {
	return m.card.ID
}

// InForm reports whether the add-item form has input focus, so global
// key handling can stand down while the user types.
func (m Model) InForm() bool {
	return m.mode == modeAdd
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.mode == modeAdd {
		return m.updateForm(msg)
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleListKey(keyMsg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.card.Checklist) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.card.Checklist)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.card.Checklist) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.card.Checklist) - 1
			}
		}

	case key.Matches(msg, m.keys.Select):
		if m.selectedIdx < len(m.card.Checklist) {
			item := m.card.Checklist[m.selectedIdx]
			return m, func() tea.Msg {
				return ToggleItemMsg{ItemID: item.ID, Done: !item.Done}
			}
		}

	case msg.String() == "n":
		m.fb.title = ""
		m.form = m.buildAddForm()
		m.mode = modeAdd
		return m, m.form.Init()

	case msg.String() == "x":
		if m.selectedIdx < len(m.card.Checklist) {
			item := m.card.Checklist[m.selectedIdx]
			return m, func() tea.Msg { return DeleteItemMsg{ItemID: item.ID} }
		}
	}
	return m, nil
}

func (m Model) buildAddForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("New item").
				Placeholder("What needs checking off?").
				Value(&m.fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		m.mode = modeList
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.mode = modeList
		cardID := m.card.ID
		title := strings.TrimSpace(m.fb.title)
		return m, func() tea.Msg { return AddItemMsg{CardID: cardID, Title: title} }
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}

	return m, cmd
}

// View renders the checklist editor.
func (m Model) View() string {
	if m.mode == modeAdd && m.form != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Checklist: " + m.card.Title))
	b.WriteString("\n\n")

	if len(m.card.Checklist) == 0 {
		b.WriteString(hintStyle.Render("No items yet. Press 'n' to add one."))
	} else {
		for i, item := range m.card.Checklist {
			box := "[ ]"
			if item.Done {
				box = "[x]"
			}
			line := box + " " + item.Title

			switch {
			case i == m.selectedIdx:
				b.WriteString(selectedStyle.Render(line))
			case item.Done:
				b.WriteString(doneStyle.Render(line))
			default:
				b.WriteString(itemStyle.Render(line))
			}
			b.WriteString("\n")
		}

		done, total := m.card.ChecklistProgress()
		b.WriteString("\n")
		b.WriteString(hintStyle.Render(fmt.Sprintf("%d/%d done", done, total)))
	}

	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("enter toggle | n add | x delete | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}
