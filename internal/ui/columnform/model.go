package columnform

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// SubmitMsg is dispatched when the form completes. ColumnID is empty
// for a create and set for a rename.
type SubmitMsg struct {
	ColumnID string
	Name     string
	WIPLimit *int
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

type formBindings struct {
	name     string
	wipLimit string
}

// Model is the Bubble Tea model for the column create/rename form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editID   string
	editMode bool
	width    int
	height   int
}

// New creates a new column form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// StartCreate initializes the form for creating a column.
func (m *Model) StartCreate() tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartRename initializes the form for renaming an existing column.
func (m *Model) StartRename(columnID, name string, wipLimit *int) tea.Cmd {
	m.editMode = true
	m.editID = columnID
	m.fb.name = name
	m.fb.wipLimit = ""
	if wipLimit != nil {
		m.fb.wipLimit = strconv.Itoa(*wipLimit)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the column form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the column form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Column"
	if m.editMode {
		titleText = "Rename Column"
	}

	titleStyle := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Column name").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("WIP Limit").
				Placeholder("Optional, e.g. 5").
				Value(&m.fb.wipLimit).
				Validate(validateOptionalInt),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	msg := SubmitMsg{
		ColumnID: m.editID,
		Name:     strings.TrimSpace(m.fb.name),
		WIPLimit: parseOptionalInt(m.fb.wipLimit),
	}
	return func() tea.Msg { return msg }
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

func parseOptionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func validateOptionalInt(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative number")
	}
	return nil
}
