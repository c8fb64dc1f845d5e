package cardform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/model"
)

// SubmitMsg is dispatched when the form completes. CardID is empty for
// a create and set for an edit.
type SubmitMsg struct {
	CardID   string
	ColumnID string
	Fields   model.CardFields
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	assigneeIDs []string
	startDate   string
	dueDate     string
}

// Model is the Bubble Tea model for the card create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	columnID string
	members  []model.Member
	width    int
	height   int
}

// New creates a new card form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetMembers sets the team members offered in the assignee selector.
func (m *Model) SetMembers(members []model.Member) {
	m.members = members
}

// StartCreate initializes the form for creating a card in columnID.
func (m *Model) StartCreate(columnID string) tea.Cmd {
	m.editMode = false
	m.editID = ""
	m.columnID = columnID
	*m.fb = formBindings{}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit initializes the form for editing an existing card.
func (m *Model) StartEdit(card model.Card) tea.Cmd {
	m.editMode = true
	m.editID = card.ID
	m.columnID = card.ColumnID
	m.fb.title = card.Title
	m.fb.description = card.Description
	m.fb.assigneeIDs = nil
	for _, a := range card.Assignees {
		m.fb.assigneeIDs = append(m.fb.assigneeIDs, a.ID)
	}
	m.fb.startDate = formatDate(card.StartDate)
	m.fb.dueDate = formatDate(card.DueDate)
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the card form.
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

// View renders the card form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Task"
	if m.editMode {
		titleText = "Edit Task"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs doing?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewInput().
			Title("Start Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.startDate).
			Validate(validateOptionalDate),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
	}
	if assignees := m.assigneeField(); assignees != nil {
		fields = append(fields, assignees)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) assigneeField() huh.Field {
	if len(m.members) == 0 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.members))
	for i, member := range m.members {
		opts[i] = huh.NewOption(member.Name, member.ID)
	}
	return huh.NewMultiSelect[string]().
		Title("Assignees").
		Options(opts...).
		Value(&m.fb.assigneeIDs)
}

func (m Model) handleSubmit() tea.Cmd {
	fields := model.CardFields{
		Title:       m.fb.title,
		Description: m.fb.description,
		AssigneeIDs: m.fb.assigneeIDs,
		StartDate:   parseDate(m.fb.startDate),
		DueDate:     parseDate(m.fb.dueDate),
	}

	msg := SubmitMsg{
		CardID:   m.editID,
		ColumnID: m.columnID,
		Fields:   fields,
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

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
