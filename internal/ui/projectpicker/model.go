package projectpicker

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskboard/internal/keys"
	"github.com/nhle/taskboard/internal/model"
)

// Loader fetches the selectable projects, typically from the backend
// with a cached fallback.
type Loader func(ctx context.Context) ([]model.Project, error)

// ProjectSelectedMsg signals that the user picked a project.
type ProjectSelectedMsg struct {
	Project model.Project
}

// CloseMsg signals the parent to close the picker without a selection.
type CloseMsg struct{}

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
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
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Model is the Bubble Tea model for the project picker.
type Model struct {
	load        Loader
	keys        *keys.KeyMap
	projects    []model.Project
	selectedIdx int
	loading     bool
	errText     string
	width       int
	height      int
}

// New creates a new project picker.
func New(load Loader, k *keys.KeyMap, width, height int) Model {
	return Model{
		load:    load,
		keys:    k,
		loading: true,
		width:   width,
		height:  height,
	}
}

// Init loads the project list.
func (m Model) Init() tea.Cmd {
	return m.loadProjects()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case projectsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = fmt.Sprintf("Could not load projects: %v", msg.err)
			return m, nil
		}
		m.errText = ""
		m.projects = msg.projects
		if m.selectedIdx >= len(m.projects) {
			m.selectedIdx = 0
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if len(m.projects) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.projects)
		}

	case key.Matches(msg, m.keys.Up):
		if len(m.projects) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.projects) - 1
			}
		}

	case key.Matches(msg, m.keys.Select):
		if m.selectedIdx < len(m.projects) {
			p := m.projects[m.selectedIdx]
			return m, func() tea.Msg { return ProjectSelectedMsg{Project: p} }
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadProjects()
	}
	return m, nil
}

// View renders the picker.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Projects"))
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(hintStyle.Render("Loading projects..."))
	case len(m.projects) == 0:
		b.WriteString(hintStyle.Render("No projects available."))
	default:
		for i, p := range m.projects {
			if i == m.selectedIdx {
				b.WriteString(selectedStyle.Render(p.Name))
			} else {
				b.WriteString(itemStyle.Render(p.Name))
			}
			b.WriteString("\n")
		}
	}

	if m.errText != "" {
		b.WriteString("\n")
		b.WriteString(errStyle.Render(m.errText))
	}

	b.WriteString("\n\n")
	b.WriteString(hintStyle.Render("enter open | r refresh | esc back"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Render(b.String())
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) loadProjects() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		projects, err := load(context.Background())
		return projectsLoadedMsg{projects: projects, err: err}
	}
}
