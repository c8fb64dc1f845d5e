package boardview

import "github.com/charmbracelet/lipgloss"

const columnWidth = 28

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(columnWidth)

	selectedColumnStyle = columnStyle.
				BorderForeground(lipgloss.Color("62"))

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252"))

	wipOverLimitStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("196"))

	cardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	selectedCardStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("62"))

	grabbedCardStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("130"))

	dropMarkerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("130"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)
