package report

import "github.com/charmbracelet/lipgloss"

// theme groups reusable styles for terminal reports.
type theme struct {
	title     lipgloss.Style
	header    lipgloss.Style
	channel   lipgloss.Style
	supported lipgloss.Style
	missing   lipgloss.Style
	limits    lipgloss.Style
	hint      lipgloss.Style
	errorBox  lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		title: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("88")),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("223")),
		channel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("44")),
		supported: lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")),
		missing: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
		limits: lipgloss.NewStyle().
			Foreground(lipgloss.Color("180")),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		errorBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Foreground(lipgloss.Color("203")).
			Padding(0, 1),
	}
}
