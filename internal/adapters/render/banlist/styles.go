package banlist

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	player  lipgloss.Style
	key     lipgloss.Style
	detail  lipgloss.Style
	unknown lipgloss.Style
	section lipgloss.Style
	empty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		player:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		key:     lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		unknown: lipgloss.NewStyle().Faint(true),
		section: lipgloss.NewStyle().MarginTop(1),
		empty:   lipgloss.NewStyle().Faint(true),
	}
}
