package render

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	detail   lipgloss.Style
	label    lipgloss.Style
	warning  lipgloss.Style
	ok       lipgloss.Style
	inbound  lipgloss.Style
	outbound lipgloss.Style
	missed   lipgloss.Style
	unknown  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		ok:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		inbound:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		outbound: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		missed:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		unknown:  lipgloss.NewStyle().Faint(true),
	}
}
