package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/LeventeLantos/message-blast/internal/model"
)

type styles struct {
	Header   lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	badges   map[model.Status]lipgloss.Style
}

func defaultStyles() styles {
	badge := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	return styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#25D366")),
		Selected: lipgloss.NewStyle().Bold(true),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		badges: map[model.Status]lipgloss.Style{
			model.Queued:  badge.Foreground(lipgloss.Color("250")),
			model.Sending: badge.Foreground(lipgloss.Color("220")),
			model.Sent:    badge.Foreground(lipgloss.Color("42")),
			model.Failed:  badge.Foreground(lipgloss.Color("196")),
		},
	}
}

func (s styles) badge(st model.Status) string {
	return s.badges[st].Render(st.Label())
}
