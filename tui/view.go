package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	color := lipgloss.Color(m.cfg.Color)
	highlight := lipgloss.NewStyle().Foreground(color)
	mutedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2)

	var content strings.Builder

	switch m.state {
	case stateAwaitingPermission:
		if m.prompted && !m.rechecking {
			content.WriteString(highlight.Render("Audiodex") + "\n\n")
			content.WriteString(fmt.Sprintf("Audiodex needs to read your media library at\n%s\n\n", m.library))
			content.WriteString("Grant access? " + highlight.Render("y") + "/" + highlight.Render("n"))
		} else {
			content.WriteString(m.spinner.View() + " Checking media library access...")
		}

	case stateScanning:
		content.WriteString(m.spinner.View() + " Scanning " + m.library + "...")

	case stateEmpty:
		content.WriteString(mutedStyle.Render(emptyMessage))

	case stateDenied:
		content.WriteString(errorStyle.Render(deniedMessage))

	case statePopulated:
		content.WriteString(m.list.View())
		if m.statusLine != "" {
			content.WriteString("\n" + mutedStyle.Render(m.statusLine))
		}
	}

	body := borderStyle.Width(min(m.cfg.MaxWidth, max(m.width-2, 20))).Render(content.String())

	helpText := mutedStyle.Render("Select: enter  Rescan: r  Quit: q")

	fullUI := lipgloss.JoinVertical(lipgloss.Left, body, helpText)

	if m.width == 0 || m.height == 0 {
		return fullUI
	}

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		fullUI,
	)
}
