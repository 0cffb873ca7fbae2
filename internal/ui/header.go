package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the logo, the screen tabs and the sync status.
func (m Model) renderHeader(active Route) string {
	t := m.frame.theme()
	styles := t.Styles()
	width, _ := m.frame.contentSize(m.width, m.height)
	compact := width > 0 && width < LayoutCompactWidth

	sep := lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Render(" ")
	parts := []string{styles.Logo.Render("odo")}
	for i, route := range tabOrder {
		label := route.title()
		if !compact {
			label = fmt.Sprintf("%d %s", i+1, label)
		}
		if route == active {
			parts = append(parts, styles.ActiveTab.Render(label))
		} else {
			parts = append(parts, styles.Tab.Render(label))
		}
	}
	left := strings.Join(parts, sep)
	right := m.syncStatus(t)

	line := left
	if width > 0 {
		gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
		if gap > 0 {
			line = left + lipgloss.NewStyle().Background(lipgloss.Color(t.Surface)).Render(strings.Repeat(" ", gap)) + right
		}
	} else {
		line = left + sep + right
	}
	return styles.Header.Width(width).Render(line)
}

// syncStatus summarizes the last poll.
func (m Model) syncStatus(t Theme) string {
	surface := lipgloss.Color(t.Surface)
	text := func(color, s string) string {
		return lipgloss.NewStyle().Background(surface).Foreground(lipgloss.Color(color)).Render(s)
	}

	snap := m.snapshot
	switch {
	case snap.IsOffline():
		return text(t.Danger, "OFFLINE")
	case snap.LastError != nil:
		return text(t.Warning, "Retrying...")
	case snap.LastUpdated.IsZero():
		return text(t.Muted, "Syncing...")
	default:
		return text(t.Faint, "Updated "+snap.LastUpdated.Format("15:04:05"))
	}
}

// renderCommandBar renders the key hints for the active screen.
func (m Model) renderCommandBar(active Route) string {
	t := m.frame.theme()
	styles := t.Styles()
	width, _ := m.frame.contentSize(m.width, m.height)
	surface := lipgloss.Color(t.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch active {
	case RouteDashboard:
		commands = []cmd{
			{"j/k", "Select"},
			{"enter", "History"},
			{"r", "Refresh"},
		}
	case RouteReminders:
		commands = []cmd{
			{"r", "Refresh"},
		}
	case RouteSettings:
		commands = []cmd{
			{"d", "Dark mode"},
			{"u", "Units"},
			{"L", "Sign out"},
		}
	}
	commands = append(commands,
		cmd{"tab", "Next"},
		cmd{"?", "Help"},
		cmd{"q", "Quit"},
	)

	keyStyle := lipgloss.NewStyle().Background(surface).Foreground(lipgloss.Color(t.Accent))
	descStyle := lipgloss.NewStyle().Background(surface).Foreground(lipgloss.Color(t.Muted))
	colon := lipgloss.NewStyle().Background(surface).Render(":")
	sep := lipgloss.NewStyle().Background(surface).Render("  ")

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, keyStyle.Render(c.key)+colon+descStyle.Render(c.desc))
	}
	if m.notice != "" {
		color := t.Success
		if m.failed {
			color = t.Danger
		}
		segments = append(segments,
			lipgloss.NewStyle().Background(surface).Foreground(lipgloss.Color(color)).Render(truncate(m.notice, 48)))
	}

	return styles.Footer.Width(width).Render(strings.Join(segments, sep))
}
