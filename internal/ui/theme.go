package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/odo/internal/prefs"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	// Base colors
	Background string // Outermost background, from preferences
	Surface    string // Header and footer bars
	SurfaceAlt string // Selected rows, focused inputs
	BarText    string // Header text, follows the status bar style

	Border string

	// Text colors
	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
}

// themeFor picks the palette for the current preferences.
func themeFor(p prefs.State) Theme {
	t := lightTheme()
	if p.DarkMode {
		t = darkTheme()
	}
	if p.BackgroundColor != "" {
		t.Background = p.BackgroundColor
	}
	switch p.StatusBarStyle {
	case prefs.StatusBarLight:
		t.BarText = statusBarLightText
	case prefs.StatusBarDark:
		t.BarText = statusBarDarkText
	}
	return t
}

// Styles returns Lipgloss styles for this theme. Every style carries the
// theme background so segments do not punch holes in the fill.
func (t Theme) Styles() Styles {
	bg := lipgloss.Color(t.Background)
	return Styles{
		Background: lipgloss.NewStyle().
			Background(bg),

		Text: lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color(t.Text)),

		MutedText: lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color(t.Muted)),

		FaintText: lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color(t.Faint)),

		AccentText: lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color(t.Accent)),

		SuccessText: lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),

		WarningText: lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color(t.Warning)),

		DangerText: lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.BarText)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Logo: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		ActiveTab: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Accent)).
			Foreground(lipgloss.Color(t.Background)).
			Bold(true).
			Padding(0, 1),

		Tab: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SurfaceAlt)).
			Foreground(lipgloss.Color(t.Text)),

		Card: lipgloss.NewStyle().
			Background(bg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(t.Border)).
			BorderBackground(bg).
			Padding(0, 1),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Background lipgloss.Style

	// Text
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style

	// Components
	Header    lipgloss.Style
	Footer    lipgloss.Style
	Logo      lipgloss.Style
	ActiveTab lipgloss.Style
	Tab       lipgloss.Style
	Selected  lipgloss.Style
	Card      lipgloss.Style
}

const (
	statusBarLightText = "#F9FAFB"
	statusBarDarkText  = "#111827"
)

func lightTheme() Theme {
	return Theme{
		Name: "Light",

		Background: prefs.BackgroundLight,
		Surface:    "#FFFFFF",
		SurfaceAlt: "#E5E7EB",
		BarText:    statusBarDarkText,

		Border: "#D1D5DB",

		Text:    "#111827",
		Muted:   "#6B7280",
		Faint:   "#9CA3AF",
		Accent:  "#3B82F6",
		Success: "#10B981",
		Warning: "#D97706",
		Danger:  "#EF4444",
	}
}

func darkTheme() Theme {
	return Theme{
		Name: "Dark",

		Background: prefs.BackgroundDark,
		Surface:    "#111827",
		SurfaceAlt: "#374151",
		BarText:    statusBarLightText,

		Border: "#4B5563",

		Text:    "#F9FAFB",
		Muted:   "#9CA3AF",
		Faint:   "#6B7280",
		Accent:  "#60A5FA",
		Success: "#34D399",
		Warning: "#FBBF24",
		Danger:  "#F87171",
	}
}
