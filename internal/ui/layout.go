package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/odo/internal/prefs"
)

// Terminal size thresholds.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 80

	// LayoutMinHeight is the smallest height that still fits header and footer.
	LayoutMinHeight = 6
)

// Safe area insets around the whole UI.
const (
	insetVertical   = 0
	insetHorizontal = 1
)

// Timing constants.
const (
	// DefaultUIInterval is the default snapshot refresh interval.
	DefaultUIInterval = time.Second

	// RequestTimeout bounds sign-in and profile calls made from the UI.
	RequestTimeout = 15 * time.Second
)

// frame is the outermost layout: it paints the preference background over
// the whole window and keeps content inside the safe area.
type frame struct {
	prefs *prefs.Store
}

func newFrame(p *prefs.Store) frame {
	if p == nil {
		panic("ui: frame needs a preference store")
	}
	return frame{prefs: p}
}

// theme returns the palette for the current preferences.
func (f frame) theme() Theme {
	return themeFor(f.prefs.State())
}

// contentSize is the area left inside the insets.
func (f frame) contentSize(width, height int) (int, int) {
	w := width - 2*insetHorizontal
	h := height - 2*insetVertical
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// render fills the window with the background color and places body in the
// safe area.
func (f frame) render(width, height int, body string) string {
	if width <= 0 || height <= 0 {
		return body
	}
	t := f.theme()
	bg := lipgloss.Color(t.Background)
	w, h := f.contentSize(width, height)

	lines := strings.Split(body, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	inner := lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, strings.Join(lines, "\n"),
		lipgloss.WithWhitespaceBackground(bg))

	return lipgloss.NewStyle().
		Background(bg).
		Padding(insetVertical, insetHorizontal).
		Render(inner)
}
