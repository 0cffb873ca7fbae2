package app

import (
	"github.com/muesli/termenv"

	"github.com/five82/odo/internal/config"
)

// hasDarkBackground is replaced in tests.
var hasDarkBackground = termenv.HasDarkBackground

// systemDark resolves the device color scheme used before any profile sync.
func systemDark(appearance config.Appearance) bool {
	switch appearance {
	case config.AppearanceDark:
		return true
	case config.AppearanceLight:
		return false
	default:
		return hasDarkBackground()
	}
}
