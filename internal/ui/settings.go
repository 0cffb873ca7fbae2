package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/prefs"
	"github.com/five82/odo/internal/session"
)

// prefField names the preference a save concerns.
type prefField int

const (
	prefDarkMode prefField = iota
	prefMileage
)

func (f prefField) String() string {
	if f == prefMileage {
		return "mileage_type"
	}
	return "dark_mode"
}

// prefsSavedMsg reports a profile save. previous is the state to restore
// when the save failed. resolution is the session the save was made in and
// seq orders saves within it.
type prefsSavedMsg struct {
	field      prefField
	previous   prefs.State
	resolution uint64
	seq        uint64
	err        error
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleDark):
		return m.toggleDarkMode()
	case key.Matches(msg, m.keys.ToggleUnits):
		return m.toggleUnits()
	case key.Matches(msg, m.keys.SignOut):
		return m.beginSignOut("Signed out")
	}
	return m, nil
}

// toggleDarkMode applies the change at once and saves it to the profile.
func (m Model) toggleDarkMode() (tea.Model, tea.Cmd) {
	previous := m.prefs.State()
	m.prefs.ToggleDarkMode()
	dark := m.prefs.State().DarkMode
	m.setNotice("", false)
	cmd := m.savePrefsCmd(prefDarkMode, previous, api.UserUpdate{DarkMode: &dark})
	return m, cmd
}

func (m Model) toggleUnits() (tea.Model, tea.Cmd) {
	previous := m.prefs.State()
	useMiles := !previous.UsesMiles()
	m.prefs.SetMileageUnit(useMiles)
	mileage := session.MileageKilometers
	if useMiles {
		mileage = session.MileageMiles
	}
	m.setNotice("", false)
	cmd := m.savePrefsCmd(prefMileage, previous, api.UserUpdate{MileageType: &mileage})
	return m, cmd
}

// savePrefsCmd must be called on the model that is returned to the runtime,
// since it advances the save sequence.
func (m *Model) savePrefsCmd(field prefField, previous prefs.State, update api.UserUpdate) tea.Cmd {
	m.saveSeq++
	ctx, svc := m.ctx, m.auth
	saved := prefsSavedMsg{
		field:      field,
		previous:   previous,
		resolution: m.sessions.State().Resolution,
		seq:        m.saveSeq,
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
		defer cancel()
		_, err := svc.UpdatePreferences(ctx, update)
		saved.err = err
		return saved
	}
}

// handlePrefsSaved reverts the local change when the profile save failed.
// Saves from an earlier session are dropped, and only the newest save may
// revert.
func (m Model) handlePrefsSaved(msg prefsSavedMsg) (tea.Model, tea.Cmd) {
	if msg.resolution != m.sessions.State().Resolution {
		m.logger.Debug("dropped save from earlier session", "field", msg.field.String())
		return m, nil
	}
	if msg.err == nil {
		m.setNotice("Preferences saved", false)
		return m, nil
	}
	m.logger.Warn("save preferences failed", "field", msg.field.String(), "error", msg.err)
	if msg.seq != m.saveSeq {
		m.setNotice("Could not save preferences: "+api.Message(msg.err), true)
		return m, nil
	}
	switch msg.field {
	case prefDarkMode:
		m.prefs.SetDarkMode(msg.previous.DarkMode)
	case prefMileage:
		m.prefs.SetMileageUnit(msg.previous.UsesMiles())
	}
	m.setNotice("Could not save preferences: "+api.Message(msg.err), true)
	return m, nil
}

// renderSettings shows the display preferences and the account.
func (m Model) renderSettings() string {
	styles := m.frame.theme().Styles()
	p := m.prefs.State()

	onOff := "Off"
	if p.DarkMode {
		onOff = "On"
	}
	unitsLabel := "Kilometers, liters"
	if p.UsesMiles() {
		unitsLabel = "Miles, gallons"
	}

	account := "-"
	if user := m.sessions.State().User; user != nil {
		account = user.Email
		if name := strings.TrimSpace(user.FullName); name != "" {
			account = name + " <" + user.Email + ">"
		}
	}

	rows := []struct{ key, label, value string }{
		{"d", "Dark mode", onOff},
		{"u", "Units", unitsLabel},
		{"", "Currency", p.Currency + " (" + p.CurrencySymbol + ")"},
		{"", "Account", account},
		{"L", "Sign out", ""},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Preferences"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("Changes are saved to your profile."))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(styles.AccentText.Width(3).Render(row.key))
		b.WriteString(styles.MutedText.Width(12).Render(row.label))
		b.WriteString(styles.Text.Render(row.value))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
