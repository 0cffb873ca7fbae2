package ui

import (
	"strings"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/prefs"
	"github.com/five82/odo/internal/units"
)

// renderReminders shows overdue reminders first, then upcoming ones.
func (m Model) renderReminders() string {
	styles := m.frame.theme().Styles()
	snap := m.snapshot

	if !snap.HasData {
		if snap.LastError != nil {
			return styles.DangerText.Render("Could not load reminders: " + api.Message(snap.LastError))
		}
		return m.renderInterstitial("Loading reminders...")
	}

	var b strings.Builder
	b.WriteString(styles.DangerText.Render("Overdue"))
	b.WriteString("\n")
	b.WriteString(m.renderReminderList(snap.Overdue, "Nothing overdue."))
	b.WriteString("\n\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Upcoming"))
	b.WriteString("\n")
	b.WriteString(m.renderReminderList(snap.Upcoming, "Nothing due soon."))
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render(plural(len(snap.Reminders), "reminder") + " in total"))
	return b.String()
}

func (m Model) renderReminderList(reminders []api.Reminder, empty string) string {
	styles := m.frame.theme().Styles()
	if len(reminders) == 0 {
		return styles.FaintText.Render(empty)
	}

	p := m.prefs.State()
	now := m.now()
	lines := make([]string, 0, len(reminders))
	for _, r := range reminders {
		due := r.Due()
		var b strings.Builder
		b.WriteString(styles.Text.Render(truncate(r.Title, 40)))
		if v, ok := m.snapshot.Vehicle(r.VehicleID); ok {
			b.WriteString(styles.MutedText.Render("  " + v.DisplayName()))
		}
		b.WriteString(styles.MutedText.Render("  " + formatDate(due)))
		rel := relativeDue(due, now)
		if r.IsOverdue(now) {
			b.WriteString(styles.DangerText.Render("  " + rel))
		} else if rel != "" {
			b.WriteString(styles.WarningText.Render("  " + rel))
		}
		if every := mileageInterval(r, p); every != "" {
			b.WriteString(styles.FaintText.Render("  every " + every))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// mileageInterval renders a reminder's distance interval, stored in km, in
// the selected unit.
func mileageInterval(r api.Reminder, p prefs.State) string {
	if r.MileageInterval == nil || *r.MileageInterval <= 0 {
		return ""
	}
	return units.Odometer(float64(*r.MileageInterval), p.DistanceUnit)
}
