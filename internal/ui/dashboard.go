package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/odo/internal/api"
	"github.com/five82/odo/internal/guard"
	"github.com/five82/odo/internal/prefs"
	"github.com/five82/odo/internal/state"
	"github.com/five82/odo/internal/units"
)

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.snapshot.Vehicles)
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.selected < n-1 {
			m.selected++
		}
	case key.Matches(msg, m.keys.History):
		if m.selected >= n || m.loading != 0 {
			return m, nil
		}
		id := m.snapshot.Vehicles[m.selected].ID
		m.loading = id
		return m, m.historyCmd(id)
	}
	return m, nil
}

// handleHistory keeps the result only if it belongs to the session that is
// signed in now. A failed fetch leaves the previous history in place.
func (m Model) handleHistory(msg historyMsg) (tea.Model, tea.Cmd) {
	if msg.resolution != m.sessions.State().Resolution {
		m.logger.Debug("dropped history from earlier session", "vehicle_id", msg.vehicleID)
		return m, nil
	}
	if m.loading == msg.vehicleID {
		m.loading = 0
	}
	if m.access != guard.Granted {
		return m, nil
	}
	if msg.err != nil {
		m.logger.Warn("history fetch failed", "vehicle_id", msg.vehicleID, "error", msg.err)
		if api.IsUnauthorized(msg.err) {
			return m.beginSignOut("Session ended, please sign in again")
		}
		m.setNotice("Could not load history: "+api.Message(msg.err), true)
		return m, nil
	}
	h := msg.history
	m.history = &h
	return m, nil
}

// renderDashboard lists the user's vehicles with mileage in the selected unit.
func (m Model) renderDashboard() string {
	styles := m.frame.theme().Styles()
	p := m.prefs.State()
	snap := m.snapshot

	var b strings.Builder
	greeting := "Welcome back"
	if user := m.sessions.State().User; user != nil && strings.TrimSpace(user.FullName) != "" {
		greeting = "Welcome back, " + strings.TrimSpace(user.FullName)
	}
	b.WriteString(styles.Text.Bold(true).Render(greeting))
	b.WriteString("\n")

	if !snap.HasData {
		if snap.LastError != nil {
			b.WriteString(styles.DangerText.Render("Could not load your garage: " + api.Message(snap.LastError)))
		} else {
			b.WriteString(m.renderInterstitial("Loading your garage..."))
		}
		return b.String()
	}

	b.WriteString(styles.MutedText.Render(strings.Join([]string{
		plural(len(snap.Vehicles), "vehicle"),
		plural(len(snap.Upcoming), "upcoming reminder"),
		plural(len(snap.Overdue), "overdue reminder"),
	}, " · ")))
	b.WriteString("\n\n")

	if len(snap.Vehicles) == 0 {
		b.WriteString(styles.FaintText.Render("No vehicles yet."))
		return b.String()
	}

	for i, v := range snap.Vehicles {
		line := truncate(v.DisplayName(), 32)
		if v.LicensePlate != "" {
			line += "  " + v.LicensePlate
		}
		line += "  " + units.Odometer(float64(v.CurrentMileage), p.DistanceUnit)
		if i == m.selected {
			b.WriteString(styles.Selected.Render("> " + line))
		} else {
			b.WriteString(styles.Text.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if m.selected < len(snap.Vehicles) {
		b.WriteString("\n")
		b.WriteString(m.renderVehicleCard(snap.Vehicles[m.selected]))
	}
	return b.String()
}

// renderVehicleCard shows the selected vehicle and its next reminder.
func (m Model) renderVehicleCard(v api.Vehicle) string {
	styles := m.frame.theme().Styles()
	p := m.prefs.State()

	rows := [][2]string{
		{"Mileage", units.Odometer(float64(v.CurrentMileage), p.DistanceUnit)},
	}
	if v.FuelType != "" {
		rows = append(rows, [2]string{"Fuel", v.FuelType})
	}
	if v.Color != "" {
		rows = append(rows, [2]string{"Color", v.Color})
	}
	if v.VIN != "" {
		rows = append(rows, [2]string{"VIN", v.VIN})
	}
	if next, ok := nextReminder(m.snapshot.Reminders, v.ID); ok {
		due := next.Due()
		rows = append(rows, [2]string{"Next", next.Title + ", " + formatDate(due) + " (" + relativeDue(due, m.now()) + ")"})
	}
	switch {
	case m.loading == v.ID:
		rows = append(rows, [2]string{"History", "Loading..."})
	case m.history != nil && m.history.VehicleID == v.ID:
		rows = append(rows, historyRows(*m.history, p)...)
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(v.DisplayName()))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Width(10).Render(row[0]))
		b.WriteString(styles.Text.Render(row[1]))
	}
	return styles.Card.Render(b.String())
}

func historyRows(h state.History, p prefs.State) [][2]string {
	if len(h.Maintenance) == 0 && len(h.Fuel) == 0 {
		return [][2]string{{"History", "No records yet"}}
	}
	var rows [][2]string
	services := plural(len(h.Maintenance), "service")
	if last, ok := h.LastService(); ok {
		services += ", last " + formatDate(last.When()) + " (" + serviceName(last.MaintenanceType) + ")"
	}
	rows = append(rows,
		[2]string{"Services", services},
		[2]string{"Spent", formatMoney(p.CurrencySymbol, h.MaintenanceCost())},
	)
	if len(h.Fuel) > 0 {
		liters, cost := h.FuelTotals()
		volume := units.FormatVolume(units.ConvertVolume(liters, prefs.Liters, p.VolumeUnit), p.VolumeUnit, 1)
		rows = append(rows, [2]string{"Fuel", volume + ", " + formatMoney(p.CurrencySymbol, cost)})
	}
	return rows
}

// nextReminder returns the dated reminder for vehicleID that is due first.
func nextReminder(reminders []api.Reminder, vehicleID int64) (api.Reminder, bool) {
	var matches []api.Reminder
	for _, r := range reminders {
		if r.VehicleID == vehicleID && !r.Due().IsZero() {
			matches = append(matches, r)
		}
	}
	if len(matches) == 0 {
		return api.Reminder{}, false
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Due().Before(matches[j].Due())
	})
	return matches[0], true
}
