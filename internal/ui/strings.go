package ui

import (
	"fmt"
	"strings"
	"time"
)

// truncate truncates a string to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// formatDate renders a due date the way the reminder list shows it.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "no date"
	}
	return t.Format("Jan 2, 2006")
}

// relativeDue describes due relative to the day of now.
func relativeDue(due, now time.Time) string {
	if due.IsZero() {
		return ""
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(today).Hours() / 24)
	switch {
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	case days > 1:
		return fmt.Sprintf("in %d days", days)
	case days == -1:
		return "1 day overdue"
	default:
		return fmt.Sprintf("%d days overdue", -days)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func formatMoney(symbol string, amount float64) string {
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

// serviceName turns a maintenance type like "oil_change" into "Oil change".
func serviceName(kind string) string {
	s := strings.TrimSpace(strings.ReplaceAll(kind, "_", " "))
	if s == "" {
		return "Service"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
