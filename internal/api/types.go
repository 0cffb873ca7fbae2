package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/five82/odo/internal/session"
)

const dateLayout = "2006-01-02"

// Token is the bearer token returned by /auth/token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest mirrors the /auth/register body.
type RegisterRequest struct {
	FullName    string              `json:"full_name"`
	Email       string              `json:"email"`
	Password    string              `json:"password"`
	MileageType session.MileageType `json:"mileage_type,omitempty"`
	DarkMode    bool                `json:"dark_mode"`
}

// UserUpdate carries the profile fields to change. Nil fields are left alone.
type UserUpdate struct {
	FullName    *string              `json:"full_name,omitempty"`
	MileageType *session.MileageType `json:"mileage_type,omitempty"`
	DarkMode    *bool                `json:"dark_mode,omitempty"`
}

// Vehicle mirrors /vehicles entries. CurrentMileage is in kilometers.
type Vehicle struct {
	ID             int64  `json:"vehicle_id"`
	UserID         int64  `json:"user_id"`
	Make           string `json:"make"`
	Model          string `json:"model"`
	Year           int    `json:"year"`
	Color          string `json:"color,omitempty"`
	LicensePlate   string `json:"license_plate,omitempty"`
	VIN            string `json:"vin,omitempty"`
	CurrentMileage int64  `json:"current_mileage"`
	FuelType       string `json:"fuel_type,omitempty"`
	PurchaseDate   string `json:"purchase_date,omitempty"`
}

// DisplayName is "Year Make Model".
func (v Vehicle) DisplayName() string {
	return strings.TrimSpace(strings.Join([]string{itoa(v.Year), v.Make, v.Model}, " "))
}

// IsElectric reports whether the vehicle logs kWh instead of liters.
func (v Vehicle) IsElectric() bool {
	return strings.EqualFold(strings.TrimSpace(v.FuelType), "electric")
}

// MaintenanceLog mirrors /maintenance/vehicle/{id} entries.
type MaintenanceLog struct {
	ID              int64   `json:"maintenance_id"`
	VehicleID       int64   `json:"vehicle_id"`
	MaintenanceType string  `json:"maintenance_type"`
	Description     string  `json:"description"`
	Date            string  `json:"date"`
	Mileage         int64   `json:"mileage"`
	Cost            float64 `json:"cost"`
	Location        string  `json:"location,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

// When parses Date. The zero time is returned when it is missing or invalid.
func (l MaintenanceLog) When() time.Time {
	return parseDate(l.Date)
}

// FuelLog mirrors /fuel/vehicle/{id} entries.
type FuelLog struct {
	ID        int64    `json:"fuel_id"`
	VehicleID int64    `json:"vehicle_id"`
	Date      string   `json:"date"`
	Liters    *float64 `json:"liters,omitempty"`
	KWh       *float64 `json:"kwh,omitempty"`
	Cost      float64  `json:"cost"`
	Location  string   `json:"location,omitempty"`
	FullTank  bool     `json:"full_tank"`
	Notes     string   `json:"notes,omitempty"`
}

// Reminder mirrors /reminders entries.
type Reminder struct {
	ID              int64   `json:"reminder_id"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	DueDate         string  `json:"due_date"`
	RepeatInterval  *string `json:"repeat_interval"`
	MileageInterval *int64  `json:"mileage_interval"`
	UserID          int64   `json:"user_id"`
	VehicleID       int64   `json:"vehicle_id"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

// Due parses DueDate. The zero time is returned when it is missing or invalid.
func (r Reminder) Due() time.Time {
	return parseDate(r.DueDate)
}

// IsOverdue reports whether the reminder was due before the day of now.
func (r Reminder) IsOverdue(now time.Time) bool {
	due := r.Due()
	if due.IsZero() {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}

func parseDate(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return ts
	}
	if len(trimmed) > len(dateLayout) {
		trimmed = trimmed[:len(dateLayout)]
	}
	if ts, err := time.Parse(dateLayout, trimmed); err == nil {
		return ts
	}
	return time.Time{}
}

func itoa(year int) string {
	if year <= 0 {
		return ""
	}
	return strconv.Itoa(year)
}
