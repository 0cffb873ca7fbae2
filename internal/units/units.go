// Package units converts and formats distances, volumes and fuel efficiency
// for display in the user's selected system.
package units

import (
	"fmt"

	"github.com/five82/odo/internal/prefs"
)

const (
	kmToMiles     = 0.621371
	milesToKm     = 1.60934
	litersToGal   = 0.264172
	gallonsToLitr = 3.78541
)

// ConvertDistance converts value between kilometers and miles.
func ConvertDistance(value float64, from, to prefs.DistanceUnit) float64 {
	switch {
	case from == to:
		return value
	case from == prefs.Kilometers && to == prefs.Miles:
		return value * kmToMiles
	case from == prefs.Miles && to == prefs.Kilometers:
		return value * milesToKm
	}
	return value
}

// ConvertVolume converts value between liters and US gallons.
func ConvertVolume(value float64, from, to prefs.VolumeUnit) float64 {
	switch {
	case from == to:
		return value
	case from == prefs.Liters && to == prefs.Gallons:
		return value * litersToGal
	case from == prefs.Gallons && to == prefs.Liters:
		return value * gallonsToLitr
	}
	return value
}

// FormatDistance renders value with precision decimals and the unit suffix.
func FormatDistance(value float64, unit prefs.DistanceUnit, precision int) string {
	return fmt.Sprintf("%.*f %s", precision, value, unit)
}

// FormatVolume renders value with precision decimals and the unit suffix.
func FormatVolume(value float64, unit prefs.VolumeUnit, precision int) string {
	return fmt.Sprintf("%.*f %s", precision, value, unit)
}

// FormatFuelEfficiency renders km/L or mpg. Mixed units are normalized to km/L.
func FormatFuelEfficiency(distance, volume float64, du prefs.DistanceUnit, vu prefs.VolumeUnit) string {
	if volume == 0 {
		return "N/A"
	}
	switch {
	case du == prefs.Kilometers && vu == prefs.Liters:
		return fmt.Sprintf("%.2f km/L", distance/volume)
	case du == prefs.Miles && vu == prefs.Gallons:
		return fmt.Sprintf("%.2f mpg", distance/volume)
	}
	km := ConvertDistance(distance, du, prefs.Kilometers)
	liters := ConvertVolume(volume, vu, prefs.Liters)
	return fmt.Sprintf("%.2f km/L", km/liters)
}

// Odometer renders a reading stored in kilometers in the selected unit.
func Odometer(km float64, unit prefs.DistanceUnit) string {
	return FormatDistance(ConvertDistance(km, prefs.Kilometers, unit), unit, 0)
}
