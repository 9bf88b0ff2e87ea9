package bot

import "time"

// BusinessOpen reports whether the shop is open at the given local time.
// Wednesday is closed regardless of hour; every other day is open from
// OpeningHour until ClosingHour (exclusive).
func BusinessOpen(t time.Time) bool {
	if t.Weekday() == time.Wednesday {
		return false
	}
	hour := t.Hour()
	return hour >= OpeningHour && hour < ClosingHour
}

// TimeGreeting returns the salutation matching the hour of day.
func TimeGreeting(t time.Time) string {
	hour := t.Hour()
	switch {
	case hour >= 5 && hour < 12:
		return "¡Buenos días! 🌅"
	case hour >= 12 && hour < 18:
		return "¡Buenas tardes! ☀️"
	default:
		return "¡Buenas noches! 🌙"
	}
}
