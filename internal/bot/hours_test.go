package bot

import (
	"testing"
	"time"
)

func TestBusinessOpen(t *testing.T) {
	// 2026-09-03 is a Thursday, 2026-09-02 a Wednesday.
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"thursday during hours", time.Date(2026, 9, 3, 18, 0, 0, 0, time.UTC), true},
		{"thursday at opening", time.Date(2026, 9, 3, 16, 0, 0, 0, time.UTC), true},
		{"thursday last open hour", time.Date(2026, 9, 3, 22, 59, 0, 0, time.UTC), true},
		{"thursday at closing", time.Date(2026, 9, 3, 23, 0, 0, 0, time.UTC), false},
		{"thursday before opening", time.Date(2026, 9, 3, 15, 59, 0, 0, time.UTC), false},
		{"thursday morning", time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC), false},
		{"wednesday during normal hours", time.Date(2026, 9, 2, 18, 0, 0, 0, time.UTC), false},
		{"wednesday midnight", time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), false},
		{"sunday evening", time.Date(2026, 9, 6, 20, 30, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BusinessOpen(tt.at); got != tt.want {
				t.Errorf("BusinessOpen(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestTimeGreeting(t *testing.T) {
	tests := []struct {
		name string
		hour int
		want string
	}{
		{"early morning", 5, "¡Buenos días! 🌅"},
		{"late morning", 11, "¡Buenos días! 🌅"},
		{"noon", 12, "¡Buenas tardes! ☀️"},
		{"afternoon", 17, "¡Buenas tardes! ☀️"},
		{"evening", 18, "¡Buenas noches! 🌙"},
		{"midnight", 0, "¡Buenas noches! 🌙"},
		{"before dawn", 4, "¡Buenas noches! 🌙"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2026, 9, 3, tt.hour, 0, 0, 0, time.UTC)
			if got := TimeGreeting(at); got != tt.want {
				t.Errorf("TimeGreeting(hour=%d) = %q, want %q", tt.hour, got, tt.want)
			}
		})
	}
}
