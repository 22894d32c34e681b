// Package clock implements time-of-day values on a repeating 24 hour clock.
package clock

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the length of the clock face.
const MinutesPerDay = 1440

// TimeOfDay is minutes since midnight, always in [0, MinutesPerDay).
type TimeOfDay int

// New returns the time of day for h:m, wrapping out-of-range values.
func New(h, m int) TimeOfDay {
	return FromMinutes(h*60 + m)
}

// FromMinutes wraps any minute count onto the clock.
func FromMinutes(min int) TimeOfDay {
	return TimeOfDay(mod(min, MinutesPerDay))
}

// FromTime drops the calendar date and seconds of t.
func FromTime(t time.Time) TimeOfDay {
	return New(t.Hour(), t.Minute())
}

func (t TimeOfDay) Hour() int    { return int(t) / 60 }
func (t TimeOfDay) Minute() int  { return int(t) % 60 }
func (t TimeOfDay) Minutes() int { return int(t) }

// Add shifts t by d, truncated to whole minutes.
func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	return FromMinutes(int(t) + int(d/time.Minute))
}

func (t TimeOfDay) AddHours(h int) TimeOfDay {
	return FromMinutes(int(t) + h*60)
}

// Until is the forward distance from t to u, in [0, 24h).
func (t TimeOfDay) Until(u TimeOfDay) time.Duration {
	return time.Duration(mod(int(u)-int(t), MinutesPerDay)) * time.Minute
}

// String formats as 24h HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Format12 formats as hh:mm AM/PM.
func (t TimeOfDay) Format12() string {
	h := t.Hour()
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h = h % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%02d:%02d %s", h, t.Minute(), suffix)
}

// Degrees is the clock-face angle, midnight at 0 and a quarter degree per minute.
func (t TimeOfDay) Degrees() float64 {
	return float64(t) / 4
}

func (t TimeOfDay) Radians() float64 {
	return 2 * math.Pi * float64(t) / MinutesPerDay
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Parse accepts "HH:MM" (24h) or "hh:mm AM"/"hh:mm pm".
func Parse(s string) (TimeOfDay, error) {
	t := strings.ToUpper(strings.TrimSpace(s))
	meridiem := ""
	for _, suf := range []string{"AM", "PM"} {
		if strings.HasSuffix(t, suf) {
			meridiem = suf
			t = strings.TrimSpace(strings.TrimSuffix(t, suf))
			break
		}
	}

	parts := strings.Split(t, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if !digits(parts[0], 1, 2) || !digits(parts[1], 2, 2) {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h > 23 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m > 59 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}

	if meridiem != "" {
		if h < 1 || h > 12 {
			return 0, fmt.Errorf("invalid time %q, expected hh:mm AM/PM", s)
		}
		h = h % 12
		if meridiem == "PM" {
			h += 12
		}
	}
	return New(h, m), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) TimeOfDay {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatDuration renders d as 9h05m.
func FormatDuration(d time.Duration) string {
	min := int(d / time.Minute)
	if min < 0 {
		min = -min
	}
	return fmt.Sprintf("%dh%02dm", min/60, min%60)
}

// digits reports whether s is lo to hi ASCII digits.
func digits(s string, lo, hi int) bool {
	if len(s) < lo || len(s) > hi {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
