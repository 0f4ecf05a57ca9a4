package booking

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04"
	timeLayoutLong  = "15:04:05"
	minutesInADay   = 24 * 60
	minutesInAnHour = 60
)

// Date is a calendar date without timezone, formatted YYYY-MM-DD.
// Dates in that layout order correctly as plain strings.
type Date string

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date(t.Format(DateLayout)), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

func (d Date) String() string { return string(d) }

// TimeOfDay is a wall-clock time as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay accepts HH:MM or HH:MM:SS. Seconds are dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		// Fallback: try long format if short format fails
		var errLong error
		t, errLong = time.Parse(timeLayoutLong, s)
		if errLong != nil {
			return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
		}
	}
	return TimeOfDay(t.Hour()*minutesInAnHour + t.Minute()), nil
}

// MustTime parses s and panics on error. Intended for tests and literals.
func MustTime(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/minutesInAnHour, int(t)%minutesInAnHour)
}

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesInADay
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
