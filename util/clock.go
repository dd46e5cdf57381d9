package util

import (
	"strings"
	"time"
)

const (
	ClockLayout = "15:04"
	DateLayout  = "2006-01-02"
)

var clockLayouts = []string{"15:04", "3:04 PM", "3:04PM", "03:04 PM", "03:04PM"}

/*
* Accept the 24 hour form and the h:mm AM/PM display form
* Always hand back the canonical HH:MM
 */
func ParseClock(value string) (string, error) {
	v := strings.ToUpper(strings.TrimSpace(value))
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", ValidationError(INVALID_TIME)
}

// FormatClock12 renders a canonical HH:MM for display, unknown input is returned unchanged.
func FormatClock12(clock string) string {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}

func ClockMinutes(clock string) (int, error) {
	t, err := time.Parse(ClockLayout, clock)
	if err != nil {
		return 0, ValidationError(INVALID_TIME)
	}
	return t.Hour()*60 + t.Minute(), nil
}

var dateLayouts = []string{DateLayout, "02-01-2006", time.RFC3339}

/*
* Parse the calendar date
* Truncate to midnight UTC so day based queries match exactly
 */
func NormalizeDate(value string) (time.Time, error) {
	v := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return StartOfDay(t), nil
		}
	}
	return time.Time{}, ValidationError(INVALID_DATE)
}

func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
