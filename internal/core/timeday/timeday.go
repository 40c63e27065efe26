// Package timeday maps absolute instants to local calendar days under an
// IANA timezone. All day math goes through the platform tz database; no
// fixed offsets, so DST transitions (23h/25h days) come out right.
package timeday

import (
	"fmt"
	"time"

	"github.com/habitpulse/habitpulse/internal/core/domain"
)

// KeyLayout is the canonical calendar-day rendering. Lexicographic order of
// keys matches chronological order.
const KeyLayout = "2006-01-02"

// LoadLocation resolves an IANA timezone name, wrapping failures as
// domain.ErrInvalidTimeZone so handlers can map them to client errors.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", domain.ErrInvalidTimeZone)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTimeZone, name)
	}
	return loc, nil
}

// DayKey renders the calendar day the instant falls on when viewed in loc.
func DayKey(instant time.Time, loc *time.Location) string {
	return instant.In(loc).Format(KeyLayout)
}

// StartOfDay returns the local midnight of the calendar day containing the
// instant, as an absolute instant.
func StartOfDay(instant time.Time, loc *time.Location) time.Time {
	local := instant.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// DayBounds returns the first and last instants of the local calendar day
// containing the instant. The end bound is the nanosecond before the next
// local midnight, so the day's span is 23h, 24h or 25h depending on DST.
func DayBounds(instant time.Time, loc *time.Location) (start, end time.Time) {
	start = StartOfDay(instant, loc)
	local := instant.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return start, next.Add(-time.Nanosecond)
}

// WeekdayOf returns the short weekday token of the instant in loc.
func WeekdayOf(instant time.Time, loc *time.Location) domain.Weekday {
	return domain.WeekdayOf(instant.In(loc))
}

// ParseDayKey parses a YYYY-MM-DD string into a calendar day (UTC-anchored
// date value). Failures surface as domain.ErrInvalidDate.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.Parse(KeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, key)
	}
	return t, nil
}
