// Package schedule decides whether a habit is due on a given local calendar
// day, combining the weekly frequency set with the habit's active window.
package schedule

import (
	"time"

	"github.com/habitpulse/habitpulse/internal/core/domain"
	"github.com/habitpulse/habitpulse/internal/core/timeday"
)

// IsScheduled reports whether the calendar day containing the instant (in
// loc) is a day the habit is due: weekday in the frequency set, day on or
// after the start date and, when an end date exists, on or before it.
// Window comparison is done on day keys to stay timezone-safe.
func IsScheduled(h *domain.Habit, day time.Time, loc *time.Location) bool {
	if !h.IsDue(timeday.WeekdayOf(day, loc)) {
		return false
	}

	key := timeday.DayKey(day, loc)
	if key < h.StartDate.Format(timeday.KeyLayout) {
		return false
	}
	if h.EndDate != nil && key > h.EndDate.Format(timeday.KeyLayout) {
		return false
	}
	return true
}

// CountScheduled counts the scheduled days in [from, to], enumerating the
// window one calendar day at a time. No arithmetic shortcut: month lengths
// and DST make fixed-step math wrong.
func CountScheduled(h *domain.Habit, from, to time.Time, loc *time.Location) int {
	count := 0
	day := timeday.StartOfDay(from, loc)
	last := timeday.DayKey(to, loc)

	for timeday.DayKey(day, loc) <= last {
		if IsScheduled(h, day, loc) {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}
