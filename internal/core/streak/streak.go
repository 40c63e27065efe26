// Package streak computes consecutive-completion statistics for a single
// habit from its completion history, its schedule and a timezone.
package streak

import (
	"time"

	"github.com/habitpulse/habitpulse/internal/core/domain"
	"github.com/habitpulse/habitpulse/internal/core/schedule"
	"github.com/habitpulse/habitpulse/internal/core/timeday"
)

// Calculate derives the current and longest streak from the habit's active
// tracker instants. "now" is the caller's reference clock; services always
// pass the server clock so client skew cannot inflate streaks.
//
// The current streak walks backward from today one calendar day at a time:
// non-scheduled days are transparent, a scheduled-and-completed day extends
// the streak, and a scheduled-but-incomplete day breaks it — unless that day
// is today, whose window is still open. The walk never crosses the habit's
// start date.
func Calculate(h *domain.Habit, trackerTimes []time.Time, loc *time.Location, now time.Time) domain.StreakResult {
	completed := make(map[string]bool, len(trackerTimes))
	for _, ts := range trackerTimes {
		completed[timeday.DayKey(ts, loc)] = true
	}
	if len(completed) == 0 {
		return domain.StreakResult{}
	}

	startKey := h.StartDate.Format(timeday.KeyLayout)
	today := timeday.StartOfDay(now, loc)
	todayKey := timeday.DayKey(today, loc)

	current := 0
	for day := today; timeday.DayKey(day, loc) >= startKey; day = day.AddDate(0, 0, -1) {
		if !schedule.IsScheduled(h, day, loc) {
			continue
		}
		key := timeday.DayKey(day, loc)
		if completed[key] {
			current++
			continue
		}
		if key == todayKey {
			continue
		}
		break
	}

	// Longest streak: ascending scan over the scheduled days of the active
	// window. Non-scheduled days between completions do not break the run.
	longest, run := 0, 0
	first := time.Date(h.StartDate.Year(), h.StartDate.Month(), h.StartDate.Day(), 0, 0, 0, 0, loc)
	for day := first; timeday.DayKey(day, loc) <= todayKey; day = day.AddDate(0, 0, 1) {
		if !schedule.IsScheduled(h, day, loc) {
			continue
		}
		if completed[timeday.DayKey(day, loc)] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}

	if current > longest {
		longest = current
	}

	return domain.StreakResult{Streak: current, LongestStreak: longest}
}
