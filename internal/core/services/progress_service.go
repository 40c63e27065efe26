package services

import (
	"context"
	"math"
	"time"

	"github.com/habitpulse/habitpulse/internal/core/domain"
	"github.com/habitpulse/habitpulse/internal/core/schedule"
	"github.com/habitpulse/habitpulse/internal/core/timeday"
)

// progressWindowDays is the fixed trailing computation window. Caller-supplied
// ranges only filter the returned series, never the calculation itself, so a
// narrow query cannot distort streaks.
const progressWindowDays = 365

// ProgressService aggregates completion rates across all of a user's habits
// and derives the user-level perfect-day streaks.
type ProgressService struct {
	habitRepo   domain.HabitRepository
	trackerRepo domain.TrackerRepository
}

func NewProgressService(habitRepo domain.HabitRepository, trackerRepo domain.TrackerRepository) *ProgressService {
	return &ProgressService{
		habitRepo:   habitRepo,
		trackerRepo: trackerRepo,
	}
}

// History returns the day-by-day completion rates, optionally filtered to
// [fromKey, toKey]. Only days with at least one scheduled habit appear.
func (s *ProgressService) History(ctx context.Context, userID, timeZone, fromKey, toKey string) ([]domain.ProgressDay, error) {
	loc, err := timeday.LoadLocation(timeZone)
	if err != nil {
		return nil, err
	}
	if fromKey != "" {
		if _, err := timeday.ParseDayKey(fromKey); err != nil {
			return nil, err
		}
	}
	if toKey != "" {
		if _, err := timeday.ParseDayKey(toKey); err != nil {
			return nil, err
		}
	}

	full, err := s.history(ctx, userID, loc, time.Now())
	if err != nil {
		return nil, err
	}

	filtered := make([]domain.ProgressDay, 0, len(full))
	for _, day := range full {
		if fromKey != "" && day.Date < fromKey {
			continue
		}
		if toKey != "" && day.Date > toKey {
			continue
		}
		filtered = append(filtered, day)
	}
	return filtered, nil
}

// Streaks computes the user-level current and longest streak over perfect
// days (100% of scheduled habits completed). The backward walk treats days
// without scheduled habits as transparent and exempts today; the longest
// streak requires strict date adjacency between perfect days.
func (s *ProgressService) Streaks(ctx context.Context, userID, timeZone string) (domain.StreakResult, error) {
	loc, err := timeday.LoadLocation(timeZone)
	if err != nil {
		return domain.StreakResult{}, err
	}

	now := time.Now()
	hist, err := s.history(ctx, userID, loc, now)
	if err != nil {
		return domain.StreakResult{}, err
	}
	if len(hist) == 0 {
		return domain.StreakResult{}, nil
	}

	rateByDay := make(map[string]int, len(hist))
	for _, d := range hist {
		rateByDay[d.Date] = d.CompletionRate
	}

	today := timeday.StartOfDay(now, loc)
	todayKey := timeday.DayKey(today, loc)
	firstKey := hist[0].Date

	current := 0
	for day := today; timeday.DayKey(day, loc) >= firstKey; day = day.AddDate(0, 0, -1) {
		key := timeday.DayKey(day, loc)
		rate, ok := rateByDay[key]
		if !ok {
			continue
		}
		if rate == 100 {
			current++
			continue
		}
		if key == todayKey {
			continue
		}
		break
	}

	longest, run := 0, 0
	var prev time.Time
	for _, d := range hist {
		if d.CompletionRate != 100 {
			continue
		}
		date, err := timeday.ParseDayKey(d.Date)
		if err != nil {
			return domain.StreakResult{}, err
		}
		if !prev.IsZero() && date.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = date
	}

	if current > longest {
		longest = current
	}

	return domain.StreakResult{Streak: current, LongestStreak: longest}, nil
}

// Overview bundles the filtered history with the user streaks.
func (s *ProgressService) Overview(ctx context.Context, userID, timeZone, fromKey, toKey string) (*domain.ProgressOverview, error) {
	history, err := s.History(ctx, userID, timeZone, fromKey, toKey)
	if err != nil {
		return nil, err
	}

	streaks, err := s.Streaks(ctx, userID, timeZone)
	if err != nil {
		return nil, err
	}

	return &domain.ProgressOverview{
		History:       history,
		CurrentStreak: streaks.Streak,
		LongestStreak: streaks.LongestStreak,
	}, nil
}

// history computes the unfiltered series over the fixed trailing window.
func (s *ProgressService) history(ctx context.Context, userID string, loc *time.Location, now time.Time) ([]domain.ProgressDay, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	days := []domain.ProgressDay{}
	if len(habits) == 0 {
		return days, nil
	}

	today := timeday.StartOfDay(now, loc)
	todayKey := timeday.DayKey(today, loc)
	windowStart := today.AddDate(0, 0, -(progressWindowDays - 1))
	_, windowEnd := timeday.DayBounds(today, loc)

	trackers, err := s.trackerRepo.ListByUserInRange(ctx, userID, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	completedByDay := make(map[string]map[string]struct{})
	for _, t := range trackers {
		key := timeday.DayKey(t.Timestamp, loc)
		if completedByDay[key] == nil {
			completedByDay[key] = make(map[string]struct{})
		}
		completedByDay[key][t.HabitID] = struct{}{}
	}

	for day := windowStart; timeday.DayKey(day, loc) <= todayKey; day = day.AddDate(0, 0, 1) {
		key := timeday.DayKey(day, loc)

		scheduled := 0
		done := 0
		for _, h := range habits {
			if !schedule.IsScheduled(h, day, loc) {
				continue
			}
			scheduled++
			if _, ok := completedByDay[key][h.ID]; ok {
				done++
			}
		}
		if scheduled == 0 {
			continue
		}

		rate := int(math.Round(float64(done) / float64(scheduled) * 100))
		days = append(days, domain.ProgressDay{Date: key, CompletionRate: rate})
	}

	return days, nil
}
