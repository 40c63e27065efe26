package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/habitpulse/habitpulse/internal/core/domain"
	"github.com/habitpulse/habitpulse/internal/core/schedule"
	"github.com/habitpulse/habitpulse/internal/core/streak"
	"github.com/habitpulse/habitpulse/internal/core/timeday"
)

type ToggleStatus string

const (
	ToggleAdded   ToggleStatus = "added"
	ToggleRemoved ToggleStatus = "removed"
)

// TrackerService owns the toggle state machine: a (habit, local day) pair
// alternates between uncompleted and completed, and every mutation recomputes
// the habit's persisted statistics before returning.
type TrackerService struct {
	trackerRepo domain.TrackerRepository
	habitRepo   domain.HabitRepository
}

func NewTrackerService(trackerRepo domain.TrackerRepository, habitRepo domain.HabitRepository) *TrackerService {
	return &TrackerService{
		trackerRepo: trackerRepo,
		habitRepo:   habitRepo,
	}
}

type ToggleInput struct {
	HabitID   string
	UserID    string
	Timestamp time.Time
	TimeZone  string
	Notes     string
}

type ToggleResult struct {
	Status    ToggleStatus      `json:"status"`
	TrackerID string            `json:"tracker_id,omitempty"`
	Stats     domain.HabitStats `json:"stats"`
}

// Toggle marks a habit done for the local day containing the timestamp, or
// undoes it when a completion already exists. When several trackers match the
// day window (duplicate-insert race), all of them are removed: the state heals
// lazily instead of enforcing a uniqueness constraint.
func (s *TrackerService) Toggle(ctx context.Context, input ToggleInput) (*ToggleResult, error) {
	// Timezone is validated before any repository call.
	loc, err := timeday.LoadLocation(input.TimeZone)
	if err != nil {
		return nil, err
	}

	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	habit, err := s.habitRepo.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != input.UserID {
		return nil, domain.ErrHabitNotFound
	}

	start, end := timeday.DayBounds(ts, loc)
	existing, err := s.trackerRepo.ListByHabitInRange(ctx, habit.ID, start, end)
	if err != nil {
		return nil, err
	}

	result := &ToggleResult{}

	if len(existing) > 0 {
		ids := make([]string, 0, len(existing))
		for _, t := range existing {
			ids = append(ids, t.ID)
		}

		affected, err := s.trackerRepo.SoftDeleteByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			log.Printf("[TRACKER] habit %s: %d trackers matched day %s but delete touched none",
				habit.ID, len(ids), timeday.DayKey(ts, loc))
			return nil, domain.ErrInconsistentState
		}

		result.Status = ToggleRemoved
	} else {
		tracker := domain.NewTracker(habit.ID, habit.UserID, ts, input.Notes)
		if err := tracker.Validate(); err != nil {
			return nil, err
		}
		if err := s.trackerRepo.Create(ctx, tracker); err != nil {
			return nil, err
		}

		result.Status = ToggleAdded
		result.TrackerID = tracker.ID
	}

	stats, err := s.refreshStats(ctx, habit, loc)
	if err != nil {
		return nil, err
	}
	result.Stats = stats

	return result, nil
}

// Stats recomputes the habit's statistics from its full completion history
// and persists them when they drifted from the cached values.
func (s *TrackerService) Stats(ctx context.Context, habitID, userID, timeZone string) (domain.HabitStats, error) {
	loc, err := timeday.LoadLocation(timeZone)
	if err != nil {
		return domain.HabitStats{}, err
	}

	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return domain.HabitStats{}, err
	}
	if habit.UserID != userID {
		return domain.HabitStats{}, domain.ErrHabitNotFound
	}

	return s.refreshStats(ctx, habit, loc)
}

// DayHabit is one habit due on a requested day, merged with its completion
// state for that day.
type DayHabit struct {
	Habit     *domain.Habit `json:"habit"`
	Completed bool          `json:"completed"`
	TrackerID string        `json:"tracker_id,omitempty"`
}

// Day returns the user's habits scheduled on the given calendar day together
// with their completed flags. The repository pre-filters by weekday; the
// active window is applied here.
func (s *TrackerService) Day(ctx context.Context, userID, dateKey, timeZone string) ([]DayHabit, error) {
	loc, err := timeday.LoadLocation(timeZone)
	if err != nil {
		return nil, err
	}
	date, err := timeday.ParseDayKey(dateKey)
	if err != nil {
		return nil, err
	}

	localDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	weekday := timeday.WeekdayOf(localDay, loc)

	habits, err := s.habitRepo.ListByUserAndWeekday(ctx, userID, weekday)
	if err != nil {
		return nil, err
	}

	scheduled := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if schedule.IsScheduled(h, localDay, loc) {
			scheduled = append(scheduled, h)
		}
	}

	result := make([]DayHabit, 0, len(scheduled))
	if len(scheduled) == 0 {
		return result, nil
	}

	start, end := timeday.DayBounds(localDay, loc)
	trackers, err := s.trackerRepo.ListByUserInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	trackerByHabit := make(map[string]*domain.Tracker, len(trackers))
	for _, t := range trackers {
		if _, ok := trackerByHabit[t.HabitID]; !ok {
			trackerByHabit[t.HabitID] = t
		}
	}

	for _, h := range scheduled {
		dh := DayHabit{Habit: h}
		if t, ok := trackerByHabit[h.ID]; ok {
			dh.Completed = true
			dh.TrackerID = t.ID
		}
		result = append(result, dh)
	}

	return result, nil
}

// ListByHabit returns the habit's active trackers within an instant range.
func (s *TrackerService) ListByHabit(ctx context.Context, habitID, userID string, from, to time.Time) ([]*domain.Tracker, error) {
	habit, err := s.habitRepo.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}

	return s.trackerRepo.ListByHabitInRange(ctx, habitID, from, to)
}

func (s *TrackerService) refreshStats(ctx context.Context, habit *domain.Habit, loc *time.Location) (domain.HabitStats, error) {
	trackers, err := s.trackerRepo.ListActiveByHabit(ctx, habit.ID, habit.UserID)
	if err != nil {
		return domain.HabitStats{}, err
	}

	times := make([]time.Time, 0, len(trackers))
	var last *time.Time
	for _, t := range trackers {
		times = append(times, t.Timestamp)
		if last == nil || t.Timestamp.After(*last) {
			ts := t.Timestamp
			last = &ts
		}
	}

	res := streak.Calculate(habit, times, loc, time.Now())

	stats := domain.HabitStats{
		Streak:           res.Streak,
		LongestStreak:    res.LongestStreak,
		TotalCompletions: len(trackers),
		LastCompleted:    last,
	}

	if statsEqual(habit, stats) {
		return stats, nil
	}

	if err := s.habitRepo.UpdateStats(ctx, habit.ID, habit.UserID, stats); err != nil {
		// The habit passed the existence check above, so a vanishing row here
		// is a server-side invariant violation, not caller input.
		if errors.Is(err, domain.ErrHabitNotFound) {
			log.Printf("[TRACKER] habit %s: stats update affected no rows after existence check", habit.ID)
			return domain.HabitStats{}, domain.ErrInconsistentState
		}
		return domain.HabitStats{}, err
	}
	habit.ApplyStats(stats)

	return stats, nil
}

func statsEqual(h *domain.Habit, s domain.HabitStats) bool {
	if h.Streak != s.Streak || h.LongestStreak != s.LongestStreak || h.TotalCompletions != s.TotalCompletions {
		return false
	}
	switch {
	case h.LastCompleted == nil && s.LastCompleted == nil:
		return true
	case h.LastCompleted == nil || s.LastCompleted == nil:
		return false
	default:
		return h.LastCompleted.Equal(*s.LastCompleted)
	}
}
