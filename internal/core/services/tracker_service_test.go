package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitpulse/habitpulse/internal/core/domain"
	"github.com/habitpulse/habitpulse/internal/core/services"
	"github.com/habitpulse/habitpulse/internal/core/timeday"
)

type MockTrackerRepo struct {
	store         map[string]*domain.Tracker
	simulateError error
}

func NewMockTrackerRepo() *MockTrackerRepo {
	return &MockTrackerRepo{
		store: make(map[string]*domain.Tracker),
	}
}

func (m *MockTrackerRepo) Create(ctx context.Context, tracker *domain.Tracker) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	clone := *tracker
	m.store[tracker.ID] = &clone
	return nil
}

func (m *MockTrackerRepo) GetByID(ctx context.Context, id string) (*domain.Tracker, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	tr, ok := m.store[id]
	if !ok || tr.DeletedAt != nil {
		return nil, domain.ErrTrackerNotFound
	}
	clone := *tr
	return &clone, nil
}

func (m *MockTrackerRepo) ListByHabitInRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Tracker, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Tracker
	for _, tr := range m.store {
		if tr.HabitID == habitID && tr.DeletedAt == nil && !tr.Timestamp.Before(from) && !tr.Timestamp.After(to) {
			clone := *tr
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *MockTrackerRepo) ListActiveByHabit(ctx context.Context, habitID, userID string) ([]*domain.Tracker, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Tracker
	for _, tr := range m.store {
		if tr.HabitID == habitID && tr.UserID == userID && tr.DeletedAt == nil {
			clone := *tr
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *MockTrackerRepo) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.Tracker, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	var list []*domain.Tracker
	for _, tr := range m.store {
		if tr.UserID == userID && tr.DeletedAt == nil && !tr.Timestamp.Before(from) && !tr.Timestamp.After(to) {
			clone := *tr
			list = append(list, &clone)
		}
	}
	return list, nil
}

func (m *MockTrackerRepo) SoftDeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if m.simulateError != nil {
		return 0, m.simulateError
	}
	now := time.Now().UTC()
	var affected int64
	for _, id := range ids {
		tr, ok := m.store[id]
		if !ok || tr.DeletedAt != nil {
			continue
		}
		tr.DeletedAt = &now
		affected++
	}
	return affected, nil
}

func newTrackerFixture(t *testing.T, frequency []string, start time.Time) (*services.TrackerService, *MockHabitRepo, *MockTrackerRepo, *domain.Habit) {
	t.Helper()
	habitRepo := NewMockHabitRepo()
	trackerRepo := NewMockTrackerRepo()
	habit := seedHabit(t, habitRepo, "user-1", frequency, start)
	return services.NewTrackerService(trackerRepo, habitRepo), habitRepo, trackerRepo, habit
}

var allDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func TestTrackerService_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid timezone is rejected before touching the store", func(t *testing.T) {
		svc, _, trackerRepo, habit := newTrackerFixture(t, allDays, daysAgo(10))

		_, err := svc.Toggle(ctx, services.ToggleInput{
			HabitID:  habit.ID,
			UserID:   "user-1",
			TimeZone: "Middle/Nowhere",
		})

		assert.ErrorIs(t, err, domain.ErrInvalidTimeZone)
		assert.Empty(t, trackerRepo.store)
	})

	t.Run("Unknown habit", func(t *testing.T) {
		svc, _, _, _ := newTrackerFixture(t, allDays, daysAgo(10))

		_, err := svc.Toggle(ctx, services.ToggleInput{
			HabitID:  "missing",
			UserID:   "user-1",
			TimeZone: "UTC",
		})

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Foreign habit cannot be toggled", func(t *testing.T) {
		svc, _, _, habit := newTrackerFixture(t, allDays, daysAgo(10))

		_, err := svc.Toggle(ctx, services.ToggleInput{
			HabitID:  habit.ID,
			UserID:   "intruder",
			TimeZone: "UTC",
		})

		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})

	t.Run("Toggle alternates added, removed, added", func(t *testing.T) {
		svc, _, _, habit := newTrackerFixture(t, allDays, daysAgo(10))
		input := services.ToggleInput{HabitID: habit.ID, UserID: "user-1", TimeZone: "UTC"}

		first, err := svc.Toggle(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, services.ToggleAdded, first.Status)
		assert.NotEmpty(t, first.TrackerID)

		second, err := svc.Toggle(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, services.ToggleRemoved, second.Status)
		assert.Empty(t, second.TrackerID)

		third, err := svc.Toggle(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, services.ToggleAdded, third.Status)
		assert.NotEqual(t, first.TrackerID, third.TrackerID, "re-adding creates a fresh tracker")
	})

	t.Run("Stats are recomputed and persisted on every toggle", func(t *testing.T) {
		svc, habitRepo, _, habit := newTrackerFixture(t, allDays, daysAgo(10))
		input := services.ToggleInput{HabitID: habit.ID, UserID: "user-1", TimeZone: "UTC"}

		added, err := svc.Toggle(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, 1, added.Stats.Streak)
		assert.Equal(t, 1, added.Stats.TotalCompletions)
		require.NotNil(t, added.Stats.LastCompleted)

		stored, err := habitRepo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, stored.Streak)
		assert.Equal(t, 1, stored.LongestStreak)

		removed, err := svc.Toggle(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, 0, removed.Stats.Streak)
		assert.Equal(t, 0, removed.Stats.TotalCompletions)
		assert.Nil(t, removed.Stats.LastCompleted)
	})

	t.Run("Duplicate trackers on the same day are all removed", func(t *testing.T) {
		svc, _, trackerRepo, habit := newTrackerFixture(t, allDays, daysAgo(10))

		// Two completions for today, as left behind by a duplicate-insert race.
		now := time.Now().UTC()
		for _, ts := range []time.Time{now.Add(-2 * time.Hour), now.Add(-1 * time.Hour)} {
			tr := domain.NewTracker(habit.ID, "user-1", ts, "")
			require.NoError(t, trackerRepo.Create(ctx, tr))
		}

		result, err := svc.Toggle(ctx, services.ToggleInput{
			HabitID: habit.ID, UserID: "user-1", TimeZone: "UTC",
		})
		require.NoError(t, err)
		assert.Equal(t, services.ToggleRemoved, result.Status)

		active, err := trackerRepo.ListActiveByHabit(ctx, habit.ID, "user-1")
		require.NoError(t, err)
		assert.Empty(t, active, "all duplicates should be gone after one toggle")
	})

	t.Run("Day membership follows the requested timezone", func(t *testing.T) {
		svc, _, trackerRepo, habit := newTrackerFixture(t, allDays, daysAgo(10))

		ny, err := time.LoadLocation("America/New_York")
		require.NoError(t, err)

		// Late evening in New York, already past midnight UTC.
		nyEvening := time.Date(2100, 1, 7, 22, 0, 0, 0, ny)
		tr := domain.NewTracker(habit.ID, "user-1", nyEvening, "")
		require.NoError(t, trackerRepo.Create(ctx, tr))

		// Toggling the same local evening must hit the existing tracker.
		result, err := svc.Toggle(ctx, services.ToggleInput{
			HabitID:   habit.ID,
			UserID:    "user-1",
			Timestamp: time.Date(2100, 1, 7, 23, 30, 0, 0, ny),
			TimeZone:  "America/New_York",
		})
		require.NoError(t, err)
		assert.Equal(t, services.ToggleRemoved, result.Status)
	})

	t.Run("Stats row vanishing mid-toggle is an inconsistent state", func(t *testing.T) {
		svc, habitRepo, _, habit := newTrackerFixture(t, allDays, daysAgo(10))
		habitRepo.failUpdateStats = domain.ErrHabitNotFound

		_, err := svc.Toggle(ctx, services.ToggleInput{
			HabitID: habit.ID, UserID: "user-1", TimeZone: "UTC",
		})

		assert.ErrorIs(t, err, domain.ErrInconsistentState)
	})
}

func TestTrackerService_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("Recomputes from history and persists the drift", func(t *testing.T) {
		svc, habitRepo, trackerRepo, habit := newTrackerFixture(t, allDays, daysAgo(10))

		for _, n := range []int{0, 1, 2} {
			tr := domain.NewTracker(habit.ID, "user-1", daysAgo(n), "")
			require.NoError(t, trackerRepo.Create(ctx, tr))
		}

		stats, err := svc.Stats(ctx, habit.ID, "user-1", "UTC")
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Streak)
		assert.Equal(t, 3, stats.LongestStreak)
		assert.Equal(t, 3, stats.TotalCompletions)

		stored, err := habitRepo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stored.Streak)
	})

	t.Run("Foreign habit", func(t *testing.T) {
		svc, _, _, habit := newTrackerFixture(t, allDays, daysAgo(10))

		_, err := svc.Stats(ctx, habit.ID, "intruder", "UTC")
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestTrackerService_Day(t *testing.T) {
	ctx := context.Background()
	todayKey := timeday.DayKey(time.Now(), time.UTC)

	t.Run("Scheduled habits appear with their completion state", func(t *testing.T) {
		svc, habitRepo, trackerRepo, habit := newTrackerFixture(t, allDays, daysAgo(10))

		// Second habit, same user, never completed.
		other := seedHabit(t, habitRepo, "user-1", allDays, daysAgo(10))

		tr := domain.NewTracker(habit.ID, "user-1", time.Now().UTC(), "")
		require.NoError(t, trackerRepo.Create(ctx, tr))

		day, err := svc.Day(ctx, "user-1", todayKey, "UTC")
		require.NoError(t, err)
		require.Len(t, day, 2)

		byID := make(map[string]services.DayHabit)
		for _, dh := range day {
			byID[dh.Habit.ID] = dh
		}
		assert.True(t, byID[habit.ID].Completed)
		assert.Equal(t, tr.ID, byID[habit.ID].TrackerID)
		assert.False(t, byID[other.ID].Completed)
	})

	t.Run("Habits starting in the future are excluded", func(t *testing.T) {
		svc, habitRepo, _, _ := newTrackerFixture(t, allDays, daysAgo(10))
		seedHabit(t, habitRepo, "user-1", allDays, daysAgo(-30))

		day, err := svc.Day(ctx, "user-1", todayKey, "UTC")
		require.NoError(t, err)
		assert.Len(t, day, 1, "only the already-started habit is due")
	})

	t.Run("Invalid date key", func(t *testing.T) {
		svc, _, _, _ := newTrackerFixture(t, allDays, daysAgo(10))

		_, err := svc.Day(ctx, "user-1", "01/07/2024", "UTC")
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})
}
