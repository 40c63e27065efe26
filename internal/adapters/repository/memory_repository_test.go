package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/habitpulse/habitpulse/internal/adapters/repository"
	"github.com/habitpulse/habitpulse/internal/core/domain"
)

func newHabit(t *testing.T, userID string) *domain.Habit {
	t.Helper()
	h, err := domain.NewHabit(userID, "Read", "book",
		[]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
		time.Now().UTC().AddDate(0, 0, -7), nil)
	require.NoError(t, err)
	return h
}

func TestInMemoryHabitRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Soft delete hides the habit from reads", func(t *testing.T) {
		repo := repository.NewInMemoryHabitRepository()
		h := newHabit(t, "user-1")
		require.NoError(t, repo.Create(ctx, h))

		require.NoError(t, repo.Delete(ctx, h.ID))

		_, err := repo.GetByID(ctx, h.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		list, err := repo.ListByUserID(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, list)

		assert.ErrorIs(t, repo.Delete(ctx, h.ID), domain.ErrHabitNotFound,
			"second delete should miss")
	})

	t.Run("Reads return clones, not shared pointers", func(t *testing.T) {
		repo := repository.NewInMemoryHabitRepository()
		h := newHabit(t, "user-1")
		require.NoError(t, repo.Create(ctx, h))

		got, err := repo.GetByID(ctx, h.ID)
		require.NoError(t, err)
		got.Name = "mutated by caller"

		again, err := repo.GetByID(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, "Read", again.Name)
	})

	t.Run("UpdateStats enforces ownership", func(t *testing.T) {
		repo := repository.NewInMemoryHabitRepository()
		h := newHabit(t, "user-1")
		require.NoError(t, repo.Create(ctx, h))

		err := repo.UpdateStats(ctx, h.ID, "intruder", domain.HabitStats{Streak: 99})
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)

		require.NoError(t, repo.UpdateStats(ctx, h.ID, "user-1", domain.HabitStats{Streak: 2, LongestStreak: 5}))
		got, err := repo.GetByID(ctx, h.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Streak)
		assert.Equal(t, 5, got.LongestStreak)
	})

	t.Run("ListByUserAndWeekday filters by frequency", func(t *testing.T) {
		repo := repository.NewInMemoryHabitRepository()
		mondayOnly, err := domain.NewHabit("user-1", "Gym", "", []string{"Mon"},
			time.Now().UTC().AddDate(0, 0, -7), nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, mondayOnly))
		require.NoError(t, repo.Create(ctx, newHabit(t, "user-1")))

		list, err := repo.ListByUserAndWeekday(ctx, "user-1", domain.Tue)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = repo.ListByUserAndWeekday(ctx, "user-1", domain.Mon)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func TestInMemoryTrackerRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("SoftDeleteByIDs reports only rows it actually touched", func(t *testing.T) {
		repo := repository.NewInMemoryTrackerRepository()

		a := domain.NewTracker("habit-1", "user-1", time.Now().UTC(), "")
		b := domain.NewTracker("habit-1", "user-1", time.Now().UTC(), "")
		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))

		affected, err := repo.SoftDeleteByIDs(ctx, []string{a.ID, b.ID, "ghost"})
		require.NoError(t, err)
		assert.EqualValues(t, 2, affected)

		affected, err = repo.SoftDeleteByIDs(ctx, []string{a.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 0, affected, "already-deleted rows do not count")
	})

	t.Run("Range queries are inclusive on both ends", func(t *testing.T) {
		repo := repository.NewInMemoryTrackerRepository()

		at := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
		tr := domain.NewTracker("habit-1", "user-1", at, "")
		require.NoError(t, repo.Create(ctx, tr))

		list, err := repo.ListByHabitInRange(ctx, "habit-1", at, at)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		list, err = repo.ListByHabitInRange(ctx, "habit-1", at.Add(time.Nanosecond), at.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestInMemoryUserRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("ResolveExternalID is idempotent", func(t *testing.T) {
		repo := repository.NewInMemoryUserRepository()

		first, err := repo.ResolveExternalID(ctx, "idp|7")
		require.NoError(t, err)

		second, err := repo.ResolveExternalID(ctx, "idp|7")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		other, err := repo.ResolveExternalID(ctx, "idp|8")
		require.NoError(t, err)
		assert.NotEqual(t, first, other)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		repo := repository.NewInMemoryUserRepository()

		u1, err := domain.NewUser("id-1", "anna@example.com")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, u1))

		u2, err := domain.NewUser("id-2", "anna@example.com")
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, u2), domain.ErrEmailAlreadyExists)
	})
}
