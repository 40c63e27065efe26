package domain

import (
	"context"
)

type HabitRepository interface {
	// Create persists a new habit definition in the storage.
	Create(ctx context.Context, habit *Habit) error

	// GetByID retrieves an active (non-deleted) habit by its identifier.
	GetByID(ctx context.Context, id string) (*Habit, error)

	// ListByUserID retrieves all active habits owned by a user.
	ListByUserID(ctx context.Context, userID string) ([]*Habit, error)

	// ListByUserAndWeekday retrieves the user's habits whose frequency set
	// contains the given weekday. Active-window filtering is the caller's job.
	ListByUserAndWeekday(ctx context.Context, userID string, day Weekday) ([]*Habit, error)

	// Update modifies the state of an existing habit.
	Update(ctx context.Context, habit *Habit) error

	// UpdateStats persists recomputed streak statistics. The userID guard
	// makes the write a no-op for foreign habits.
	UpdateStats(ctx context.Context, id, userID string, stats HabitStats) error

	// Delete soft-deletes a habit, leaving its rows for historical integrity.
	Delete(ctx context.Context, id string) error

	// DeleteCascade hard-deletes a habit and all of its trackers inside a
	// single transaction; a failure of either statement rolls back both.
	DeleteCascade(ctx context.Context, id string) error
}
