package domain

import (
	"context"
	"time"
)

type TrackerRepository interface {
	// Create persists a new completion record.
	Create(ctx context.Context, tracker *Tracker) error

	// GetByID retrieves a single active (non-deleted) tracker.
	GetByID(ctx context.Context, id string) (*Tracker, error)

	// ListByHabitInRange returns the habit's active trackers whose timestamp
	// falls in [from, to]. Used with local-day bounds for the toggle check.
	ListByHabitInRange(ctx context.Context, habitID string, from, to time.Time) ([]*Tracker, error)

	// ListActiveByHabit returns every active tracker of a habit, newest
	// first. Input to the streak recomputation.
	ListActiveByHabit(ctx context.Context, habitID, userID string) ([]*Tracker, error)

	// ListByUserInRange returns all of a user's active trackers across
	// habits within an instant range. Input to progress aggregation.
	ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*Tracker, error)

	// SoftDeleteByIDs marks the given trackers deleted and reports how many
	// rows were touched. Deleting several at once is the self-heal path for
	// duplicate completions on the same local day.
	SoftDeleteByIDs(ctx context.Context, ids []string) (int64, error)
}
