package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTrackerNotFound = errors.New("tracker not found")
)

// Tracker is a single completion record. At most one active tracker is
// supposed to exist per habit per local calendar day; the toggle operation
// collapses duplicates when it removes.
type Tracker struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	UserID  string `json:"user_id" db:"user_id"`

	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Notes     string    `json:"notes,omitempty" db:"notes"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewTracker(habitID, userID string, timestamp time.Time, notes string) *Tracker {
	now := time.Now().UTC()

	return &Tracker{
		ID:        uuid.NewString(),
		HabitID:   habitID,
		UserID:    userID,
		Timestamp: timestamp.UTC(),
		Notes:     notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (t *Tracker) Validate() error {
	if strings.TrimSpace(t.HabitID) == "" {
		return errors.New("habit_id is required")
	}
	if strings.TrimSpace(t.UserID) == "" {
		return errors.New("user_id is required")
	}
	if t.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	return nil
}
