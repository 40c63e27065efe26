package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/habitpulse/habitpulse/internal/core/domain"
)

type PostgresTrackerRepository struct {
	db *sqlx.DB
}

func NewPostgresTrackerRepository(db *sqlx.DB) *PostgresTrackerRepository {
	return &PostgresTrackerRepository{db: db}
}

func (r *PostgresTrackerRepository) Create(ctx context.Context, tracker *domain.Tracker) error {
	if tracker.ID == "" {
		tracker.ID = uuid.NewString()
	}

	query := `
		INSERT INTO trackers (
			id, habit_id, user_id,
			timestamp, notes,
			created_at, updated_at, deleted_at
		) VALUES (
			:id, :habit_id, :user_id,
			:timestamp, :notes,
			:created_at, :updated_at, :deleted_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, tracker)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23503" {
				return domain.ErrHabitNotFound
			}
		}
		return err
	}
	return nil
}

func (r *PostgresTrackerRepository) GetByID(ctx context.Context, id string) (*domain.Tracker, error) {
	var tracker domain.Tracker
	query := `SELECT * FROM trackers WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &tracker, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTrackerNotFound
		}
		return nil, err
	}
	return &tracker, nil
}

func (r *PostgresTrackerRepository) ListByHabitInRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Tracker, error) {
	trackers := []*domain.Tracker{}

	query := `
		SELECT * FROM trackers
		WHERE habit_id = $1
		  AND timestamp >= $2
		  AND timestamp <= $3
		  AND deleted_at IS NULL
		ORDER BY timestamp DESC`

	err := r.db.SelectContext(ctx, &trackers, query, habitID, from, to)
	if err != nil {
		return nil, err
	}
	return trackers, nil
}

func (r *PostgresTrackerRepository) ListActiveByHabit(ctx context.Context, habitID, userID string) ([]*domain.Tracker, error) {
	trackers := []*domain.Tracker{}

	query := `
		SELECT * FROM trackers
		WHERE habit_id = $1
		  AND user_id = $2
		  AND deleted_at IS NULL
		ORDER BY timestamp DESC`

	err := r.db.SelectContext(ctx, &trackers, query, habitID, userID)
	if err != nil {
		return nil, err
	}
	return trackers, nil
}

func (r *PostgresTrackerRepository) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.Tracker, error) {
	trackers := []*domain.Tracker{}

	query := `
		SELECT * FROM trackers
		WHERE user_id = $1
		  AND timestamp >= $2
		  AND timestamp <= $3
		  AND deleted_at IS NULL
		ORDER BY timestamp DESC`

	err := r.db.SelectContext(ctx, &trackers, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	return trackers, nil
}

func (r *PostgresTrackerRepository) SoftDeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()

	query := `
		UPDATE trackers
		SET deleted_at = $1,
		    updated_at = $1
		WHERE id = ANY($2)
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, pq.Array(ids))
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
