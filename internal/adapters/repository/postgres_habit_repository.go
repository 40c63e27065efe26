package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/habitpulse/habitpulse/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

// decodeFrequency normalizes the stored frequency column. Current rows hold
// a JSON array; rows written before the schema change hold a comma-joined
// string. Both converge on the canonical weekday set here, at the storage
// boundary, so schedule logic never sees a raw representation.
func decodeFrequency(raw []byte) ([]domain.Weekday, error) {
	if len(raw) == 0 {
		return nil, domain.ErrFrequencyEmpty
	}

	var tokens []string
	if err := json.Unmarshal(raw, &tokens); err != nil {
		var legacy string
		if err := json.Unmarshal(raw, &legacy); err != nil {
			legacy = string(raw)
		}
		tokens = []string{legacy}
	}

	return domain.NormalizeFrequency(tokens)
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var frequencyRaw []byte

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Icon, &frequencyRaw,
		&h.StartDate, &h.EndDate,
		&h.Streak, &h.LongestStreak, &h.TotalCompletions, &h.LastCompleted,
		&h.CreatedAt, &h.UpdatedAt, &h.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	h.Frequency, err = decodeFrequency(frequencyRaw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode frequency for habit %s: %w", h.ID, err)
	}

	return &h, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	frequencyJSON, err := json.Marshal(h.Frequency)
	if err != nil {
		return fmt.Errorf("failed to marshal frequency: %w", err)
	}

	query := `
        INSERT INTO habits (
            id, user_id, name, icon, frequency,
            start_date, end_date,
            streak, longest_streak, total_completions, last_completed,
            created_at, updated_at, deleted_at
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7,
            0, 0, 0, NULL,
            $8, $9, NULL
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.Icon, frequencyJSON,
		h.StartDate, h.EndDate,
		h.CreatedAt, h.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT * FROM habits WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT * FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC`

	return r.queryHabits(ctx, query, userID)
}

func (r *PostgresHabitRepository) ListByUserAndWeekday(ctx context.Context, userID string, day domain.Weekday) ([]*domain.Habit, error) {
	dayJSON, err := json.Marshal([]domain.Weekday{day})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal weekday: %w", err)
	}

	query := `
        SELECT * FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL AND frequency @> $2
        ORDER BY created_at DESC`

	return r.queryHabits(ctx, query, userID, dayJSON)
}

func (r *PostgresHabitRepository) queryHabits(ctx context.Context, query string, args ...interface{}) ([]*domain.Habit, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	frequencyJSON, err := json.Marshal(h.Frequency)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            name=$1, icon=$2, frequency=$3, end_date=$4,
            updated_at=NOW()
        WHERE id=$5 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		h.Name, h.Icon, frequencyJSON, h.EndDate, h.ID,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) UpdateStats(ctx context.Context, id, userID string, stats domain.HabitStats) error {
	query := `
        UPDATE habits SET
            streak=$1, longest_streak=$2, total_completions=$3, last_completed=$4,
            updated_at=NOW()
        WHERE id=$5 AND user_id=$6 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query,
		stats.Streak, stats.LongestStreak, stats.TotalCompletions, stats.LastCompleted,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("stats update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

// DeleteCascade removes the habit and its trackers atomically. Either both
// statements land or neither does; a habit must never be left referencing
// half-deleted trackers.
func (r *PostgresHabitRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM trackers WHERE habit_id = $1`, id); err != nil {
		return fmt.Errorf("cascade delete trackers: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("cascade delete habit: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return tx.Commit()
}
