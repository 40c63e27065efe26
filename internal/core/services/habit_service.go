package services

import (
	"context"
	"time"

	"github.com/habitpulse/habitpulse/internal/core/domain"
)

type HabitService struct {
	repo domain.HabitRepository
}

func NewHabitService(repo domain.HabitRepository) *HabitService {
	return &HabitService{
		repo: repo,
	}
}

type CreateHabitInput struct {
	UserID    string
	Name      string
	Icon      string
	Frequency []string
	StartDate time.Time
	EndDate   *time.Time
}

type UpdateHabitInput struct {
	ID        string
	UserID    string
	Name      string
	Icon      string
	Frequency []string
	EndDate   *time.Time
}

func (s *HabitService) Create(ctx context.Context, input CreateHabitInput) (*domain.Habit, error) {
	start := input.StartDate
	if start.IsZero() {
		start = time.Now().UTC()
	}

	habit, err := domain.NewHabit(input.UserID, input.Name, input.Icon, input.Frequency, start, input.EndDate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

func (s *HabitService) GetByID(ctx context.Context, id, userID string) (*domain.Habit, error) {
	habit, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Missing and foreign-owned habits are indistinguishable to the caller.
	if habit.UserID != userID {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

func (s *HabitService) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *HabitService) Update(ctx context.Context, input UpdateHabitInput) (*domain.Habit, error) {
	habit, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	name := input.Name
	if name == "" {
		name = habit.Name
	}
	icon := input.Icon
	if icon == "" {
		icon = habit.Icon
	}
	frequency := input.Frequency
	if frequency == nil {
		frequency = make([]string, 0, len(habit.Frequency))
		for _, w := range habit.Frequency {
			frequency = append(frequency, string(w))
		}
	}
	endDate := input.EndDate
	if endDate == nil {
		endDate = habit.EndDate
	}

	if err := habit.Update(name, icon, frequency, endDate); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, habit); err != nil {
		return nil, err
	}

	return habit, nil
}

// Delete soft-deletes the habit; its trackers stay for historical integrity.
func (s *HabitService) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}

// DeleteCascade hard-deletes the habit together with its trackers in one
// transaction.
func (s *HabitService) DeleteCascade(ctx context.Context, id, userID string) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	return s.repo.DeleteCascade(ctx, id)
}
