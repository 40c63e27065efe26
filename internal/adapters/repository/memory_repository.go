package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/habitpulse/habitpulse/internal/core/domain"
)

// In-memory implementations of the repository contracts. Used by tests and
// as a storage-free wiring for local experiments.

type InMemoryHabitRepository struct {
	store map[string]*domain.Habit

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
	}
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok || habit.DeletedAt != nil {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var habits []*domain.Habit
	for _, h := range r.store {
		if h.UserID == userID && h.DeletedAt == nil {
			clone := *h
			habits = append(habits, &clone)
		}
	}

	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})

	return habits, nil
}

func (r *InMemoryHabitRepository) ListByUserAndWeekday(ctx context.Context, userID string, day domain.Weekday) ([]*domain.Habit, error) {
	all, err := r.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var habits []*domain.Habit
	for _, h := range all {
		if h.IsDue(day) {
			habits = append(habits, h)
		}
	}
	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.store[habit.ID]
	if !ok || existing.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	clone := *habit
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) UpdateStats(ctx context.Context, id, userID string, stats domain.HabitStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil || h.UserID != userID {
		return domain.ErrHabitNotFound
	}

	h.ApplyStats(stats)
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.store[id]
	if !ok || h.DeletedAt != nil {
		return domain.ErrHabitNotFound
	}

	now := time.Now().UTC()
	h.DeletedAt = &now
	h.UpdatedAt = now
	return nil
}

func (r *InMemoryHabitRepository) DeleteCascade(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}

	delete(r.store, id)
	return nil
}

type InMemoryTrackerRepository struct {
	store map[string]*domain.Tracker

	mu sync.RWMutex
}

func NewInMemoryTrackerRepository() *InMemoryTrackerRepository {
	return &InMemoryTrackerRepository{
		store: make(map[string]*domain.Tracker),
	}
}

func (r *InMemoryTrackerRepository) Create(ctx context.Context, tracker *domain.Tracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tracker.ID == "" {
		tracker.ID = uuid.NewString()
	}
	clone := *tracker
	r.store[tracker.ID] = &clone
	return nil
}

func (r *InMemoryTrackerRepository) GetByID(ctx context.Context, id string) (*domain.Tracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.store[id]
	if !ok || t.DeletedAt != nil {
		return nil, domain.ErrTrackerNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *InMemoryTrackerRepository) ListByHabitInRange(ctx context.Context, habitID string, from, to time.Time) ([]*domain.Tracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trackers []*domain.Tracker
	for _, t := range r.store {
		if t.HabitID == habitID && t.DeletedAt == nil && inRange(t.Timestamp, from, to) {
			clone := *t
			trackers = append(trackers, &clone)
		}
	}
	sortByTimestampDesc(trackers)
	return trackers, nil
}

func (r *InMemoryTrackerRepository) ListActiveByHabit(ctx context.Context, habitID, userID string) ([]*domain.Tracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trackers []*domain.Tracker
	for _, t := range r.store {
		if t.HabitID == habitID && t.UserID == userID && t.DeletedAt == nil {
			clone := *t
			trackers = append(trackers, &clone)
		}
	}
	sortByTimestampDesc(trackers)
	return trackers, nil
}

func (r *InMemoryTrackerRepository) ListByUserInRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.Tracker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var trackers []*domain.Tracker
	for _, t := range r.store {
		if t.UserID == userID && t.DeletedAt == nil && inRange(t.Timestamp, from, to) {
			clone := *t
			trackers = append(trackers, &clone)
		}
	}
	sortByTimestampDesc(trackers)
	return trackers, nil
}

func (r *InMemoryTrackerRepository) SoftDeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	var affected int64
	for _, id := range ids {
		t, ok := r.store[id]
		if !ok || t.DeletedAt != nil {
			continue
		}
		t.DeletedAt = &now
		t.UpdatedAt = now
		affected++
	}
	return affected, nil
}

func inRange(ts, from, to time.Time) bool {
	return !ts.Before(from) && !ts.After(to)
}

func sortByTimestampDesc(trackers []*domain.Tracker) {
	sort.Slice(trackers, func(i, j int) bool {
		return trackers[i].Timestamp.After(trackers[j].Timestamp)
	})
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.Email == user.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) ResolveExternalID(ctx context.Context, externalID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return u.ID, nil
		}
	}

	now := time.Now().UTC()
	ext := externalID
	user := &domain.User{
		ID:         uuid.NewString(),
		Email:      externalID + "@external.invalid",
		ExternalID: &ext,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.store[user.ID] = user
	return user.ID, nil
}
