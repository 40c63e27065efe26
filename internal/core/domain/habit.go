package domain

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitNotFound      = errors.New("habit not found")
	ErrHabitNameEmpty     = errors.New("habit name cannot be empty")
	ErrHabitNameTooLong   = errors.New("habit name is too long (max 100 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrFrequencyEmpty     = errors.New("frequency must contain at least one weekday")
	ErrInvalidWeekday     = errors.New("invalid weekday token (must be Mon..Sun)")
	ErrInvalidDateRange   = errors.New("end date cannot be before start date")
)

const MaxNameLen = 100

// Weekday is a short weekday token as stored in a habit's frequency set.
type Weekday string

const (
	Mon Weekday = "Mon"
	Tue Weekday = "Tue"
	Wed Weekday = "Wed"
	Thu Weekday = "Thu"
	Fri Weekday = "Fri"
	Sat Weekday = "Sat"
	Sun Weekday = "Sun"
)

var weekdayOrder = map[Weekday]int{
	Mon: 0, Tue: 1, Wed: 2, Thu: 3, Fri: 4, Sat: 5, Sun: 6,
}

// ParseWeekday accepts "Mon", "monday", "TUE" and similar variants.
func ParseWeekday(token string) (Weekday, error) {
	t := strings.TrimSpace(token)
	if len(t) < 3 {
		return "", ErrInvalidWeekday
	}
	prefix := strings.ToLower(t[:3])
	for w := range weekdayOrder {
		if strings.ToLower(string(w)) == prefix {
			return w, nil
		}
	}
	return "", ErrInvalidWeekday
}

// WeekdayOf renders the weekday token of t as observed in t's location.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(t.Weekday().String()[:3])
}

// NormalizeFrequency collapses the historical frequency representations
// (string slice or legacy comma-joined string inside a single element) into
// a canonical deduplicated set ordered Mon..Sun. Streak and schedule logic
// only ever see the canonical form.
func NormalizeFrequency(tokens []string) ([]Weekday, error) {
	var flat []string
	for _, tok := range tokens {
		for _, part := range strings.Split(tok, ",") {
			if strings.TrimSpace(part) != "" {
				flat = append(flat, part)
			}
		}
	}
	if len(flat) == 0 {
		return nil, ErrFrequencyEmpty
	}

	seen := make(map[Weekday]bool)
	var days []Weekday
	for _, tok := range flat {
		w, err := ParseWeekday(tok)
		if err != nil {
			return nil, err
		}
		if !seen[w] {
			seen[w] = true
			days = append(days, w)
		}
	}

	sort.Slice(days, func(i, j int) bool {
		return weekdayOrder[days[i]] < weekdayOrder[days[j]]
	})
	return days, nil
}

// DateOnly strips the time component, keeping the calendar day as a UTC
// midnight instant. Calendar days are always compared through their
// YYYY-MM-DD rendering, so the fixed UTC anchor is safe.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type Habit struct {
	ID        string     `json:"id" db:"id"`
	UserID    string     `json:"user_id" db:"user_id"`
	Name      string     `json:"name" db:"name"`
	Icon      string     `json:"icon,omitempty" db:"icon"`
	Frequency []Weekday  `json:"frequency"`
	StartDate time.Time  `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date,omitempty" db:"end_date"`

	// Cached statistics, recomputed on every tracker mutation.
	Streak           int        `json:"streak" db:"streak"`
	LongestStreak    int        `json:"longest_streak" db:"longest_streak"`
	TotalCompletions int        `json:"total_completions" db:"total_completions"`
	LastCompleted    *time.Time `json:"last_completed,omitempty" db:"last_completed"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func validateHabit(name string, frequency []string, startDate time.Time, endDate *time.Time) (string, []Weekday, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", nil, ErrHabitNameEmpty
	}
	if len(trimmed) > MaxNameLen {
		return "", nil, ErrHabitNameTooLong
	}

	days, err := NormalizeFrequency(frequency)
	if err != nil {
		return "", nil, err
	}

	if endDate != nil && DateOnly(*endDate).Before(DateOnly(startDate)) {
		return "", nil, ErrInvalidDateRange
	}

	return trimmed, days, nil
}

func NewHabit(userID, name, icon string, frequency []string, startDate time.Time, endDate *time.Time) (*Habit, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrHabitInvalidUserID
	}

	cleanName, days, err := validateHabit(name, frequency, startDate, endDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	var endPtr *time.Time
	if endDate != nil {
		e := DateOnly(*endDate)
		endPtr = &e
	}

	return &Habit{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      cleanName,
		Icon:      icon,
		Frequency: days,
		StartDate: DateOnly(startDate),
		EndDate:   endPtr,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (h *Habit) Update(name, icon string, frequency []string, endDate *time.Time) error {
	cleanName, days, err := validateHabit(name, frequency, h.StartDate, endDate)
	if err != nil {
		return err
	}

	var endPtr *time.Time
	if endDate != nil {
		e := DateOnly(*endDate)
		endPtr = &e
	}

	h.Name = cleanName
	h.Icon = icon
	h.Frequency = days
	h.EndDate = endPtr
	h.UpdatedAt = time.Now().UTC()

	return nil
}

// IsDue reports whether the weekday belongs to the habit's frequency set.
// The active-window check lives in the schedule package.
func (h *Habit) IsDue(day Weekday) bool {
	for _, w := range h.Frequency {
		if w == day {
			return true
		}
	}
	return false
}

// ApplyStats installs freshly computed statistics, enforcing the
// streak <= longestStreak invariant.
func (h *Habit) ApplyStats(stats HabitStats) {
	if stats.LongestStreak < stats.Streak {
		stats.LongestStreak = stats.Streak
	}
	h.Streak = stats.Streak
	h.LongestStreak = stats.LongestStreak
	h.TotalCompletions = stats.TotalCompletions
	h.LastCompleted = stats.LastCompleted
	h.UpdatedAt = time.Now().UTC()
}
