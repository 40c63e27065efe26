package domain

import "time"

// ProgressDay is one point of a user's completion-rate history. Days with
// zero scheduled habits are never emitted.
type ProgressDay struct {
	Date           string `json:"date"`
	CompletionRate int    `json:"completion_rate"`
}

// StreakResult always satisfies Streak <= LongestStreak.
type StreakResult struct {
	Streak        int `json:"streak"`
	LongestStreak int `json:"longest_streak"`
}

type ProgressOverview struct {
	History       []ProgressDay `json:"history"`
	CurrentStreak int           `json:"current_streak"`
	LongestStreak int           `json:"longest_streak"`
}

// HabitStats is the persisted per-habit statistics cache.
type HabitStats struct {
	Streak           int        `json:"streak"`
	LongestStreak    int        `json:"longest_streak"`
	TotalCompletions int        `json:"total_completions"`
	LastCompleted    *time.Time `json:"last_completed,omitempty"`
}
