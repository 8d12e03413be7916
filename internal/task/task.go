// Package task holds the task-manager domain model and its SQLite-backed
// store.
package task

import "time"

// Task is one tracked item. CompletedAt is zero while the task is open.
// Seconds accumulates time booked against the task by the timer.
type Task struct {
	ID          string
	Title       string
	Project     string
	Done        bool
	CreatedAt   time.Time
	CompletedAt time.Time
	Seconds     int64
}

// Elapsed returns the accumulated timer duration.
func (t Task) Elapsed() time.Duration {
	return time.Duration(t.Seconds) * time.Second
}

// Project groups tasks and carries aggregate counts for list chrome.
type Project struct {
	Name string
	Open int
	Done int
}
