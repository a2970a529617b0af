package models

import "time"

// TaskStatus represents the state of one user's work on one task.
type TaskStatus string

const (
	// TaskNotStarted is implied by the absence of a progress record.
	TaskNotStarted TaskStatus = "not_started"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskVerified   TaskStatus = "verified"
	// TaskFailed is reserved; no transition produces it yet.
	TaskFailed TaskStatus = "failed"
)

// TaskProgress is the mutable per-(user, task) record. Created lazily on
// the first start, persisted on every transition, never deleted during
// normal operation.
type TaskProgress struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TaskID      string     `json:"task_id"`
	Status      TaskStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	XPEarned    int        `json:"xp_earned"`
}

// UserState holds the per-user progression counters. Level is never
// stored: it is always derived from XP at read time.
type UserState struct {
	UserID     string    `json:"user_id"`
	XP         int       `json:"xp"`
	CurrentDay int       `json:"current_day"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewUserState returns the state of a user who has done nothing yet.
func NewUserState(userID string) *UserState {
	return &UserState{
		UserID:     userID,
		XP:         0,
		CurrentDay: 1,
	}
}
