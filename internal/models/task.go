package models

import "time"

// Status is the lifecycle state of a task. Transitions are free in both
// directions and happen only through explicit updates.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the enumerated states.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Bounds for task fields.
const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 1000
)

// Task represents a single todo item owned by exactly one user.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	UserID      int64     `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TaskUpdate is a partial update of a task. Nil fields are left unchanged;
// non-nil fields are always applied, so setting status back to "pending" or
// clearing a description is honored rather than skipped as falsy.
type TaskUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *Status `json:"status"`
}
