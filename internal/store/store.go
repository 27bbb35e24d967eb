// Package store is the single source of truth for persisted records. Both
// implementations enforce the same constraints: unique username and email,
// store-assigned immutable ids, and owner-scoped task access.
package store

import (
	"context"

	"github.com/taskloft/taskloft-be/internal/models"
)

// UserStore persists user accounts.
type UserStore interface {
	// InsertUser assigns an id and writes the record, enforcing the
	// username/email unique constraints atomically with the write.
	InsertUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	// UpdateUser rewrites the record identified by u.ID in place.
	UpdateUser(ctx context.Context, u *models.User) error
	// DeleteUser removes the user and all tasks they own. Returns false,
	// not an error, when the user is already absent.
	DeleteUser(ctx context.Context, id int64) (bool, error)
	CountUsers(ctx context.Context) (int64, error)
}

// TaskStore persists tasks. Every read and delete is scoped to an owner:
// a task owned by someone else behaves exactly like a missing task.
type TaskStore interface {
	InsertTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, ownerID, taskID int64) (models.Task, error)
	// ListTasksByOwner returns the owner's tasks in insertion order. No
	// tasks is an empty slice, never an error.
	ListTasksByOwner(ctx context.Context, ownerID int64) ([]models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, ownerID, taskID int64) (bool, error)
	CountTasksByStatus(ctx context.Context) (map[models.Status]int64, error)
}

// Store combines both record families behind one handle.
type Store interface {
	UserStore
	TaskStore
}
