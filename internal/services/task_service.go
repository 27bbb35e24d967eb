package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taskloft/taskloft-be/internal/apperr"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/store"
)

// Task lifecycle event names published to the event feed.
const (
	EventTaskCreated = "task.created"
	EventTaskUpdated = "task.updated"
	EventTaskDeleted = "task.deleted"
)

// TaskPublisher receives task lifecycle notifications after successful
// writes. Implementations must not block the caller.
type TaskPublisher interface {
	PublishTaskEvent(ownerID int64, event string, task models.Task)
}

// TaskCreateInput carries a task creation request. A nil Status defaults to
// pending.
type TaskCreateInput struct {
	Title       string
	Description string
	Status      *models.Status
}

// TaskServiceProvider defines the interface for task services. Every
// operation is scoped to the owner resolved by the access gate.
type TaskServiceProvider interface {
	Create(ctx context.Context, ownerID int64, in TaskCreateInput) (models.Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Task, error)
	GetByID(ctx context.Context, ownerID, taskID int64) (models.Task, error)
	Update(ctx context.Context, ownerID, taskID int64, upd models.TaskUpdate) (models.Task, error)
	Delete(ctx context.Context, ownerID, taskID int64) (bool, error)
}

// TaskService provides business logic for the task lifecycle. It holds no
// state between calls; the store is the single source of truth.
type TaskService struct {
	store  store.TaskStore
	events TaskPublisher
	log    zerolog.Logger
}

// NewTaskService creates a new TaskService. events may be nil when no feed
// is attached (CLI variant, tests).
func NewTaskService(st store.TaskStore, events TaskPublisher, log zerolog.Logger) *TaskService {
	return &TaskService{store: st, events: events, log: log}
}

// Create validates and stores a new task attached to the acting owner.
func (s *TaskService) Create(ctx context.Context, ownerID int64, in TaskCreateInput) (models.Task, error) {
	if err := validateTitle(in.Title); err != nil {
		return models.Task{}, err
	}
	if len(in.Description) > models.DescriptionMaxLen {
		return models.Task{}, apperr.Validation("description must be at most %d characters", models.DescriptionMaxLen)
	}

	status := models.StatusPending
	if in.Status != nil {
		if !in.Status.Valid() {
			return models.Task{}, apperr.Validation("status must be %q or %q", models.StatusPending, models.StatusCompleted)
		}
		status = *in.Status
	}

	task := models.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		UserID:      ownerID,
	}
	if err := s.store.InsertTask(ctx, &task); err != nil {
		return models.Task{}, err
	}

	s.log.Info().Int64("task_id", task.ID).Int64("user_id", ownerID).Msg("Task created")
	s.publish(ownerID, EventTaskCreated, task)
	return task, nil
}

// ListByOwner returns the owner's tasks in creation order.
func (s *TaskService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	return s.store.ListTasksByOwner(ctx, ownerID)
}

// GetByID returns the owner's task. A task owned by someone else is
// indistinguishable from a missing one.
func (s *TaskService) GetByID(ctx context.Context, ownerID, taskID int64) (models.Task, error) {
	return s.store.GetTask(ctx, ownerID, taskID)
}

// Update applies a partial update to the owner's task. Nil fields keep
// their prior values; non-nil fields are applied even when they carry the
// zero value, so clearing a description or reverting status to pending is
// honored.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID int64, upd models.TaskUpdate) (models.Task, error) {
	task, err := s.store.GetTask(ctx, ownerID, taskID)
	if err != nil {
		return models.Task{}, err
	}

	if upd.Title != nil {
		if err := validateTitle(*upd.Title); err != nil {
			return models.Task{}, err
		}
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		if len(*upd.Description) > models.DescriptionMaxLen {
			return models.Task{}, apperr.Validation("description must be at most %d characters", models.DescriptionMaxLen)
		}
		task.Description = *upd.Description
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return models.Task{}, apperr.Validation("status must be %q or %q", models.StatusPending, models.StatusCompleted)
		}
		task.Status = *upd.Status
	}

	if err := s.store.UpdateTask(ctx, &task); err != nil {
		return models.Task{}, err
	}

	s.log.Info().Int64("task_id", taskID).Int64("user_id", ownerID).Str("status", string(task.Status)).Msg("Task updated")
	s.publish(ownerID, EventTaskUpdated, task)
	return task, nil
}

// Delete removes the owner's task, reporting false when it is absent or
// owned by someone else.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID int64) (bool, error) {
	task, err := s.store.GetTask(ctx, ownerID, taskID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	deleted, err := s.store.DeleteTask(ctx, ownerID, taskID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info().Int64("task_id", taskID).Int64("user_id", ownerID).Msg("Task deleted")
		s.publish(ownerID, EventTaskDeleted, task)
	}
	return deleted, nil
}

func (s *TaskService) publish(ownerID int64, event string, task models.Task) {
	if s.events != nil {
		s.events.PublishTaskEvent(ownerID, event, task)
	}
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.Validation("title must not be empty")
	}
	if len(title) > models.TitleMaxLen {
		return apperr.Validation("title must be at most %d characters", models.TitleMaxLen)
	}
	return nil
}
