package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/taskloft/taskloft-be/internal/auth"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/services"
)

// TaskHandler handles HTTP requests for the task lifecycle. Every route is
// behind the auth middleware, so the owner is always on the context.
type TaskHandler struct {
	service services.TaskServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider) *TaskHandler {
	return &TaskHandler{service: service}
}

// TaskCreatePayload defines the structure for task creation requests.
type TaskCreatePayload struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      *models.Status `json:"status"`
}

// Create handles creating a task for the authenticated owner.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload TaskCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.service.Create(r.Context(), owner.ID, services.TaskCreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
	})
	if err != nil {
		log.Warn().Err(err).Int64("user_id", owner.ID).Msg("Failed to create task")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// List returns the authenticated owner's tasks in creation order.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	tasks, err := h.service.ListByOwner(r.Context(), owner.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", owner.ID).Msg("Failed to list tasks")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get returns one of the owner's tasks. Foreign tasks are 404, never 403.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, taskID, ok := h.taskRequest(w, r)
	if !ok {
		return
	}

	task, err := h.service.GetByID(r.Context(), owner.ID, taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update applies a partial update to one of the owner's tasks.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, taskID, ok := h.taskRequest(w, r)
	if !ok {
		return
	}

	var payload models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	task, err := h.service.Update(r.Context(), owner.ID, taskID, payload)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", owner.ID).Int64("task_id", taskID).Msg("Failed to update task")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete removes one of the owner's tasks.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, taskID, ok := h.taskRequest(w, r)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(r.Context(), owner.ID, taskID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", owner.ID).Int64("task_id", taskID).Msg("Failed to delete task")
		writeError(w, err)
		return
	}
	if !deleted {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// taskRequest extracts the authenticated owner and the {id} route param.
func (h *TaskHandler) taskRequest(w http.ResponseWriter, r *http.Request) (models.User, int64, bool) {
	owner, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return models.User{}, 0, false
	}
	taskID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusNotFound)
		return models.User{}, 0, false
	}
	return owner, taskID, true
}
