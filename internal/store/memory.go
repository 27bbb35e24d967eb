package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taskloft/taskloft-be/internal/apperr"
	"github.com/taskloft/taskloft-be/internal/models"
)

// Memory implements Store with mutex-guarded maps. It backs the
// single-session CLI and the unit tests. Uniqueness checks happen under the
// same lock as the insert, so concurrent registrations with the same email
// resolve to exactly one winner, matching the SQLite behavior.
type Memory struct {
	mu         sync.Mutex
	users      map[int64]models.User
	tasks      map[int64]models.Task
	nextUserID int64
	nextTaskID int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:      make(map[int64]models.User),
		tasks:      make(map[int64]models.Task),
		nextUserID: 1,
		nextTaskID: 1,
	}
}

func (m *Memory) InsertUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return apperr.Constraint("username", "username already taken")
		}
		if existing.Email == u.Email {
			return apperr.Constraint("email", "email already registered")
		}
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	u.ID = m.nextUserID
	m.nextUserID++
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, apperr.NotFound("user %d not found", id)
	}
	return u, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, apperr.NotFound("user with email %s not found", email)
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, apperr.NotFound("user with username %s not found", username)
}

func (m *Memory) UpdateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[u.ID]
	if !ok {
		return apperr.NotFound("user %d not found", u.ID)
	}
	for _, other := range m.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username {
			return apperr.Constraint("username", "username already taken")
		}
		if other.Email == u.Email {
			return apperr.Constraint("email", "email already registered")
		}
	}

	// Identity and creation time are immutable.
	u.CreatedAt = existing.CreatedAt
	m.users[u.ID] = *u
	return nil
}

func (m *Memory) DeleteUser(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	for taskID, t := range m.tasks {
		if t.UserID == id {
			delete(m.tasks, taskID)
		}
	}
	return true, nil
}

func (m *Memory) CountUsers(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.users)), nil
}

func (m *Memory) InsertTask(ctx context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[t.UserID]; !ok {
		return apperr.NotFound("user %d not found", t.UserID)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.ID = m.nextTaskID
	m.nextTaskID++
	m.tasks[t.ID] = *t
	return nil
}

func (m *Memory) GetTask(ctx context.Context, ownerID, taskID int64) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return models.Task{}, apperr.NotFound("task %d not found", taskID)
	}
	return t, nil
}

func (m *Memory) ListTasksByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tasks := []models.Task{}
	for _, t := range m.tasks {
		if t.UserID == ownerID {
			tasks = append(tasks, t)
		}
	}
	// Ids are monotonic, so id order is insertion order.
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (m *Memory) UpdateTask(ctx context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[t.ID]
	if !ok || existing.UserID != t.UserID {
		return apperr.NotFound("task %d not found", t.ID)
	}
	t.CreatedAt = existing.CreatedAt
	m.tasks[t.ID] = *t
	return nil
}

func (m *Memory) DeleteTask(ctx context.Context, ownerID, taskID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(m.tasks, taskID)
	return true, nil
}

func (m *Memory) CountTasksByStatus(ctx context.Context) (map[models.Status]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[models.Status]int64{
		models.StatusPending:   0,
		models.StatusCompleted: 0,
	}
	for _, t := range m.tasks {
		counts[t.Status]++
	}
	return counts, nil
}
