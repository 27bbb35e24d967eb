package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/taskloft/taskloft-be/internal/apperr"
	"github.com/taskloft/taskloft-be/internal/models"
)

// SQLite implements Store on top of a database/sql handle. Uniqueness is
// enforced by the schema's UNIQUE indexes, so racing writers are serialized
// by the database and never produce duplicate usernames or emails.
type SQLite struct {
	db *sql.DB
}

// NewSQLite wraps an opened and migrated database handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

const userColumns = "id, username, email, password_hash, full_name, bio, avatar_url, is_active, created_at"

// InsertUser writes a new user and assigns its id.
func (s *SQLite) InsertUser(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO users (username, email, password_hash, full_name, bio, avatar_url, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperr.Storage(err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, u.Username, u.Email, u.PasswordHash, u.FullName, u.Bio, u.AvatarURL, u.IsActive, u.CreatedAt)
	if err != nil {
		return classifyWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Storage(err)
	}
	u.ID = id
	return nil
}

// GetUserByID retrieves a single user by their ID.
func (s *SQLite) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row, "user %d not found", id)
}

// GetUserByEmail retrieves a single user by their email, including the password hash.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row, "user with email %s not found", email)
}

// GetUserByUsername retrieves a single user by their username.
func (s *SQLite) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	return scanUser(row, "user with username %s not found", username)
}

// UpdateUser rewrites every mutable column of the identified user.
func (s *SQLite) UpdateUser(ctx context.Context, u *models.User) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET username = ?, email = ?, password_hash = ?, full_name = ?, bio = ?, avatar_url = ?, is_active = ?
		WHERE id = ?`,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.Bio, u.AvatarURL, u.IsActive, u.ID)
	if err != nil {
		return classifyWriteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage(err)
	}
	if n == 0 {
		return apperr.NotFound("user %d not found", u.ID)
	}
	return nil
}

// DeleteUser removes a user; owned tasks go with it via ON DELETE CASCADE.
func (s *SQLite) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return false, apperr.Storage(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage(err)
	}
	return n > 0, nil
}

// CountUsers returns the total number of user records.
func (s *SQLite) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, apperr.Storage(err)
	}
	return n, nil
}

const taskColumns = "id, title, description, status, user_id, created_at"

// InsertTask writes a new task and assigns its id.
func (s *SQLite) InsertTask(ctx context.Context, t *models.Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO tasks (title, description, status, user_id, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return apperr.Storage(err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, t.Title, t.Description, t.Status, t.UserID, t.CreatedAt)
	if err != nil {
		return classifyWriteErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperr.Storage(err)
	}
	t.ID = id
	return nil
}

// GetTask retrieves a task by id, scoped to its owner.
func (s *SQLite) GetTask(ctx context.Context, ownerID, taskID int64) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ? AND user_id = ?", taskID, ownerID)
	var t models.Task
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Task{}, apperr.NotFound("task %d not found", taskID)
		}
		return models.Task{}, apperr.Storage(err)
	}
	return t, nil
}

// ListTasksByOwner returns the owner's tasks in insertion order.
func (s *SQLite) ListTasksByOwner(ctx context.Context, ownerID int64) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt); err != nil {
			return nil, apperr.Storage(err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return tasks, nil
}

// UpdateTask rewrites the mutable columns of the identified task, scoped to
// its owner so a foreign task reports NotFound like a missing one.
func (s *SQLite) UpdateTask(ctx context.Context, t *models.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, status = ?
		WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, t.Status, t.ID, t.UserID)
	if err != nil {
		return classifyWriteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage(err)
	}
	if n == 0 {
		return apperr.NotFound("task %d not found", t.ID)
	}
	return nil
}

// DeleteTask removes an owner's task, reporting false when nothing matched.
func (s *SQLite) DeleteTask(ctx context.Context, ownerID, taskID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ? AND user_id = ?", taskID, ownerID)
	if err != nil {
		return false, apperr.Storage(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperr.Storage(err)
	}
	return n > 0, nil
}

// CountTasksByStatus returns task totals grouped by lifecycle state.
func (s *SQLite) CountTasksByStatus(ctx context.Context) (map[models.Status]int64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM tasks GROUP BY status")
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()

	counts := map[models.Status]int64{
		models.StatusPending:   0,
		models.StatusCompleted: 0,
	}
	for rows.Next() {
		var status models.Status
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperr.Storage(err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return counts, nil
}

func scanUser(row *sql.Row, notFoundFormat string, arg any) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Bio, &u.AvatarURL, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, apperr.NotFound(notFoundFormat, arg)
		}
		return models.User{}, apperr.Storage(err)
	}
	return u, nil
}

// classifyWriteErr maps SQLite unique-constraint failures to constraint
// errors naming the colliding column; everything else is a storage failure.
func classifyWriteErr(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		switch {
		case strings.Contains(msg, "users.username"):
			return apperr.Constraint("username", "username already taken")
		case strings.Contains(msg, "users.email"):
			return apperr.Constraint("email", "email already registered")
		}
		return apperr.Constraint("", "unique constraint violated")
	}
	return apperr.Storage(err)
}
