package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskloft/taskloft-be/internal/apperr"
	"github.com/taskloft/taskloft-be/internal/database"
	"github.com/taskloft/taskloft-be/internal/models"
)

func newSQLiteStore(t *testing.T) *SQLite {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewSQLite(db)
}

func sqliteUser(t *testing.T, s *SQLite, username, email string) models.User {
	t.Helper()
	u := models.User{Username: username, Email: email, PasswordHash: "x", IsActive: true}
	require.NoError(t, s.InsertUser(context.Background(), &u))
	return u
}

func TestSQLiteInsertUserAssignsID(t *testing.T) {
	s := newSQLiteStore(t)
	u := sqliteUser(t, s, "alice", "a@x.com")
	require.NotZero(t, u.ID)

	got, err := s.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "a@x.com", got.Email)
	assert.True(t, got.IsActive)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.GetUserByID(context.Background(), 9999)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSQLiteUniqueConstraintsNameField(t *testing.T) {
	s := newSQLiteStore(t)
	sqliteUser(t, s, "alice", "a@x.com")

	err := s.InsertUser(context.Background(), &models.User{Username: "alice2", Email: "a@x.com", PasswordHash: "x"})
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))
	assert.Equal(t, "email", apperr.FieldOf(err))

	err = s.InsertUser(context.Background(), &models.User{Username: "alice", Email: "b@x.com", PasswordHash: "x"})
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))
	assert.Equal(t, "username", apperr.FieldOf(err))
}

func TestSQLiteUpdateUserCollision(t *testing.T) {
	s := newSQLiteStore(t)
	sqliteUser(t, s, "alice", "a@x.com")
	bob := sqliteUser(t, s, "bob", "b@x.com")

	bob.Email = "a@x.com"
	err := s.UpdateUser(context.Background(), &bob)
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))
	assert.Equal(t, "email", apperr.FieldOf(err))
}

func TestSQLiteTaskLifecycle(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	alice := sqliteUser(t, s, "alice", "a@x.com")
	bob := sqliteUser(t, s, "bob", "b@x.com")

	task := models.Task{Title: "Buy milk", Description: "2 liters", Status: models.StatusPending, UserID: alice.ID}
	require.NoError(t, s.InsertTask(ctx, &task))
	require.NotZero(t, task.ID)

	got, err := s.GetTask(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.Equal(t, "2 liters", got.Description)
	assert.Equal(t, models.StatusPending, got.Status)

	// Foreign owner sees nothing.
	_, err = s.GetTask(ctx, bob.ID, task.ID)
	assert.True(t, apperr.IsNotFound(err))

	got.Status = models.StatusCompleted
	require.NoError(t, s.UpdateTask(ctx, &got))
	got, err = s.GetTask(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	// Owner-scoped update of a foreign task reports NotFound.
	foreign := got
	foreign.UserID = bob.ID
	assert.True(t, apperr.IsNotFound(s.UpdateTask(ctx, &foreign)))

	deleted, err := s.DeleteTask(ctx, bob.ID, task.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.DeleteTask(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteTask(ctx, alice.ID, task.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSQLiteListTasksInsertionOrder(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	alice := sqliteUser(t, s, "alice", "a@x.com")

	for _, title := range []string{"first", "second", "third"} {
		task := models.Task{Title: title, Status: models.StatusPending, UserID: alice.ID}
		require.NoError(t, s.InsertTask(ctx, &task))
	}

	tasks, err := s.ListTasksByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "third", tasks[2].Title)

	empty, err := s.ListTasksByOwner(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteDeleteUserCascades(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	alice := sqliteUser(t, s, "alice", "a@x.com")

	task := models.Task{Title: "Buy milk", Status: models.StatusPending, UserID: alice.ID}
	require.NoError(t, s.InsertTask(ctx, &task))

	deleted, err := s.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = s.GetTask(ctx, alice.ID, task.ID)
	assert.True(t, apperr.IsNotFound(err))
}

func TestSQLiteCounts(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	alice := sqliteUser(t, s, "alice", "a@x.com")

	for _, status := range []models.Status{models.StatusPending, models.StatusCompleted, models.StatusCompleted} {
		task := models.Task{Title: "t", Status: status, UserID: alice.ID}
		require.NoError(t, s.InsertTask(ctx, &task))
	}

	users, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), users)

	counts, err := s.CountTasksByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.StatusPending])
	assert.Equal(t, int64(2), counts[models.StatusCompleted])
}
