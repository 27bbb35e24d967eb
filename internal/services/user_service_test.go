package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskloft/taskloft-be/internal/apperr"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func newUserService() (*UserService, *store.Memory) {
	st := store.NewMemory()
	return NewUserService(st, zerolog.Nop()), st
}

func register(t *testing.T, svc *UserService, username, email, password string) models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, st := newUserService()

	user := register(t, svc, "alice", "a@x.com", "secret123")
	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.Empty(t, user.PasswordHash, "response must not carry the hash")

	stored, err := st.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserService()
	register(t, svc, "alice", "a@x.com", "secret123")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice2",
		Email:    "a@x.com",
		Password: "other",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))
	assert.Equal(t, "email", apperr.FieldOf(err))
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newUserService()
	register(t, svc, "alice", "a@x.com", "secret123")

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "b@x.com",
		Password: "other",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsConstraint(err))
	assert.Equal(t, "username", apperr.FieldOf(err))
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newUserService()

	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"short username", RegisterInput{Username: "ab", Email: "a@x.com", Password: "p"}},
		{"short email", RegisterInput{Username: "alice", Email: "a@x", Password: "p"}},
		{"empty password", RegisterInput{Username: "alice", Email: "a@x.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.in)
			assert.True(t, apperr.IsValidation(err), "got %v", err)
		})
	}
}

func TestAuthenticateUniformFailure(t *testing.T) {
	svc, _ := newUserService()
	register(t, svc, "alice", "a@x.com", "secret123")

	_, wrongPassword := svc.Authenticate(context.Background(), "a@x.com", "wrong")
	_, unknownEmail := svc.Authenticate(context.Background(), "nobody@x.com", "anything")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.True(t, apperr.IsAuth(wrongPassword))
	assert.True(t, apperr.IsAuth(unknownEmail))
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error(), "failure causes must be indistinguishable")
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, _ := newUserService()
	created := register(t, svc, "alice", "a@x.com", "secret123")

	user, err := svc.Authenticate(context.Background(), "a@x.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.PasswordHash)
}

func TestUpdatePartial(t *testing.T) {
	svc, _ := newUserService()
	user := register(t, svc, "alice", "a@x.com", "secret123")

	bio := "gardener"
	updated, err := svc.Update(context.Background(), user.ID, models.UserUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "gardener", updated.Bio)
	assert.Equal(t, "alice", updated.Username, "omitted fields stay unchanged")
	assert.Equal(t, "a@x.com", updated.Email)

	// An explicit zero value is applied, not skipped.
	empty := ""
	inactive := false
	updated, err = svc.Update(context.Background(), user.ID, models.UserUpdate{Bio: &empty, IsActive: &inactive})
	require.NoError(t, err)
	assert.Empty(t, updated.Bio)
	assert.False(t, updated.IsActive)
}

func TestUpdateRehashesPassword(t *testing.T) {
	svc, st := newUserService()
	user := register(t, svc, "alice", "a@x.com", "secret123")

	newPassword := "newsecret"
	_, err := svc.Update(context.Background(), user.ID, models.UserUpdate{Password: &newPassword})
	require.NoError(t, err)

	stored, err := st.GetUserByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "newsecret", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newsecret")))

	short := "abc"
	_, err = svc.Update(context.Background(), user.ID, models.UserUpdate{Password: &short})
	assert.True(t, apperr.IsValidation(err))
}

func TestUpdateMissingUser(t *testing.T) {
	svc, _ := newUserService()
	bio := "x"
	_, err := svc.Update(context.Background(), 42, models.UserUpdate{Bio: &bio})
	assert.True(t, apperr.IsNotFound(err))
}

func TestDeleteIdempotent(t *testing.T) {
	svc, _ := newUserService()
	user := register(t, svc, "alice", "a@x.com", "secret123")

	deleted, err := svc.Delete(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.Delete(context.Background(), user.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
