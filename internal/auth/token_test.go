package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/store"
)

func seedGateUser(t *testing.T, st *store.Memory, active bool) models.User {
	t.Helper()
	u := models.User{Username: "alice", Email: "a@x.com", PasswordHash: "x", IsActive: active}
	require.NoError(t, st.InsertUser(context.Background(), &u))
	return u
}

func TestIdentityStrategyRoundTrip(t *testing.T) {
	st := store.NewMemory()
	user := seedGateUser(t, st, true)
	strategy := NewIdentityStrategy(st)

	token, err := strategy.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, "1", token, "identity tokens are the raw user id")

	resolved, err := strategy.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Empty(t, resolved.PasswordHash)
}

func TestIdentityStrategyFailuresCollapse(t *testing.T) {
	st := store.NewMemory()
	seedGateUser(t, st, true)
	strategy := NewIdentityStrategy(st)

	_, malformed := strategy.Resolve(context.Background(), "not-a-number")
	_, unknown := strategy.Resolve(context.Background(), "9999")

	require.Error(t, malformed)
	require.Error(t, unknown)
	assert.Equal(t, malformed, unknown, "malformed and unresolvable tokens yield the same failure")
}

func TestIdentityStrategyInactiveUser(t *testing.T) {
	st := store.NewMemory()
	user := seedGateUser(t, st, false)
	strategy := NewIdentityStrategy(st)

	token, err := strategy.Issue(user)
	require.NoError(t, err)

	_, err = strategy.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignedStrategyRoundTrip(t *testing.T) {
	st := store.NewMemory()
	user := seedGateUser(t, st, true)
	strategy := NewSignedStrategy(st, []byte("test-secret"), time.Hour)

	token, err := strategy.Issue(user)
	require.NoError(t, err)
	assert.NotEqual(t, "1", token)

	resolved, err := strategy.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)
	assert.Equal(t, "alice", resolved.Username)
}

func TestSignedStrategyExpiredToken(t *testing.T) {
	st := store.NewMemory()
	user := seedGateUser(t, st, true)
	strategy := NewSignedStrategy(st, []byte("test-secret"), -time.Minute)

	token, err := strategy.Issue(user)
	require.NoError(t, err)

	_, err = strategy.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignedStrategyWrongSecret(t *testing.T) {
	st := store.NewMemory()
	user := seedGateUser(t, st, true)

	issuer := NewSignedStrategy(st, []byte("secret-a"), time.Hour)
	verifier := NewSignedStrategy(st, []byte("secret-b"), time.Hour)

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	_, err = verifier.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignedStrategyRejectsIdentityToken(t *testing.T) {
	st := store.NewMemory()
	seedGateUser(t, st, true)
	strategy := NewSignedStrategy(st, []byte("test-secret"), time.Hour)

	_, err := strategy.Resolve(context.Background(), "1")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
