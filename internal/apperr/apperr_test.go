package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("task %d not found", 7)))
	assert.True(t, IsConstraint(Constraint("email", "email already registered")))
	assert.True(t, IsValidation(Validation("title must not be empty")))
	assert.True(t, IsAuth(Auth("invalid credentials")))
	assert.True(t, IsStorage(Storage(errors.New("disk on fire"))))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("registering user: %w", Constraint("email", "email already registered"))
	assert.True(t, IsConstraint(err))
	assert.Equal(t, "email", FieldOf(err))
}

func TestStorageWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Storage(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestUnclassifiedError(t *testing.T) {
	err := errors.New("plain")
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.False(t, IsNotFound(err))
	assert.Empty(t, FieldOf(err))
}
