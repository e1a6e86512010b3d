package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := NotFound("Blog post not found")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyExists)

	wrapped := fmt.Errorf("outer: %w", ErrInvalidCode)
	assert.ErrorIs(t, wrapped, ErrInvalidCode)
}

func TestInfra_KeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Infra("issue challenge", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindInfrastructure, KindOf(err))
	assert.NotContains(t, err.Message, "refused")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindChallenge, KindOf(ErrTooManyAttempts))
	assert.Equal(t, KindValidation, KindOf(Validation("Email is required")))
	assert.Equal(t, KindInfrastructure, KindOf(errors.New("plain")))
}
