package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches the code on a direct error", func(t *testing.T) {
		err := New(CodeNotFound, "event not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("register: %w", New(CodeConflict, "already registered"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("is false for uncoded errors", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrap(t *testing.T) {
	cause := errors.New("unique constraint violation")
	err := Wrap(cause, CodeConflict, "already registered")

	require.True(t, HasCode(err, CodeConflict))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "already registered")
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeCapacityExceeded, CodeOf(New(CodeCapacityExceeded, "event is full")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "event is full", MessageOf(New(CodeCapacityExceeded, "event is full")))
	// Uncoded errors must not leak internals to clients.
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: relation does not exist")))
}
