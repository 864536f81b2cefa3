package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("new error carries code and message", func(t *testing.T) {
		err := New(CodeConflict, "already registered")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
		assert.Equal(t, "already registered", err.Error())
	})

	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(cause, CodeInternal, "failed to persist")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to persist: disk full", err.Error())
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("code survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeValidation, "bad id"))
		assert.True(t, Is(err, CodeValidation))
	})

	t.Run("uncoded errors map to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}
