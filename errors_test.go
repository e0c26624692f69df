package velograph_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/velograph"
)

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := velograph.NewNotFoundError("Person")
		assert.Equal(t, `velograph: model "Person" not found`, err.Error())
		assert.Equal(t, "Person", err.Name())
	})

	t.Run("Is", func(t *testing.T) {
		err := velograph.NewNotFoundError("Place")
		assert.True(t, errors.Is(err, velograph.ErrNotFound))
		assert.False(t, errors.Is(err, velograph.ErrConfiguration))
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := velograph.NewNotFoundError("Group")
		assert.True(t, velograph.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, velograph.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, velograph.IsNotFound(velograph.ErrNotFound))

		// Non-matching error
		assert.False(t, velograph.IsNotFound(errors.New("other error")))
		assert.False(t, velograph.IsNotFound(nil))
	})
}

func TestConfigurationError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := velograph.NewConfigurationError(velograph.ReasonArity, "Identification", "", "expected 1 type argument, got 2")
		assert.Equal(t, "velograph: configuration error (arity) on model Identification: expected 1 type argument, got 2", err.Error())
	})

	t.Run("ErrorWithField", func(t *testing.T) {
		err := velograph.NewConfigurationError(velograph.ReasonUnresolved, "Person", "knows", "unknown model")
		assert.Equal(t, "velograph: configuration error (unresolved) on model Person field knows: unknown model", err.Error())
	})

	t.Run("Cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := velograph.NewConfigurationError(velograph.ReasonInvalid, "Person", "", "")
		err.Cause = cause
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, velograph.ErrConfiguration)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("HasReason", func(t *testing.T) {
		err := fmt.Errorf("declare: %w", velograph.NewConfigurationError(velograph.ReasonDuplicate, "Person", "", ""))
		assert.True(t, velograph.IsConfigurationError(err))
		assert.True(t, velograph.HasReason(err, velograph.ReasonDuplicate))
		assert.False(t, velograph.HasReason(err, velograph.ReasonArity))
		assert.False(t, velograph.HasReason(errors.New("other"), velograph.ReasonDuplicate))
	})
}

func TestNotAllowedError(t *testing.T) {
	err := velograph.NewNotAllowedError("Person", "create")
	assert.Equal(t, "velograph: create is not allowed on Person", err.Error())
	assert.True(t, errors.Is(err, velograph.ErrNotAllowed))
	assert.True(t, velograph.IsNotAllowed(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, velograph.IsNotAllowed(nil))
}

func TestStoreApplyError(t *testing.T) {
	cause := errors.New("connection refused")
	err := velograph.NewStoreApplyError("BaseNodeIdUnique", cause)
	assert.Equal(t, "velograph: applying BaseNodeIdUnique: connection refused", err.Error())
	assert.ErrorIs(t, err, velograph.ErrStoreApply)
	assert.ErrorIs(t, err, cause)
	assert.True(t, velograph.IsStoreApplyError(err))
	assert.False(t, velograph.IsStoreApplyError(cause))
}

func TestAggregateError(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.NoError(t, velograph.NewAggregateError())
		assert.NoError(t, velograph.NewAggregateError(nil, nil))
	})

	t.Run("Single", func(t *testing.T) {
		single := errors.New("single")
		assert.Same(t, single, velograph.NewAggregateError(nil, single))
	})

	t.Run("Multiple", func(t *testing.T) {
		e1 := velograph.NewStoreApplyError("A", errors.New("a"))
		e2 := velograph.NewNotFoundError("B")
		err := velograph.NewAggregateError(e1, nil, e2)
		require.Error(t, err)

		var agg *velograph.AggregateError
		require.ErrorAs(t, err, &agg)
		assert.Len(t, agg.Errors, 2)
		assert.ErrorIs(t, err, velograph.ErrStoreApply)
		assert.ErrorIs(t, err, velograph.ErrNotFound)
		assert.Contains(t, err.Error(), "multiple errors")
		assert.Contains(t, err.Error(), "[2]")
	})
}
