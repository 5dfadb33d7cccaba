package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "loading ticker")
	require.Error(t, wrapped)
	assert.True(t, Is(wrapped, ErrNotFound))
	assert.Contains(t, wrapped.Error(), "loading ticker")

	assert.Nil(t, Wrap(nil, "no-op"))
	assert.Nil(t, Wrapf(nil, "no-op %d", 1))

	deep := Wrapf(Wrap(ErrExternal, "inner"), "outer %s", "context")
	assert.True(t, Is(deep, ErrExternal))
}

func TestValidationError_UnwrapsToSchemaViolation(t *testing.T) {
	err := NewValidationError("risk_assessment.volatility", "must be Low, Medium or High", "Extreme")

	assert.True(t, Is(err, ErrSchemaViolation))
	assert.Contains(t, err.Error(), "risk_assessment.volatility")
	assert.Contains(t, err.Error(), "Extreme")
}

func TestMultiError(t *testing.T) {
	multi := &MultiError{}
	assert.False(t, multi.HasErrors())
	assert.Nil(t, multi.ToError())

	multi.Add(nil)
	assert.False(t, multi.HasErrors(), "nil errors are ignored")

	multi.Add(NewValidationError("a", "bad", 1))
	multi.Add(NewValidationError("b", "worse", 2))
	require.True(t, multi.HasErrors())
	require.Error(t, multi.ToError())

	// Is traverses the error list
	assert.True(t, Is(multi, ErrSchemaViolation))

	var ve *ValidationError
	require.True(t, As(multi, &ve))
	assert.Equal(t, "a", ve.Field)

	assert.Contains(t, multi.Error(), "multiple errors (2)")
}

func TestDomainError(t *testing.T) {
	err := NewDomainError("PIPELINE_FAILED", "run aborted", ErrRoutingExhausted)

	assert.True(t, Is(err, ErrRoutingExhausted))
	assert.Contains(t, err.Error(), "PIPELINE_FAILED")
	assert.Contains(t, err.Error(), "run aborted")
}
