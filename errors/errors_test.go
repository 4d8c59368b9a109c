package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := Wrapf(ErrTypeSurfaceDesync, "ccxt.d.ts")
	assert.True(t, Is(err, ErrTypeSurfaceDesync))
	assert.False(t, Is(err, ErrMissingTestSource))
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("unit %q", "binance")
	assert.True(t, IsNotFoundError(err))
	assert.Contains(t, err.Error(), `unit "binance"`)
	assert.False(t, IsInvalidRequestError(err))
}

func TestNewInvalidRequestError(t *testing.T) {
	err := NewInvalidRequestError("unknown flag %s", "--nope")
	assert.True(t, IsInvalidRequestError(err))
	assert.False(t, IsNotFoundError(nil))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("boom"), "run wsgen init")
	assert.Contains(t, FlattenHints(err), "run wsgen init")
}
