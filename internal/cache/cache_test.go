package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for the bounded cache:
// - Set/Get round trip
// - Get misses report !ok
// - GetOrCompute computes once and caches
// - GetOrCompute propagates compute errors without caching
// - Invalid capacity is rejected

func TestBounded_SetGet(t *testing.T) {
	t.Parallel()

	c, err := NewBounded[string, int](16)
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("answer", 42)
	got, ok := c.Get("answer")
	assert.True(t, ok)
	assert.Equal(t, 42, got)
}

func TestBounded_GetOrCompute(t *testing.T) {
	t.Parallel()

	c, err := NewBounded[string, string](16)
	require.NoError(t, err)
	defer c.Close()

	calls := 0
	compute := func() (string, error) {
		calls++
		return "value", nil
	}

	got, err := c.GetOrCompute("key", compute)
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	got, err = c.GetOrCompute("key", compute)
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.Equal(t, 1, calls)
}

func TestBounded_GetOrCompute_Error(t *testing.T) {
	t.Parallel()

	c, err := NewBounded[string, int](16)
	require.NoError(t, err)
	defer c.Close()

	boom := errors.New("boom")
	_, err = c.GetOrCompute("key", func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	// A failed compute must not poison the key.
	got, err := c.GetOrCompute("key", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestNewBounded_InvalidCapacity(t *testing.T) {
	t.Parallel()

	_, err := NewBounded[string, int](0)
	assert.Error(t, err)
}
