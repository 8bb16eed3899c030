package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 5, OrDefault(0, 5))
	assert.Equal(t, 3, OrDefault(3, 5))
	assert.Equal(t, "fallback", OrDefault("", "fallback"))
	assert.Equal(t, "value", OrDefault("value", "fallback"))
}

func TestMust(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		f := func() error { return nil }
		Must(f())
	})
	t.Run("non-nil error", func(t *testing.T) {
		f := func() error { return errors.New("oh no") }
		assert.Panics(t, func() {
			Must(f())
		})
	})
}

func TestMust1(t *testing.T) {
	t.Run("nil error", func(t *testing.T) {
		f := func() (int, error) { return 4, nil }
		assert.Equal(t, 4, Must1(f()))
	})
	t.Run("non-nil error", func(t *testing.T) {
		f := func() (int, error) { return 0, errors.New("oh no") }
		assert.Panics(t, func() {
			Must1(f())
		})
	})
}

func TestSleepContext(t *testing.T) {
	t.Run("sleeps the full duration", func(t *testing.T) {
		err := SleepContext(context.Background(), 10*time.Millisecond)
		assert.Nil(t, err)
	})
	t.Run("interrupted by cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := SleepContext(ctx, 10*time.Second)
		assert.ErrorIs(t, err, ErrSleepInterrupted)
	})
}
