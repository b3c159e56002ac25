package zkteco

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryStepsSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := retrySteps([]time.Duration{time.Millisecond, time.Millisecond}, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStepsExhausted(t *testing.T) {
	attempts := 0
	err := retrySteps([]time.Duration{time.Millisecond}, func() error {
		attempts++
		return errors.New("always fails")
	})
	assert.Error(t, err)
	assert.Equal(t, 2, attempts) // initial attempt plus one retry step
}

func TestRetryStepsShortCircuitsOnTerminalError(t *testing.T) {
	attempts := 0
	err := retrySteps([]time.Duration{time.Millisecond, time.Millisecond}, func() error {
		attempts++
		return errors.New("authentication failed")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestIsTerminalError(t *testing.T) {
	assert.True(t, isTerminalError(errors.New("Authentication failed")))
	assert.True(t, isTerminalError(errors.New("permission denied")))
	assert.False(t, isTerminalError(errors.New("connection refused")))
	assert.False(t, isTerminalError(nil))
}
