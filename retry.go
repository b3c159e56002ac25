package zkteco

import (
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// stepBackOff replays a fixed sequence of delays, then stops. It
// implements backoff.BackOff for the reference client's fixed-delay
// retry schedules, which aren't exponential.
type stepBackOff struct {
	steps []time.Duration
	next  int
}

func newStepBackOff(steps ...time.Duration) *stepBackOff {
	return &stepBackOff{steps: steps}
}

func (b *stepBackOff) Reset() { b.next = 0 }

func (b *stepBackOff) NextBackOff() time.Duration {
	if b.next >= len(b.steps) {
		return backoff.Stop
	}
	d := b.steps[b.next]
	b.next++
	return d
}

// isTerminalError reports whether an error should short-circuit retry
// loops instead of being retried — authentication and permission
// failures won't succeed on a later attempt (spec.md §4.5, §7).
func isTerminalError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return containsAny(msg, "auth", "denied", "permission")
}

// retrySteps runs op, retrying after each delay in steps until op
// succeeds, the steps are exhausted, or op returns a terminal error.
// The first attempt happens before any delay.
func retrySteps(steps []time.Duration, op func() error) error {
	b := newStepBackOff(steps...)
	return backoff.Retry(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if isTerminalError(err) {
			log.WithError(err).Debug("retry short-circuited on terminal error")
			return backoff.Permanent(err)
		}
		log.WithError(err).Debug("retrying after transient error")
		return err
	}, b)
}

// reconnectRetryDelays is sync_all's reconnect-and-fetch-logs retry
// schedule (spec.md §4.4.6).
var reconnectRetryDelays = []time.Duration{500 * time.Millisecond, 1000 * time.Millisecond, 1500 * time.Millisecond}

// commandRetryDelays is the command surface's outer retry schedule
// (spec.md §4.5): the first attempt plus up to three more.
var commandRetryDelays = []time.Duration{2 * time.Second, 4 * time.Second, 6 * time.Second}

// retryCommand runs op under the command-surface outer retry policy.
func retryCommand(op func() error) error {
	return retrySteps(commandRetryDelays, op)
}
