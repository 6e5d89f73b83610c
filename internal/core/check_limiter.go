package core

// check_limiter.go bounds how many document checks run at once.
//
// A check reads every data file of a document into memory, so unbounded
// parallel checks could exhaust the host. Callers that cannot get a slot
// within maxWait fail with ErrTooManyChecks. WaitForDrain lets shutdown
// wait for in-flight checks.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyChecks is returned when no check slot frees up within the wait limit.
var ErrTooManyChecks = errors.New("too many concurrent checks, please try again later")

const (
	// DefaultMaxConcurrentChecks is the default number of parallel checks.
	DefaultMaxConcurrentChecks = 4

	// DefaultCheckWaitTime is how long Acquire waits for a slot.
	DefaultCheckWaitTime = 30 * time.Second

	drainPollInterval = 50 * time.Millisecond
)

// CheckLimiter is a weighted semaphore with an active-check gauge.
type CheckLimiter struct {
	sem     *semaphore.Weighted
	size    int
	maxWait time.Duration
	active  atomic.Int64
}

// NewCheckLimiter allows maxConcurrent checks; non-positive arguments take defaults.
func NewCheckLimiter(maxConcurrent int, maxWait time.Duration) *CheckLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentChecks
	}
	if maxWait <= 0 {
		maxWait = DefaultCheckWaitTime
	}
	return &CheckLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		size:    maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to the configured limit. A cancelled
// ctx returns ctx.Err(); an expired wait returns ErrTooManyChecks. Every
// successful Acquire must be paired with Release.
func (l *CheckLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyChecks
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot only if one is free right now.
func (l *CheckLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot.
func (l *CheckLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of checks holding a slot.
func (l *CheckLimiter) ActiveCount() int { return int(l.active.Load()) }

// MaxConcurrent returns the slot count.
func (l *CheckLimiter) MaxConcurrent() int { return l.size }

// WaitForDrain blocks until no check holds a slot or ctx ends.
func (l *CheckLimiter) WaitForDrain(ctx context.Context) error {
	if l.ActiveCount() == 0 {
		return nil
	}
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// CheckLimiterStatus is a point-in-time view of the limiter.
type CheckLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status reports current usage.
func (l *CheckLimiter) Status() CheckLimiterStatus {
	active := l.ActiveCount()
	return CheckLimiterStatus{
		Active:        active,
		Available:     l.size - active,
		MaxConcurrent: l.size,
	}
}
