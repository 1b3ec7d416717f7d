package models

import (
	"testing"
	"time"
)

// stepClock replaces the package clock with one that advances by a second
// on every call, starting at a fixed instant.
func stepClock(t *testing.T) *time.Time {
	t.Helper()
	current := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}
	t.Cleanup(func() { now = prev })
	return &current
}
