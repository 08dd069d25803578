// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"sync"
	"time"

	"github.com/rolewarden/rolewarden/lib/clock"
)

// DefaultMemberDebounce is the default cooldown for per-member
// debouncing. Membership mutations often arrive in bursts (several
// attribute changes from one administrative action); 1.5 seconds of
// cooldown collapses a burst into one evaluation without making
// enforcement feel sluggish.
const DefaultMemberDebounce = 1500 * time.Millisecond

// DefaultMemberRoleDebounce is the suggested cooldown when debouncing
// per member-role pair instead of per member. The finer key means a
// single member can pass the gate once per role, so the window is
// longer to compensate.
const DefaultMemberRoleDebounce = 5 * time.Second

// Debouncer is a per-subject cooldown gate. A subject passes the gate
// when at least one full window has elapsed since it last passed;
// passing records the new time. Subjects never seen before always
// pass.
//
// Keys are opaque. The orchestrator composes them from guild, member,
// and (optionally) role, so the same Debouncer supports both
// granularities.
//
// Safe for concurrent use.
type Debouncer struct {
	clock  clock.Clock
	window time.Duration

	mu   sync.Mutex
	last map[string]time.Time
}

// NewDebouncer creates a Debouncer with the given cooldown window.
// A nil clock defaults to clock.Real().
func NewDebouncer(c clock.Clock, window time.Duration) *Debouncer {
	if c == nil {
		c = clock.Real()
	}
	return &Debouncer{
		clock:  c,
		window: window,
		last:   make(map[string]time.Time),
	}
}

// ShouldProcess reports whether the subject may be processed now, and
// records the current time as the subject's last-processed time only
// when it returns true. A rejected call leaves the recorded time
// untouched, so a steady stream of sub-window events stays gated
// until a full quiet window has passed since the last accepted one.
func (d *Debouncer) ShouldProcess(key string) bool {
	now := d.clock.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	// The zero time for unseen subjects makes the elapsed check pass
	// unconditionally.
	if now.Sub(d.last[key]) < d.window {
		return false
	}
	d.last[key] = now
	return true
}

// Sweep drops entries that have not passed the gate within maxIdle.
// Returns the number of entries removed. The map otherwise grows with
// every member ever seen, so the orchestrator sweeps periodically.
func (d *Debouncer) Sweep(maxIdle time.Duration) int {
	cutoff := d.clock.Now().Add(-maxIdle)

	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0
	for key, when := range d.last {
		if when.Before(cutoff) {
			delete(d.last, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked subjects.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.last)
}
