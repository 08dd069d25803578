// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rolewarden/rolewarden/lib/clock"
)

// DefaultPause is the default minimum interval between consecutive
// revocation calls: 20ms, i.e. at most 50 calls per second, the
// platform's hard per-second budget.
const DefaultPause = 20 * time.Millisecond

// Queue executes revocation jobs serially at a fixed minimum pace.
// Any number of producers may Enqueue concurrently; at most one
// consumer drains. The pause between jobs is unconditional — success,
// failure, and the platform's own latency all count against the same
// budget, so serial paced execution can never exceed it.
//
// A failed job is logged and dropped. It is never retried and never
// blocks the jobs behind it.
type Queue struct {
	revoker Revoker
	clock   clock.Clock
	logger  *slog.Logger
	pause   time.Duration

	mu       sync.Mutex
	jobs     []Job
	draining bool
}

// NewQueue creates a Queue issuing calls through revoker. A
// non-positive pause defaults to DefaultPause; a nil clock defaults
// to clock.Real(); a nil logger defaults to slog.Default().
func NewQueue(revoker Revoker, pause time.Duration, c clock.Clock, logger *slog.Logger) *Queue {
	if pause <= 0 {
		pause = DefaultPause
	}
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		revoker: revoker,
		clock:   c,
		logger:  logger,
		pause:   pause,
	}
}

// Enqueue appends a job to the tail of the queue. Non-blocking; the
// caller must follow with Start to ensure a consumer is running.
func (q *Queue) Enqueue(job Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

// Start launches the drain consumer if one is not already running.
// Idempotent: calling Start during an active drain is a no-op. The
// consumer stops when the queue empties or ctx is cancelled;
// cancellation leaves any remaining jobs queued for a later Start.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.draining {
		return
	}
	q.draining = true
	go q.drain(ctx)
}

// Pending returns the number of queued jobs.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// drain pops and executes jobs until the queue empties. Runs as the
// single consumer goroutine; the draining flag clears atomically with
// the discovery that the queue is empty, so a concurrent Enqueue
// either lands before the last pop or triggers a fresh Start.
func (q *Queue) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			q.mu.Lock()
			q.draining = false
			pending := len(q.jobs)
			q.mu.Unlock()
			q.logger.Info("revocation queue stopped", "pending", pending)
			return
		}

		q.mu.Lock()
		if len(q.jobs) == 0 {
			q.draining = false
			q.mu.Unlock()
			return
		}
		job := q.jobs[0]
		q.jobs = q.jobs[1:]
		q.mu.Unlock()

		roles := job.Roles.Slice()
		if err := q.revoker.RevokeRoles(ctx, job.Guild, job.Member, roles); err != nil {
			// Dropped, not retried. One failing member must not stall
			// the revocations queued behind it.
			q.logger.Warn("revocation failed, dropping job",
				"guild", job.Guild,
				"member", job.Member,
				"roles", len(roles),
				"error", err)
		} else {
			q.logger.Info("roles revoked",
				"guild", job.Guild,
				"member", job.Member,
				"roles", len(roles))
		}

		q.clock.Sleep(q.pause)
	}
}
