// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rolewarden/rolewarden/lib/clock"
	"github.com/rolewarden/rolewarden/lib/testutil"
)

// TestQueueFIFOWithPacing verifies that jobs execute in enqueue order
// with at least one pacing interval between consecutive calls. The
// fake clock makes the gaps exact: each call is stamped with the fake
// time, and the consumer cannot proceed past its pause until the test
// advances.
func TestQueueFIFOWithPacing(t *testing.T) {
	t.Parallel()

	const pause = 20 * time.Millisecond
	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	queue := NewQueue(revoker, pause, fake, nil)
	guild := mustGuild(t, "g")

	members := []string{"m1", "m2", "m3"}
	for _, member := range members {
		queue.Enqueue(Job{Guild: guild, Member: mustMember(t, member), Roles: roles(t, "A")})
	}
	queue.Start(context.Background())

	var stamps []time.Time
	for index, member := range members {
		call := testutil.RequireReceive(t, revoker.notify, 5*time.Second,
			"waiting for revocation %d", index)
		if call.member != mustMember(t, member) {
			t.Errorf("revocation %d hit member %s, want %s", index, call.member, member)
		}
		stamps = append(stamps, call.at)

		// Release the consumer's pacing pause before expecting the
		// next call.
		fake.WaitForTimers(1)
		fake.Advance(pause)
	}

	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < pause {
			t.Errorf("gap between job %d and %d = %v, want >= %v", i-1, i, gap, pause)
		}
	}
}

func TestQueueFailureDoesNotBlockOrReorder(t *testing.T) {
	t.Parallel()

	const pause = 20 * time.Millisecond
	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	revoker.failFor[mustMember(t, "m2")] = fmt.Errorf("missing permission")
	queue := NewQueue(revoker, pause, fake, nil)
	guild := mustGuild(t, "g")

	for _, member := range []string{"m1", "m2", "m3"} {
		queue.Enqueue(Job{Guild: guild, Member: mustMember(t, member), Roles: roles(t, "A")})
	}
	queue.Start(context.Background())

	for _, want := range []string{"m1", "m2", "m3"} {
		call := testutil.RequireReceive(t, revoker.notify, 5*time.Second,
			"waiting for revocation of %s", want)
		if call.member != mustMember(t, want) {
			t.Errorf("revocation hit member %s, want %s", call.member, want)
		}
		fake.WaitForTimers(1)
		fake.Advance(pause)
	}
}

// TestQueueStartIdempotent verifies that a second Start during an
// active drain does not spawn a second consumer: with the first
// consumer parked in its pacing pause, no further revocation can
// arrive until the clock advances.
func TestQueueStartIdempotent(t *testing.T) {
	t.Parallel()

	const pause = 20 * time.Millisecond
	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	queue := NewQueue(revoker, pause, fake, nil)
	guild := mustGuild(t, "g")

	queue.Enqueue(Job{Guild: guild, Member: mustMember(t, "m1"), Roles: roles(t, "A")})
	queue.Enqueue(Job{Guild: guild, Member: mustMember(t, "m2"), Roles: roles(t, "A")})

	ctx := context.Background()
	queue.Start(ctx)
	queue.Start(ctx)
	queue.Start(ctx)

	testutil.RequireReceive(t, revoker.notify, 5*time.Second, "waiting for first revocation")
	testutil.RequireNoReceive(t, revoker.notify, 100*time.Millisecond,
		"second consumer ran during the pacing pause")

	fake.WaitForTimers(1)
	fake.Advance(pause)
	testutil.RequireReceive(t, revoker.notify, 5*time.Second, "waiting for second revocation")
}

// TestQueueRestartsAfterDrain verifies that the queue goes idle when
// emptied and that a later enqueue plus Start picks work up again.
func TestQueueRestartsAfterDrain(t *testing.T) {
	t.Parallel()

	const pause = 20 * time.Millisecond
	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	queue := NewQueue(revoker, pause, fake, nil)
	guild := mustGuild(t, "g")
	ctx := context.Background()

	queue.Enqueue(Job{Guild: guild, Member: mustMember(t, "m1"), Roles: roles(t, "A")})
	queue.Start(ctx)
	testutil.RequireReceive(t, revoker.notify, 5*time.Second, "waiting for first revocation")
	fake.WaitForTimers(1)
	fake.Advance(pause)

	// Whether the original consumer is still winding down or has
	// already exited, an enqueue followed by Start must get the job
	// executed.
	queue.Enqueue(Job{Guild: guild, Member: mustMember(t, "m2"), Roles: roles(t, "A")})
	queue.Start(ctx)
	call := testutil.RequireReceive(t, revoker.notify, 5*time.Second, "waiting for post-drain revocation")
	if call.member != mustMember(t, "m2") {
		t.Errorf("post-drain revocation hit %s, want m2", call.member)
	}
}

func TestQueueCancelledContextStops(t *testing.T) {
	t.Parallel()

	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	queue := NewQueue(revoker, 20*time.Millisecond, fake, nil)
	guild := mustGuild(t, "g")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	queue.Enqueue(Job{Guild: guild, Member: mustMember(t, "m1"), Roles: roles(t, "A")})
	queue.Start(ctx)

	testutil.RequireNoReceive(t, revoker.notify, 100*time.Millisecond,
		"consumer ran under a cancelled context")
	if queue.Pending() != 1 {
		t.Errorf("Pending = %d after cancelled Start, want 1", queue.Pending())
	}
}
