// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rolewarden/rolewarden/lib/clock"
	"github.com/rolewarden/rolewarden/lib/ref"
	"github.com/rolewarden/rolewarden/lib/testutil"
)

// fakeDirectory serves a fixed holder list per role.
type fakeDirectory struct {
	holders map[ref.RoleID][]ref.MemberID
	err     error
}

func (f *fakeDirectory) HoldersOf(_ context.Context, _ ref.GuildID, role ref.RoleID) ([]ref.MemberID, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.holders[role], nil
}

type bulkResult struct {
	revoked int
	err     error
}

// startBulk runs BulkRevoke on its own goroutine so the test can
// drive the fake clock through the pacing sleeps.
func startBulk(ctx context.Context, directory Directory, revoker Revoker, guild ref.GuildID, role ref.RoleID, options BulkOptions) chan bulkResult {
	done := make(chan bulkResult, 1)
	go func() {
		revoked, err := BulkRevoke(ctx, directory, revoker, guild, role, options)
		done <- bulkResult{revoked: revoked, err: err}
	}()
	return done
}

func TestBulkRevokeAllHolders(t *testing.T) {
	t.Parallel()

	const pause = 20 * time.Millisecond
	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	guild := mustGuild(t, "g")
	role := mustRole(t, "A")
	directory := &fakeDirectory{holders: map[ref.RoleID][]ref.MemberID{
		role: {mustMember(t, "m1"), mustMember(t, "m2"), mustMember(t, "m3")},
	}}

	done := startBulk(context.Background(), directory, revoker, guild, role,
		BulkOptions{Pause: pause, Clock: fake})

	var stamps []time.Time
	for index, want := range []string{"m1", "m2", "m3"} {
		call := testutil.RequireReceive(t, revoker.notify, 5*time.Second,
			"waiting for revocation %d", index)
		if call.member != mustMember(t, want) {
			t.Errorf("revocation %d hit %s, want %s", index, call.member, want)
		}
		if len(call.roles) != 1 || call.roles[0] != role {
			t.Errorf("revocation %d carried roles %v, want [A]", index, call.roles)
		}
		stamps = append(stamps, call.at)

		// No sleep follows the last holder.
		if index < 2 {
			fake.WaitForTimers(1)
			fake.Advance(pause)
		}
	}

	result := testutil.RequireReceive(t, done, 5*time.Second, "waiting for bulk completion")
	if result.err != nil {
		t.Fatalf("BulkRevoke: %v", result.err)
	}
	if result.revoked != 3 {
		t.Errorf("revoked = %d, want 3", result.revoked)
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < pause {
			t.Errorf("gap between holder %d and %d = %v, want >= %v", i-1, i, gap, pause)
		}
	}
}

func TestBulkRevokeSkipsFailedMembers(t *testing.T) {
	t.Parallel()

	const pause = 20 * time.Millisecond
	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	revoker.failFor[mustMember(t, "m2")] = fmt.Errorf("missing permission")
	guild := mustGuild(t, "g")
	role := mustRole(t, "A")
	directory := &fakeDirectory{holders: map[ref.RoleID][]ref.MemberID{
		role: {mustMember(t, "m1"), mustMember(t, "m2"), mustMember(t, "m3")},
	}}

	done := startBulk(context.Background(), directory, revoker, guild, role,
		BulkOptions{Pause: pause, Clock: fake})

	for index := range 3 {
		testutil.RequireReceive(t, revoker.notify, 5*time.Second,
			"waiting for revocation %d", index)
		if index < 2 {
			fake.WaitForTimers(1)
			fake.Advance(pause)
		}
	}

	result := testutil.RequireReceive(t, done, 5*time.Second, "waiting for bulk completion")
	if result.err != nil {
		t.Fatalf("BulkRevoke: %v", result.err)
	}
	if result.revoked != 2 {
		t.Errorf("revoked = %d, want 2 (m2 failed)", result.revoked)
	}
}

func TestBulkRevokeDirectoryErrorPropagates(t *testing.T) {
	t.Parallel()

	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	directory := &fakeDirectory{err: fmt.Errorf("directory unavailable")}

	revoked, err := BulkRevoke(context.Background(), directory, revoker,
		mustGuild(t, "g"), mustRole(t, "A"), BulkOptions{Clock: fake})
	if err == nil {
		t.Fatal("BulkRevoke returned nil error for a failing directory")
	}
	if revoked != 0 {
		t.Errorf("revoked = %d, want 0", revoked)
	}
	if revoker.callCount() != 0 {
		t.Errorf("revoker called %d times, want 0", revoker.callCount())
	}
}

func TestBulkRevokeStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	const pause = 20 * time.Millisecond
	fake := clock.Fake(time.Unix(1000000000, 0))
	revoker := newFakeRevoker(fake.Now)
	guild := mustGuild(t, "g")
	role := mustRole(t, "A")
	directory := &fakeDirectory{holders: map[ref.RoleID][]ref.MemberID{
		role: {mustMember(t, "m1"), mustMember(t, "m2"), mustMember(t, "m3")},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := startBulk(ctx, directory, revoker, guild, role,
		BulkOptions{Pause: pause, Clock: fake})

	// Let the first holder through, cancel during the pacing sleep.
	testutil.RequireReceive(t, revoker.notify, 5*time.Second, "waiting for first revocation")
	cancel()
	fake.WaitForTimers(1)
	fake.Advance(pause)

	result := testutil.RequireReceive(t, done, 5*time.Second, "waiting for bulk completion")
	if result.err == nil {
		t.Fatal("BulkRevoke returned nil error after cancellation")
	}
	if result.revoked != 1 {
		t.Errorf("revoked = %d, want 1", result.revoked)
	}
	if revoker.callCount() != 1 {
		t.Errorf("revoker called %d times, want 1", revoker.callCount())
	}
}
