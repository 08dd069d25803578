// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rolewarden/rolewarden/lib/ref"
	"github.com/rolewarden/rolewarden/lib/ruleset"
)

func mustGuild(t *testing.T, raw string) ref.GuildID {
	t.Helper()
	guild, err := ref.ParseGuildID(raw)
	if err != nil {
		t.Fatalf("ParseGuildID(%q): %v", raw, err)
	}
	return guild
}

func mustMember(t *testing.T, raw string) ref.MemberID {
	t.Helper()
	member, err := ref.ParseMemberID(raw)
	if err != nil {
		t.Fatalf("ParseMemberID(%q): %v", raw, err)
	}
	return member
}

func mustRole(t *testing.T, raw string) ref.RoleID {
	t.Helper()
	role, err := ref.ParseRoleID(raw)
	if err != nil {
		t.Fatalf("ParseRoleID(%q): %v", raw, err)
	}
	return role
}

func roles(t *testing.T, ids ...string) ruleset.RoleSet {
	t.Helper()
	set := make(ruleset.RoleSet, len(ids))
	for _, id := range ids {
		set.Add(mustRole(t, id))
	}
	return set
}

// revocation is one observed RevokeRoles call.
type revocation struct {
	guild  ref.GuildID
	member ref.MemberID
	roles  []ref.RoleID
	at     time.Time
}

// fakeRevoker records calls and delivers each on a buffered channel
// so tests can wait without polling. now is called per revocation to
// stamp the call time (tests pass the fake clock's Now).
type fakeRevoker struct {
	mu      sync.Mutex
	now     func() time.Time
	failFor map[ref.MemberID]error
	calls   []revocation
	notify  chan revocation
}

func newFakeRevoker(now func() time.Time) *fakeRevoker {
	return &fakeRevoker{
		now:     now,
		failFor: make(map[ref.MemberID]error),
		notify:  make(chan revocation, 64),
	}
}

func (f *fakeRevoker) RevokeRoles(_ context.Context, guild ref.GuildID, member ref.MemberID, revoked []ref.RoleID) error {
	call := revocation{guild: guild, member: member, roles: revoked, at: f.now()}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.failFor[member]
	f.mu.Unlock()
	f.notify <- call
	return err
}

func (f *fakeRevoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
