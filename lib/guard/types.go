// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"

	"github.com/rolewarden/rolewarden/lib/ref"
	"github.com/rolewarden/rolewarden/lib/ruleset"
)

// MembershipSnapshot is a point-in-time view of one member: who they
// are and which roles they hold. Change events carry two snapshots,
// before and after the observed mutation; the pipeline reads them
// during planning and does not retain them.
type MembershipSnapshot struct {
	Member ref.MemberID
	Roles  ruleset.RoleSet
}

// Job is one queued revocation: remove the given roles from one
// member. Jobs are owned exclusively by the queue from enqueue until
// execution and are not persisted; a process restart loses whatever
// was queued.
type Job struct {
	Guild  ref.GuildID
	Member ref.MemberID
	Roles  ruleset.RoleSet
}

// Revoker is the single side-effecting call the pipeline issues.
// Implementations must tolerate revoking a role the member no longer
// holds; the platform treats that as a no-op, not an error.
type Revoker interface {
	RevokeRoles(ctx context.Context, guild ref.GuildID, member ref.MemberID, roles []ref.RoleID) error
}

// Directory lists the current holders of a role. Used only by the
// administrative bulk-revoke path, never by the reactive pipeline.
type Directory interface {
	HoldersOf(ctx context.Context, guild ref.GuildID, role ref.RoleID) ([]ref.MemberID, error)
}
