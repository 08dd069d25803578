// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rolewarden/rolewarden/lib/clock"
	"github.com/rolewarden/rolewarden/lib/ref"
)

// BulkOptions configures BulkRevoke. The zero value selects
// DefaultPause, clock.Real(), and slog.Default().
type BulkOptions struct {
	Pause  time.Duration
	Clock  clock.Clock
	Logger *slog.Logger
}

// BulkRevoke removes role from every current holder in the guild.
// This is the administrative sweep: it does not consult dependency
// rules, it shares only the Revoker with the reactive pipeline, and
// it observes the same pacing budget by sleeping between calls.
//
// Per-member failures are logged and skipped; the return value is the
// number of members the role was successfully revoked from. Only a
// failure to list holders, or context cancellation mid-sweep, returns
// an error (alongside the count achieved so far).
func BulkRevoke(ctx context.Context, directory Directory, revoker Revoker, guild ref.GuildID, role ref.RoleID, options BulkOptions) (int, error) {
	pause := options.Pause
	if pause <= 0 {
		pause = DefaultPause
	}
	c := options.Clock
	if c == nil {
		c = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	holders, err := directory.HoldersOf(ctx, guild, role)
	if err != nil {
		return 0, fmt.Errorf("listing holders of role %s in guild %s: %w", role, guild, err)
	}

	revoked := 0
	for index, member := range holders {
		if ctx.Err() != nil {
			return revoked, fmt.Errorf("bulk revoke interrupted after %d of %d members: %w",
				revoked, len(holders), ctx.Err())
		}
		if err := revoker.RevokeRoles(ctx, guild, member, []ref.RoleID{role}); err != nil {
			logger.Warn("bulk revocation failed for member",
				"guild", guild,
				"member", member,
				"role", role,
				"error", err)
		} else {
			revoked++
		}
		if index < len(holders)-1 {
			c.Sleep(pause)
		}
	}

	logger.Info("bulk revocation finished",
		"guild", guild,
		"role", role,
		"holders", len(holders),
		"revoked", revoked)
	return revoked, nil
}
