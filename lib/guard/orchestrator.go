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
	"github.com/rolewarden/rolewarden/lib/rulestore"
)

// Granularity selects the debounce key for membership events.
type Granularity int

const (
	// PerMember gates all evaluation for a member behind one
	// cooldown: a burst of changes to one member produces one
	// planning pass. The debounce runs before the planner.
	PerMember Granularity = iota

	// PerMemberRole plans every event but gates each planned role
	// individually, so distinct roles of the same member can be
	// revoked from separate events inside one window while repeat
	// revocations of the same role stay suppressed. Deployments
	// using this granularity typically pair it with a longer window
	// (DefaultMemberRoleDebounce).
	PerMemberRole
)

// DefaultSweepInterval is how often the orchestrator prunes idle
// debounce entries.
const DefaultSweepInterval = time.Minute

// Config assembles an Orchestrator. Store and Revoker are required;
// everything else has a default.
type Config struct {
	Store   *rulestore.Store
	Revoker Revoker

	// Granularity selects the debounce key; see the constants.
	Granularity Granularity

	// DebounceWindow is the membership cooldown. Zero selects
	// DefaultMemberDebounce or DefaultMemberRoleDebounce according
	// to Granularity.
	DebounceWindow time.Duration

	// Pause is the minimum interval between revocation calls. Zero
	// selects DefaultPause.
	Pause time.Duration

	Clock  clock.Clock
	Logger *slog.Logger
}

// Orchestrator wires membership-change events through the debounce
// gate, the planner, and the paced queue, and routes rule-change
// notifications to the store's debounced reload. The two paths share
// only the published ruleset, which the planner reads without
// modifying.
type Orchestrator struct {
	store       *rulestore.Store
	debouncer   *Debouncer
	queue       *Queue
	granularity Granularity
	window      time.Duration
	clock       clock.Clock
	logger      *slog.Logger
}

// New creates an Orchestrator from config.
func New(config Config) (*Orchestrator, error) {
	if config.Store == nil {
		return nil, fmt.Errorf("guard: Config.Store is required")
	}
	if config.Revoker == nil {
		return nil, fmt.Errorf("guard: Config.Revoker is required")
	}

	window := config.DebounceWindow
	if window == 0 {
		switch config.Granularity {
		case PerMemberRole:
			window = DefaultMemberRoleDebounce
		default:
			window = DefaultMemberDebounce
		}
	}
	c := config.Clock
	if c == nil {
		c = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		store:       config.Store,
		debouncer:   NewDebouncer(c, window),
		queue:       NewQueue(config.Revoker, config.Pause, c, logger),
		granularity: config.Granularity,
		window:      window,
		clock:       c,
		logger:      logger,
	}, nil
}

// HandleMemberChange processes one membership-change event. The call
// is non-blocking apart from the pure planning pass: enqueueing is a
// slice append, and the paced consumer runs on its own goroutine. The
// event dispatcher can call this inline.
//
// Events missing a guild or member, or whose snapshots disagree about
// which member changed, are dropped with a log line.
func (o *Orchestrator) HandleMemberChange(ctx context.Context, guild ref.GuildID, before, after MembershipSnapshot) {
	if guild.IsZero() || before.Member.IsZero() || after.Member.IsZero() || before.Member != after.Member {
		o.logger.Warn("malformed membership event dropped",
			"guild", guild,
			"before_member", before.Member,
			"after_member", after.Member)
		return
	}

	memberKey := guild.String() + "/" + before.Member.String()

	if o.granularity == PerMember && !o.debouncer.ShouldProcess(memberKey) {
		o.logger.Debug("membership event debounced",
			"guild", guild, "member", before.Member)
		return
	}

	revoke := Plan(before, after, o.store.Rules(guild))

	if o.granularity == PerMemberRole && len(revoke) > 0 {
		filtered := make(map[ref.RoleID]struct{}, len(revoke))
		for _, role := range revoke.Slice() {
			if o.debouncer.ShouldProcess(memberKey + "/" + role.String()) {
				filtered[role] = struct{}{}
			}
		}
		revoke = filtered
	}

	if len(revoke) == 0 {
		return
	}

	o.queue.Enqueue(Job{Guild: guild, Member: before.Member, Roles: revoke})
	o.queue.Start(ctx)
	o.logger.Info("revocation planned",
		"guild", guild,
		"member", before.Member,
		"roles", len(revoke))
}

// HandleRulesChanged records an external change notification for the
// guild's rule document. Safe to call on every raw notification; the
// store's trailing-edge debounce coalesces bursts.
func (o *Orchestrator) HandleRulesChanged(ctx context.Context, guild ref.GuildID) {
	o.store.NotifyChanged(ctx, guild)
}

// Run blocks until ctx is cancelled, periodically pruning debounce
// entries idle for more than ten windows. Without the sweep the
// debounce map grows with every member ever seen over the process
// lifetime.
func (o *Orchestrator) Run(ctx context.Context) {
	maxIdle := 10 * o.window
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.clock.After(DefaultSweepInterval):
			if removed := o.debouncer.Sweep(maxIdle); removed > 0 {
				o.logger.Debug("debounce entries swept",
					"removed", removed,
					"remaining", o.debouncer.Len())
			}
		}
	}
}

// QueuePending reports the number of revocation jobs waiting in the
// paced queue. Diagnostic only.
func (o *Orchestrator) QueuePending() int {
	return o.queue.Pending()
}
