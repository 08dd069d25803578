// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package rulestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/rolewarden/rolewarden/lib/clock"
	"github.com/rolewarden/rolewarden/lib/ref"
	"github.com/rolewarden/rolewarden/lib/ruleset"
)

// DefaultReloadDebounce is the default trailing-edge debounce window
// for external change notifications. Editors and deployment tools
// often touch a file several times within a second or two; two
// seconds of quiet is enough to coalesce those into one reload.
const DefaultReloadDebounce = 2 * time.Second

// ErrNotFound is returned by a Source when no rule document exists
// for the requested guild scope. Sources backed by the filesystem may
// equivalently return errors wrapping fs.ErrNotExist; the store
// treats both the same way.
var ErrNotFound = errors.New("rulestore: rules not found")

// Source reads the raw rule document for a guild scope. Read is
// called from reload paths only, never from the hot planning path.
type Source interface {
	Read(ctx context.Context, guild ref.GuildID) ([]byte, error)
}

// Store holds the published ruleset for each guild scope. Safe for
// concurrent use: planners read published sets while reloads swap
// them.
type Store struct {
	source  Source
	clock   clock.Clock
	logger  *slog.Logger
	window  time.Duration
	mu      sync.Mutex
	scopes  map[ref.GuildID]*scopeState
	closed  bool
}

// scopeState is the per-guild reload state. Guarded by Store.mu.
type scopeState struct {
	rules       ruleset.Ruleset
	fingerprint [32]byte
	loaded      bool

	// pending is the active debounce timer, if any. generation
	// guards against a stale timer firing after a newer notification
	// replaced it.
	pending    *clock.Timer
	generation uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for debounce timers. The default is
// clock.Real(); tests inject clock.Fake().
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithReloadDebounce sets the trailing-edge debounce window for
// change notifications. The default is DefaultReloadDebounce.
func WithReloadDebounce(window time.Duration) Option {
	return func(s *Store) { s.window = window }
}

// New creates a Store reading rule documents from source.
func New(source Source, options ...Option) *Store {
	store := &Store{
		source: source,
		clock:  clock.Real(),
		logger: slog.Default(),
		window: DefaultReloadDebounce,
		scopes: make(map[ref.GuildID]*scopeState),
	}
	for _, option := range options {
		option(store)
	}
	return store
}

// Rules returns the currently published ruleset for the guild scope,
// or an empty set if nothing has been loaded yet. The returned set is
// immutable; callers must not modify it.
func (s *Store) Rules(guild ref.GuildID) ruleset.Ruleset {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.scopes[guild]
	if !ok {
		return nil
	}
	return state.rules
}

// Reload reads, parses, and publishes the ruleset for one guild
// scope. When checkContent is true and the raw document is
// byte-identical to the last successful load, the reload is a no-op.
//
// Read and parse failures retain the previously published set
// unchanged and are returned for callers that want them; the store
// has already logged them, so ignoring the return is also fine.
func (s *Store) Reload(ctx context.Context, guild ref.GuildID, checkContent bool) error {
	data, err := s.source.Read(ctx, guild)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("rules document missing, retaining previous rules",
				"guild", guild, "error", err)
		} else {
			s.logger.Warn("rules document unreadable, retaining previous rules",
				"guild", guild, "error", err)
		}
		return fmt.Errorf("reading rules for guild %s: %w", guild, err)
	}

	fingerprint := ruleset.Fingerprint(data)

	s.mu.Lock()
	state := s.scopeLocked(guild)
	if checkContent && state.loaded && state.fingerprint == fingerprint {
		s.mu.Unlock()
		s.logger.Debug("rules unchanged", "guild", guild,
			"fingerprint", ruleset.FormatFingerprint(fingerprint))
		return nil
	}
	s.mu.Unlock()

	rules, err := ruleset.Parse(data)
	if err != nil {
		s.logger.Warn("rules document malformed, retaining previous rules",
			"guild", guild, "error", err)
		return fmt.Errorf("parsing rules for guild %s: %w", guild, err)
	}

	s.mu.Lock()
	state = s.scopeLocked(guild)
	state.rules = rules
	state.fingerprint = fingerprint
	state.loaded = true
	s.mu.Unlock()

	s.logger.Info("rules published", "guild", guild,
		"rules", len(rules),
		"fingerprint", ruleset.FormatFingerprint(fingerprint))
	return nil
}

// NotifyChanged records an external change notification for the guild
// scope and (re)schedules its debounced reload. Each notification
// restarts the scope's timer, so the reload runs one debounce window
// after the last notification in a burst. The eventual reload uses
// content checking, making spurious notifications cheap.
func (s *Store) NotifyChanged(ctx context.Context, guild ref.GuildID) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	state := s.scopeLocked(guild)
	state.generation++
	scheduled := state.generation
	if state.pending != nil {
		state.pending.Stop()
	}
	state.pending = s.clock.AfterFunc(s.window, func() {
		s.mu.Lock()
		current := s.scopes[guild].generation
		stale := current != scheduled || s.closed
		s.mu.Unlock()
		if stale {
			// A newer notification restarted the debounce after this
			// timer was created; its own timer owns the reload.
			return
		}
		// Reload failures are logged and retained inside Reload.
		_ = s.Reload(ctx, guild, true)
	})
	s.mu.Unlock()
}

// Close stops all pending debounce timers. Notifications arriving
// after Close are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for _, state := range s.scopes {
		if state.pending != nil {
			state.pending.Stop()
		}
	}
}

// scopeLocked returns the state for guild, creating it on first use.
// Caller holds s.mu.
func (s *Store) scopeLocked(guild ref.GuildID) *scopeState {
	state, ok := s.scopes[guild]
	if !ok {
		state = &scopeState{}
		s.scopes[guild] = state
	}
	return state
}
