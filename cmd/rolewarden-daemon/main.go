// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// rolewarden-daemon enforces role-dependency rules for the configured
// guilds: it watches the rules directory for document edits, watches
// each guild's membership event stream through the gateway, and
// revokes roles whose dependencies a member no longer satisfies.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rolewarden/rolewarden/lib/config"
	"github.com/rolewarden/rolewarden/lib/gateway"
	"github.com/rolewarden/rolewarden/lib/guard"
	"github.com/rolewarden/rolewarden/lib/process"
	"github.com/rolewarden/rolewarden/lib/ref"
	"github.com/rolewarden/rolewarden/lib/rulefile"
	"github.com/rolewarden/rolewarden/lib/ruleset"
	"github.com/rolewarden/rolewarden/lib/rulestore"
	"github.com/rolewarden/rolewarden/lib/secret"
	"github.com/rolewarden/rolewarden/lib/version"
	"github.com/spf13/pflag"
)

// watcherRestartDelay is how long the per-guild event loop waits after
// the member watcher gives up (its internal retries exhausted) before
// creating a fresh watcher.
const watcherRestartDelay = 5 * time.Second

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var configPath string
	var showVersion bool
	pflag.StringVar(&configPath, "config", "", "path to rolewarden.yaml (overrides ROLEWARDEN_CONFIG)")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Println("rolewarden-daemon", version.Info())
		return nil
	}

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token, err := secret.ReadFromPath(cfg.Gateway.TokenPath)
	if err != nil {
		return fmt.Errorf("reading gateway token: %w", err)
	}
	defer token.Close()

	client, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL: cfg.Gateway.URL,
		Token:   token,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	source, err := rulefile.NewSource(cfg.Rules.Directory)
	if err != nil {
		return err
	}

	store := rulestore.New(source,
		rulestore.WithLogger(logger),
		rulestore.WithReloadDebounce(config.Duration(cfg.Rules.ReloadDebounce, rulestore.DefaultReloadDebounce)),
	)
	defer store.Close()

	guilds, err := cfg.GuildIDs()
	if err != nil {
		return err
	}
	configured := make(map[ref.GuildID]struct{}, len(guilds))
	for _, guild := range guilds {
		configured[guild] = struct{}{}
	}

	// Load each guild's rules before taking events. A missing or
	// malformed document is not fatal: the guild starts with no rules
	// and picks them up when a valid file lands.
	for _, guild := range guilds {
		if err := store.Reload(ctx, guild, false); err != nil {
			logger.Warn("initial rules load failed, starting without rules",
				"guild", guild,
				"error", err)
		}
	}

	granularity := guard.PerMember
	if cfg.Enforcement.Granularity == config.GranularityMemberRole {
		granularity = guard.PerMemberRole
	}
	orchestrator, err := guard.New(guard.Config{
		Store:          store,
		Revoker:        client,
		Granularity:    granularity,
		DebounceWindow: config.Duration(cfg.Enforcement.DebounceWindow, 0),
		Pause:          config.Duration(cfg.Enforcement.Pause, 0),
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	// Rule edits for unconfigured guilds are ignored: a stray file in
	// the rules directory must not create enforcement state.
	stopWatch, err := source.Watch(func(guild ref.GuildID) {
		if _, ok := configured[guild]; !ok {
			logger.Debug("ignoring rules change for unconfigured guild", "guild", guild)
			return
		}
		orchestrator.HandleRulesChanged(ctx, guild)
	})
	if err != nil {
		return fmt.Errorf("watching rules directory: %w", err)
	}
	defer stopWatch()

	go orchestrator.Run(ctx)

	var group sync.WaitGroup
	for _, guild := range guilds {
		group.Add(1)
		go func() {
			defer group.Done()
			watchGuild(ctx, client, orchestrator, guild, logger)
		}()
	}

	logger.Info("rolewarden daemon running",
		"version", version.Info(),
		"guilds", len(guilds),
		"rules_directory", cfg.Rules.Directory,
		"granularity", cfg.Enforcement.Granularity)

	<-ctx.Done()
	logger.Info("shutting down")
	group.Wait()
	return nil
}

// watchGuild pumps one guild's membership events into the
// orchestrator until ctx is cancelled. When the member watcher fails
// past its internal retries, the loop waits and starts a fresh
// watcher; events during the gap are lost, which the reactive
// pipeline tolerates (the next change to a member re-evaluates all
// its roles).
func watchGuild(ctx context.Context, client *gateway.Client, orchestrator *guard.Orchestrator, guild ref.GuildID, logger *slog.Logger) {
	for ctx.Err() == nil {
		watcher, err := gateway.WatchMembers(ctx, client, guild)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("creating member watcher failed, retrying",
				"guild", guild,
				"delay", watcherRestartDelay,
				"error", err)
			if !sleepContext(ctx, watcherRestartDelay) {
				return
			}
			continue
		}

		logger.Info("watching guild membership", "guild", guild)

		for {
			change, err := watcher.WaitForChange(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("member watcher failed, restarting",
					"guild", guild,
					"delay", watcherRestartDelay,
					"error", err)
				if !sleepContext(ctx, watcherRestartDelay) {
					return
				}
				break
			}

			orchestrator.HandleMemberChange(ctx, guild,
				guard.MembershipSnapshot{
					Member: change.Member,
					Roles:  ruleset.NewRoleSet(change.BeforeRoles...),
				},
				guard.MembershipSnapshot{
					Member: change.Member,
					Roles:  ruleset.NewRoleSet(change.AfterRoles...),
				},
			)
		}
	}
}

// sleepContext sleeps for the duration, returning false if ctx was
// cancelled first.
func sleepContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// newLogger builds the process logger at the configured level.
func newLogger(level string) *slog.Logger {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel}))
}
