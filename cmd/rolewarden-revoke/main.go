// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// rolewarden-revoke removes a role from every member of a guild that
// currently holds it, paced against the same rate budget as the
// daemon's reactive pipeline. Intended for administrative cleanup
// after a role is retired or a dependency scheme changes.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rolewarden/rolewarden/lib/gateway"
	"github.com/rolewarden/rolewarden/lib/guard"
	"github.com/rolewarden/rolewarden/lib/process"
	"github.com/rolewarden/rolewarden/lib/ref"
	"github.com/rolewarden/rolewarden/lib/secret"
	"github.com/rolewarden/rolewarden/lib/version"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var gatewayURL, tokenPath, guildRaw, roleRaw string
	var pause time.Duration
	var showVersion bool
	pflag.StringVar(&gatewayURL, "gateway", "", "gateway API base URL")
	pflag.StringVar(&tokenPath, "token-path", "", "file holding the gateway bearer token (\"-\" for stdin)")
	pflag.StringVar(&guildRaw, "guild", "", "guild ID")
	pflag.StringVar(&roleRaw, "role", "", "role ID to revoke from all holders")
	pflag.DurationVar(&pause, "pause", guard.DefaultPause, "interval between revocation calls")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		fmt.Println("rolewarden-revoke", version.Info())
		return nil
	}

	if gatewayURL == "" || tokenPath == "" || guildRaw == "" || roleRaw == "" {
		return fmt.Errorf("--gateway, --token-path, --guild, and --role are required")
	}

	guild, err := ref.ParseGuildID(guildRaw)
	if err != nil {
		return err
	}
	role, err := ref.ParseRoleID(roleRaw)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	token, err := secret.ReadFromPath(tokenPath)
	if err != nil {
		return fmt.Errorf("reading gateway token: %w", err)
	}
	defer token.Close()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client, err := gateway.NewClient(gateway.ClientConfig{
		BaseURL: gatewayURL,
		Token:   token,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	revoked, err := guard.BulkRevoke(ctx, client, client, guild, role, guard.BulkOptions{
		Pause:  pause,
		Logger: logger,
	})
	if err != nil {
		// Partial progress is still reported: an interrupted sweep can
		// be resumed by running the command again.
		fmt.Printf("revoked %s from %d members before failing\n", role, revoked)
		return err
	}

	fmt.Printf("revoked %s from %d members\n", role, revoked)
	return nil
}
