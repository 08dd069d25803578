// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package rulefile serves role-dependency rule documents from a
// directory of JSONC files, one file per guild (<guild>.jsonc), and
// watches the directory for changes.
//
// The watcher reports raw per-guild change notifications; coalescing
// bursts into a single reload is the store's job, not the watcher's.
package rulefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rolewarden/rolewarden/lib/ref"
	"github.com/rolewarden/rolewarden/lib/rulestore"
)

// Extension is the required suffix for rule documents. Files without
// it are ignored by the watcher.
const Extension = ".jsonc"

// Source reads rule documents from a directory. It implements
// rulestore.Source.
type Source struct {
	directory string
}

// NewSource creates a Source rooted at directory. The directory must
// exist; individual guild files may appear and disappear freely.
func NewSource(directory string) (*Source, error) {
	absolute, err := filepath.Abs(directory)
	if err != nil {
		return nil, fmt.Errorf("rulefile: resolving directory %q: %w", directory, err)
	}
	info, err := os.Stat(absolute)
	if err != nil {
		return nil, fmt.Errorf("rulefile: rules directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("rulefile: %s is not a directory", absolute)
	}
	return &Source{directory: absolute}, nil
}

// Path returns the rules file path for a guild.
func (s *Source) Path(guild ref.GuildID) string {
	return filepath.Join(s.directory, guild.String()+Extension)
}

// Read returns the raw rule document for a guild. A missing file is
// reported as rulestore.ErrNotFound so the store applies its retention
// policy.
func (s *Source) Read(_ context.Context, guild ref.GuildID) ([]byte, error) {
	data, err := os.ReadFile(s.Path(guild))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("rules for guild %s: %w", guild, rulestore.ErrNotFound)
		}
		return nil, fmt.Errorf("rules for guild %s: %w", guild, err)
	}
	return data, nil
}

// guildForFilename maps a directory entry name to the guild whose
// rules it holds. Returns a zero GuildID for names that are not rule
// documents (wrong extension, editor temp files, unparseable stem).
func guildForFilename(name string) ref.GuildID {
	stem, found := strings.CutSuffix(name, Extension)
	if !found || stem == "" {
		return ref.GuildID{}
	}
	guild, err := ref.ParseGuildID(stem)
	if err != nil {
		return ref.GuildID{}
	}
	return guild
}
