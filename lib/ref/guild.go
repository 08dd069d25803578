// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// GuildID identifies one guild scope: an isolated administrative
// domain with its own role configuration and membership set. Guild IDs
// are opaque platform-assigned strings with no internal structure.
type GuildID struct {
	id string
}

// ParseGuildID constructs a GuildID from a raw string. Returns an
// error if the string is empty.
func ParseGuildID(raw string) (GuildID, error) {
	if raw == "" {
		return GuildID{}, fmt.Errorf("guild ID is empty")
	}
	return GuildID{id: raw}, nil
}

// String returns the raw guild ID string.
func (g GuildID) String() string {
	return g.id
}

// IsZero reports whether the GuildID is the zero value (empty).
func (g GuildID) IsZero() bool {
	return g.id == ""
}

// MarshalText implements encoding.TextMarshaler. Returns an error if
// the GuildID is zero, since serializing an empty guild ID would
// produce ambiguous JSON.
func (g GuildID) MarshalText() ([]byte, error) {
	if g.id == "" {
		return nil, fmt.Errorf("cannot marshal zero GuildID")
	}
	return []byte(g.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value, matching the omitempty JSON convention for
// optional guild scopes.
func (g *GuildID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*g = GuildID{}
		return nil
	}
	*g = GuildID{id: string(data)}
	return nil
}
