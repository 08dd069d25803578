// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// RoleID identifies a role: a named capability a guild member may
// hold. Role IDs are opaque platform-assigned strings, unique within
// their guild scope. Dependency rules reference roles exclusively by
// RoleID; display names are non-authoritative.
type RoleID struct {
	id string
}

// ParseRoleID constructs a RoleID from a raw string. Returns an error
// if the string is empty.
func ParseRoleID(raw string) (RoleID, error) {
	if raw == "" {
		return RoleID{}, fmt.Errorf("role ID is empty")
	}
	return RoleID{id: raw}, nil
}

// String returns the raw role ID string.
func (r RoleID) String() string {
	return r.id
}

// IsZero reports whether the RoleID is the zero value (empty).
func (r RoleID) IsZero() bool {
	return r.id == ""
}

// MarshalText implements encoding.TextMarshaler. Returns an error if
// the RoleID is zero.
func (r RoleID) MarshalText() ([]byte, error) {
	if r.id == "" {
		return nil, fmt.Errorf("cannot marshal zero RoleID")
	}
	return []byte(r.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (r *RoleID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*r = RoleID{}
		return nil
	}
	*r = RoleID{id: string(data)}
	return nil
}
