// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import "fmt"

// MemberID identifies one member of a guild. Member IDs are opaque
// platform-assigned strings, unique within the platform (not merely
// within a guild), so a MemberID alone is enough to address a member
// in revocation calls.
type MemberID struct {
	id string
}

// ParseMemberID constructs a MemberID from a raw string. Returns an
// error if the string is empty.
func ParseMemberID(raw string) (MemberID, error) {
	if raw == "" {
		return MemberID{}, fmt.Errorf("member ID is empty")
	}
	return MemberID{id: raw}, nil
}

// String returns the raw member ID string.
func (m MemberID) String() string {
	return m.id
}

// IsZero reports whether the MemberID is the zero value (empty).
func (m MemberID) IsZero() bool {
	return m.id == ""
}

// MarshalText implements encoding.TextMarshaler. Returns an error if
// the MemberID is zero.
func (m MemberID) MarshalText() ([]byte, error) {
	if m.id == "" {
		return nil, fmt.Errorf("cannot marshal zero MemberID")
	}
	return []byte(m.id), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// produces the zero value.
func (m *MemberID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*m = MemberID{}
		return nil
	}
	*m = MemberID{id: string(data)}
	return nil
}
