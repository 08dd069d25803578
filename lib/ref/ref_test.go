// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"testing"
)

func TestParseRejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := ParseGuildID(""); err == nil {
		t.Error("ParseGuildID accepted empty string")
	}
	if _, err := ParseMemberID(""); err == nil {
		t.Error("ParseMemberID accepted empty string")
	}
	if _, err := ParseRoleID(""); err == nil {
		t.Error("ParseRoleID accepted empty string")
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	role, err := ParseRoleID("831445098412")
	if err != nil {
		t.Fatalf("ParseRoleID: %v", err)
	}
	if role.String() != "831445098412" {
		t.Errorf("String = %q, want %q", role.String(), "831445098412")
	}
	if role.IsZero() {
		t.Error("parsed RoleID reports IsZero")
	}
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var guild GuildID
	if !guild.IsZero() {
		t.Error("zero GuildID does not report IsZero")
	}
	if _, err := guild.MarshalText(); err == nil {
		t.Error("marshaling zero GuildID did not fail")
	}
}

// TestJSONMapKey verifies that RoleID works as a JSON object key via
// its text marshalers. Dependency documents and wire payloads both
// rely on this.
func TestJSONMapKey(t *testing.T) {
	t.Parallel()

	role, err := ParseRoleID("alpha")
	if err != nil {
		t.Fatalf("ParseRoleID: %v", err)
	}

	data, err := json.Marshal(map[RoleID]int{role: 1})
	if err != nil {
		t.Fatalf("marshal map keyed by RoleID: %v", err)
	}
	if string(data) != `{"alpha":1}` {
		t.Errorf("marshaled map = %s, want {\"alpha\":1}", data)
	}

	var decoded map[RoleID]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal map keyed by RoleID: %v", err)
	}
	if decoded[role] != 1 {
		t.Errorf("decoded[%s] = %d, want 1", role, decoded[role])
	}
}
