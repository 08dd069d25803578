// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package ruleset

import (
	"fmt"
	"sort"

	"github.com/rolewarden/rolewarden/lib/ref"
)

// Rule declares that holders of RoleID must also hold every role in
// DependsOn. A rule with an empty DependsOn list never triggers
// revocation: there is nothing that can break.
type Rule struct {
	// RoleID is the dependent role. Authoritative.
	RoleID ref.RoleID `json:"roleId"`

	// RoleName is the display name recorded when the rule was
	// created. Non-authoritative; used only in logs and CLI output.
	RoleName string `json:"roleName,omitempty"`

	// DependsOn lists the roles RoleID requires. Order is
	// irrelevant; the planner treats it as a set.
	DependsOn []ref.RoleID `json:"dependencies"`
}

// Validate checks the structural invariants of a single rule: a
// non-zero role ID, non-zero dependency IDs, and no self-dependency.
// Self-dependency would make the role unconditionally revocable the
// moment it is lost elsewhere in a change batch, which is never what
// an operator means.
func (r Rule) Validate() error {
	if r.RoleID.IsZero() {
		return fmt.Errorf("rule is missing roleId")
	}
	for _, dependency := range r.DependsOn {
		if dependency.IsZero() {
			return fmt.Errorf("rule %s has an empty dependency entry", r.RoleID)
		}
		if dependency == r.RoleID {
			return fmt.Errorf("rule %s depends on itself", r.RoleID)
		}
	}
	return nil
}

// Ruleset is an ordered collection of rules for one guild scope.
// Treat a Ruleset as immutable once constructed: the store publishes
// a new Ruleset on every successful reload, and concurrent planner
// invocations read whichever set was current when they started.
type Ruleset []Rule

// RoleSet is a set of role IDs. Used for membership snapshots and
// revocation plans.
type RoleSet map[ref.RoleID]struct{}

// NewRoleSet builds a RoleSet from the given role IDs.
func NewRoleSet(roles ...ref.RoleID) RoleSet {
	set := make(RoleSet, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return set
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role ref.RoleID) bool {
	_, ok := s[role]
	return ok
}

// Add inserts role into the set.
func (s RoleSet) Add(role ref.RoleID) {
	s[role] = struct{}{}
}

// Slice returns the set's roles sorted by ID. Sorting keeps wire
// payloads and log lines deterministic.
func (s RoleSet) Slice() []ref.RoleID {
	roles := make([]ref.RoleID, 0, len(s))
	for role := range s {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].String() < roles[j].String()
	})
	return roles
}
