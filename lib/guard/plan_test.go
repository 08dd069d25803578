// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"testing"

	"github.com/rolewarden/rolewarden/lib/ruleset"
)

func rule(t *testing.T, role string, dependencies ...string) ruleset.Rule {
	t.Helper()
	r := ruleset.Rule{RoleID: mustRole(t, role)}
	for _, dependency := range dependencies {
		r.DependsOn = append(r.DependsOn, mustRole(t, dependency))
	}
	return r
}

func TestPlanRevokesOnBrokenDependency(t *testing.T) {
	t.Parallel()

	member := mustMember(t, "m1")
	rules := ruleset.Ruleset{rule(t, "A", "B")}

	revoke := Plan(
		MembershipSnapshot{Member: member, Roles: roles(t, "A", "B")},
		MembershipSnapshot{Member: member, Roles: roles(t, "A")},
		rules,
	)
	if len(revoke) != 1 || !revoke.Has(mustRole(t, "A")) {
		t.Errorf("plan = %v, want {A}", revoke.Slice())
	}
}

func TestPlanIgnoresRolesNeverHeld(t *testing.T) {
	t.Parallel()

	member := mustMember(t, "m1")
	rules := ruleset.Ruleset{rule(t, "A", "B")}

	// Member held only B and lost it. A was never held, so there is
	// nothing to revoke.
	revoke := Plan(
		MembershipSnapshot{Member: member, Roles: roles(t, "B")},
		MembershipSnapshot{Member: member, Roles: roles(t)},
		rules,
	)
	if len(revoke) != 0 {
		t.Errorf("plan = %v, want empty", revoke.Slice())
	}
}

func TestPlanKeepsRoleWithIntactDependencies(t *testing.T) {
	t.Parallel()

	member := mustMember(t, "m1")
	rules := ruleset.Ruleset{rule(t, "A", "B", "C")}

	// All dependencies still present after the change.
	revoke := Plan(
		MembershipSnapshot{Member: member, Roles: roles(t, "A", "B", "C", "X")},
		MembershipSnapshot{Member: member, Roles: roles(t, "A", "B", "C")},
		rules,
	)
	if len(revoke) != 0 {
		t.Errorf("plan = %v, want empty", revoke.Slice())
	}
}

func TestPlanEvaluatesAgainstAfterState(t *testing.T) {
	t.Parallel()

	member := mustMember(t, "m1")
	rules := ruleset.Ruleset{rule(t, "A", "B")}

	// Any one missing dependency breaks the rule, judged strictly on
	// the after snapshot.
	revoke := Plan(
		MembershipSnapshot{Member: member, Roles: roles(t, "A")},
		MembershipSnapshot{Member: member, Roles: roles(t, "A", "B")},
		rules,
	)
	if len(revoke) != 0 {
		t.Errorf("regained dependency still revoked: plan = %v", revoke.Slice())
	}
}

func TestPlanEmptyDependenciesNeverRevoked(t *testing.T) {
	t.Parallel()

	member := mustMember(t, "m1")
	rules := ruleset.Ruleset{rule(t, "A")}

	revoke := Plan(
		MembershipSnapshot{Member: member, Roles: roles(t, "A")},
		MembershipSnapshot{Member: member, Roles: roles(t)},
		rules,
	)
	if len(revoke) != 0 {
		t.Errorf("dependency-free role revoked: plan = %v", revoke.Slice())
	}
}

func TestPlanEmptyRuleset(t *testing.T) {
	t.Parallel()

	member := mustMember(t, "m1")
	revoke := Plan(
		MembershipSnapshot{Member: member, Roles: roles(t, "A", "B")},
		MembershipSnapshot{Member: member, Roles: roles(t)},
		nil,
	)
	if len(revoke) != 0 {
		t.Errorf("plan on empty ruleset = %v, want empty", revoke.Slice())
	}
}

func TestPlanMultipleRules(t *testing.T) {
	t.Parallel()

	member := mustMember(t, "m1")
	rules := ruleset.Ruleset{
		rule(t, "A", "B"),
		rule(t, "C", "D"),
		rule(t, "E", "F"),
	}

	// Lost B and D; F intact. A and C go, E stays.
	revoke := Plan(
		MembershipSnapshot{Member: member, Roles: roles(t, "A", "B", "C", "D", "E", "F")},
		MembershipSnapshot{Member: member, Roles: roles(t, "A", "C", "E", "F")},
		rules,
	)
	if len(revoke) != 2 || !revoke.Has(mustRole(t, "A")) || !revoke.Has(mustRole(t, "C")) {
		t.Errorf("plan = %v, want {A C}", revoke.Slice())
	}
}
