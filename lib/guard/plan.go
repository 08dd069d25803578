// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import "github.com/rolewarden/rolewarden/lib/ruleset"

// Plan computes the roles to revoke from one member after a
// membership change. A rule marks its role for revocation iff both:
//
//  1. the member held the role immediately before the change (a role
//     never held cannot be revoked), and
//  2. at least one declared dependency is absent from the after
//     snapshot. The check runs against the new state, not the diff:
//     a dependency that was lost and regained within one change is
//     not broken.
//
// A rule with no dependencies never matches condition 2 and is
// therefore never revoked here. Plan is pure and total: it performs
// no I/O, never fails, and returns an empty set when nothing
// qualifies. Callers treat an empty result as "no job", not as an
// error.
func Plan(before, after MembershipSnapshot, rules ruleset.Ruleset) ruleset.RoleSet {
	var revoke ruleset.RoleSet
	for _, rule := range rules {
		if !before.Roles.Has(rule.RoleID) {
			continue
		}
		for _, dependency := range rule.DependsOn {
			if !after.Roles.Has(dependency) {
				if revoke == nil {
					revoke = make(ruleset.RoleSet)
				}
				revoke.Add(rule.RoleID)
				break
			}
		}
	}
	return revoke
}
