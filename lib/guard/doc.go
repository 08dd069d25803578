// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package guard implements the role dependency enforcement pipeline:
// membership-change events flow through a per-subject debounce gate,
// a pure revocation planner, and a paced serial queue that issues the
// actual revocation calls without exceeding the platform's per-second
// call budget.
//
// The pipeline is purely reactive. It holds no membership state of
// its own: each event carries before/after snapshots of one member,
// and the planner decides from those snapshots plus the currently
// published ruleset which held roles have lost a dependency.
//
// Nothing in this package terminates the process. Failed revocations
// are logged and dropped, malformed events are logged and dropped,
// and a revocation that never happens surfaces only as a role the
// platform still shows — the accepted consistency gap of a
// best-effort, at-most-once pipeline.
package guard
