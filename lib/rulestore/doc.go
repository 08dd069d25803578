// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package rulestore publishes the current dependency ruleset for each
// guild scope and keeps it fresh as the backing document changes.
//
// The store is deliberately conservative: a missing or unparsable
// document never clears previously published rules. Losing the rules
// file must degrade to "enforcement continues on stale rules", not
// "enforcement silently stops".
//
// External change notifications are debounced per scope with a
// trailing-edge timer: rapid successive notifications collapse into a
// single reload scheduled one debounce window after the last one.
// Reloads triggered this way compare content fingerprints first, so a
// touch without a content change is a no-op.
package rulestore
