// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable identity references
// for the entities Rolewarden manages: guilds, members, and roles.
//
// All three are opaque tokens assigned by the platform. The distinct
// Go types exist to prevent accidental confusion between them at
// compile time — a RoleID can never be passed where a MemberID is
// expected, even though both are strings on the wire.
package ref
