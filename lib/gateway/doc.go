// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway is the HTTP client for the platform gateway API.
//
// Client covers the two write-side operations the enforcement pipeline
// needs (revoking roles from a member, listing the holders of a role),
// and MemberWatcher delivers membership-change events through the
// gateway's long-poll endpoint. Error responses carry a structured
// code surfaced as *APIError.
package gateway
