// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides channel assertion helpers shared across
// package tests. All helpers take an explicit timeout so a broken
// pipeline fails the test instead of hanging it.
package testutil
