// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for the debounce and pacing machinery.
//
// Production code injects Real(); tests inject Fake() and drive timers
// explicitly with Advance. Any function that would otherwise call
// time.Now, time.After, time.AfterFunc, or time.Sleep takes a Clock
// instead, so every timing behavior in the repository is testable
// without real sleeps.
package clock
