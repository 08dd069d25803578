// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version of Rolewarden binaries.
package version

// value is overridden at build time:
//
//	go build -ldflags "-X github.com/rolewarden/rolewarden/lib/version.value=v1.2.3"
var value = "dev"

// Info returns the build version string.
func Info() string { return value }
