// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package ruleset defines role dependency rules: which roles a role
// requires its holder to keep. A Ruleset is parsed from a JSONC
// document, validated, and published wholesale; the running system
// never mutates an individual rule, it only swaps the whole set.
//
// Rule documents are JSON extended with // line comments, block
// comments, and trailing commas, so operators can annotate rules
// in place:
//
//	[
//	  // Raid leads must remain veterans.
//	  {"roleId": "rl", "roleName": "Raid Lead", "dependencies": ["vet"]},
//	]
//
// Unknown fields are ignored, which keeps documents forward-compatible
// with platform-side additions.
package ruleset
