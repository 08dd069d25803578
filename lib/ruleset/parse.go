// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package ruleset

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
	"github.com/zeebo/blake3"
)

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals and validates the rule sequence. A document containing
// any invalid rule is rejected in full; the caller's retention policy
// keeps the previously published set.
func Parse(data []byte) (Ruleset, error) {
	stripped := jsonc.ToJSON(data)

	var rules Ruleset
	if err := json.Unmarshal(stripped, &rules); err != nil {
		return nil, fmt.Errorf("parsing dependency rules: %w", err)
	}

	for index, rule := range rules {
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d: %w", index, err)
		}
	}
	return rules, nil
}

// Fingerprint computes the BLAKE3 digest of a raw rule document. The
// store compares fingerprints to turn byte-identical reloads into
// no-ops without re-parsing.
func Fingerprint(data []byte) [32]byte {
	return blake3.Sum256(data)
}

// FormatFingerprint returns the canonical short form of a fingerprint
// for log output: the first 12 hex characters.
func FormatFingerprint(digest [32]byte) string {
	return hex.EncodeToString(digest[:6])
}
