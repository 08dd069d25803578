// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response I/O.
//
// All helpers cap body reads at MaxResponseSize so a misbehaving
// gateway cannot drive unbounded allocation. They are intended for
// JSON API responses, not streaming bodies.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
)

// MaxResponseSize bounds JSON API response body reads: 64 MB. A
// legitimate gateway response (role lists, event batches) is orders of
// magnitude smaller; the limit only exists to stop a pathological
// response from exhausting memory.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize
// bytes. Use instead of io.ReadAll on HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a response body (bounded at MaxResponseSize)
// and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}
