// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"errors"
	"fmt"
)

// APIError is a structured error response from the gateway. Callers
// can use errors.As to extract the code:
//
//	var apiErr *gateway.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Code == gateway.ErrCodeForbidden { ... }
//	}
type APIError struct {
	// Code is the gateway error code (e.g., "FORBIDDEN").
	Code string `json:"code"`
	// Message is the human-readable description from the gateway.
	Message string `json:"message"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway: %s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Gateway error codes.
const (
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeMemberNotFound  = "MEMBER_NOT_FOUND"
	ErrCodeRoleNotAssigned = "ROLE_NOT_ASSIGNED"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeUnknown         = "UNKNOWN"
)

// IsAPIError checks whether err is an *APIError with the given code.
func IsAPIError(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
