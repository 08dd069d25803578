// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/rolewarden/rolewarden/lib/netutil"
	"github.com/rolewarden/rolewarden/lib/ref"
	"github.com/rolewarden/rolewarden/lib/secret"
)

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// BaseURL is the gateway API base URL (e.g., "https://gateway.example.com").
	BaseURL string
	// Token authenticates every request as a bearer token. Required.
	// The Client reads but does not close it; the caller retains
	// ownership.
	Token *secret.Buffer
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
}

// Client is an authenticated gateway API client. Safe for concurrent
// use.
type Client struct {
	baseURL    string
	token      *secret.Buffer
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a gateway client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("gateway: BaseURL is required")
	}
	if config.Token == nil {
		return nil, fmt.Errorf("gateway: Token is required")
	}

	// Validate the URL structure up front. Request URLs are built by
	// direct string concatenation on the trimmed base.
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("gateway: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		token:      config.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CloseIdleConnections drops idle HTTP connections from the underlying
// transport's pool. Call after a network disruption so the next request
// opens a fresh TCP connection instead of reusing a poisoned one.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// RevokeRoles removes the given roles from a member. Revoking a role
// the member no longer holds is not an error: the gateway's
// ROLE_NOT_ASSIGNED response is treated as success, so a revocation
// that raced with a manual removal still lands.
func (c *Client) RevokeRoles(ctx context.Context, guild ref.GuildID, member ref.MemberID, roles []ref.RoleID) error {
	if len(roles) == 0 {
		return nil
	}

	path := fmt.Sprintf("/v1/guilds/%s/members/%s/roles/revoke",
		url.PathEscape(guild.String()), url.PathEscape(member.String()))
	request := struct {
		Roles []ref.RoleID `json:"roles"`
	}{Roles: roles}

	_, err := c.doRequest(ctx, http.MethodPost, path, request)
	if err != nil {
		if IsAPIError(err, ErrCodeRoleNotAssigned) {
			c.logger.Debug("roles already absent",
				"guild", guild,
				"member", member,
				"roles", len(roles))
			return nil
		}
		return fmt.Errorf("gateway: revoking %d roles from member %s in guild %s: %w",
			len(roles), member, guild, err)
	}
	return nil
}

// HoldersOf returns the members currently holding the role.
func (c *Client) HoldersOf(ctx context.Context, guild ref.GuildID, role ref.RoleID) ([]ref.MemberID, error) {
	path := fmt.Sprintf("/v1/guilds/%s/roles/%s/members",
		url.PathEscape(guild.String()), url.PathEscape(role.String()))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("gateway: listing holders of role %s in guild %s: %w", role, guild, err)
	}

	var response struct {
		Members []ref.MemberID `json:"members"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("gateway: failed to parse holders response: %w", err)
	}
	return response.Members, nil
}

// doRequest performs an HTTP request against the gateway and returns
// the response body. On 2xx, returns the body. On 4xx/5xx, returns the
// body alongside an *APIError. query may be omitted for endpoints
// without query parameters.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, query ...url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 && query[0] != nil {
		requestURL += "?" + query[0].Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("gateway: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to create request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Authorization", "Bearer "+c.token.String())

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("gateway: request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	// All gateway error responses use the same JSON shape.
	var apiErr APIError
	if jsonErr := json.Unmarshal(responseBody, &apiErr); jsonErr != nil || apiErr.Code == "" {
		// Non-JSON error body. Should not happen with a healthy
		// gateway; fail loud with the raw body.
		return nil, fmt.Errorf("gateway: unexpected %d response from %s %s: %s",
			response.StatusCode, method, path, string(responseBody))
	}
	apiErr.StatusCode = response.StatusCode

	return responseBody, &apiErr
}
