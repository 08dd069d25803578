// Copyright 2026 The Rolewarden Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rolewarden/rolewarden/lib/ref"
)

// MemberChange is one membership-change event from the gateway: the
// member's role assignments before and after the change.
type MemberChange struct {
	Member      ref.MemberID `json:"member"`
	BeforeRoles []ref.RoleID `json:"beforeRoles"`
	AfterRoles  []ref.RoleID `json:"afterRoles"`
}

// memberEventsResponse is the wire shape of the long-poll endpoint.
type memberEventsResponse struct {
	Cursor string         `json:"cursor"`
	Events []MemberChange `json:"events"`
}

// maxPollRetries is the number of consecutive poll failures allowed
// before WaitForChange returns an error. Each retry uses a 1-second
// server-side timeout so the HTTP round-trip itself provides backoff.
const maxPollRetries = 5

// longPollTimeout is the server-side hold time in milliseconds for
// normal polls. The gateway holds the connection for up to this
// duration and returns immediately when events arrive.
const longPollTimeout = 30000

// retryTimeout is the server-side timeout in milliseconds used after a
// poll error. Short so the retry completes quickly.
const retryTimeout = 1000

// MemberWatcher tracks a position in a guild's membership event stream.
// Create one with WatchMembers, then call WaitForChange in a loop to
// receive events arriving after the checkpoint.
//
// All waiting uses gateway long-polling: the server holds the
// connection until events arrive. There is no client-side polling
// interval.
//
// MemberWatcher is not safe for concurrent use. For fan-out across
// guilds, create one watcher per guild — the cursor travels as a query
// parameter, not server-side state.
type MemberWatcher struct {
	client  *Client
	guild   ref.GuildID
	cursor  string
	pending []MemberChange
}

// WatchMembers captures the current position in the guild's membership
// event stream. The returned watcher only sees events arriving after
// this call. This performs an immediate poll (timeout=0) to obtain the
// current cursor without blocking.
func WatchMembers(ctx context.Context, client *Client, guild ref.GuildID) (*MemberWatcher, error) {
	if guild.IsZero() {
		return nil, fmt.Errorf("gateway: WatchMembers requires a non-zero guild ID")
	}

	response, err := client.pollMemberEvents(ctx, guild, "", 0)
	if err != nil {
		return nil, fmt.Errorf("gateway: initial poll for member watch in guild %s: %w", guild, err)
	}
	return &MemberWatcher{
		client: client,
		guild:  guild,
		cursor: response.Cursor,
	}, nil
}

// WaitForChange blocks until the next membership-change event arrives.
// When one poll response delivers multiple events, the remainder are
// buffered and returned by subsequent calls without another poll.
//
// Bounded by ctx. On transient poll errors, retries up to 5 times with
// a 1-second server timeout (the HTTP round-trip provides backoff) and
// resets idle connections so the next attempt opens a fresh socket.
func (w *MemberWatcher) WaitForChange(ctx context.Context) (MemberChange, error) {
	if len(w.pending) > 0 {
		change := w.pending[0]
		w.pending = w.pending[1:]
		return change, nil
	}

	var pollRetries int
	for {
		pollTimeout := longPollTimeout
		if pollRetries > 0 {
			pollTimeout = retryTimeout
		}
		response, err := w.client.pollMemberEvents(ctx, w.guild, w.cursor, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return MemberChange{}, fmt.Errorf("context cancelled waiting for member change in guild %s: %w",
					w.guild, ctx.Err())
			}
			pollRetries++
			// Transport-level errors often indicate a poisoned
			// connection in Go's HTTP pool. Drop idle connections so
			// the next attempt opens a fresh socket.
			w.client.CloseIdleConnections()
			if pollRetries > maxPollRetries {
				return MemberChange{}, fmt.Errorf("poll failed %d consecutive times waiting for member change in guild %s: %w",
					pollRetries, w.guild, err)
			}
			w.client.logger.Debug("member watcher poll error, retrying",
				"guild", w.guild,
				"attempt", pollRetries,
				"max_attempts", maxPollRetries,
				"error", err)
			continue
		}
		pollRetries = 0
		w.cursor = response.Cursor

		if len(response.Events) == 0 {
			// Long-poll timeout with no activity. Poll again.
			continue
		}

		w.pending = response.Events[1:]
		return response.Events[0], nil
	}
}

// Cursor returns the current event stream position.
func (w *MemberWatcher) Cursor() string {
	return w.cursor
}

// pollMemberEvents performs one long-poll request against the guild's
// membership event stream. timeout is the server-side hold time in
// milliseconds; zero returns immediately with the current cursor.
func (c *Client) pollMemberEvents(ctx context.Context, guild ref.GuildID, cursor string, timeout int) (*memberEventsResponse, error) {
	path := fmt.Sprintf("/v1/guilds/%s/member-events", url.PathEscape(guild.String()))
	query := url.Values{}
	query.Set("timeout", strconv.Itoa(timeout))
	if cursor != "" {
		query.Set("cursor", cursor)
	}

	body, err := c.doRequest(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return nil, err
	}

	var response memberEventsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("gateway: failed to parse member events response: %w", err)
	}
	return &response, nil
}
