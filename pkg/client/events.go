// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// EventClient provides access to the daemon's event history.
//
// Events track activity like session starts, instance crashes and record
// changes. Event types are dotted names ("instance.crashed") and history
// queries accept wildcard patterns ("instance.*").
//
// Access this client through [Client.Events].
type EventClient struct {
	c *Client
}

// EventQuery filters an event history request. The zero value returns
// everything still in the history buffer.
type EventQuery struct {
	// Types filters by event type; wildcard patterns are accepted.
	Types []string

	// Limit caps the number of events returned, keeping the newest.
	Limit int

	// Since excludes events at or before this time.
	Since time.Time

	// Until excludes events at or after this time.
	Until time.Time
}

// History returns past events matching the query, oldest first.
func (e *EventClient) History(ctx context.Context, query EventQuery) ([]Event, error) {
	params := url.Values{}
	for _, t := range query.Types {
		params.Add("type", t)
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if !query.Since.IsZero() {
		params.Set("since", query.Since.Format(time.RFC3339))
	}
	if !query.Until.IsZero() {
		params.Set("until", query.Until.Format(time.RFC3339))
	}

	path := "/api/v1/events"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	data, err := e.c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse events: %w", err)
	}
	return events, nil
}
