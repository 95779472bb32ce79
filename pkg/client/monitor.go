// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// MonitorClient provides access to resource monitor actions.
//
// The latest resource sample itself is part of [SessionClient.Status].
//
// Access this client through [Client.Monitor].
type MonitorClient struct {
	c *Client
}

// Optimize lowers the scheduling priority of all browser processes and
// returns how many were re-niced.
func (m *MonitorClient) Optimize(ctx context.Context) (int, error) {
	data, err := m.c.post(ctx, "/api/v1/monitor/optimize")
	if err != nil {
		return 0, err
	}

	var result struct {
		Optimized int `json:"optimized"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return 0, fmt.Errorf("failed to parse optimize result: %w", err)
	}
	return result.Optimized, nil
}
