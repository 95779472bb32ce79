// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// CrashClient provides access to stored crash reports.
//
// The daemon writes a report whenever an instance crashes or a recovery
// fails, recording the slot, label, URL and exit code at the time.
//
// Access this client through [Client.Crashes].
type CrashClient struct {
	c *Client
}

// List returns all crash reports, newest first.
func (cr *CrashClient) List(ctx context.Context) ([]CrashReport, error) {
	data, err := cr.c.get(ctx, "/api/v1/crashes")
	if err != nil {
		return nil, err
	}

	var reports []CrashReport
	if err := json.Unmarshal(data, &reports); err != nil {
		return nil, fmt.Errorf("failed to parse crash reports: %w", err)
	}
	return reports, nil
}

// Get returns one crash report by ID.
func (cr *CrashClient) Get(ctx context.Context, id string) (*CrashReport, error) {
	data, err := cr.c.get(ctx, "/api/v1/crashes/"+id)
	if err != nil {
		return nil, err
	}

	var report CrashReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse crash report: %w", err)
	}
	return &report, nil
}

// Newest returns the most recent crash report, or nil when there is none.
func (cr *CrashClient) Newest(ctx context.Context) (*CrashReport, error) {
	data, err := cr.c.get(ctx, "/api/v1/crashes/newest")
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		return nil, nil
	}

	var report CrashReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse crash report: %w", err)
	}
	return &report, nil
}

// Delete removes one crash report.
func (cr *CrashClient) Delete(ctx context.Context, id string) error {
	_, err := cr.c.delete(ctx, "/api/v1/crashes/"+id)
	return err
}

// Clear removes all crash reports.
func (cr *CrashClient) Clear(ctx context.Context) error {
	_, err := cr.c.delete(ctx, "/api/v1/crashes")
	return err
}
