// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// SessionClient provides access to session control operations.
//
// A session is a batch of supervised browser instances. The SessionClient
// launches and terminates sessions, closes and recovers individual slots,
// and triggers window arrangement.
//
// Access this client through [Client.Session]:
//
//	err := client.Session.Launch(ctx)
type SessionClient struct {
	c *Client
}

// Status returns the daemon's overall state.
func (s *SessionClient) Status(ctx context.Context) (*Status, error) {
	data, err := s.c.get(ctx, "/api/v1/status")
	if err != nil {
		return nil, err
	}

	var status Status
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}
	return &status, nil
}

// Instances returns every slot in the session, including crashed and
// closed ones.
func (s *SessionClient) Instances(ctx context.Context) (*InstanceList, error) {
	data, err := s.c.get(ctx, "/api/v1/instances")
	if err != nil {
		return nil, err
	}

	var list InstanceList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse instances: %w", err)
	}
	return &list, nil
}

// Launch starts a session using the current settings and active profile.
//
// Returns the slots of the new session. Fails with a CONFLICT error when a
// session is already running, and with a SESSION_ERROR when no browser
// executable could be found.
func (s *SessionClient) Launch(ctx context.Context) ([]Instance, error) {
	data, err := s.c.post(ctx, "/api/v1/session/launch")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Instances []Instance `json:"instances"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse launch response: %w", err)
	}
	return resp.Instances, nil
}

// Terminate ends the whole session, closing every instance.
func (s *SessionClient) Terminate(ctx context.Context) error {
	_, err := s.c.post(ctx, "/api/v1/session/terminate")
	return err
}

// TerminateCount closes n instances from the tail of the session, newest
// first. Returns how many were actually closed, which may be fewer than
// requested.
func (s *SessionClient) TerminateCount(ctx context.Context, n int) (int, error) {
	data, err := s.c.delete(ctx, "/api/v1/session/instances/"+strconv.Itoa(n))
	if err != nil {
		return 0, err
	}

	var resp struct {
		Removed int `json:"removed"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse terminate response: %w", err)
	}
	return resp.Removed, nil
}

// TerminateSlot closes a single slot. The slot stays in the instance list
// as closed.
func (s *SessionClient) TerminateSlot(ctx context.Context, slot int) error {
	_, err := s.c.post(ctx, "/api/v1/session/instances/"+strconv.Itoa(slot)+"/terminate")
	return err
}

// RecoverSlot relaunches a crashed slot. Slots that are running or closed
// are left alone.
func (s *SessionClient) RecoverSlot(ctx context.Context, slot int) error {
	_, err := s.c.post(ctx, "/api/v1/session/instances/"+strconv.Itoa(slot)+"/recover")
	return err
}

// Arrange tiles the session's windows into the active layout's grid, or a
// computed grid on the primary display.
func (s *SessionClient) Arrange(ctx context.Context) ([]ArrangedWindow, error) {
	return s.arrange(ctx, "/api/v1/session/arrange")
}

// ArrangeCount tiles up to count matching windows without a session, for
// windows launched by hand.
func (s *SessionClient) ArrangeCount(ctx context.Context, count int) ([]ArrangedWindow, error) {
	return s.arrange(ctx, "/api/v1/session/arrange?count="+strconv.Itoa(count))
}

func (s *SessionClient) arrange(ctx context.Context, path string) ([]ArrangedWindow, error) {
	data, err := s.c.post(ctx, path)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Windows []ArrangedWindow `json:"windows"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse arrange response: %w", err)
	}
	return resp.Windows, nil
}
