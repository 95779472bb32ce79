// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// ProfileClient provides access to launch profile records.
//
// Profiles are named launch configurations: how many windows to open, which
// identity label each one uses, and where they point. The active profile
// overrides the settings record on the next launch.
//
// Access this client through [Client.Profiles].
type ProfileClient struct {
	c *Client
}

// List returns all profiles.
func (p *ProfileClient) List(ctx context.Context) ([]Profile, error) {
	data, err := p.c.get(ctx, "/api/v1/profiles")
	if err != nil {
		return nil, err
	}

	var profiles []Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return profiles, nil
}

// Get returns a profile by ID.
func (p *ProfileClient) Get(ctx context.Context, id string) (*Profile, error) {
	data, err := p.c.get(ctx, "/api/v1/profiles/"+id)
	if err != nil {
		return nil, err
	}
	return parseProfile(data)
}

// Create creates a new profile. The server assigns the ID and pads missing
// instance labels with the default naming scheme.
func (p *ProfileClient) Create(ctx context.Context, profile Profile) (*Profile, error) {
	data, err := p.c.postJSON(ctx, "/api/v1/profiles", profile)
	if err != nil {
		return nil, err
	}
	return parseProfile(data)
}

// Update replaces a profile's contents.
func (p *ProfileClient) Update(ctx context.Context, id string, profile Profile) (*Profile, error) {
	data, err := p.c.putJSON(ctx, "/api/v1/profiles/"+id, profile)
	if err != nil {
		return nil, err
	}
	return parseProfile(data)
}

// Delete removes a profile. Deleting the active profile deactivates it.
func (p *ProfileClient) Delete(ctx context.Context, id string) error {
	_, err := p.c.delete(ctx, "/api/v1/profiles/"+id)
	return err
}

// Activate makes a profile the active one. The next launch uses its values
// in place of the settings record.
func (p *ProfileClient) Activate(ctx context.Context, id string) error {
	_, err := p.c.post(ctx, "/api/v1/profiles/"+id+"/activate")
	return err
}

// Deactivate clears the active profile.
func (p *ProfileClient) Deactivate(ctx context.Context) error {
	_, err := p.c.post(ctx, "/api/v1/profiles/deactivate")
	return err
}

func parseProfile(data json.RawMessage) (*Profile, error) {
	var profile Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &profile, nil
}

// LayoutClient provides access to window layout records.
//
// Layouts are named placements: a target rectangle and the grid derived
// from a window count. The active layout controls where arrange passes put
// the session's windows.
//
// Access this client through [Client.Layouts].
type LayoutClient struct {
	c *Client
}

// List returns all layouts.
func (l *LayoutClient) List(ctx context.Context) ([]Layout, error) {
	data, err := l.c.get(ctx, "/api/v1/layouts")
	if err != nil {
		return nil, err
	}

	var layouts []Layout
	if err := json.Unmarshal(data, &layouts); err != nil {
		return nil, fmt.Errorf("failed to parse layouts: %w", err)
	}
	return layouts, nil
}

// Get returns a layout by ID.
func (l *LayoutClient) Get(ctx context.Context, id string) (*Layout, error) {
	data, err := l.c.get(ctx, "/api/v1/layouts/"+id)
	if err != nil {
		return nil, err
	}
	return parseLayout(data)
}

// Create creates a new layout. The server assigns the ID and derives the
// grid from the window count.
func (l *LayoutClient) Create(ctx context.Context, layout Layout) (*Layout, error) {
	data, err := l.c.postJSON(ctx, "/api/v1/layouts", layout)
	if err != nil {
		return nil, err
	}
	return parseLayout(data)
}

// Update replaces a layout's contents.
func (l *LayoutClient) Update(ctx context.Context, id string, layout Layout) (*Layout, error) {
	data, err := l.c.putJSON(ctx, "/api/v1/layouts/"+id, layout)
	if err != nil {
		return nil, err
	}
	return parseLayout(data)
}

// Delete removes a layout. Deleting the active layout deactivates it.
func (l *LayoutClient) Delete(ctx context.Context, id string) error {
	_, err := l.c.delete(ctx, "/api/v1/layouts/"+id)
	return err
}

// Activate makes a layout the active one.
func (l *LayoutClient) Activate(ctx context.Context, id string) error {
	_, err := l.c.post(ctx, "/api/v1/layouts/"+id+"/activate")
	return err
}

// Deactivate clears the active layout. Arrange passes fall back to the
// primary display.
func (l *LayoutClient) Deactivate(ctx context.Context) error {
	_, err := l.c.post(ctx, "/api/v1/layouts/deactivate")
	return err
}

func parseLayout(data json.RawMessage) (*Layout, error) {
	var layout Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	return &layout, nil
}

// SettingsClient provides access to the singleton settings record.
//
// Access this client through [Client.Settings].
type SettingsClient struct {
	c *Client
}

// Get returns the current settings.
func (s *SettingsClient) Get(ctx context.Context) (*Settings, error) {
	data, err := s.c.get(ctx, "/api/v1/settings")
	if err != nil {
		return nil, err
	}
	return parseSettings(data)
}

// Update validates and persists new settings. Changes apply to the next
// launch; a running session is untouched.
func (s *SettingsClient) Update(ctx context.Context, settings Settings) (*Settings, error) {
	data, err := s.c.putJSON(ctx, "/api/v1/settings", settings)
	if err != nil {
		return nil, err
	}
	return parseSettings(data)
}

func parseSettings(data json.RawMessage) (*Settings, error) {
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &settings, nil
}
