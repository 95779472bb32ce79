// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// Status is the daemon's overall state as reported by GET /api/v1/status.
type Status struct {
	// Version is the daemon's version string.
	Version string `json:"version"`

	// Running reports whether a session is active.
	Running bool `json:"running"`

	// Slots is the total number of slots in the session, including closed ones.
	Slots int `json:"slots"`

	// Alive is the number of slots with a live browser window.
	Alive int `json:"alive"`

	// Settings is the current settings record.
	Settings Settings `json:"settings"`

	// ActiveProfile is the name of the active profile, if any.
	ActiveProfile string `json:"active_profile,omitempty"`

	// ActiveLayout is the name of the active layout, if any.
	ActiveLayout string `json:"active_layout,omitempty"`

	// Resources is the latest resource sample, if monitoring is enabled.
	Resources *ResourceSnapshot `json:"resources,omitempty"`
}

// Instance is one supervised slot.
type Instance struct {
	Slot        int       `json:"slot"`
	Label       string    `json:"label"`
	URL         string    `json:"url"`
	State       string    `json:"state"` // launching, running, crashed, recovering, closed
	Alive       bool      `json:"alive"`
	LastChecked time.Time `json:"last_checked_at"`
	PID         int       `json:"pid,omitempty"`
	ExitCode    int       `json:"exit_code,omitempty"`
}

// InstanceList is the response to GET /api/v1/instances.
type InstanceList struct {
	Running   bool       `json:"running"`
	Instances []Instance `json:"instances"`
}

// ArrangedWindow is one window placement from an arrange pass.
type ArrangedWindow struct {
	Window uint32 `json:"window"`
	Title  string `json:"title"`
	Slot   int    `json:"slot"`
	Rect   Rect   `json:"rect"`
	Error  string `json:"error,omitempty"`
}

// Rect is a rectangle in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Settings is the singleton settings record.
type Settings struct {
	WindowCount     int     `json:"window_count"`
	Destination     string  `json:"destination_name"`
	Quality         string  `json:"quality"`
	MemoryLimitMB   *int    `json:"memory_limit_mb"`
	ActiveProfileID *string `json:"active_profile_id"`
	ActiveLayoutID  *string `json:"active_layout_id"`
}

// Profile is a named launch configuration.
type Profile struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	WindowCount    int        `json:"window_count"`
	InstanceLabels []string   `json:"instance_labels"`
	Destination    string     `json:"destination_name"`
	Quality        string     `json:"quality"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Layout is a named window placement.
type Layout struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Monitor     Rect       `json:"monitor"`
	WindowCount int        `json:"window_count"`
	Grid        Grid       `json:"grid"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Grid is the (cols, rows) partition derived from a layout's window count.
type Grid struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Event is one event from the daemon's event history.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// CrashReport records what the daemon knew when an instance died.
type CrashReport struct {
	Version   string    `json:"version"`
	ID        string    `json:"id"`
	Slot      int       `json:"slot"`
	Label     string    `json:"label"`
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
	ExitCode  int       `json:"exit_code"`
	Error     string    `json:"error,omitempty"`
	Trigger   string    `json:"trigger"`
}

// ResourceSnapshot is the monitor's latest sample.
type ResourceSnapshot struct {
	Network       NetworkStats   `json:"network"`
	Processes     []ProcessStats `json:"processes"`
	TotalRSSBytes uint64         `json:"total_rss_bytes"`
	SampledAt     time.Time      `json:"sampled_at"`
}

// NetworkStats is the sampled network throughput across all interfaces.
type NetworkStats struct {
	BytesSentPerSec float64   `json:"bytes_sent_per_sec"`
	BytesRecvPerSec float64   `json:"bytes_recv_per_sec"`
	SampledAt       time.Time `json:"sampled_at"`
}

// ProcessStats is one browser process in the census.
type ProcessStats struct {
	PID      int    `json:"pid"`
	Name     string `json:"name"`
	RSSBytes uint64 `json:"rss_bytes"`
}
