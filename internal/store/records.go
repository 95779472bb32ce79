// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package store persists streamwall's Settings, Profile and Layout records
// as local JSON files, one file per record.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/streamwall/streamwall/internal/grid"
)

// ErrNotFound is returned when a record id does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError reports an invalid record. The operation is aborted and
// on-disk state is left untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid record: " + e.Reason
}

// Qualities lists the accepted stream quality values.
var Qualities = []string{"auto", "source", "720p", "480p", "360p", "160p"}

// ValidQuality reports whether q is an accepted quality value.
func ValidQuality(q string) bool {
	for _, v := range Qualities {
		if q == v {
			return true
		}
	}
	return false
}

// Settings is the singleton process-wide configuration. It is written to
// disk on every change and loaded once at startup.
type Settings struct {
	WindowCount     int     `json:"window_count"`
	Destination     string  `json:"destination_name"`
	Quality         string  `json:"quality"`
	MemoryLimitMB   *int    `json:"memory_limit_mb"`
	ActiveProfileID *string `json:"active_profile_id"`
	ActiveLayoutID  *string `json:"active_layout_id"`
}

// DefaultSettings mirrors the defaults used on first run.
func DefaultSettings() Settings {
	return Settings{WindowCount: 4, Quality: "auto"}
}

// Validate checks the settings invariants.
func (s *Settings) Validate() error {
	if s.WindowCount <= 0 {
		return &ValidationError{Reason: "window_count must be positive"}
	}
	if s.Quality != "" && !ValidQuality(s.Quality) {
		return &ValidationError{Reason: fmt.Sprintf("unknown quality %q", s.Quality)}
	}
	if s.MemoryLimitMB != nil && *s.MemoryLimitMB <= 0 {
		return &ValidationError{Reason: "memory_limit_mb must be positive"}
	}
	return nil
}

// Profile is a named launch configuration: how many windows to open, which
// identity label each one uses, and where they point.
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

// DefaultLabel returns the default identity label for slot i (0-based).
func DefaultLabel(i int) string {
	return fmt.Sprintf("Instance %d", i+1)
}

// normalize enforces the labels/window_count invariant: a label list longer
// than window_count grows window_count (labels are never truncated), a
// shorter list is padded with the default naming scheme.
func (p *Profile) normalize() {
	if len(p.InstanceLabels) > p.WindowCount {
		p.WindowCount = len(p.InstanceLabels)
	}
	for i := len(p.InstanceLabels); i < p.WindowCount; i++ {
		p.InstanceLabels = append(p.InstanceLabels, DefaultLabel(i))
	}
}

// Validate checks the profile invariants.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return &ValidationError{Reason: "name must not be empty"}
	}
	if p.WindowCount <= 0 {
		return &ValidationError{Reason: "window_count must be positive"}
	}
	if p.Quality != "" && !ValidQuality(p.Quality) {
		return &ValidationError{Reason: fmt.Sprintf("unknown quality %q", p.Quality)}
	}
	return nil
}

// GridSpec is the (cols, rows) partition derived from a layout's window count.
type GridSpec struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Layout is a named placement: a target rectangle and the grid derived from
// its window count.
type Layout struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Monitor     grid.Rect  `json:"monitor"`
	WindowCount int        `json:"window_count"`
	Grid        GridSpec   `json:"grid"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// normalize recomputes the derived grid from window_count. Called on every
// create and update so the two can never drift.
func (l *Layout) normalize() {
	cols, rows := grid.Compute(l.WindowCount)
	l.Grid = GridSpec{Cols: cols, Rows: rows}
}

// Validate checks the layout invariants.
func (l *Layout) Validate() error {
	if l.Name == "" {
		return &ValidationError{Reason: "name must not be empty"}
	}
	if l.WindowCount <= 0 {
		return &ValidationError{Reason: "window_count must be positive"}
	}
	if l.Monitor.Width <= 0 || l.Monitor.Height <= 0 {
		return &ValidationError{Reason: "monitor rectangle must have positive size"}
	}
	return nil
}
