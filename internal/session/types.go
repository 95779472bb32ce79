// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package session supervises the launched browser instances: it owns the
// authoritative slot list, detects and recovers crashes, and arranges the
// instances' windows into a grid.
package session

import (
	"time"

	"github.com/streamwall/streamwall/internal/launcher"
)

// SlotState is the lifecycle state of one supervised slot.
type SlotState int

const (
	StateLaunching SlotState = iota
	StateRunning
	StateCrashed
	StateRecovering
	StateClosed
)

func (s SlotState) String() string {
	switch s {
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateCrashed:
		return "crashed"
	case StateRecovering:
		return "recovering"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler to output the string representation.
func (s SlotState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// InstanceState is a snapshot of one slot, safe to hand out of the lock.
type InstanceState struct {
	Slot        int       `json:"slot"`
	Label       string    `json:"label"`
	URL         string    `json:"url"`
	State       SlotState `json:"state"`
	Alive       bool      `json:"alive"`
	LastChecked time.Time `json:"last_checked_at"`
	PID         int       `json:"pid,omitempty"`
	ExitCode    int       `json:"exit_code,omitempty"`
}

// Handle is the supervisor's view of a launched process.
type Handle interface {
	Stop() error
	Status() launcher.Status
}

// Backend launches browser instances. Available reports whether launching is
// possible at all; an unavailable backend aborts a launch batch entirely.
type Backend interface {
	Available() error
	Launch(label, url string, memoryLimitMB *int, extra []string) (Handle, error)
}

// LauncherBackend adapts launcher.Launcher to the Backend seam.
type LauncherBackend struct {
	Launcher *launcher.Launcher
}

// Available reports whether a browser executable was located.
func (b LauncherBackend) Available() error {
	if b.Launcher == nil || b.Launcher.ExecPath() == "" {
		return launcher.ErrBrowserNotFound
	}
	return nil
}

// Launch starts one instance.
func (b LauncherBackend) Launch(label, url string, memoryLimitMB *int, extra []string) (Handle, error) {
	proc, err := b.Launcher.Launch(label, url, memoryLimitMB, extra)
	if err != nil {
		return nil, err
	}
	return proc, nil
}

// Config holds the supervisor's timing and matching knobs.
type Config struct {
	// CheckInterval is both the supervision loop period and the liveness
	// debounce: a slot is not declared dead before this much time has passed
	// since it was last seen.
	CheckInterval time.Duration

	// LaunchDelay is the fixed pause between consecutive spawns, so a batch
	// does not overwhelm the OS with simultaneous process creation.
	LaunchDelay time.Duration

	// SettleDelay is the fixed wait after a launch batch before the first
	// arrangement pass. Window discovery after it is still best-effort.
	SettleDelay time.Duration

	// TitleMatch holds the substrings that identify this session's windows
	// (destination brand name, host application name).
	TitleMatch []string

	// ExtraArgs are appended to every spawn.
	ExtraArgs []string
}

func (c *Config) applyDefaults() {
	if c.CheckInterval <= 0 {
		c.CheckInterval = 10 * time.Second
	}
	if c.LaunchDelay < 0 {
		c.LaunchDelay = 0
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = 0
	}
	if len(c.TitleMatch) == 0 {
		c.TitleMatch = []string{"Twitch", "Chrome"}
	}
}

// LaunchSpec describes one launch batch after profile/settings resolution.
type LaunchSpec struct {
	WindowCount   int
	Destination   string
	Quality       string
	MemoryLimitMB *int
	Labels        []string
}
