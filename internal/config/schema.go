// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading for the daemon.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure for streamwall.
type Config struct {
	Version string        `json:"version"`
	Project ProjectConfig `json:"project"`
	Server  ServerConfig  `json:"server"`
	Data    DataConfig    `json:"data"`
	Browser BrowserConfig `json:"browser"`
	Session SessionConfig `json:"session"`
	Monitor MonitorConfig `json:"monitor"`
	Events  EventsConfig  `json:"events"`
	Watch   WatchConfig   `json:"watch"`
	Crashes CrashesConfig `json:"crashes"`
}

// ProjectConfig contains project metadata.
type ProjectConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ServerConfig configures the HTTP control server.
type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// DataConfig configures where records are stored.
type DataConfig struct {
	Dir string `json:"dir"`
}

// BrowserConfig configures how browser instances are found and launched.
type BrowserConfig struct {
	// Path overrides browser discovery entirely.
	Path string `json:"path"`
	// Candidates replaces the platform's default search locations.
	Candidates []string `json:"candidates"`
	// ExtraArgs are appended to every launch.
	ExtraArgs []string `json:"extra_args"`
	// ProcessNames identify browser processes in the resource census.
	ProcessNames []string `json:"process_names"`
}

// SessionConfig configures the supervision loop.
type SessionConfig struct {
	CheckInterval string   `json:"check_interval"` // liveness loop period and debounce
	LaunchDelay   string   `json:"launch_delay"`   // pause between spawns
	SettleDelay   string   `json:"settle_delay"`   // wait before the first arrange
	TitleMatch    []string `json:"title_match"`    // substrings identifying session windows
}

// MonitorConfig configures resource sampling.
type MonitorConfig struct {
	Enabled  *bool  `json:"enabled"`
	Interval string `json:"interval"`
}

// IsEnabled returns whether the monitor should run. Defaults to true.
func (m *MonitorConfig) IsEnabled() bool {
	if m.Enabled == nil {
		return true
	}
	return *m.Enabled
}

// EventsConfig configures the event bus.
type EventsConfig struct {
	History HistoryConfig `json:"history"`
}

// HistoryConfig configures event history retention.
type HistoryConfig struct {
	MaxEvents int    `json:"max_events"`
	MaxAge    string `json:"max_age"`
}

// WatchConfig configures the record directory watcher.
type WatchConfig struct {
	Debounce string `json:"debounce"`
}

// CrashesConfig configures crash report storage.
type CrashesConfig struct {
	Dir      string `json:"dir"`
	MaxAge   string `json:"max_age"` // supports a trailing "d" for days
	MaxCount int    `json:"max_count"`
}

// ParseDuration parses a duration string, returning a default if empty or
// invalid.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := parseDurationWithDays(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// parseDurationWithDays parses a duration string that may include days
// (e.g. "7d").
func parseDurationWithDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
