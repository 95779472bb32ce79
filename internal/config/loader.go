// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hjson/hjson-go/v4"
)

// Loader handles configuration file loading.
type Loader struct{}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the configuration from the given path.
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Parse HJSON to an intermediate map, then through JSON for type safety.
	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}
	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadWithDefaults loads config with default values applied.
func (l *Loader) LoadWithDefaults(path string) (*Config, error) {
	cfg, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// FindConfig searches for a config file in the current directory. It looks
// for streamwall.hjson first, then streamwall.json.
func (l *Loader) FindConfig() (string, error) {
	candidates := []string{
		"streamwall.hjson",
		"streamwall.json",
	}

	for _, name := range candidates {
		path := filepath.Join(".", name)
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("config file not found (looked for streamwall.hjson, streamwall.json)")
}

// Default returns the built-in configuration used when no config file
// exists.
func Default() *Config {
	cfg := &Config{Version: "1"}
	cfg.Project.Name = "streamwall"
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for missing config fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 4690
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}

	if cfg.Data.Dir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			cfg.Data.Dir = filepath.Join(home, ".streamwall")
		} else {
			cfg.Data.Dir = ".streamwall"
		}
	}

	if len(cfg.Browser.ProcessNames) == 0 {
		cfg.Browser.ProcessNames = []string{"chrome", "chromium"}
	}

	if cfg.Session.CheckInterval == "" {
		cfg.Session.CheckInterval = "10s"
	}
	if cfg.Session.LaunchDelay == "" {
		cfg.Session.LaunchDelay = "1s"
	}
	if cfg.Session.SettleDelay == "" {
		cfg.Session.SettleDelay = "5s"
	}
	if len(cfg.Session.TitleMatch) == 0 {
		cfg.Session.TitleMatch = []string{"Twitch", "Chrome"}
	}

	if cfg.Monitor.Interval == "" {
		cfg.Monitor.Interval = "5s"
	}

	if cfg.Events.History.MaxEvents == 0 {
		cfg.Events.History.MaxEvents = 10000
	}
	if cfg.Events.History.MaxAge == "" {
		cfg.Events.History.MaxAge = "1h"
	}

	if cfg.Watch.Debounce == "" {
		cfg.Watch.Debounce = "100ms"
	}

	if cfg.Crashes.Dir == "" {
		cfg.Crashes.Dir = filepath.Join(cfg.Data.Dir, "crashes")
	}
	if cfg.Crashes.MaxAge == "" {
		cfg.Crashes.MaxAge = "7d"
	}
	if cfg.Crashes.MaxCount == 0 {
		cfg.Crashes.MaxCount = 100
	}
}
