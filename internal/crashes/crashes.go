// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package crashes captures and stores crash reports for browser instances.
package crashes

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/streamwall/streamwall/internal/events"
)

const reportVersion = "1.0"

// Report is one captured instance crash.
type Report struct {
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

// Config holds crash storage limits.
type Config struct {
	ReportsDir string
	MaxAge     time.Duration
	MaxCount   int
}

// Manager stores crash reports on disk, one JSON file per report, and
// subscribes to the bus so reports are captured automatically.
type Manager struct {
	mu  sync.RWMutex
	cfg Config
	bus events.Bus
}

// NewManager creates a crash manager writing to cfg.ReportsDir.
func NewManager(cfg Config, bus events.Bus) (*Manager, error) {
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "crashes"
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.MaxCount == 0 {
		cfg.MaxCount = 100
	}

	if err := os.MkdirAll(cfg.ReportsDir, 0755); err != nil {
		return nil, fmt.Errorf("create crashes directory: %w", err)
	}

	return &Manager{cfg: cfg, bus: bus}, nil
}

// Subscribe registers the bus handlers that capture crashes.
func (m *Manager) Subscribe() error {
	if m.bus == nil {
		return nil
	}

	if _, err := m.bus.Subscribe(events.EventInstanceCrashed, func(ctx context.Context, e events.Event) error {
		m.capture(e, events.EventInstanceCrashed)
		return nil
	}); err != nil {
		return err
	}
	_, err := m.bus.Subscribe(events.EventInstanceRecoveryFailed, func(ctx context.Context, e events.Event) error {
		m.capture(e, events.EventInstanceRecoveryFailed)
		return nil
	})
	return err
}

func (m *Manager) capture(e events.Event, trigger string) {
	report := Report{
		Version:   reportVersion,
		ID:        generateID(),
		Timestamp: e.Timestamp,
		Trigger:   trigger,
	}
	if slot, ok := payloadInt(e.Payload, "slot"); ok {
		report.Slot = slot
	}
	if label, ok := e.Payload["label"].(string); ok {
		report.Label = label
	}
	if url, ok := e.Payload["url"].(string); ok {
		report.URL = url
	}
	if code, ok := payloadInt(e.Payload, "exit_code"); ok {
		report.ExitCode = code
	}
	if errMsg, ok := e.Payload["error"].(string); ok {
		report.Error = errMsg
	}

	if err := m.Save(report); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save crash report: %v\n", err)
	}
	m.cleanup()
}

// payloadInt reads an integer payload field. Events that have passed through
// JSON arrive as float64.
func payloadInt(payload map[string]interface{}, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// generateID generates a unique report ID based on timestamp.
func generateID() string {
	return time.Now().Format("20060102-150405.000")
}

// Save writes a report to disk.
func (m *Manager) Save(report Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal crash report: %w", err)
	}
	path := filepath.Join(m.cfg.ReportsDir, report.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write crash report: %w", err)
	}
	return nil
}

// List returns all reports, newest first.
func (m *Manager) List() ([]Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, err := os.ReadDir(m.cfg.ReportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read crashes directory: %w", err)
	}

	var reports []Report
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		report, err := m.load(entry.Name())
		if err != nil {
			continue
		}
		reports = append(reports, *report)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Timestamp.After(reports[j].Timestamp)
	})
	return reports, nil
}

// Get retrieves a report by ID.
func (m *Manager) Get(id string) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.load(id + ".json")
}

// Newest returns the most recent report, or nil when there are none.
func (m *Manager) Newest() (*Report, error) {
	reports, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}
	return &reports[0], nil
}

// Delete removes a report by ID.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	path := filepath.Join(m.cfg.ReportsDir, id+".json")
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("crash report not found: %s", id)
		}
		return fmt.Errorf("delete crash report: %w", err)
	}
	return nil
}

// Clear removes all reports.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.cfg.ReportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read crashes directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		os.Remove(filepath.Join(m.cfg.ReportsDir, entry.Name()))
	}
	return nil
}

func (m *Manager) load(filename string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(m.cfg.ReportsDir, filename))
	if err != nil {
		return nil, fmt.Errorf("read crash report: %w", err)
	}
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal crash report: %w", err)
	}
	return &report, nil
}

// cleanup enforces the age and count limits.
func (m *Manager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.cfg.ReportsDir)
	if err != nil {
		return
	}

	type reportFile struct {
		name      string
		timestamp time.Time
	}

	var files []reportFile
	cutoff := time.Now().Add(-m.cfg.MaxAge)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		idPart := strings.TrimSuffix(entry.Name(), ".json")
		ts, err := time.ParseInLocation("20060102-150405.000", idPart, time.Local)
		if err != nil {
			continue
		}
		if ts.Before(cutoff) {
			os.Remove(filepath.Join(m.cfg.ReportsDir, entry.Name()))
			continue
		}
		files = append(files, reportFile{name: entry.Name(), timestamp: ts})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].timestamp.After(files[j].timestamp)
	})
	if len(files) > m.cfg.MaxCount {
		for _, f := range files[m.cfg.MaxCount:] {
			os.Remove(filepath.Join(m.cfg.ReportsDir, f.name))
		}
	}
}
