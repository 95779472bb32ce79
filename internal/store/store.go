// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/streamwall/streamwall/internal/events"
)

const (
	settingsFile = "settings.json"
	profilesDir  = "profiles"
	layoutsDir   = "layouts"
)

// Store owns the on-disk record set. All mutation goes through it; reads
// return copies so callers never alias the guarded state.
type Store struct {
	mu       sync.RWMutex
	dir      string
	settings Settings
	profiles map[string]*Profile
	layouts  map[string]*Layout
	bus      events.Bus
}

// Open loads (or initializes) the record set rooted at dir.
func Open(dir string, bus events.Bus) (*Store, error) {
	for _, sub := range []string{profilesDir, layoutsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("create record dir: %w", err)
		}
	}

	s := &Store{
		dir:      dir,
		settings: DefaultSettings(),
		profiles: make(map[string]*Profile),
		layouts:  make(map[string]*Layout),
		bus:      bus,
	}

	if err := s.loadSettings(); err != nil {
		return nil, err
	}
	if err := s.loadRecords(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// ProfilesDir returns the directory holding profile records.
func (s *Store) ProfilesDir() string { return filepath.Join(s.dir, profilesDir) }

// LayoutsDir returns the directory holding layout records.
func (s *Store) LayoutsDir() string { return filepath.Join(s.dir, layoutsDir) }

func (s *Store) loadSettings() error {
	path := filepath.Join(s.dir, settingsFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // first run, keep defaults
		}
		return fmt.Errorf("read settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("parse settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	s.settings = settings
	return nil
}

// loadRecords reads every profile and layout file. Unreadable records are
// logged and skipped so one corrupt file cannot take the whole store down.
func (s *Store) loadRecords() error {
	profiles := make(map[string]*Profile)
	if err := eachRecord(s.ProfilesDir(), func(path string, data []byte) {
		var p Profile
		if err := json.Unmarshal(data, &p); err != nil || p.ID == "" {
			log.Printf("store: skipping unreadable profile %s", path)
			return
		}
		p.normalize()
		profiles[p.ID] = &p
	}); err != nil {
		return err
	}

	layouts := make(map[string]*Layout)
	if err := eachRecord(s.LayoutsDir(), func(path string, data []byte) {
		var l Layout
		if err := json.Unmarshal(data, &l); err != nil || l.ID == "" {
			log.Printf("store: skipping unreadable layout %s", path)
			return
		}
		l.normalize()
		layouts[l.ID] = &l
	}); err != nil {
		return err
	}

	s.profiles = profiles
	s.layouts = layouts
	return nil
}

func eachRecord(dir string, fn func(path string, data []byte)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read record dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("store: skipping unreadable record %s: %v", path, err)
			continue
		}
		fn(path, data)
	}
	return nil
}

// Reload re-reads all records from disk. Used when the record directories
// change underneath us (external edit or import).
func (s *Store) Reload() error {
	s.mu.Lock()
	err := s.loadRecords()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(events.EventRecordsReloaded, nil)
	return nil
}

// saveRecord writes a record atomically (write tmp + rename).
func saveRecord(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

// saveSettingsLocked persists the current settings. Caller holds s.mu.
func (s *Store) saveSettingsLocked() error {
	return saveRecord(filepath.Join(s.dir, settingsFile), &s.settings)
}

func (s *Store) publish(eventType string, payload map[string]interface{}) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(context.Background(), events.Event{Type: eventType, Payload: payload})
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings validates and persists new settings. On a persistence
// failure the in-memory settings keep the new value so the caller may retry
// the save.
func (s *Store) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Activation references must point at known records.
	if settings.ActiveProfileID != nil {
		if _, ok := s.profiles[*settings.ActiveProfileID]; !ok {
			return fmt.Errorf("active profile %s: %w", *settings.ActiveProfileID, ErrNotFound)
		}
	}
	if settings.ActiveLayoutID != nil {
		if _, ok := s.layouts[*settings.ActiveLayoutID]; !ok {
			return fmt.Errorf("active layout %s: %w", *settings.ActiveLayoutID, ErrNotFound)
		}
	}

	s.settings = settings
	if err := s.saveSettingsLocked(); err != nil {
		return err
	}
	s.publishLocked(events.EventSettingsUpdated)
	return nil
}

func (s *Store) publishLocked(eventType string) {
	if s.bus == nil {
		return
	}
	// Publish without holding the lock; handlers may call back into the store.
	go s.bus.Publish(context.Background(), events.Event{Type: eventType})
}

// CreateProfile validates, ids, and persists a new profile.
func (s *Store) CreateProfile(p Profile) (*Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = nil
	p.normalize()

	if err := saveRecord(s.profilePath(p.ID), &p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.profiles[p.ID] = &p
	s.mu.Unlock()

	out := p
	return &out, nil
}

// UpdateProfile replaces an existing profile's fields. ID and created_at are
// preserved; updated_at is set.
func (s *Store) UpdateProfile(id string, p Profile) (*Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}

	p.ID = existing.ID
	p.CreatedAt = existing.CreatedAt
	now := time.Now().UTC()
	p.UpdatedAt = &now
	p.normalize()

	if err := saveRecord(s.profilePath(id), &p); err != nil {
		return nil, err
	}
	s.profiles[id] = &p

	out := p
	return &out, nil
}

// DeleteProfile removes a profile. Deleting the active profile clears the
// settings reference and persists that change immediately so no dangling
// reference survives a save.
func (s *Store) DeleteProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[id]; !ok {
		return fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}

	if err := os.Remove(s.profilePath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete profile: %w", err)
	}
	delete(s.profiles, id)

	if s.settings.ActiveProfileID != nil && *s.settings.ActiveProfileID == id {
		s.settings.ActiveProfileID = nil
		if err := s.saveSettingsLocked(); err != nil {
			return err
		}
	}
	return nil
}

// Profile returns a copy of the profile with the given id.
func (s *Store) Profile(id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, ErrNotFound)
	}
	out := *p
	return &out, nil
}

// Profiles returns copies of all profiles, sorted by creation time.
func (s *Store) Profiles() []*Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out := *p
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// ActivateProfile sets (or clears, with an empty id) the active profile.
// Activation is a pure metadata change: it never relaunches or rearranges.
func (s *Store) ActivateProfile(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.settings.ActiveProfileID = nil
	} else {
		if _, ok := s.profiles[id]; !ok {
			return fmt.Errorf("profile %s: %w", id, ErrNotFound)
		}
		s.settings.ActiveProfileID = &id
	}
	if err := s.saveSettingsLocked(); err != nil {
		return err
	}
	s.publishLocked(events.EventProfileActivated)
	return nil
}

// ActiveProfile returns the profile referenced by settings, or nil.
func (s *Store) ActiveProfile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings.ActiveProfileID == nil {
		return nil
	}
	p, ok := s.profiles[*s.settings.ActiveProfileID]
	if !ok {
		return nil
	}
	out := *p
	return &out
}

// CreateLayout validates, ids, and persists a new layout. The grid is always
// recomputed from window_count.
func (s *Store) CreateLayout(l Layout) (*Layout, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	l.UpdatedAt = nil
	l.normalize()

	if err := saveRecord(s.layoutPath(l.ID), &l); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.layouts[l.ID] = &l
	s.mu.Unlock()

	out := l
	return &out, nil
}

// UpdateLayout replaces an existing layout's fields and recomputes its grid.
func (s *Store) UpdateLayout(id string, l Layout) (*Layout, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.layouts[id]
	if !ok {
		return nil, fmt.Errorf("layout %s: %w", id, ErrNotFound)
	}

	l.ID = existing.ID
	l.CreatedAt = existing.CreatedAt
	now := time.Now().UTC()
	l.UpdatedAt = &now
	l.normalize()

	if err := saveRecord(s.layoutPath(id), &l); err != nil {
		return nil, err
	}
	s.layouts[id] = &l

	out := l
	return &out, nil
}

// DeleteLayout removes a layout, clearing and persisting the active
// reference when it pointed at the deleted record.
func (s *Store) DeleteLayout(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.layouts[id]; !ok {
		return fmt.Errorf("layout %s: %w", id, ErrNotFound)
	}

	if err := os.Remove(s.layoutPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete layout: %w", err)
	}
	delete(s.layouts, id)

	if s.settings.ActiveLayoutID != nil && *s.settings.ActiveLayoutID == id {
		s.settings.ActiveLayoutID = nil
		if err := s.saveSettingsLocked(); err != nil {
			return err
		}
	}
	return nil
}

// Layout returns a copy of the layout with the given id.
func (s *Store) Layout(id string) (*Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.layouts[id]
	if !ok {
		return nil, fmt.Errorf("layout %s: %w", id, ErrNotFound)
	}
	out := *l
	return &out, nil
}

// Layouts returns copies of all layouts, sorted by creation time.
func (s *Store) Layouts() []*Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Layout, 0, len(s.layouts))
	for _, l := range s.layouts {
		out := *l
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// ActivateLayout sets (or clears, with an empty id) the active layout.
func (s *Store) ActivateLayout(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		s.settings.ActiveLayoutID = nil
	} else {
		if _, ok := s.layouts[id]; !ok {
			return fmt.Errorf("layout %s: %w", id, ErrNotFound)
		}
		s.settings.ActiveLayoutID = &id
	}
	if err := s.saveSettingsLocked(); err != nil {
		return err
	}
	s.publishLocked(events.EventLayoutActivated)
	return nil
}

// ActiveLayout returns the layout referenced by settings, or nil.
func (s *Store) ActiveLayout() *Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings.ActiveLayoutID == nil {
		return nil
	}
	l, ok := s.layouts[*s.settings.ActiveLayoutID]
	if !ok {
		return nil
	}
	out := *l
	return &out
}

// ExportSettings writes the current settings to an arbitrary path.
func (s *Store) ExportSettings(path string) error {
	s.mu.RLock()
	settings := s.settings
	s.mu.RUnlock()
	return saveRecord(path, &settings)
}

// ImportSettings reads settings from an arbitrary path, validates them, and
// persists them as the current settings. Activation references are dropped
// when they point at records this store does not have.
func (s *Store) ImportSettings(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings file: %w", err)
	}
	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("parse settings file: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if settings.ActiveProfileID != nil {
		if _, ok := s.profiles[*settings.ActiveProfileID]; !ok {
			settings.ActiveProfileID = nil
		}
	}
	if settings.ActiveLayoutID != nil {
		if _, ok := s.layouts[*settings.ActiveLayoutID]; !ok {
			settings.ActiveLayoutID = nil
		}
	}

	s.settings = settings
	if err := s.saveSettingsLocked(); err != nil {
		return err
	}
	s.publishLocked(events.EventSettingsUpdated)
	return nil
}

func (s *Store) profilePath(id string) string {
	return filepath.Join(s.ProfilesDir(), id+".json")
}

func (s *Store) layoutPath(id string) string {
	return filepath.Join(s.LayoutsDir(), id+".json")
}
