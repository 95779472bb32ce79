// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/streamwall/streamwall/internal/display"
	"github.com/streamwall/streamwall/internal/events"
	"github.com/streamwall/streamwall/internal/launcher"
	"github.com/streamwall/streamwall/internal/store"
	"github.com/streamwall/streamwall/internal/window"
)

var (
	// ErrSessionRunning is returned by Launch while a session is active.
	ErrSessionRunning = errors.New("session already running")

	// ErrNoSession is returned by operations that need an active session.
	ErrNoSession = errors.New("no active session")

	// ErrNoSuchSlot is returned for slot indexes outside the session.
	ErrNoSuchSlot = errors.New("no such slot")
)

// instance is one supervised slot. All fields are guarded by Manager.mu.
type instance struct {
	slot        int
	label       string
	url         string
	state       SlotState
	alive       bool
	lastChecked time.Time
	handle      Handle
}

// Manager owns the session: the slot list, the supervision loop, and the
// window arrangement. A single mutex guards all slot state.
type Manager struct {
	backend  Backend
	windows  window.Backend
	locator  *window.Locator
	displays display.Backend
	records  *store.Store
	bus      events.Bus
	cfg      Config

	mu        sync.Mutex
	instances []*instance
	running   bool
	stopCh    chan struct{}

	wg  sync.WaitGroup
	now func() time.Time
}

// NewManager creates a supervisor over the given backends.
func NewManager(backend Backend, windows window.Backend, displays display.Backend, records *store.Store, bus events.Bus, cfg Config) *Manager {
	cfg.applyDefaults()
	return &Manager{
		backend:  backend,
		windows:  windows,
		locator:  window.NewLocator(windows),
		displays: displays,
		records:  records,
		bus:      bus,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Running reports whether a session is active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Instances returns a snapshot of every slot in the session.
func (m *Manager) Instances() []InstanceState {
	m.mu.Lock()
	defer m.mu.Unlock()

	states := make([]InstanceState, 0, len(m.instances))
	for _, inst := range m.instances {
		state := InstanceState{
			Slot:        inst.slot,
			Label:       inst.label,
			URL:         inst.url,
			State:       inst.state,
			Alive:       inst.alive,
			LastChecked: inst.lastChecked,
		}
		if inst.handle != nil {
			status := inst.handle.Status()
			state.PID = status.PID
			state.ExitCode = status.ExitCode
		}
		states = append(states, state)
	}
	return states
}

// resolveSpec builds the launch batch from the active profile, falling back
// to the singleton settings. The label list is padded to window count with
// the default naming scheme.
func (m *Manager) resolveSpec() LaunchSpec {
	settings := m.records.Settings()
	spec := LaunchSpec{
		WindowCount:   settings.WindowCount,
		Destination:   settings.Destination,
		Quality:       settings.Quality,
		MemoryLimitMB: settings.MemoryLimitMB,
	}
	if p := m.records.ActiveProfile(); p != nil {
		spec.WindowCount = p.WindowCount
		spec.Labels = append([]string(nil), p.InstanceLabels...)
		if p.Destination != "" {
			spec.Destination = p.Destination
		}
		if p.Quality != "" {
			spec.Quality = p.Quality
		}
	}
	for i := len(spec.Labels); i < spec.WindowCount; i++ {
		spec.Labels = append(spec.Labels, store.DefaultLabel(i))
	}
	return spec
}

// Launch starts a session: one browser instance per slot, a settle wait, an
// initial arrangement, and the supervision loop. A slot whose spawn fails is
// recorded as crashed rather than aborting the batch; only a missing browser
// executable aborts entirely.
func (m *Manager) Launch(ctx context.Context) error {
	if err := m.backend.Available(); err != nil {
		return err
	}

	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrSessionRunning
	}
	m.running = true
	m.instances = nil
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	spec := m.resolveSpec()
	launcher.WarnMissingProfiles(spec.Labels)

	m.publish(ctx, events.EventSessionStarted, map[string]interface{}{
		"window_count": spec.WindowCount,
		"destination":  spec.Destination,
		"quality":      spec.Quality,
	})

	url := launcher.StreamURL(spec.Destination, spec.Quality)
	for i := 0; i < spec.WindowCount; i++ {
		if i > 0 && m.cfg.LaunchDelay > 0 {
			select {
			case <-time.After(m.cfg.LaunchDelay):
			case <-stopCh:
				return nil
			}
		}

		inst := &instance{
			slot:        i,
			label:       spec.Labels[i],
			url:         url,
			state:       StateLaunching,
			lastChecked: m.now(),
		}
		handle, err := m.backend.Launch(inst.label, url, spec.MemoryLimitMB, m.cfg.ExtraArgs)
		ok := err == nil
		if ok {
			inst.handle = handle
			inst.state = StateRunning
			inst.alive = true
		} else {
			log.Printf("session: slot %d (%s) failed to launch: %v", i, inst.label, err)
			inst.state = StateCrashed
		}

		m.mu.Lock()
		if !m.running || m.stopCh != stopCh {
			// Stop ran mid-batch. Its snapshot cannot include this slot, so
			// tear it down here instead of appending it to a dead session.
			m.mu.Unlock()
			if ok {
				m.stopOne(ctx, i, inst.label, handle)
			}
			return nil
		}
		m.instances = append(m.instances, inst)
		m.mu.Unlock()

		if ok {
			m.publish(ctx, events.EventInstanceLaunched, map[string]interface{}{
				"slot": i, "label": inst.label, "url": url,
			})
		}
	}

	if m.cfg.SettleDelay > 0 {
		select {
		case <-time.After(m.cfg.SettleDelay):
		case <-stopCh:
			return nil
		}
	}
	if _, err := m.Arrange(ctx); err != nil {
		log.Printf("session: initial arrange: %v", err)
	}

	m.wg.Add(1)
	go m.supervise(stopCh)

	return nil
}

// Stop ends the session: the supervision loop is stopped first so it cannot
// mistake the teardown for a crash, then every slot is closed newest-first.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNoSession
	}
	m.running = false
	close(m.stopCh)
	insts := m.instances
	m.instances = nil
	m.mu.Unlock()

	m.wg.Wait()

	for i := len(insts) - 1; i >= 0; i-- {
		inst := insts[i]
		if inst.state == StateClosed {
			continue
		}
		inst.state = StateClosed
		inst.alive = false
		m.stopOne(ctx, inst.slot, inst.label, inst.handle)
	}

	m.publish(ctx, events.EventSessionStopped, map[string]interface{}{
		"window_count": len(insts),
	})
	return nil
}

// Terminate closes a single slot. The slot stays in the session as closed so
// slot numbering is stable; terminating it again is a no-op.
func (m *Manager) Terminate(ctx context.Context, slot int) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNoSession
	}
	if slot < 0 || slot >= len(m.instances) {
		m.mu.Unlock()
		return ErrNoSuchSlot
	}
	inst := m.instances[slot]
	already := inst.state == StateClosed
	inst.state = StateClosed
	inst.alive = false
	handle := inst.handle
	inst.handle = nil
	label := inst.label
	m.mu.Unlock()

	if already {
		return nil
	}
	m.stopOne(ctx, slot, label, handle)
	return nil
}

// TerminateCount closes up to n open slots from the tail of the session,
// newest first, and returns how many were closed. Slots already closed by a
// per-slot Terminate are trimmed along the way without counting.
func (m *Manager) TerminateCount(ctx context.Context, n int) int {
	m.mu.Lock()
	if !m.running || n <= 0 {
		m.mu.Unlock()
		return 0
	}
	cut := len(m.instances)
	open := 0
	for cut > 0 && open < n {
		if m.instances[cut-1].state != StateClosed {
			open++
		}
		cut--
	}
	removed := append([]*instance(nil), m.instances[cut:]...)
	m.instances = m.instances[:cut]
	m.mu.Unlock()

	for i := len(removed) - 1; i >= 0; i-- {
		inst := removed[i]
		if inst.state == StateClosed {
			continue
		}
		inst.state = StateClosed
		inst.alive = false
		m.stopOne(ctx, inst.slot, inst.label, inst.handle)
	}
	return open
}

// stopOne tears down one instance: process first, then its window. Every
// step is best-effort; the slot is already marked closed.
func (m *Manager) stopOne(ctx context.Context, slot int, label string, handle Handle) {
	if handle != nil {
		if err := handle.Stop(); err != nil {
			log.Printf("session: stop slot %d process: %v", slot, err)
		}
	}

	wins, err := m.locator.Find(window.TitleContains(label), 1)
	if err != nil {
		log.Printf("session: find window for slot %d: %v", slot, err)
	} else if len(wins) > 0 {
		if err := m.windows.Close(wins[0].Handle); err != nil {
			log.Printf("session: close window for slot %d: %v", slot, err)
		}
	}

	m.publish(ctx, events.EventInstanceStopped, map[string]interface{}{
		"slot": slot, "label": label,
	})
}

// CheckLiveness scans the window list once and returns the slots newly
// declared dead. A live slot is one whose label appears in some window
// title; a miss only kills the slot after the check interval has elapsed
// since it was last seen, so a busy window manager cannot cause spurious
// recoveries. A slot whose process has exited is dead immediately.
func (m *Manager) CheckLiveness(ctx context.Context) []int {
	wins, err := m.locator.Find(nil, 0)
	if err != nil {
		log.Printf("session: list windows: %v", err)
		return nil
	}

	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var dead []int
	for _, inst := range m.instances {
		if !inst.alive || inst.state != StateRunning {
			continue
		}

		if inst.handle != nil && !inst.handle.Status().Running {
			inst.alive = false
			inst.state = StateCrashed
			dead = append(dead, inst.slot)
			continue
		}

		matched := false
		for _, w := range wins {
			if strings.Contains(w.Title, inst.label) {
				matched = true
				break
			}
		}
		if matched {
			inst.lastChecked = now
			continue
		}
		if now.Sub(inst.lastChecked) > m.cfg.CheckInterval {
			inst.alive = false
			inst.state = StateCrashed
			dead = append(dead, inst.slot)
		}
	}
	return dead
}

// Recover relaunches a crashed slot with its original label and URL. On
// failure the slot stays dead; the supervision loop will not retry it, a
// manual recover through the API can.
func (m *Manager) Recover(ctx context.Context, slot int) error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return ErrNoSession
	}
	if slot < 0 || slot >= len(m.instances) {
		m.mu.Unlock()
		return ErrNoSuchSlot
	}
	inst := m.instances[slot]
	if inst.state != StateCrashed {
		m.mu.Unlock()
		return nil
	}
	inst.state = StateRecovering
	label, url := inst.label, inst.url
	m.mu.Unlock()

	settings := m.records.Settings()
	handle, err := m.backend.Launch(label, url, settings.MemoryLimitMB, m.cfg.ExtraArgs)
	now := m.now()

	m.mu.Lock()
	if err != nil {
		inst.state = StateCrashed
		inst.alive = false
		m.mu.Unlock()
		m.publish(ctx, events.EventInstanceRecoveryFailed, map[string]interface{}{
			"slot": slot, "label": label, "error": err.Error(),
		})
		return err
	}
	inst.handle = handle
	inst.state = StateRunning
	inst.alive = true
	inst.lastChecked = now
	m.mu.Unlock()

	m.publish(ctx, events.EventInstanceRecovered, map[string]interface{}{
		"slot": slot, "label": label,
	})
	return nil
}

// supervise is the background loop: liveness check, recovery of freshly
// dead slots, then a re-arrange so recovered windows land back in the grid.
func (m *Manager) supervise(stopCh chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	ctx := context.Background()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			dead := m.CheckLiveness(ctx)
			if len(dead) == 0 {
				continue
			}
			byslot := make(map[int]InstanceState)
			for _, s := range m.Instances() {
				byslot[s.Slot] = s
			}
			for _, slot := range dead {
				s := byslot[slot]
				m.publish(ctx, events.EventInstanceCrashed, map[string]interface{}{
					"slot":      slot,
					"label":     s.Label,
					"url":       s.URL,
					"exit_code": s.ExitCode,
				})
				if err := m.Recover(ctx, slot); err != nil {
					log.Printf("session: recover slot %d: %v", slot, err)
				}
			}
			if _, err := m.Arrange(ctx); err != nil {
				log.Printf("session: arrange after recovery: %v", err)
			}
		}
	}
}

func (m *Manager) publish(ctx context.Context, eventType string, payload map[string]interface{}) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, events.Event{Type: eventType, Payload: payload}); err != nil {
		log.Printf("session: publish %s: %v", eventType, err)
	}
}
