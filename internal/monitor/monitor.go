// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package monitor samples resource usage of the launched browser processes:
// network throughput, a process census with per-process memory, and
// enforcement of the configured memory limit.
package monitor

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"syscall"
	"time"

	ps "github.com/mitchellh/go-ps"
	gopsnet "github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/streamwall/streamwall/internal/store"
)

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

// Snapshot is the monitor's latest sample.
type Snapshot struct {
	Network       NetworkStats   `json:"network"`
	Processes     []ProcessStats `json:"processes"`
	TotalRSSBytes uint64         `json:"total_rss_bytes"`
	SampledAt     time.Time      `json:"sampled_at"`
}

// Config holds the monitor's knobs.
type Config struct {
	// Interval is the sampling period.
	Interval time.Duration

	// ProcessNames are matched case-insensitively against process names to
	// find browser processes.
	ProcessNames []string
}

// optimizedNice is the priority browser processes are lowered to. Streams
// keep playing at a lower priority while the rest of the desktop stays
// responsive.
const optimizedNice = 10

// Monitor runs the sampling loop.
type Monitor struct {
	cfg     Config
	records *store.Store

	mu       sync.RWMutex
	snapshot Snapshot
	lastNet  *gopsnet.IOCountersStat
	lastAt   time.Time
	running  bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a monitor. The store supplies the memory limit so settings
// changes take effect on the next sample without a restart.
func New(cfg Config, records *store.Store) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if len(cfg.ProcessNames) == 0 {
		cfg.ProcessNames = []string{"chrome", "chromium"}
	}
	return &Monitor{cfg: cfg, records: records}
}

// Start begins the sampling loop. Starting a running monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	stopCh := m.stopCh
	m.mu.Unlock()

	m.wg.Add(1)
	go m.loop(stopCh)
}

// Stop halts the sampling loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
}

// Snapshot returns the latest sample.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

func (m *Monitor) loop(stopCh chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.sample()
		}
	}
}

// sample takes one measurement and enforces the memory limit.
func (m *Monitor) sample() {
	now := time.Now()
	snap := Snapshot{SampledAt: now}

	if counters, err := gopsnet.IOCounters(false); err == nil && len(counters) > 0 {
		m.mu.Lock()
		if m.lastNet != nil {
			elapsed := now.Sub(m.lastAt).Seconds()
			snap.Network = rate(*m.lastNet, counters[0], elapsed)
			snap.Network.SampledAt = now
		}
		m.lastNet = &counters[0]
		m.lastAt = now
		m.mu.Unlock()
	}

	snap.Processes = m.census()
	for _, p := range snap.Processes {
		snap.TotalRSSBytes += p.RSSBytes
	}

	m.enforceMemoryLimit(snap.Processes)

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()
}

// rate converts two counter samples into per-second throughput.
func rate(prev, cur gopsnet.IOCountersStat, elapsedSec float64) NetworkStats {
	if elapsedSec <= 0 {
		return NetworkStats{}
	}
	var stats NetworkStats
	if cur.BytesSent >= prev.BytesSent {
		stats.BytesSentPerSec = float64(cur.BytesSent-prev.BytesSent) / elapsedSec
	}
	if cur.BytesRecv >= prev.BytesRecv {
		stats.BytesRecvPerSec = float64(cur.BytesRecv-prev.BytesRecv) / elapsedSec
	}
	return stats
}

// census lists browser processes with their resident memory. Processes that
// disappear mid-scan are skipped.
func (m *Monitor) census() []ProcessStats {
	procs, err := ps.Processes()
	if err != nil {
		log.Printf("monitor: process census: %v", err)
		return nil
	}

	var stats []ProcessStats
	for _, p := range procs {
		if !matchesName(p.Executable(), m.cfg.ProcessNames) {
			continue
		}
		entry := ProcessStats{PID: p.Pid(), Name: p.Executable()}
		if proc, err := process.NewProcess(int32(p.Pid())); err == nil {
			if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
				entry.RSSBytes = mem.RSS
			}
		}
		stats = append(stats, entry)
	}
	return stats
}

// Optimize lowers the scheduling priority of every browser process to
// optimizedNice and returns how many were re-niced. Processes that vanish or
// refuse the change are skipped.
func (m *Monitor) Optimize() (int, error) {
	procs, err := ps.Processes()
	if err != nil {
		return 0, fmt.Errorf("process census: %w", err)
	}

	count := 0
	for _, p := range procs {
		if !matchesName(p.Executable(), m.cfg.ProcessNames) {
			continue
		}
		if err := syscall.Setpriority(syscall.PRIO_PROCESS, p.Pid(), optimizedNice); err != nil {
			log.Printf("monitor: renice pid %d: %v", p.Pid(), err)
			continue
		}
		count++
	}
	log.Printf("monitor: re-niced %d browser processes", count)
	return count, nil
}

// matchesName reports whether a process name contains any of the configured
// patterns, case-insensitively.
func matchesName(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if pattern != "" && strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}
	return false
}

// enforceMemoryLimit kills any browser process whose resident memory exceeds
// the configured limit. A fresh instance beats a thrashing one.
func (m *Monitor) enforceMemoryLimit(procs []ProcessStats) {
	if m.records == nil {
		return
	}
	limit := m.records.Settings().MemoryLimitMB
	if limit == nil || *limit <= 0 {
		return
	}
	limitBytes := uint64(*limit) * 1024 * 1024

	for _, p := range procs {
		if p.RSSBytes <= limitBytes {
			continue
		}
		proc, err := process.NewProcess(int32(p.PID))
		if err != nil {
			continue
		}
		log.Printf("monitor: killing %s (pid %d), rss %d MB over limit %d MB",
			p.Name, p.PID, p.RSSBytes/1024/1024, *limit)
		// The supervision loop notices the dead instance and recovers it.
		if err := proc.Kill(); err != nil {
			log.Printf("monitor: kill pid %d: %v", p.PID, err)
		}
	}
}
