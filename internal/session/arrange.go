// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"log"

	"github.com/streamwall/streamwall/internal/display"
	"github.com/streamwall/streamwall/internal/events"
	"github.com/streamwall/streamwall/internal/grid"
	"github.com/streamwall/streamwall/internal/window"
)

// ArrangeResult records the outcome of placing one window.
type ArrangeResult struct {
	Window window.Handle `json:"window"`
	Title  string        `json:"title"`
	Slot   int           `json:"slot"`
	Rect   grid.Rect     `json:"rect"`
	Error  string        `json:"error,omitempty"`
}

// Arrange tiles the session's windows. The active layout record, when one
// is set, supplies the target rectangle and grid; otherwise the primary
// display is partitioned for the current slot count. Windows are matched by
// title and placed row-major in enumeration order; a window that cannot be
// moved is logged and skipped, never fatal.
func (m *Manager) Arrange(ctx context.Context) ([]ArrangeResult, error) {
	m.mu.Lock()
	count := 0
	for _, inst := range m.instances {
		if inst.state != StateClosed {
			count++
		}
	}
	m.mu.Unlock()

	return m.arrange(ctx, count, true)
}

// ArrangeAdHoc tiles up to n matching windows on the primary display
// without a session, so windows launched by hand can be cleaned up too.
func (m *Manager) ArrangeAdHoc(ctx context.Context, n int) ([]ArrangeResult, error) {
	return m.arrange(ctx, n, false)
}

func (m *Manager) arrange(ctx context.Context, count int, useLayout bool) ([]ArrangeResult, error) {
	if count <= 0 {
		return nil, nil
	}

	target := display.Primary(m.displays).Bounds
	cols, rows := grid.Compute(count)
	if useLayout {
		if l := m.records.ActiveLayout(); l != nil {
			target = l.Monitor
			cols, rows = l.Grid.Cols, l.Grid.Rows
			// A layout saved for fewer windows cannot hold this session.
			if cols*rows < count {
				cols, rows = grid.Compute(count)
			}
		}
	}

	wins, err := m.locator.Find(window.TitleContains(m.cfg.TitleMatch...), count)
	if err != nil {
		return nil, err
	}
	if len(wins) == 0 {
		log.Printf("session: no windows matched %v, nothing to arrange", m.cfg.TitleMatch)
		return nil, nil
	}

	cellW, cellH := grid.CellSize(target, cols, rows)
	results := make([]ArrangeResult, 0, len(wins))
	for i, w := range wins {
		x, y := grid.CellOrigin(target, i, cols, cellW, cellH)
		res := ArrangeResult{
			Window: w.Handle,
			Title:  w.Title,
			Slot:   i,
			Rect:   grid.Rect{X: x, Y: y, Width: cellW, Height: cellH},
		}
		if err := m.windows.MoveResize(w.Handle, x, y, cellW, cellH); err != nil {
			log.Printf("session: move window %d (%s): %v", w.Handle, w.Title, err)
			res.Error = err.Error()
		}
		results = append(results, res)
	}

	m.publish(ctx, events.EventSessionArranged, map[string]interface{}{
		"windows": len(wins),
		"cols":    cols,
		"rows":    rows,
	})
	return results, nil
}
