// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/streamwall/streamwall/internal/monitor"
	"github.com/streamwall/streamwall/internal/store"
)

// StatusHandler reports the daemon's overall state.
type StatusHandler struct {
	manager SessionManager
	records *store.Store
	monitor *monitor.Monitor
	version string
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(manager SessionManager, records *store.Store, mon *monitor.Monitor, version string) *StatusHandler {
	return &StatusHandler{manager: manager, records: records, monitor: mon, version: version}
}

// Status returns the session summary, current settings, and the latest
// resource sample.
// GET /api/v1/status
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	alive := 0
	states := h.manager.Instances()
	for _, s := range states {
		if s.Alive {
			alive++
		}
	}

	payload := map[string]interface{}{
		"version":  h.version,
		"running":  h.manager.Running(),
		"slots":    len(states),
		"alive":    alive,
		"settings": h.records.Settings(),
	}
	if p := h.records.ActiveProfile(); p != nil {
		payload["active_profile"] = p.Name
	}
	if l := h.records.ActiveLayout(); l != nil {
		payload["active_layout"] = l.Name
	}
	if h.monitor != nil {
		payload["resources"] = h.monitor.Snapshot()
	}

	WriteJSON(w, http.StatusOK, payload)
}

// Optimize lowers the scheduling priority of all browser processes.
// POST /api/v1/monitor/optimize
func (h *StatusHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	count, err := h.monitor.Optimize()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"optimized": count})
}
