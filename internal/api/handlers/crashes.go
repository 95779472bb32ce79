// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamwall/streamwall/internal/crashes"
)

// CrashesHandler handles crash report requests.
type CrashesHandler struct {
	manager *crashes.Manager
}

// NewCrashesHandler creates a new crashes handler.
func NewCrashesHandler(manager *crashes.Manager) *CrashesHandler {
	return &CrashesHandler{manager: manager}
}

// List returns all crash reports, newest first.
// GET /api/v1/crashes
func (h *CrashesHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.manager.List()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	if reports == nil {
		reports = []crashes.Report{}
	}
	WriteJSON(w, http.StatusOK, reports)
}

// Get returns one crash report.
// GET /api/v1/crashes/{id}
func (h *CrashesHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.manager.Get(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, http.StatusNotFound, ErrNotFound, "crash report not found")
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// Newest returns the most recent crash report, or null.
// GET /api/v1/crashes/newest
func (h *CrashesHandler) Newest(w http.ResponseWriter, r *http.Request) {
	report, err := h.manager.Newest()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// Delete removes one crash report.
// DELETE /api/v1/crashes/{id}
func (h *CrashesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(mux.Vars(r)["id"]); err != nil {
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "crash report deleted"})
}

// Clear removes all crash reports.
// DELETE /api/v1/crashes
func (h *CrashesHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Clear(); err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "all crash reports cleared"})
}
