// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/streamwall/streamwall/internal/store"
)

// SettingsHandler handles the singleton settings record.
type SettingsHandler struct {
	records *store.Store
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(records *store.Store) *SettingsHandler {
	return &SettingsHandler{records: records}
}

// Get returns the current settings.
// GET /api/v1/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.records.Settings())
}

// Update validates and persists new settings. Changes apply to the next
// launch; a running session is untouched.
// PUT /api/v1/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.records.UpdateSettings(settings); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, h.records.Settings())
}
