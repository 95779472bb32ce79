// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamwall/streamwall/internal/store"
)

// LayoutHandler handles layout record requests.
type LayoutHandler struct {
	records *store.Store
}

// NewLayoutHandler creates a new layout handler.
func NewLayoutHandler(records *store.Store) *LayoutHandler {
	return &LayoutHandler{records: records}
}

// List returns all layouts.
// GET /api/v1/layouts
func (h *LayoutHandler) List(w http.ResponseWriter, r *http.Request) {
	layouts := h.records.Layouts()
	if layouts == nil {
		layouts = []*store.Layout{}
	}
	WriteJSON(w, http.StatusOK, layouts)
}

// Get returns one layout.
// GET /api/v1/layouts/{id}
func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	layout, err := h.records.Layout(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, layout)
}

// Create validates and stores a new layout. The grid is derived from the
// window count, never taken from the request.
// POST /api/v1/layouts
func (h *LayoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var layout store.Layout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON: "+err.Error())
		return
	}
	created, err := h.records.CreateLayout(layout)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// Update replaces a layout's fields.
// PUT /api/v1/layouts/{id}
func (h *LayoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	var layout store.Layout
	if err := json.NewDecoder(r.Body).Decode(&layout); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON: "+err.Error())
		return
	}
	updated, err := h.records.UpdateLayout(mux.Vars(r)["id"], layout)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// Delete removes a layout.
// DELETE /api/v1/layouts/{id}
func (h *LayoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.records.DeleteLayout(mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "layout deleted"})
}

// Activate marks a layout as active for future arrangements.
// POST /api/v1/layouts/{id}/activate
func (h *LayoutHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.records.ActivateLayout(mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "layout activated"})
}

// Deactivate clears the active layout.
// POST /api/v1/layouts/deactivate
func (h *LayoutHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.records.ActivateLayout(""); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "layout deactivated"})
}
