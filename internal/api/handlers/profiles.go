// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/streamwall/streamwall/internal/store"
)

// ProfileHandler handles profile record requests.
type ProfileHandler struct {
	records *store.Store
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(records *store.Store) *ProfileHandler {
	return &ProfileHandler{records: records}
}

// List returns all profiles.
// GET /api/v1/profiles
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles := h.records.Profiles()
	if profiles == nil {
		profiles = []*store.Profile{}
	}
	WriteJSON(w, http.StatusOK, profiles)
}

// Get returns one profile.
// GET /api/v1/profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.records.Profile(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Create validates and stores a new profile.
// POST /api/v1/profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var profile store.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON: "+err.Error())
		return
	}
	created, err := h.records.CreateProfile(profile)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// Update replaces a profile's fields.
// PUT /api/v1/profiles/{id}
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	var profile store.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid JSON: "+err.Error())
		return
	}
	updated, err := h.records.UpdateProfile(mux.Vars(r)["id"], profile)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// Delete removes a profile. Deleting the active profile clears the
// activation reference.
// DELETE /api/v1/profiles/{id}
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.records.DeleteProfile(mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "profile deleted"})
}

// Activate marks a profile as active. The change applies to the next
// launch; a running session is untouched.
// POST /api/v1/profiles/{id}/activate
func (h *ProfileHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.records.ActivateProfile(mux.Vars(r)["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "profile activated"})
}

// Deactivate clears the active profile.
// POST /api/v1/profiles/deactivate
func (h *ProfileHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.records.ActivateProfile(""); err != nil {
		writeStoreError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "profile deactivated"})
}

func writeStoreError(w http.ResponseWriter, err error) {
	var verr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
	case errors.As(err, &verr):
		WriteError(w, http.StatusBadRequest, ErrValidation, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
	}
}
