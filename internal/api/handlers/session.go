// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/streamwall/streamwall/internal/launcher"
	"github.com/streamwall/streamwall/internal/session"
)

// SessionManager is the supervisor surface the API needs.
type SessionManager interface {
	Running() bool
	Instances() []session.InstanceState
	Launch(ctx context.Context) error
	Stop(ctx context.Context) error
	Terminate(ctx context.Context, slot int) error
	TerminateCount(ctx context.Context, n int) int
	Recover(ctx context.Context, slot int) error
	Arrange(ctx context.Context) ([]session.ArrangeResult, error)
	ArrangeAdHoc(ctx context.Context, n int) ([]session.ArrangeResult, error)
}

// SessionHandler handles session lifecycle requests.
type SessionHandler struct {
	manager SessionManager
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager SessionManager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Instances returns every slot in the session.
// GET /api/v1/instances
func (h *SessionHandler) Instances(w http.ResponseWriter, r *http.Request) {
	states := h.manager.Instances()
	if states == nil {
		states = []session.InstanceState{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"running":   h.manager.Running(),
		"instances": states,
	})
}

// Launch starts a session.
// POST /api/v1/session/launch
func (h *SessionHandler) Launch(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Launch(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"instances": h.manager.Instances(),
	})
}

// Terminate ends the whole session.
// POST /api/v1/session/terminate
func (h *SessionHandler) Terminate(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Stop(r.Context()); err != nil {
		writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "session stopped"})
}

// TerminateCount closes n instances from the tail of the session.
// DELETE /api/v1/session/instances/{n}
func (h *SessionHandler) TerminateCount(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n <= 0 {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "count must be a positive integer")
		return
	}
	removed := h.manager.TerminateCount(r.Context(), n)
	WriteJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// TerminateSlot closes a single slot.
// POST /api/v1/session/instances/{slot}/terminate
func (h *SessionHandler) TerminateSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(mux.Vars(r)["slot"])
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "slot must be an integer")
		return
	}
	if err := h.manager.Terminate(r.Context(), slot); err != nil {
		writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"slot": slot})
}

// RecoverSlot relaunches a crashed slot.
// POST /api/v1/session/instances/{slot}/recover
func (h *SessionHandler) RecoverSlot(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(mux.Vars(r)["slot"])
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "slot must be an integer")
		return
	}
	if err := h.manager.Recover(r.Context(), slot); err != nil {
		writeSessionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"slot": slot})
}

// Arrange tiles the session's windows. With ?count=N and no session it
// arranges up to N matching windows launched by hand.
// POST /api/v1/session/arrange
func (h *SessionHandler) Arrange(w http.ResponseWriter, r *http.Request) {
	var results []session.ArrangeResult
	var err error

	if countStr := r.URL.Query().Get("count"); countStr != "" {
		count, convErr := strconv.Atoi(countStr)
		if convErr != nil || count <= 0 {
			WriteError(w, http.StatusBadRequest, ErrBadRequest, "count must be a positive integer")
			return
		}
		results, err = h.manager.ArrangeAdHoc(r.Context(), count)
	} else {
		results, err = h.manager.Arrange(r.Context())
	}
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrSessionError, err.Error())
		return
	}
	if results == nil {
		results = []session.ArrangeResult{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"windows": results})
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionRunning):
		WriteError(w, http.StatusConflict, ErrConflict, err.Error())
	case errors.Is(err, session.ErrNoSession):
		WriteError(w, http.StatusConflict, ErrConflict, err.Error())
	case errors.Is(err, session.ErrNoSuchSlot):
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
	case errors.Is(err, launcher.ErrBrowserNotFound):
		WriteError(w, http.StatusInternalServerError, ErrSessionError, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
	}
}
