// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package api assembles the HTTP control surface.
package api

import (
	"github.com/gorilla/mux"

	"github.com/streamwall/streamwall/internal/api/handlers"
	"github.com/streamwall/streamwall/internal/api/middleware"
	"github.com/streamwall/streamwall/internal/crashes"
	"github.com/streamwall/streamwall/internal/events"
	"github.com/streamwall/streamwall/internal/monitor"
	"github.com/streamwall/streamwall/internal/store"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host string
	Port int
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Session handlers.SessionManager
	Records *store.Store
	Bus     events.Bus
	Crashes *crashes.Manager
	Monitor *monitor.Monitor
	Version string
}

// NewRouter creates the API router.
func NewRouter(deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS)

	api := r.PathPrefix("/api/v1").Subrouter()

	statusHandler := handlers.NewStatusHandler(deps.Session, deps.Records, deps.Monitor, deps.Version)
	api.HandleFunc("/status", statusHandler.Status).Methods("GET")
	if deps.Monitor != nil {
		api.HandleFunc("/monitor/optimize", statusHandler.Optimize).Methods("POST")
	}

	sessionHandler := handlers.NewSessionHandler(deps.Session)
	api.HandleFunc("/instances", sessionHandler.Instances).Methods("GET")
	api.HandleFunc("/session/launch", sessionHandler.Launch).Methods("POST")
	api.HandleFunc("/session/terminate", sessionHandler.Terminate).Methods("POST")
	api.HandleFunc("/session/arrange", sessionHandler.Arrange).Methods("POST")
	api.HandleFunc("/session/instances/{n:[0-9]+}", sessionHandler.TerminateCount).Methods("DELETE")
	api.HandleFunc("/session/instances/{slot:[0-9]+}/terminate", sessionHandler.TerminateSlot).Methods("POST")
	api.HandleFunc("/session/instances/{slot:[0-9]+}/recover", sessionHandler.RecoverSlot).Methods("POST")

	profileHandler := handlers.NewProfileHandler(deps.Records)
	api.HandleFunc("/profiles", profileHandler.List).Methods("GET")
	api.HandleFunc("/profiles", profileHandler.Create).Methods("POST")
	api.HandleFunc("/profiles/deactivate", profileHandler.Deactivate).Methods("POST")
	api.HandleFunc("/profiles/{id}", profileHandler.Get).Methods("GET")
	api.HandleFunc("/profiles/{id}", profileHandler.Update).Methods("PUT")
	api.HandleFunc("/profiles/{id}", profileHandler.Delete).Methods("DELETE")
	api.HandleFunc("/profiles/{id}/activate", profileHandler.Activate).Methods("POST")

	layoutHandler := handlers.NewLayoutHandler(deps.Records)
	api.HandleFunc("/layouts", layoutHandler.List).Methods("GET")
	api.HandleFunc("/layouts", layoutHandler.Create).Methods("POST")
	api.HandleFunc("/layouts/deactivate", layoutHandler.Deactivate).Methods("POST")
	api.HandleFunc("/layouts/{id}", layoutHandler.Get).Methods("GET")
	api.HandleFunc("/layouts/{id}", layoutHandler.Update).Methods("PUT")
	api.HandleFunc("/layouts/{id}", layoutHandler.Delete).Methods("DELETE")
	api.HandleFunc("/layouts/{id}/activate", layoutHandler.Activate).Methods("POST")

	settingsHandler := handlers.NewSettingsHandler(deps.Records)
	api.HandleFunc("/settings", settingsHandler.Get).Methods("GET")
	api.HandleFunc("/settings", settingsHandler.Update).Methods("PUT")

	eventHandler := handlers.NewEventHandler(deps.Bus)
	api.HandleFunc("/events", eventHandler.History).Methods("GET")
	api.HandleFunc("/events/ws", eventHandler.WebSocket).Methods("GET")

	if deps.Crashes != nil {
		crashHandler := handlers.NewCrashesHandler(deps.Crashes)
		api.HandleFunc("/crashes", crashHandler.List).Methods("GET")
		api.HandleFunc("/crashes", crashHandler.Clear).Methods("DELETE")
		api.HandleFunc("/crashes/newest", crashHandler.Newest).Methods("GET")
		api.HandleFunc("/crashes/{id}", crashHandler.Get).Methods("GET")
		api.HandleFunc("/crashes/{id}", crashHandler.Delete).Methods("DELETE")
	}

	return r
}
