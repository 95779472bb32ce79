// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus for streamwall.
package events

import (
	"context"
	"time"
)

// Event is an immutable event record.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}

// Handler processes received events.
type Handler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// Filter selects events from history.
type Filter struct {
	Types []string  // Event types to match (supports trailing wildcards)
	Since time.Time // Events after this time
	Until time.Time // Events before this time
	Limit int       // Maximum events to return
}

// Bus is the pub/sub interface components depend on.
type Bus interface {
	// Publish emits an event to all matching subscribers.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler Handler) (SubscriptionID, error)

	// SubscribeAsync registers a handler fed from a buffered channel.
	SubscribeAsync(pattern string, handler Handler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter.
	History(filter Filter) ([]Event, error)

	// Close shuts down the bus.
	Close() error
}

// Event types published by streamwall components.
const (
	// Instance lifecycle
	EventInstanceLaunched       = "instance.launched"
	EventInstanceStopped        = "instance.stopped"
	EventInstanceCrashed        = "instance.crashed"
	EventInstanceRecovered      = "instance.recovered"
	EventInstanceRecoveryFailed = "instance.recovery_failed"

	// Session
	EventSessionStarted  = "session.started"
	EventSessionStopped  = "session.stopped"
	EventSessionArranged = "session.arranged"

	// Configuration
	EventProfileActivated = "profile.activated"
	EventLayoutActivated  = "layout.activated"
	EventSettingsUpdated  = "settings.updated"
	EventRecordsReloaded  = "records.reloaded"
)
