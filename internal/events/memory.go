// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// ErrBusClosed is returned when operating on a closed bus.
var ErrBusClosed = errors.New("event bus is closed")

// ErrSubscriptionNotFound is returned when unsubscribing with an invalid ID.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// MemoryBusConfig configures the in-memory bus.
type MemoryBusConfig struct {
	HistoryMaxEvents int
	HistoryMaxAge    time.Duration
}

// MemoryBus is an in-memory Bus implementation with bounded history.
type MemoryBus struct {
	mu            sync.RWMutex
	subscriptions map[SubscriptionID]*subscription
	history       []Event
	maxEvents     int
	maxAge        time.Duration
	closed        atomic.Bool
	wg            sync.WaitGroup
	nextID        uint64
	stopPruner    chan struct{}
}

type subscription struct {
	id      SubscriptionID
	match   func(string) bool
	handler Handler
	async   bool
	ch      chan Event
	stopCh  chan struct{}
}

// NewMemoryBus creates a new in-memory event bus.
func NewMemoryBus(cfg MemoryBusConfig) *MemoryBus {
	if cfg.HistoryMaxEvents <= 0 {
		cfg.HistoryMaxEvents = 10000
	}
	if cfg.HistoryMaxAge <= 0 {
		cfg.HistoryMaxAge = time.Hour
	}

	bus := &MemoryBus{
		subscriptions: make(map[SubscriptionID]*subscription),
		maxEvents:     cfg.HistoryMaxEvents,
		maxAge:        cfg.HistoryMaxAge,
		stopPruner:    make(chan struct{}),
	}

	pruneInterval := cfg.HistoryMaxAge / 10
	if pruneInterval < time.Minute {
		pruneInterval = time.Minute
	}

	bus.wg.Add(1)
	go func() {
		defer bus.wg.Done()
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-bus.stopPruner:
				return
			case <-ticker.C:
				bus.prune()
			}
		}
	}()

	return bus
}

// Publish emits an event to all matching subscribers.
func (bus *MemoryBus) Publish(ctx context.Context, event Event) error {
	if bus.closed.Load() {
		return ErrBusClosed
	}

	if event.ID == "" {
		event.ID = bus.generateID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	bus.mu.Lock()
	bus.history = append(bus.history, event)
	if len(bus.history) > bus.maxEvents {
		bus.history = bus.history[len(bus.history)-bus.maxEvents:]
	}
	subs := make([]*subscription, 0, len(bus.subscriptions))
	for _, sub := range bus.subscriptions {
		subs = append(subs, sub)
	}
	bus.mu.Unlock()

	for _, sub := range subs {
		if !sub.match(event.Type) {
			continue
		}
		if sub.async {
			select {
			case sub.ch <- event:
			default:
				log.Printf("events: dropped %s - async subscriber buffer full", event.Type)
			}
		} else {
			bus.callHandler(ctx, sub.handler, event)
		}
	}

	return nil
}

// callHandler invokes a handler with panic protection.
func (bus *MemoryBus) callHandler(ctx context.Context, handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("events: handler panic for %s: %v", event.Type, r)
		}
	}()
	handler(ctx, event)
}

// Subscribe registers a synchronous handler for events matching pattern.
func (bus *MemoryBus) Subscribe(pattern string, handler Handler) (SubscriptionID, error) {
	return bus.subscribe(pattern, handler, false, 0)
}

// SubscribeAsync registers a handler fed from a buffered channel. Events are
// dropped rather than blocking the publisher when the buffer is full.
func (bus *MemoryBus) SubscribeAsync(pattern string, handler Handler, bufferSize int) (SubscriptionID, error) {
	if bufferSize <= 0 {
		bufferSize = 100
	}
	return bus.subscribe(pattern, handler, true, bufferSize)
}

func (bus *MemoryBus) subscribe(pattern string, handler Handler, async bool, bufferSize int) (SubscriptionID, error) {
	if bus.closed.Load() {
		return "", ErrBusClosed
	}

	match, err := CompilePattern(pattern)
	if err != nil {
		return "", err
	}

	id := SubscriptionID(bus.generateID())
	sub := &subscription{id: id, match: match, handler: handler, async: async}

	if async {
		sub.ch = make(chan Event, bufferSize)
		sub.stopCh = make(chan struct{})
	}

	bus.mu.Lock()
	bus.subscriptions[id] = sub
	bus.mu.Unlock()

	if async {
		bus.wg.Add(1)
		go func() {
			defer bus.wg.Done()
			for {
				select {
				case <-sub.stopCh:
					return
				case event := <-sub.ch:
					bus.callHandler(context.Background(), handler, event)
				}
			}
		}()
	}

	return id, nil
}

// Unsubscribe removes a subscription.
func (bus *MemoryBus) Unsubscribe(id SubscriptionID) error {
	bus.mu.Lock()
	sub, ok := bus.subscriptions[id]
	if !ok {
		bus.mu.Unlock()
		return ErrSubscriptionNotFound
	}
	delete(bus.subscriptions, id)
	bus.mu.Unlock()

	if sub.async && sub.stopCh != nil {
		close(sub.stopCh)
	}
	return nil
}

// History retrieves past events matching filter, oldest first.
func (bus *MemoryBus) History(filter Filter) ([]Event, error) {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	result := make([]Event, 0)
	for _, event := range bus.history {
		if matchesFilter(event, filter) {
			result = append(result, event)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result, nil
}

func matchesFilter(event Event, filter Filter) bool {
	if len(filter.Types) > 0 {
		matched := false
		for _, pattern := range filter.Types {
			if MatchPattern(event.Type, pattern) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if !filter.Since.IsZero() && !event.Timestamp.After(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && !event.Timestamp.Before(filter.Until) {
		return false
	}
	return true
}

// prune drops history entries older than maxAge.
func (bus *MemoryBus) prune() {
	cutoff := time.Now().Add(-bus.maxAge)

	bus.mu.Lock()
	defer bus.mu.Unlock()

	kept := bus.history[:0]
	for _, event := range bus.history {
		if event.Timestamp.After(cutoff) {
			kept = append(kept, event)
		}
	}
	bus.history = kept
}

// Close shuts down the bus and all async subscribers.
func (bus *MemoryBus) Close() error {
	if bus.closed.Swap(true) {
		return nil
	}

	close(bus.stopPruner)

	bus.mu.Lock()
	for _, sub := range bus.subscriptions {
		if sub.async && sub.stopCh != nil {
			close(sub.stopCh)
		}
	}
	bus.subscriptions = make(map[SubscriptionID]*subscription)
	bus.mu.Unlock()

	bus.wg.Wait()
	return nil
}

func (bus *MemoryBus) generateID() string {
	n := atomic.AddUint64(&bus.nextID, 1)
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b) + "-" + strconv.FormatUint(n, 10)
}
