// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package display enumerates the physical displays windows can be placed on.
package display

import (
	"github.com/streamwall/streamwall/internal/grid"
)

// Display describes one physical display.
type Display struct {
	Bounds  grid.Rect `json:"bounds"`
	Primary bool      `json:"primary"`
}

// Backend abstracts display enumeration across window systems.
type Backend interface {
	Displays() ([]Display, error)
}

// DefaultBounds is used when no display can be detected.
var DefaultBounds = grid.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

// Primary returns the primary display from the backend, falling back to
// DefaultBounds when enumeration fails or yields nothing.
func Primary(b Backend) Display {
	displays, err := b.Displays()
	if err != nil || len(displays) == 0 {
		return Display{Bounds: DefaultBounds, Primary: true}
	}
	for _, d := range displays {
		if d.Primary {
			return d
		}
	}
	return displays[0]
}
