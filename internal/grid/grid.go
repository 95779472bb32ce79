// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package grid computes window placement grids.
package grid

import "math"

// Rect is a rectangular screen region in pixels.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Compute returns the (cols, rows) partition for n windows:
// cols = ceil(sqrt(n)), rows = ceil(n/cols). Total for any n.
func Compute(n int) (cols, rows int) {
	if n <= 0 {
		return 1, 1
	}
	cols = int(math.Ceil(math.Sqrt(float64(n))))
	rows = (n + cols - 1) / cols
	return cols, rows
}

// CellSize returns the size of one grid cell using floor division.
func CellSize(r Rect, cols, rows int) (w, h int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return r.Width / cols, r.Height / rows
}

// CellOrigin returns the top-left corner of the cell for slot i.
// Slots fill row-major: col = i mod cols, row = i div cols.
func CellOrigin(r Rect, i, cols, cellW, cellH int) (x, y int) {
	if cols < 1 {
		cols = 1
	}
	col := i % cols
	row := i / cols
	return r.X + col*cellW, r.Y + row*cellH
}
