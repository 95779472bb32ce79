// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		n    int
		cols int
		rows int
	}{
		{1, 1, 1},
		{2, 2, 1},
		{3, 2, 2},
		{4, 2, 2},
		{5, 3, 2},
		{6, 3, 2},
		{7, 3, 3},
		{9, 3, 3},
		{10, 4, 3},
		{16, 4, 4},
	}

	for _, tt := range tests {
		cols, rows := Compute(tt.n)
		assert.Equal(t, tt.cols, cols, "cols for n=%d", tt.n)
		assert.Equal(t, tt.rows, rows, "rows for n=%d", tt.n)
	}
}

func TestCompute_Capacity(t *testing.T) {
	// The grid always has room for every window.
	for n := 1; n <= 100; n++ {
		cols, rows := Compute(n)
		assert.GreaterOrEqual(t, cols*rows, n, "n=%d", n)
		assert.Equal(t, int(math.Ceil(math.Sqrt(float64(n)))), cols, "n=%d", n)
	}
}

func TestCompute_NonPositive(t *testing.T) {
	cols, rows := Compute(0)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, rows)

	cols, rows = Compute(-3)
	assert.Equal(t, 1, cols)
	assert.Equal(t, 1, rows)
}

func TestCellSize(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

	w, h := CellSize(r, 3, 2)
	assert.Equal(t, 640, w)
	assert.Equal(t, 540, h)

	// Floor division, remainder pixels are unused.
	w, h = CellSize(r, 7, 3)
	assert.Equal(t, 274, w)
	assert.Equal(t, 360, h)
}

func TestCellOrigin_RowMajor(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	cellW, cellH := CellSize(r, 3, 2)

	// Slot 4 with cols=3 lands in col=1, row=1.
	x, y := CellOrigin(r, 4, 3, cellW, cellH)
	assert.Equal(t, 640, x)
	assert.Equal(t, 540, y)

	// Slot 5 lands in col=2, row=1.
	x, y = CellOrigin(r, 5, 3, cellW, cellH)
	assert.Equal(t, 1280, x)
	assert.Equal(t, 540, y)
}

func TestCellOrigin_Offset(t *testing.T) {
	// A secondary display with an origin offset.
	r := Rect{X: 1920, Y: 200, Width: 1280, Height: 1024}
	cellW, cellH := CellSize(r, 2, 2)

	x, y := CellOrigin(r, 0, 2, cellW, cellH)
	assert.Equal(t, 1920, x)
	assert.Equal(t, 200, y)

	x, y = CellOrigin(r, 3, 2, cellW, cellH)
	assert.Equal(t, 1920+640, x)
	assert.Equal(t, 200+512, y)
}
