// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebounce_CoalescesBurst(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls int32
	for i := 0; i < 10; i++ {
		d.Debounce("key", func() { atomic.AddInt32(&calls, 1) })
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDebounce_SeparateKeys(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls int32
	d.Debounce("a", func() { atomic.AddInt32(&calls, 1) })
	d.Debounce("b", func() { atomic.AddInt32(&calls, 1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDebounce_Cancel(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls int32
	d.Debounce("key", func() { atomic.AddInt32(&calls, 1) })
	d.Cancel("key")

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestDebounce_StopCancelsAll(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls int32
	d.Debounce("a", func() { atomic.AddInt32(&calls, 1) })
	d.Debounce("b", func() { atomic.AddInt32(&calls, 1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}
