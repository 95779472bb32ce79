// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package window

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// X11Backend drives windows through EWMH hints.
type X11Backend struct {
	xu *xgbutil.XUtil
}

// NewX11Backend connects to the X server named by $DISPLAY.
func NewX11Backend() (*X11Backend, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	return &X11Backend{xu: xu}, nil
}

// NewX11BackendConn wraps an existing X connection.
func NewX11BackendConn(xu *xgbutil.XUtil) *X11Backend {
	return &X11Backend{xu: xu}
}

// XUtil exposes the underlying connection so other backends can share it.
func (b *X11Backend) XUtil() *xgbutil.XUtil {
	return b.xu
}

// List returns every window in the window manager's client list. Windows
// without a readable title are included with an empty title.
func (b *X11Backend) List() ([]Info, error) {
	clients, err := ewmh.ClientListGet(b.xu)
	if err != nil {
		return nil, fmt.Errorf("query client list: %w", err)
	}

	infos := make([]Info, 0, len(clients))
	for _, win := range clients {
		infos = append(infos, Info{Handle: Handle(win), Title: b.title(win)})
	}
	return infos, nil
}

// title reads _NET_WM_NAME, falling back to the ICCCM WM_NAME property.
func (b *X11Backend) title(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(b.xu, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(b.xu, win); err == nil {
		return name
	}
	return ""
}

// MoveResize moves and resizes a window in one request.
func (b *X11Backend) MoveResize(h Handle, x, y, w, ht int) error {
	if err := ewmh.MoveresizeWindow(b.xu, xproto.Window(h), x, y, w, ht); err != nil {
		return fmt.Errorf("moveresize window %d: %w", h, err)
	}
	return nil
}

// Close asks the window manager to close a window.
func (b *X11Backend) Close(h Handle) error {
	if err := ewmh.CloseWindow(b.xu, xproto.Window(h)); err != nil {
		return fmt.Errorf("close window %d: %w", h, err)
	}
	return nil
}
