// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package display

import (
	"fmt"

	"github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgbutil"
	xuxinerama "github.com/BurntSushi/xgbutil/xinerama"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/streamwall/streamwall/internal/grid"
)

// X11Backend enumerates displays via the Xinerama extension.
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

// Displays returns one Display per Xinerama head. The first head is treated
// as primary, matching the X server's head ordering. When Xinerama is
// unavailable the root window geometry is reported as a single display.
func (b *X11Backend) Displays() ([]Display, error) {
	if err := xinerama.Init(b.xu.Conn()); err == nil {
		heads, err := xuxinerama.PhysicalHeads(b.xu)
		if err == nil && len(heads) > 0 {
			displays := make([]Display, 0, len(heads))
			for i, head := range heads {
				displays = append(displays, Display{
					Bounds: grid.Rect{
						X:      head.X(),
						Y:      head.Y(),
						Width:  head.Width(),
						Height: head.Height(),
					},
					Primary: i == 0,
				})
			}
			return displays, nil
		}
	}

	geom, err := xwindow.New(b.xu, b.xu.RootWin()).Geometry()
	if err != nil {
		return nil, fmt.Errorf("root window geometry: %w", err)
	}
	return []Display{{
		Bounds:  grid.Rect{X: geom.X(), Y: geom.Y(), Width: geom.Width(), Height: geom.Height()},
		Primary: true,
	}}, nil
}
