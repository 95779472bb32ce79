// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package window locates and manipulates top-level OS windows.
package window

import "strings"

// Handle is a platform-neutral window identifier.
type Handle uint32

// Info contains the metadata needed to match a window to an instance.
type Info struct {
	Handle Handle
	Title  string
}

// Backend abstracts window-system operations. Enumeration order is whatever
// the window system yields and is not stable across calls.
type Backend interface {
	List() ([]Info, error)
	MoveResize(h Handle, x, y, w, ht int) error
	Close(h Handle) error
}

// TitlePredicate decides whether a window title matches. Window identity is
// a best-effort heuristic on this class of API; exact matching is not
// possible and callers must not assume it.
type TitlePredicate func(title string) bool

// TitleContains returns a predicate matching titles that contain any of the
// given substrings.
func TitleContains(substrings ...string) TitlePredicate {
	return func(title string) bool {
		for _, s := range substrings {
			if s != "" && strings.Contains(title, s) {
				return true
			}
		}
		return false
	}
}

// Locator finds top-level windows by title.
type Locator struct {
	backend Backend
}

// NewLocator creates a locator over the given backend.
func NewLocator(backend Backend) *Locator {
	return &Locator{backend: backend}
}

// Find enumerates all top-level windows, filters by the predicate, and
// truncates the result to at most max entries (no limit when max <= 0).
// An empty result is not an error; the caller decides whether it is fatal.
func (l *Locator) Find(pred TitlePredicate, max int) ([]Info, error) {
	all, err := l.backend.List()
	if err != nil {
		return nil, err
	}

	var matched []Info
	for _, w := range all {
		if pred == nil || pred(w.Title) {
			matched = append(matched, w)
			if max > 0 && len(matched) == max {
				break
			}
		}
	}
	return matched, nil
}
