// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"strings"
)

// MatchPattern reports whether an event type matches a pattern.
// Patterns support wildcards:
//   - "instance.*" matches "instance.crashed", "instance.recovered", etc.
//   - "*.activated" matches "profile.activated", "layout.activated", etc.
//   - "*" matches everything
func MatchPattern(eventType, pattern string) bool {
	if pattern == "" || eventType == "" {
		return false
	}
	if pattern == "*" || pattern == eventType {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		return strings.HasPrefix(eventType, strings.TrimSuffix(pattern, "*"))
	}
	if strings.HasPrefix(pattern, "*.") {
		return strings.HasSuffix(eventType, strings.TrimPrefix(pattern, "*"))
	}
	return false
}

// CompilePattern validates a pattern and returns a matcher for it.
func CompilePattern(pattern string) (func(eventType string) bool, error) {
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}
	return func(eventType string) bool {
		return MatchPattern(eventType, pattern)
	}, nil
}
