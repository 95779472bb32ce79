// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"strings"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateServer(cfg, errs)
	v.validateBrowser(cfg, errs)
	v.validateDurations(cfg, errs)
	v.validateCrashes(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 0 and 65535")
	}
}

func (v *Validator) validateBrowser(cfg *Config, errs *ValidationError) {
	for i, c := range cfg.Browser.Candidates {
		if c == "" {
			errs.Add(fmt.Sprintf("browser.candidates[%d]", i), "must not be empty")
		}
	}
}

func (v *Validator) validateDurations(cfg *Config, errs *ValidationError) {
	durations := map[string]string{
		"session.check_interval": cfg.Session.CheckInterval,
		"session.launch_delay":   cfg.Session.LaunchDelay,
		"session.settle_delay":   cfg.Session.SettleDelay,
		"monitor.interval":       cfg.Monitor.Interval,
		"events.history.max_age": cfg.Events.History.MaxAge,
		"watch.debounce":         cfg.Watch.Debounce,
	}
	for field, value := range durations {
		if value == "" {
			continue
		}
		d, err := parseDurationWithDays(value)
		if err != nil {
			errs.Add(field, fmt.Sprintf("invalid duration %q", value))
			continue
		}
		if d < 0 {
			errs.Add(field, "must not be negative")
		}
	}
}

func (v *Validator) validateCrashes(cfg *Config, errs *ValidationError) {
	if cfg.Crashes.MaxAge != "" {
		if _, err := parseDurationWithDays(cfg.Crashes.MaxAge); err != nil {
			errs.Add("crashes.max_age", fmt.Sprintf("invalid duration %q", cfg.Crashes.MaxAge))
		}
	}
	if cfg.Crashes.MaxCount < 0 {
		errs.Add("crashes.max_count", "must not be negative")
	}
}
