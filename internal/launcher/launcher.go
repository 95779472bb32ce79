// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

// Package launcher starts and stops browser instances.
package launcher

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
)

// ErrBrowserNotFound is returned when no browser executable can be located.
// Launch operations must abort entirely on this error rather than attempt
// partial work.
var ErrBrowserNotFound = errors.New("browser executable not found")

// PerformanceFlags are passed to every instance.
var PerformanceFlags = []string{
	"--disable-extensions",
	"--disable-plugins",
	"--disable-software-rasterizer",
	"--disable-gpu-compositing",
}

// FindBrowser returns the browser executable path, checking the override
// first and then the platform's well-known install locations.
func FindBrowser(override string, candidates []string) (string, error) {
	if override != "" {
		if _, err := os.Stat(override); err != nil {
			return "", fmt.Errorf("%w: configured path %s", ErrBrowserNotFound, override)
		}
		return override, nil
	}

	paths := candidates
	if len(paths) == 0 {
		paths = defaultCandidates()
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrBrowserNotFound
}

func defaultCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"}
	case "windows":
		home, _ := os.UserHomeDir()
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			filepath.Join(home, `AppData\Local\Google\Chrome\Application\chrome.exe`),
		}
	default:
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
		}
	}
}

// BuildArgs returns the deterministic argument set for one instance: a new
// top-level window on url, the identity label as the profile directory, the
// fixed performance flags, and a JS heap cap when a memory limit is set.
func BuildArgs(label, url string, memoryLimitMB *int, extra []string) []string {
	args := []string{
		"--new-window", url,
		"--profile-directory=" + label,
	}
	args = append(args, PerformanceFlags...)
	if memoryLimitMB != nil && *memoryLimitMB > 0 {
		args = append(args, fmt.Sprintf("--js-flags=--max-old-space-size=%d", *memoryLimitMB))
	}
	args = append(args, extra...)
	return args
}

// qualityParams maps quality settings to the stream playback parameter.
var qualityParams = map[string]string{
	"source": "chunked",
	"720p":   "720p60",
	"480p":   "480p30",
	"360p":   "360p30",
	"160p":   "160p30",
}

// StreamURL builds the destination URL for a channel. An empty destination
// means the homepage; quality "auto" (and the homepage) get no parameter.
func StreamURL(destination, quality string) string {
	if destination == "" {
		return "https://www.twitch.tv"
	}
	url := "https://www.twitch.tv/" + destination
	if param, ok := qualityParams[quality]; ok {
		return url + "?quality=" + param
	}
	return url
}

// profileBaseDir returns the browser's profile directory root.
func profileBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Google", "Chrome")
	case "windows":
		return filepath.Join(home, `AppData\Local\Google\Chrome\User Data`)
	default:
		return filepath.Join(home, ".config", "google-chrome")
	}
}

// WarnMissingProfiles logs labels whose profile directory does not exist
// yet. The browser creates missing directories on first launch, so this is
// informational only.
func WarnMissingProfiles(labels []string) {
	base := profileBaseDir()
	if base == "" {
		return
	}
	if _, err := os.Stat(base); err != nil {
		log.Printf("launcher: profile directory root %s not found", base)
		return
	}
	for _, label := range labels {
		if _, err := os.Stat(filepath.Join(base, label)); err != nil {
			log.Printf("launcher: profile %q has no directory yet, browser will create it", label)
		}
	}
}

// Launcher spawns browser processes with a fixed executable path.
type Launcher struct {
	execPath string
}

// New creates a launcher for the given executable.
func New(execPath string) *Launcher {
	return &Launcher{execPath: execPath}
}

// ExecPath returns the browser executable this launcher uses.
func (l *Launcher) ExecPath() string { return l.execPath }

// Launch starts one browser instance for the given identity label and url.
func (l *Launcher) Launch(label, url string, memoryLimitMB *int, extra []string) (*Process, error) {
	if l.execPath == "" {
		return nil, ErrBrowserNotFound
	}
	proc := NewProcess(l.execPath, BuildArgs(label, url, memoryLimitMB, extra))
	if err := proc.Start(); err != nil {
		return nil, err
	}
	return proc, nil
}
