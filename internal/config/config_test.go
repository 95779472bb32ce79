// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streamwall.hjson")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_HJSON(t *testing.T) {
	path := writeConfig(t, `{
  // comments and trailing commas are fine in hjson
  version: "1"
  project: { name: "wall" }
  server: { host: "0.0.0.0", port: 9999 }
  browser: {
    path: /usr/bin/chromium
    extra_args: ["--mute-audio"]
  }
  session: { check_interval: "30s" }
}`)

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "wall", cfg.Project.Name)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/usr/bin/chromium", cfg.Browser.Path)
	assert.Equal(t, []string{"--mute-audio"}, cfg.Browser.ExtraArgs)
	assert.Equal(t, "30s", cfg.Session.CheckInterval)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope.hjson"))
	assert.Error(t, err)
}

func TestLoad_BadSyntax(t *testing.T) {
	path := writeConfig(t, "{ server: { port: }")
	_, err := NewLoader().Load(path)
	assert.Error(t, err)
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeConfig(t, `{ version: "1", project: { name: "wall" } }`)

	cfg, err := NewLoader().LoadWithDefaults(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 4690, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Data.Dir)
	assert.Equal(t, "10s", cfg.Session.CheckInterval)
	assert.Equal(t, "1s", cfg.Session.LaunchDelay)
	assert.Equal(t, "5s", cfg.Session.SettleDelay)
	assert.Equal(t, []string{"Twitch", "Chrome"}, cfg.Session.TitleMatch)
	assert.Equal(t, "5s", cfg.Monitor.Interval)
	assert.True(t, cfg.Monitor.IsEnabled())
	assert.Equal(t, 10000, cfg.Events.History.MaxEvents)
	assert.Equal(t, "100ms", cfg.Watch.Debounce)
	assert.Equal(t, "7d", cfg.Crashes.MaxAge)
	assert.Equal(t, 100, cfg.Crashes.MaxCount)
	assert.Equal(t, filepath.Join(cfg.Data.Dir, "crashes"), cfg.Crashes.Dir)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "streamwall", cfg.Project.Name)
	assert.NoError(t, NewValidator().Validate(cfg))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 10*time.Second, ParseDuration("10s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("bogus", time.Minute))
	assert.Equal(t, 7*24*time.Hour, ParseDuration("7d", time.Minute))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.NoError(t, NewValidator().Validate(cfg))

	cfg.Server.Port = 99999
	cfg.Session.CheckInterval = "nonsense"
	cfg.Browser.Candidates = []string{""}
	cfg.Crashes.MaxCount = -1

	err := NewValidator().Validate(cfg)
	require.Error(t, err)

	verr, ok := err.(*ValidationError)
	require.True(t, ok)
	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "server.port")
	assert.Contains(t, fields, "session.check_interval")
	assert.Contains(t, fields, "browser.candidates[0]")
	assert.Contains(t, fields, "crashes.max_count")
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	_, err = NewLoader().FindConfig()
	assert.Error(t, err)

	require.NoError(t, os.WriteFile("streamwall.hjson", []byte("{}"), 0644))
	path, err := NewLoader().FindConfig()
	require.NoError(t, err)
	assert.Equal(t, "streamwall.hjson", filepath.Base(path))
}
