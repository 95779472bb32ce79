// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer returns a server that checks the request and writes an
// envelope response around data.
func newTestServer(t *testing.T, method, path string, status int, data interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, method, r.Method)
		assert.Equal(t, path, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
	}))
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:4690/")
	assert.Equal(t, "http://localhost:4690", c.BaseURL())
}

func TestSession_Status(t *testing.T) {
	srv := newTestServer(t, "GET", "/api/v1/status", http.StatusOK, map[string]interface{}{
		"version": "0.9",
		"running": true,
		"slots":   4,
		"alive":   3,
	})
	defer srv.Close()

	status, err := New(srv.URL).Session.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.9", status.Version)
	assert.True(t, status.Running)
	assert.Equal(t, 4, status.Slots)
	assert.Equal(t, 3, status.Alive)
}

func TestSession_Launch(t *testing.T) {
	srv := newTestServer(t, "POST", "/api/v1/session/launch", http.StatusOK, map[string]interface{}{
		"instances": []map[string]interface{}{
			{"slot": 0, "label": "Instance 1", "state": "running", "alive": true},
			{"slot": 1, "label": "Instance 2", "state": "running", "alive": true},
		},
	})
	defer srv.Close()

	instances, err := New(srv.URL).Session.Launch(context.Background())
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "Instance 1", instances[0].Label)
	assert.Equal(t, "running", instances[0].State)
}

func TestSession_LaunchConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "CONFLICT", "message": "session already running"},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Session.Launch(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok, "expected *APIError, got %T", err)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.Equal(t, "CONFLICT: session already running", apiErr.Error())
}

func TestSession_TerminateCount(t *testing.T) {
	srv := newTestServer(t, "DELETE", "/api/v1/session/instances/3", http.StatusOK,
		map[string]int{"removed": 2})
	defer srv.Close()

	removed, err := New(srv.URL).Session.TerminateCount(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
}

func TestSession_RecoverSlot(t *testing.T) {
	srv := newTestServer(t, "POST", "/api/v1/session/instances/1/recover", http.StatusOK,
		map[string]int{"slot": 1})
	defer srv.Close()

	require.NoError(t, New(srv.URL).Session.RecoverSlot(context.Background(), 1))
}

func TestSession_ArrangeCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/session/arrange", r.URL.Path)
		assert.Equal(t, "6", r.URL.Query().Get("count"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"windows": []map[string]interface{}{
					{"window": 7, "slot": 0, "rect": map[string]int{"x": 0, "y": 0, "width": 640, "height": 540}},
				},
			},
		})
	}))
	defer srv.Close()

	windows, err := New(srv.URL).Session.ArrangeCount(context.Background(), 6)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, 640, windows[0].Rect.Width)
}

func TestProfiles_CreateAndActivate(t *testing.T) {
	var activated bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/profiles":
			assert.Equal(t, "POST", r.Method)
			var p Profile
			require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
			p.ID = "abc123"
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"data": p})
		case "/api/v1/profiles/abc123/activate":
			assert.Equal(t, "POST", r.Method)
			activated = true
			json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]string{"message": "activated"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	created, err := c.Profiles.Create(context.Background(), Profile{Name: "wall", WindowCount: 4})
	require.NoError(t, err)
	assert.Equal(t, "abc123", created.ID)
	assert.Equal(t, "wall", created.Name)

	require.NoError(t, c.Profiles.Activate(context.Background(), created.ID))
	assert.True(t, activated)
}

func TestProfiles_ValidationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"code": "VALIDATION_ERROR", "message": "invalid record: name must not be empty"},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Profiles.Create(context.Background(), Profile{WindowCount: 4})
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestSettings_Update(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "PUT", r.Method)
		assert.Equal(t, "/api/v1/settings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var s Settings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&s))
		json.NewEncoder(w).Encode(map[string]interface{}{"data": s})
	}))
	defer srv.Close()

	updated, err := New(srv.URL).Settings.Update(context.Background(), Settings{
		WindowCount: 8,
		Destination: "somestreamer",
		Quality:     "720p",
	})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.WindowCount)
	assert.Equal(t, "somestreamer", updated.Destination)
}

func TestEvents_HistoryQuery(t *testing.T) {
	since := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, []string{"instance.*", "session.started"}, q["type"])
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, since.Format(time.RFC3339), q.Get("since"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "1", "type": "session.started"},
			},
		})
	}))
	defer srv.Close()

	events, err := New(srv.URL).Events.History(context.Background(), EventQuery{
		Types: []string{"instance.*", "session.started"},
		Limit: 10,
		Since: since,
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "session.started", events[0].Type)
}

func TestCrashes_NewestNull(t *testing.T) {
	srv := newTestServer(t, "GET", "/api/v1/crashes/newest", http.StatusOK, nil)
	defer srv.Close()

	report, err := New(srv.URL).Crashes.Newest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report)
}

func TestCrashes_List(t *testing.T) {
	srv := newTestServer(t, "GET", "/api/v1/crashes", http.StatusOK, []map[string]interface{}{
		{"id": "20260831-120000.000", "slot": 2, "exit_code": 137, "trigger": "instance.crashed"},
	})
	defer srv.Close()

	reports, err := New(srv.URL).Crashes.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, 137, reports[0].ExitCode)
	assert.Equal(t, "instance.crashed", reports[0].Trigger)
}

func TestMonitor_Optimize(t *testing.T) {
	srv := newTestServer(t, "POST", "/api/v1/monitor/optimize", http.StatusOK,
		map[string]int{"optimized": 3})
	defer srv.Close()

	count, err := New(srv.URL).Monitor.Optimize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestParseResponse_NonEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("bare error text"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Session.Status(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
