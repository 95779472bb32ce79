// Copyright © 2026 Streamwall Authors
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamwall/streamwall/internal/events"
	"github.com/streamwall/streamwall/internal/monitor"
	"github.com/streamwall/streamwall/internal/session"
	"github.com/streamwall/streamwall/internal/store"
)

// fakeSession is a scriptable SessionManager.
type fakeSession struct {
	running    bool
	instances  []session.InstanceState
	launchErr  error
	stopErr    error
	termErr    error
	recoverErr error
	removed    int
	terminated []int
	recovered  []int
	arranged   bool
	adHocCount int
}

func (f *fakeSession) Running() bool                       { return f.running }
func (f *fakeSession) Instances() []session.InstanceState  { return f.instances }
func (f *fakeSession) Launch(ctx context.Context) error    { return f.launchErr }
func (f *fakeSession) Stop(ctx context.Context) error      { return f.stopErr }
func (f *fakeSession) Terminate(ctx context.Context, slot int) error {
	f.terminated = append(f.terminated, slot)
	return f.termErr
}
func (f *fakeSession) TerminateCount(ctx context.Context, n int) int { return f.removed }
func (f *fakeSession) Recover(ctx context.Context, slot int) error {
	f.recovered = append(f.recovered, slot)
	return f.recoverErr
}
func (f *fakeSession) Arrange(ctx context.Context) ([]session.ArrangeResult, error) {
	f.arranged = true
	return nil, nil
}
func (f *fakeSession) ArrangeAdHoc(ctx context.Context, n int) ([]session.ArrangeResult, error) {
	f.adHocCount = n
	return nil, nil
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func newRecords(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestSession_Launch(t *testing.T) {
	fake := &fakeSession{}
	h := NewSessionHandler(fake)

	rec := httptest.NewRecorder()
	h.Launch(rec, httptest.NewRequest("POST", "/api/v1/session/launch", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	fake.launchErr = session.ErrSessionRunning
	rec = httptest.NewRecorder()
	h.Launch(rec, httptest.NewRequest("POST", "/api/v1/session/launch", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ErrConflict, decode(t, rec).Error.Code)
}

func TestSession_Terminate(t *testing.T) {
	fake := &fakeSession{}
	h := NewSessionHandler(fake)

	rec := httptest.NewRecorder()
	h.Terminate(rec, httptest.NewRequest("POST", "/api/v1/session/terminate", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	fake.stopErr = session.ErrNoSession
	rec = httptest.NewRecorder()
	h.Terminate(rec, httptest.NewRequest("POST", "/api/v1/session/terminate", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSession_TerminateSlot(t *testing.T) {
	fake := &fakeSession{}
	h := NewSessionHandler(fake)

	req := mux.SetURLVars(httptest.NewRequest("POST", "/api/v1/session/instances/2/terminate", nil),
		map[string]string{"slot": "2"})
	rec := httptest.NewRecorder()
	h.TerminateSlot(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{2}, fake.terminated)

	fake.termErr = session.ErrNoSuchSlot
	rec = httptest.NewRecorder()
	h.TerminateSlot(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession_TerminateCount(t *testing.T) {
	fake := &fakeSession{removed: 2}
	h := NewSessionHandler(fake)

	req := mux.SetURLVars(httptest.NewRequest("DELETE", "/api/v1/session/instances/2", nil),
		map[string]string{"n": "2"})
	rec := httptest.NewRecorder()
	h.TerminateCount(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"removed":2`)

	req = mux.SetURLVars(httptest.NewRequest("DELETE", "/api/v1/session/instances/x", nil),
		map[string]string{"n": "x"})
	rec = httptest.NewRecorder()
	h.TerminateCount(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSession_Arrange(t *testing.T) {
	fake := &fakeSession{}
	h := NewSessionHandler(fake)

	rec := httptest.NewRecorder()
	h.Arrange(rec, httptest.NewRequest("POST", "/api/v1/session/arrange", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, fake.arranged)

	rec = httptest.NewRecorder()
	h.Arrange(rec, httptest.NewRequest("POST", "/api/v1/session/arrange?count=6", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 6, fake.adHocCount)

	rec = httptest.NewRecorder()
	h.Arrange(rec, httptest.NewRequest("POST", "/api/v1/session/arrange?count=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfiles_CRUD(t *testing.T) {
	records := newRecords(t)
	h := NewProfileHandler(records)

	body, _ := json.Marshal(store.Profile{Name: "wall", WindowCount: 4})
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/v1/profiles", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created store.Profile
	data, _ := json.Marshal(decode(t, rec).Data)
	require.NoError(t, json.Unmarshal(data, &created))
	require.NotEmpty(t, created.ID)

	req := mux.SetURLVars(httptest.NewRequest("GET", "/api/v1/profiles/"+created.ID, nil),
		map[string]string{"id": created.ID})
	rec = httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = mux.SetURLVars(httptest.NewRequest("DELETE", "/api/v1/profiles/"+created.ID, nil),
		map[string]string{"id": created.ID})
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.Get(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfiles_ValidationError(t *testing.T) {
	h := NewProfileHandler(newRecords(t))

	body, _ := json.Marshal(store.Profile{Name: "", WindowCount: 4})
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/v1/profiles", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrValidation, decode(t, rec).Error.Code)
}

func TestProfiles_BadJSON(t *testing.T) {
	h := NewProfileHandler(newRecords(t))

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/v1/profiles", bytes.NewReader([]byte("{nope"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLayouts_CreateDerivesGrid(t *testing.T) {
	h := NewLayoutHandler(newRecords(t))

	body := []byte(`{"name":"wall","monitor":{"x":0,"y":0,"width":1920,"height":1080},"window_count":6}`)
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest("POST", "/api/v1/layouts", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created store.Layout
	data, _ := json.Marshal(decode(t, rec).Data)
	require.NoError(t, json.Unmarshal(data, &created))
	assert.Equal(t, store.GridSpec{Cols: 3, Rows: 2}, created.Grid)
}

func TestSettings_GetUpdate(t *testing.T) {
	records := newRecords(t)
	h := NewSettingsHandler(records)

	rec := httptest.NewRecorder()
	h.Get(rec, httptest.NewRequest("GET", "/api/v1/settings", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	body := []byte(`{"window_count":8,"destination_name":"somestreamer","quality":"720p"}`)
	rec = httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest("PUT", "/api/v1/settings", bytes.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, records.Settings().WindowCount)

	bad := []byte(`{"window_count":0}`)
	rec = httptest.NewRecorder()
	h.Update(rec, httptest.NewRequest("PUT", "/api/v1/settings", bytes.NewReader(bad)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvents_History(t *testing.T) {
	bus := events.NewMemoryBus(events.MemoryBusConfig{})
	t.Cleanup(func() { bus.Close() })
	h := NewEventHandler(bus)

	require.NoError(t, bus.Publish(context.Background(), events.Event{Type: events.EventSessionStarted}))
	require.NoError(t, bus.Publish(context.Background(), events.Event{Type: events.EventInstanceCrashed}))

	rec := httptest.NewRecorder()
	h.History(rec, httptest.NewRequest("GET", "/api/v1/events?type=session.*", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got []events.Event
	data, _ := json.Marshal(decode(t, rec).Data)
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, events.EventSessionStarted, got[0].Type)
}

func TestStatus(t *testing.T) {
	records := newRecords(t)
	fake := &fakeSession{
		running: true,
		instances: []session.InstanceState{
			{Slot: 0, Alive: true},
			{Slot: 1, Alive: false},
		},
	}
	h := NewStatusHandler(fake, records, nil, "1.2.3")

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest("GET", "/api/v1/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"version":"1.2.3"`)
	assert.Contains(t, body, `"running":true`)
	assert.Contains(t, body, `"slots":2`)
	assert.Contains(t, body, `"alive":1`)
}

func TestStatus_Optimize(t *testing.T) {
	// A process name nothing on the machine carries, so the census finds
	// no processes to re-nice.
	mon := monitor.New(monitor.Config{ProcessNames: []string{"no-such-browser-zzz"}}, nil)
	h := NewStatusHandler(&fakeSession{}, newRecords(t), mon, "1.2.3")

	rec := httptest.NewRecorder()
	h.Optimize(rec, httptest.NewRequest("POST", "/api/v1/monitor/optimize", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"optimized":0`)
}
