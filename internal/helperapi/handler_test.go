package helperapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oliverames/warden/internal/latency"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(nopWriter{}, nil))
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

// mockEngine is a test double for EngineControl.
type mockEngine struct {
	mu            sync.Mutex
	enabled       bool
	setErr        error
	setCalls      []bool
	interventions int64
	resets        int
}

func (m *mockEngine) Enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabled
}

func (m *mockEngine) SetEnabled(enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls = append(m.setCalls, enabled)
	if m.setErr != nil {
		return m.setErr
	}
	m.enabled = enabled
	return nil
}

func (m *mockEngine) Status() string { return "interface p2p0: flags 0; enabled=true" }

func (m *mockEngine) InterventionCount() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interventions
}

func (m *mockEngine) ResetInterventionCount() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets++
	m.interventions = 0
}

// mockLatency is a test double for LatencyReader.
type mockLatency struct {
	results []latency.Result
}

func (m *mockLatency) Results() []latency.Result { return m.results }

func newTestMux(engine EngineControl, lat LatencyReader) *http.ServeMux {
	return NewHandler(engine, lat, nil, "1.2.3", discardLogger()).Mux()
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandler_GetEnabled(t *testing.T) {
	mux := newTestMux(&mockEngine{enabled: true}, nil)

	rec := doRequest(t, mux, "GET", "/v1/enabled", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp EnabledResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if !resp.Enabled {
		t.Error("Enabled = false, want true")
	}
}

func TestHandler_PutEnabled(t *testing.T) {
	eng := &mockEngine{enabled: true}
	mux := newTestMux(eng, nil)

	rec := doRequest(t, mux, "PUT", "/v1/enabled", `{"enabled":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(eng.setCalls) != 1 || eng.setCalls[0] != false {
		t.Errorf("SetEnabled calls = %v, want [false]", eng.setCalls)
	}
}

func TestHandler_PutEnabledBadBody(t *testing.T) {
	eng := &mockEngine{}
	mux := newTestMux(eng, nil)

	rec := doRequest(t, mux, "PUT", "/v1/enabled", "{not json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(eng.setCalls) != 0 {
		t.Errorf("SetEnabled called %d times for an invalid body, want 0", len(eng.setCalls))
	}
}

func TestHandler_PutEnabledPostFailure(t *testing.T) {
	eng := &mockEngine{setErr: errors.New("command channel full")}
	mux := newTestMux(eng, nil)

	// A lost enable/disable must be surfaced, never silently dropped.
	rec := doRequest(t, mux, "PUT", "/v1/enabled", `{"enabled":false}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandler_Version(t *testing.T) {
	mux := newTestMux(&mockEngine{}, nil)

	rec := doRequest(t, mux, "GET", "/v1/version", "")
	var resp VersionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", resp.Version)
	}
}

func TestHandler_Interventions(t *testing.T) {
	eng := &mockEngine{interventions: 42}
	mux := newTestMux(eng, nil)

	rec := doRequest(t, mux, "GET", "/v1/interventions", "")
	var resp InterventionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Count != 42 {
		t.Errorf("Count = %d, want 42", resp.Count)
	}

	rec = doRequest(t, mux, "DELETE", "/v1/interventions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", rec.Code)
	}
	if eng.resets != 1 {
		t.Errorf("resets = %d, want 1", eng.resets)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse reset response: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("Count after reset = %d, want 0", resp.Count)
	}
}

func TestHandler_Latency(t *testing.T) {
	lat := &mockLatency{results: []latency.Result{
		{Target: "1.1.1.1", RTT: 10 * time.Millisecond, Healthy: true},
	}}
	mux := newTestMux(&mockEngine{}, lat)

	rec := doRequest(t, mux, "GET", "/v1/latency", "")
	var results []latency.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(results) != 1 || results[0].Target != "1.1.1.1" {
		t.Errorf("results = %+v, want one entry for 1.1.1.1", results)
	}
}

func TestHandler_LatencyWithoutMonitor(t *testing.T) {
	mux := newTestMux(&mockEngine{}, nil)

	rec := doRequest(t, mux, "GET", "/v1/latency", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var results []latency.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %+v, want empty", results)
	}
}
