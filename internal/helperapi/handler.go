// Package helperapi serves the daemon's control surface over a local Unix
// socket: query and change the enforcement state, read diagnostics, and
// reset the intervention counter.
package helperapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/oliverames/warden/internal/latency"
)

// EngineControl is the slice of the enforcement engine the API exposes.
type EngineControl interface {
	Enabled() bool
	SetEnabled(enabled bool) error
	Status() string
	InterventionCount() int64
	ResetInterventionCount()
}

// LatencyReader provides the latest latency probe results; nil when the
// latency monitor is not running.
type LatencyReader interface {
	Results() []latency.Result
}

// Handler provides HTTP handlers for the local control API.
type Handler struct {
	engine  EngineControl
	latency LatencyReader
	metrics http.Handler
	version string
	logger  *slog.Logger
}

// NewHandler creates a new Handler. latencyReader and metrics may be nil.
func NewHandler(engine EngineControl, latencyReader LatencyReader, metrics http.Handler, version string, logger *slog.Logger) *Handler {
	return &Handler{
		engine:  engine,
		latency: latencyReader,
		metrics: metrics,
		version: version,
		logger:  logger.With("component", "helperapi"),
	}
}

// Mux returns a configured ServeMux with all control API routes.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/enabled", h.handleGetEnabled)
	mux.HandleFunc("PUT /v1/enabled", h.handlePutEnabled)
	mux.HandleFunc("GET /v1/status", h.handleGetStatus)
	mux.HandleFunc("GET /v1/version", h.handleGetVersion)
	mux.HandleFunc("GET /v1/interventions", h.handleGetInterventions)
	mux.HandleFunc("DELETE /v1/interventions", h.handleResetInterventions)
	mux.HandleFunc("GET /v1/latency", h.handleGetLatency)
	if h.metrics != nil {
		mux.Handle("GET /metrics", h.metrics)
	}
	return mux
}

// EnabledResponse is the body of GET /v1/enabled.
type EnabledResponse struct {
	Enabled bool `json:"enabled"`
}

// EnabledRequest is the body of PUT /v1/enabled.
type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// StatusResponse is the body of GET /v1/status.
type StatusResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the body of GET /v1/version.
type VersionResponse struct {
	Version string `json:"version"`
}

// InterventionsResponse is the body of GET /v1/interventions.
type InterventionsResponse struct {
	Count int64 `json:"count"`
}

func (h *Handler) handleGetEnabled(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, EnabledResponse{Enabled: h.engine.Enabled()})
}

func (h *Handler) handlePutEnabled(w http.ResponseWriter, r *http.Request) {
	var req EnabledRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.engine.SetEnabled(req.Enabled); err != nil {
		// The command was not delivered; the caller must not assume the
		// state changed.
		h.logger.Error("set enabled failed", "enabled", req.Enabled, "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	h.logger.Info("enabled state change requested", "enabled", req.Enabled)
	writeJSON(w, http.StatusOK, EnabledResponse{Enabled: req.Enabled})
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: h.engine.Status()})
}

func (h *Handler) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: h.version})
}

func (h *Handler) handleGetInterventions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InterventionsResponse{Count: h.engine.InterventionCount()})
}

func (h *Handler) handleResetInterventions(w http.ResponseWriter, r *http.Request) {
	h.engine.ResetInterventionCount()
	writeJSON(w, http.StatusOK, InterventionsResponse{Count: 0})
}

func (h *Handler) handleGetLatency(w http.ResponseWriter, r *http.Request) {
	if h.latency == nil {
		writeJSON(w, http.StatusOK, []latency.Result{})
		return
	}
	writeJSON(w, http.StatusOK, h.latency.Results())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
