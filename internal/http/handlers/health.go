package handlers

import (
	"net/http"
	"time"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/honeypot"
)

// ServiceVersion is reported by the health and root endpoints.
const ServiceVersion = "2.0.0"

// HealthHandler reports service liveness and component status.
type HealthHandler struct {
	service         *honeypot.Service
	archiveEnabled  bool
	aiEnabled       bool
	callbackTimeout time.Duration
	started         time.Time
}

// NewHealthHandler creates a health handler. The flags describe which
// optional components were wired at startup.
func NewHealthHandler(service *honeypot.Service, archiveEnabled, aiEnabled bool, callbackTimeout time.Duration) *HealthHandler {
	return &HealthHandler{
		service:         service,
		archiveEnabled:  archiveEnabled,
		aiEnabled:       aiEnabled,
		callbackTimeout: callbackTimeout,
		started:         time.Now().UTC(),
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds float64           `json:"uptime_seconds"`
	Components    map[string]string `json:"components"`
	Configuration map[string]any    `json:"configuration"`
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := map[string]string{
		"detection":  "operational",
		"engagement": "operational",
		"sessions":   "operational",
		"callback":   "operational",
	}
	if h.archiveEnabled {
		components["archive"] = "operational"
	} else {
		components["archive"] = "disabled"
	}
	if h.aiEnabled {
		components["generation"] = "operational"
	} else {
		components["generation"] = "fallback_only"
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       ServiceVersion,
		UptimeSeconds: time.Since(h.started).Seconds(),
		Components:    components,
		Configuration: map[string]any{
			"callback_timeout_seconds": h.callbackTimeout.Seconds(),
			"active_sessions":          h.service.ActiveSessionCount(),
		},
	})
}

// Root handles GET /. It advertises the service without requiring a key.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":         "agentic-honeypot",
		"version":         ServiceVersion,
		"status":          "running",
		"active_sessions": h.service.ActiveSessionCount(),
	})
}
