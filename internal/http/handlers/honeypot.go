package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/honeypot"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/persona"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/session"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

// HoneypotHandler exposes the honeypot pipeline over HTTP.
type HoneypotHandler struct {
	service *honeypot.Service
	logger  *logging.Logger
}

// NewHoneypotHandler creates a new honeypot API handler.
func NewHoneypotHandler(service *honeypot.Service, logger *logging.Logger) *HoneypotHandler {
	if service == nil {
		panic("handlers: honeypot service is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &HoneypotHandler{
		service: service,
		logger:  logger,
	}
}

// AnalyzeRequest is one inbound scammer message.
type AnalyzeRequest struct {
	SessionID string `json:"sessionId"`
	Message   struct {
		Text string `json:"text"`
	} `json:"message"`
	Metadata struct {
		Channel string `json:"channel"`
	} `json:"metadata"`
}

// Analyze handles POST /api/analyze. It runs scam detection on the
// message and, when a scam is identified or the session is already
// engaged, returns the persona's reply.
func (h *HoneypotHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message.Text) == "" {
		http.Error(w, "message.text is required", http.StatusBadRequest)
		return
	}

	platform := persona.ParsePlatform(req.Metadata.Channel)
	result := h.service.HandleMessage(r.Context(), req.SessionID, req.Message.Text, platform)
	writeJSON(w, http.StatusOK, result)
}

// SessionStatus handles GET /api/session/{sessionID}.
func (h *HoneypotHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	summary, ok := h.service.SessionSummary(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ListSessions handles GET /api/sessions.
func (h *HoneypotHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Overview())
}

// CompleteSessionResponse wraps the final report of a force-completed
// session.
type CompleteSessionResponse struct {
	Status string          `json:"status"`
	Report *session.Report `json:"report"`
}

// CompleteSession handles POST /api/session/{sessionID}/complete. It
// force-finishes an active session and triggers final-result delivery.
func (h *HoneypotHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	report, err := h.service.CompleteSession(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, CompleteSessionResponse{
		Status: "completed",
		Report: report,
	})
}

// SessionReport handles GET /api/session/{sessionID}/report. Completed
// sessions return their stored report.
func (h *HoneypotHandler) SessionReport(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	report, ok := h.service.CompletedReport(sessionID)
	if !ok {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already written, an encode failure has nothing left
	// to signal to the client.
	_ = json.NewEncoder(w).Encode(v)
}
