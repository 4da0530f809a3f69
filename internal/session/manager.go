package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/callback"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/detection"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/engagement"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/intel"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/observability/metrics"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/persona"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

// AgentFactory builds the engagement agent for a new session.
type AgentFactory func(sessionID string, scamType detection.ScamType, platform persona.Platform) *engagement.Agent

// Session wraps one engagement agent behind a mutex so concurrent
// requests for the same session serialize.
type Session struct {
	mu    sync.Mutex
	agent *engagement.Agent
	done  bool
}

// ProcessMessage runs one engagement turn. A completed session answers
// with an inactive reply instead of engaging.
func (s *Session) ProcessMessage(ctx context.Context, message string) engagement.Reply {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return engagement.Reply{
			SessionActive: false,
			CurrentState:  engagement.StateConclusion,
		}
	}
	return s.agent.ProcessMessage(ctx, message)
}

// IsComplete reports whether the conversation has run its course.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done || s.agent.IsComplete()
}

// LastActivity returns the time of the most recent processed message.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent.LastActivity()
}

// Summary is a quick view of one session.
type Summary struct {
	SessionID         string `json:"session_id"`
	Status            string `json:"status"`
	Persona           string `json:"persona"`
	TurnCount         int    `json:"turn_count"`
	IntelligenceCount int    `json:"intelligence_count"`
	CurrentState      string `json:"current_state"`
}

// Summary snapshots the session state.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.agent.Snapshot()
	return Summary{
		SessionID:         s.agent.SessionID(),
		Status:            "active",
		Persona:           s.agent.Identity().Name,
		TurnCount:         snap.TotalTurns,
		IntelligenceCount: len(s.agent.Intelligence()),
		CurrentState:      string(snap.CurrentState),
	}
}

// PersonaInfo identifies the persona a session ran with.
type PersonaInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Age  int    `json:"age"`
}

// Report is the final record of a completed session, including the
// payload prepared for the evaluation callback.
type Report struct {
	SessionID       string             `json:"session_id"`
	ScamType        string             `json:"scam_type"`
	Persona         PersonaInfo        `json:"persona"`
	Platform        string             `json:"platform"`
	StateSummary    engagement.Summary `json:"state_summary"`
	Intelligence    []intel.Item       `json:"intelligence"`
	Conversation    []engagement.Turn  `json:"conversation"`
	CreatedAt       time.Time          `json:"created_at"`
	LastActivity    time.Time          `json:"last_activity"`
	DurationSeconds float64            `json:"duration_seconds"`
	CompletedAt     time.Time          `json:"completed_at"`
	CallbackPayload callback.Payload   `json:"callback_payload"`
}

// Overview summarizes all sessions the manager knows about.
type Overview struct {
	ActiveCount    int       `json:"active_count"`
	CompletedCount int       `json:"completed_count"`
	ActiveSessions []Summary `json:"active_sessions"`
}

// Manager tracks every concurrent honeypot session: creation is
// idempotent, completion moves a session to the completed store with a
// prebuilt callback payload, and idle sessions expire through the same
// completion path.
type Manager struct {
	mu        sync.RWMutex
	active    map[string]*Session
	completed map[string]*Report

	newAgent AgentFactory
	timeout  time.Duration
	logger   *logging.Logger
	metrics  *metrics.HoneypotMetrics
	clock    func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithMetrics attaches honeypot metrics. A nil value disables them.
func WithMetrics(m *metrics.HoneypotMetrics) ManagerOption {
	return func(mgr *Manager) { mgr.metrics = m }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) ManagerOption {
	return func(mgr *Manager) {
		if clock != nil {
			mgr.clock = clock
		}
	}
}

// NewManager builds a session manager. factory must not be nil. A
// non-positive timeout falls back to 30 minutes.
func NewManager(factory AgentFactory, timeout time.Duration, logger *logging.Logger, opts ...ManagerOption) *Manager {
	if factory == nil {
		panic("session: agent factory is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	m := &Manager{
		active:    make(map[string]*Session),
		completed: make(map[string]*Report),
		newAgent:  factory,
		timeout:   timeout,
		logger:    logger,
		clock:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrCreate returns the session for an ID, creating it on first use.
// Concurrent calls for the same ID get the same session.
func (m *Manager) GetOrCreate(sessionID string, scamType detection.ScamType, platform persona.Platform) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.active[sessionID]; ok {
		return s, false
	}

	s := &Session{agent: m.newAgent(sessionID, scamType, platform)}
	m.active[sessionID] = s
	m.metrics.SetActiveSessions(len(m.active))
	m.logger.Info("session created",
		"session_id", sessionID,
		"scam_type", string(scamType),
		"active_sessions", len(m.active),
	)
	return s, true
}

// Get returns an active session. It never creates one.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.active[sessionID]
	return s, ok
}

// Complete finalizes a session: builds the report and callback payload,
// moves it to the completed store, and removes it from the active set.
func (m *Manager) Complete(sessionID string) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completeLocked(sessionID)
}

func (m *Manager) completeLocked(sessionID string) (*Report, error) {
	s, ok := m.active[sessionID]
	if !ok {
		return nil, fmt.Errorf("session: %s not found", sessionID)
	}

	s.mu.Lock()
	s.done = true
	report := m.buildReport(s.agent)
	s.mu.Unlock()

	m.completed[sessionID] = report
	delete(m.active, sessionID)
	m.metrics.SetActiveSessions(len(m.active))
	m.metrics.ObserveSessionCompleted()
	for _, item := range report.Intelligence {
		m.metrics.ObserveIntelItem(string(item.Kind))
	}

	m.logger.Info("session completed",
		"session_id", sessionID,
		"intelligence_items", len(report.Intelligence),
		"total_turns", report.StateSummary.TotalTurns,
	)
	return report, nil
}

func (m *Manager) buildReport(agent *engagement.Agent) *Report {
	now := m.clock()
	items := agent.Intelligence()
	transcript := agent.Transcript()
	snap := agent.Snapshot()

	return &Report{
		SessionID: agent.SessionID(),
		ScamType:  string(agent.ScamType()),
		Persona: PersonaInfo{
			Name: agent.Identity().Name,
			Type: string(persona.ArchetypeForScamType(agent.ScamType())),
			Age:  agent.Identity().Age,
		},
		Platform:        string(agent.Platform()),
		StateSummary:    snap,
		Intelligence:    items,
		Conversation:    transcript,
		CreatedAt:       agent.CreatedAt(),
		LastActivity:    agent.LastActivity(),
		DurationSeconds: agent.LastActivity().Sub(agent.CreatedAt()).Seconds(),
		CompletedAt:     now,
		CallbackPayload: callback.BuildPayload(
			agent.SessionID(),
			agent.ScamType(),
			items,
			transcript,
			snap.TotalTurns,
			callback.DefaultConfidence,
			now,
		),
	}
}

// SweepExpired completes every session idle past the timeout and
// returns their reports so callers can deliver the final callbacks.
func (m *Manager) SweepExpired() []*Report {
	now := m.clock()

	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []string
	for id, s := range m.active {
		if now.Sub(s.LastActivity()) > m.timeout {
			expired = append(expired, id)
		}
	}

	reports := make([]*Report, 0, len(expired))
	for _, id := range expired {
		report, err := m.completeLocked(id)
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	if len(reports) > 0 {
		m.logger.Info("expired sessions swept", "count", len(reports))
	}
	return reports
}

// StartSweeper runs the expiry sweep on an interval until the context
// ends. onExpired, if non-nil, receives each swept report.
func (m *Manager) StartSweeper(ctx context.Context, interval time.Duration, onExpired func(*Report)) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, report := range m.SweepExpired() {
					if onExpired != nil {
						onExpired(report)
					}
				}
			}
		}
	}()
}

// ActiveCount returns the number of active sessions.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.active)
}

// CompletedCount returns the number of completed sessions.
func (m *Manager) CompletedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.completed)
}

// CompletedReport returns the report for a completed session.
func (m *Manager) CompletedReport(sessionID string) (*Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.completed[sessionID]
	return r, ok
}

// SessionSummary returns the summary for an active session, or the
// completed report summary when the session already finished.
func (m *Manager) SessionSummary(sessionID string) (Summary, bool) {
	m.mu.RLock()
	s, active := m.active[sessionID]
	r, done := m.completed[sessionID]
	m.mu.RUnlock()

	if active {
		return s.Summary(), true
	}
	if done {
		return Summary{
			SessionID:         r.SessionID,
			Status:            "completed",
			Persona:           r.Persona.Name,
			TurnCount:         r.StateSummary.TotalTurns,
			IntelligenceCount: len(r.Intelligence),
			CurrentState:      string(r.StateSummary.CurrentState),
		}, true
	}
	return Summary{}, false
}

// AllSummaries returns an overview of every session.
func (m *Manager) AllSummaries() Overview {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.active))
	for _, s := range m.active {
		sessions = append(sessions, s)
	}
	completedCount := len(m.completed)
	m.mu.RUnlock()

	summaries := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		summaries = append(summaries, s.Summary())
	}
	return Overview{
		ActiveCount:    len(summaries),
		CompletedCount: completedCount,
		ActiveSessions: summaries,
	}
}
