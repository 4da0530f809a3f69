package honeypot

import (
	"context"
	"strings"
	"time"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/callback"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/detection"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/observability/metrics"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/persona"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/session"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

// Response statuses returned by HandleMessage.
const (
	StatusSuccess         = "success"
	StatusSessionComplete = "session_complete"
)

// scamKeywords force engagement even when consensus scoring stays
// under the threshold. Missing an obvious scam costs more than
// engaging a false positive.
var scamKeywords = []string{
	"otp", "urgent", "blocked", "upi", "bank",
	"account", "transfer", "payment", "verify", "kyc",
}

// Result is the outcome of handling one inbound message.
type Result struct {
	Status            string `json:"status"`
	Reply             string `json:"reply"`
	HasReply          bool   `json:"has_reply"`
	ScamDetected      bool   `json:"scam_detected"`
	SessionActive     bool   `json:"session_active"`
	IntelligenceCount int    `json:"intelligence_count"`
}

// Service orchestrates the full honeypot pipeline: scam detection,
// session engagement, and final-result delivery.
type Service struct {
	detector  *detection.System
	sessions  *session.Manager
	deliverer *callback.Deliverer
	archive   *session.Archive
	metrics   *metrics.HoneypotMetrics
	logger    *logging.Logger
	clock     func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithArchive persists completed reports to Redis. A nil archive
// disables persistence.
func WithArchive(a *session.Archive) ServiceOption {
	return func(s *Service) { s.archive = a }
}

// WithMetrics attaches honeypot metrics.
func WithMetrics(m *metrics.HoneypotMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService wires the honeypot pipeline. detector, sessions, and
// deliverer are required.
func NewService(
	detector *detection.System,
	sessions *session.Manager,
	deliverer *callback.Deliverer,
	logger *logging.Logger,
	opts ...ServiceOption,
) *Service {
	if detector == nil {
		panic("honeypot: detection system is required")
	}
	if sessions == nil {
		panic("honeypot: session manager is required")
	}
	if deliverer == nil {
		panic("honeypot: callback deliverer is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		detector:  detector,
		sessions:  sessions,
		deliverer: deliverer,
		logger:    logger,
		clock:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleMessage runs one inbound message through the pipeline. A known
// session skips detection and goes straight to engagement; a new
// message is analyzed first and only scams get a session.
func (s *Service) HandleMessage(ctx context.Context, sessionID, message string, platform persona.Platform) Result {
	start := s.clock()
	logger := s.logger.WithSession(sessionID)

	if existing, ok := s.sessions.Get(sessionID); ok {
		logger.Info("continuing session")
		result := s.engage(ctx, sessionID, existing, message)
		s.metrics.ObserveMessage(result.Status, s.clock().Sub(start).Seconds())
		return result
	}

	verdict := s.detector.Analyze(ctx, message)
	keywordMatch := hasScamKeyword(message)

	if !verdict.Verdict.ScamDetected && !keywordMatch {
		logger.Info("no scam detected, skipping engagement")
		s.metrics.ObserveMessage("not_scam", s.clock().Sub(start).Seconds())
		return Result{Status: StatusSuccess}
	}

	scamType := verdict.ScamType
	if scamType == "" {
		scamType = detection.ScamTypeBankFraud
	}
	logger.Info("scam detected",
		"scam_type", string(scamType),
		"risk_score", verdict.Verdict.RiskScore,
		"keyword_match", keywordMatch,
	)

	sess, _ := s.sessions.GetOrCreate(sessionID, scamType, platform)
	result := s.engage(ctx, sessionID, sess, message)
	s.metrics.ObserveMessage(result.Status, s.clock().Sub(start).Seconds())
	return result
}

func (s *Service) engage(ctx context.Context, sessionID string, sess *session.Session, message string) Result {
	reply := sess.ProcessMessage(ctx, message)

	if !reply.SessionActive {
		if report, err := s.sessions.Complete(sessionID); err == nil {
			s.dispatchReport(report)
			return Result{
				Status:            StatusSessionComplete,
				Reply:             reply.Response,
				HasReply:          reply.HasResponse,
				ScamDetected:      true,
				SessionActive:     false,
				IntelligenceCount: len(report.Intelligence),
			}
		}
		return Result{
			Status:            StatusSessionComplete,
			Reply:             reply.Response,
			HasReply:          reply.HasResponse,
			ScamDetected:      true,
			IntelligenceCount: reply.IntelligenceCount,
		}
	}

	return Result{
		Status:            StatusSuccess,
		Reply:             reply.Response,
		HasReply:          reply.HasResponse,
		ScamDetected:      true,
		SessionActive:     true,
		IntelligenceCount: reply.IntelligenceCount,
	}
}

// CompleteSession finalizes a session on demand and triggers the final
// callback.
func (s *Service) CompleteSession(sessionID string) (*session.Report, error) {
	report, err := s.sessions.Complete(sessionID)
	if err != nil {
		return nil, err
	}
	s.dispatchReport(report)
	return report, nil
}

// SessionSummary returns a quick view of one session.
func (s *Service) SessionSummary(sessionID string) (session.Summary, bool) {
	return s.sessions.SessionSummary(sessionID)
}

// Overview returns summaries of every session.
func (s *Service) Overview() session.Overview {
	return s.sessions.AllSummaries()
}

// CompletedReport returns the final report for a completed session.
func (s *Service) CompletedReport(sessionID string) (*session.Report, bool) {
	return s.sessions.CompletedReport(sessionID)
}

// ActiveSessionCount returns the number of active sessions.
func (s *Service) ActiveSessionCount() int {
	return s.sessions.ActiveCount()
}

// Run starts the background expiry sweeper. Swept sessions get their
// final callback like any other completion.
func (s *Service) Run(ctx context.Context, sweepInterval time.Duration) {
	s.sessions.StartSweeper(ctx, sweepInterval, s.dispatchReport)
}

// dispatchReport delivers the final callback and archives the report in
// the background. The validation result is advisory: delivery always
// proceeds.
func (s *Service) dispatchReport(report *session.Report) {
	logger := s.logger.WithSession(report.SessionID)

	if ok, reason := callback.Validate(report.Intelligence); !ok {
		logger.Warn("callback payload below quality bar, sending anyway", "reason", reason)
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		outcome := s.deliverer.Deliver(ctx, report.CallbackPayload)
		status := "failed"
		if outcome.Success {
			status = "success"
		} else if outcome.Error == "retries exhausted" {
			status = "retries_exhausted"
		}
		s.metrics.ObserveCallback(status, outcome.Attempts)

		if s.archive != nil {
			if err := s.archive.Save(ctx, report); err != nil {
				logger.Warn("report archive failed", "error", err)
			}
		}
	}()
}

func hasScamKeyword(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range scamKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
