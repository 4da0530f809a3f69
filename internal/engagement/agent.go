package engagement

import (
	"context"
	"math/rand"
	"time"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/detection"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/intel"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/persona"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

// Role labels who produced a transcript turn.
type Role string

const (
	RoleScammer Role = "scammer"
	RoleAgent   Role = "agent"
)

// Turn is one transcript entry.
type Turn struct {
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	State     State     `json:"state,omitempty"`
	IsBreak   bool      `json:"is_break,omitempty"`
}

// Reply is the outcome of processing one scammer message.
type Reply struct {
	Response          string        `json:"response"`
	HasResponse       bool          `json:"has_response"`
	SessionActive     bool          `json:"session_active"`
	Reason            string        `json:"reason,omitempty"`
	IsBreak           bool          `json:"is_break,omitempty"`
	CurrentState      State         `json:"current_state"`
	TurnCount         int           `json:"turn_count"`
	IntelligenceCount int           `json:"intelligence_count"`
	SuggestedDelay    time.Duration `json:"-"`
}

// AgentConfig collects the knobs for building an engagement agent.
type AgentConfig struct {
	SessionID string
	ScamType  detection.ScamType
	Platform  persona.Platform
	MaxTurns  int
	MinDelay  time.Duration
	MaxDelay  time.Duration
	Generator Generator
	Logger    *logging.Logger
	Rand      *rand.Rand
	Clock     func() time.Time
}

// Agent simulates one believable human victim for one session. It
// combines a fixed identity, daily-rhythm timing, conversation state
// tracking, and generated replies. Agents are not safe for concurrent
// use; the session manager serializes access.
type Agent struct {
	sessionID string
	scamType  detection.ScamType
	platform  persona.Platform

	identity  *persona.Identity
	temporal  *persona.Model
	machine   *Machine
	generator Generator
	rng       *rand.Rand
	logger    *logging.Logger
	clock     func() time.Time

	transcript   []Turn
	items        []intel.Item
	createdAt    time.Time
	lastActivity time.Time
}

// NewAgent builds an agent whose persona archetype matches the detected
// scam type. A nil generator falls back to canned replies only.
func NewAgent(cfg AgentConfig) *Agent {
	if cfg.ScamType == "" {
		cfg.ScamType = detection.ScamTypeGeneric
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return time.Now().UTC() }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.WithSession(cfg.SessionID)

	archetype := persona.ArchetypeForScamType(cfg.ScamType)
	gen := cfg.Generator
	if gen == nil {
		gen = NewStaticGenerator(cfg.Rand)
	}

	now := cfg.Clock()
	a := &Agent{
		sessionID:    cfg.SessionID,
		scamType:     cfg.ScamType,
		platform:     cfg.Platform,
		identity:     persona.IdentityFor(archetype),
		temporal:     persona.NewModel(archetype, cfg.MinDelay, cfg.MaxDelay, cfg.Rand),
		machine:      NewMachine(cfg.SessionID, cfg.MaxTurns, cfg.Rand),
		generator:    gen,
		rng:          cfg.Rand,
		logger:       logger,
		clock:        cfg.Clock,
		createdAt:    now,
		lastActivity: now,
	}
	logger.Info("engagement agent initialized",
		"persona", a.identity.Name,
		"archetype", string(archetype),
		"platform", string(cfg.Platform),
	)
	return a
}

// SessionID returns the owning session identifier.
func (a *Agent) SessionID() string { return a.sessionID }

// ScamType returns the scam classification this agent was built for.
func (a *Agent) ScamType() detection.ScamType { return a.scamType }

// Platform returns the conversation channel.
func (a *Agent) Platform() persona.Platform { return a.platform }

// Identity returns the persona biography.
func (a *Agent) Identity() *persona.Identity { return a.identity }

// Transcript returns the conversation history recorded so far.
func (a *Agent) Transcript() []Turn { return a.transcript }

// Intelligence returns all items extracted so far, deduplicated.
func (a *Agent) Intelligence() []intel.Item { return intel.Deduplicate(a.items) }

// CreatedAt returns when the agent was built.
func (a *Agent) CreatedAt() time.Time { return a.createdAt }

// LastActivity returns the time of the most recent processed message.
func (a *Agent) LastActivity() time.Time { return a.lastActivity }

// Snapshot returns the state machine summary.
func (a *Agent) Snapshot() Summary { return a.machine.Snapshot() }

// IsComplete reports whether the conversation has run its course.
func (a *Agent) IsComplete() bool { return a.machine.IsComplete() }

// ProcessMessage runs one full engagement turn: availability check,
// possible break, reply generation, intelligence extraction, and state
// bookkeeping.
func (a *Agent) ProcessMessage(ctx context.Context, scammerMessage string) Reply {
	now := a.clock()
	state := a.machine.CurrentState()
	a.logger.Debug("processing scammer message",
		"state", string(state),
		"turn", a.machine.TurnCount(),
	)

	// A sleeping or busy persona simply does not answer. The session
	// stays open and the message waits.
	if available, reason := a.temporal.Availability(now); !available {
		a.logger.Info("persona unavailable", "reason", reason)
		return Reply{
			SessionActive:     true,
			Reason:            reason,
			CurrentState:      state,
			TurnCount:         a.machine.TurnCount(),
			IntelligenceCount: len(a.Intelligence()),
		}
	}

	constraints := persona.ConstraintsFor(a.platform)

	if takeBreak, excuse := a.temporal.ShouldTakeBreak(a.machine.TurnCount()); takeBreak {
		a.logger.Info("persona taking break", "excuse", excuse)
		a.appendTurn(RoleScammer, scammerMessage, now, false)
		a.appendTurn(RoleAgent, excuse, now, true)
		a.lastActivity = now
		return Reply{
			Response:          excuse,
			HasResponse:       true,
			SessionActive:     true,
			IsBreak:           true,
			CurrentState:      state,
			TurnCount:         a.machine.TurnCount(),
			IntelligenceCount: len(a.Intelligence()),
		}
	}

	delay := a.temporal.ResponseDelay(len(scammerMessage))

	strategy := a.machine.CurrentStrategy()
	prompt := Prompt{
		ScammerMessage: scammerMessage,
		Identity:       a.identity,
		StateContext:   a.machine.PromptContext(),
		Examples:       strategy.ExampleResponses,
		History:        a.recentHistory(10),
	}

	response, err := a.generator.Generate(ctx, prompt)
	if err != nil || response == "" {
		a.logger.Warn("generation failed, using canned reply", "error", errString(err))
		response = strategy.ExampleResponses[a.rng.Intn(len(strategy.ExampleResponses))]
	}
	response = PostProcess(response, a.identity, a.rng)

	if valid, reason := a.identity.ValidateResponse(response); !valid {
		a.logger.Warn("generated reply broke character", "reason", reason)
		response = strategy.ExampleResponses[a.rng.Intn(len(strategy.ExampleResponses))]
	}

	extracted := intel.Extract(scammerMessage, now)
	if len(extracted) > 0 {
		a.items = append(a.items, extracted...)
		a.logger.Info("intelligence extracted", "items", len(extracted))
	}

	a.machine.RecordTurn(extracted)

	a.appendTurn(RoleScammer, scammerMessage, now, false)
	a.appendTurn(RoleAgent, response, now, false)
	a.lastActivity = now

	if len(response) > constraints.MaxLength {
		response = response[:constraints.MaxLength-3] + "..."
	}

	return Reply{
		Response:          response,
		HasResponse:       true,
		SessionActive:     !a.machine.IsComplete(),
		CurrentState:      a.machine.CurrentState(),
		TurnCount:         a.machine.TurnCount(),
		IntelligenceCount: len(a.Intelligence()),
		SuggestedDelay:    delay,
	}
}

func (a *Agent) appendTurn(role Role, message string, ts time.Time, isBreak bool) {
	turn := Turn{Role: role, Message: message, Timestamp: ts, IsBreak: isBreak}
	if role == RoleAgent && !isBreak {
		turn.State = a.machine.CurrentState()
	}
	a.transcript = append(a.transcript, turn)
}

func (a *Agent) recentHistory(n int) []Turn {
	if len(a.transcript) <= n {
		return a.transcript
	}
	return a.transcript[len(a.transcript)-n:]
}

func errString(err error) string {
	if err == nil {
		return "empty response"
	}
	return err.Error()
}
