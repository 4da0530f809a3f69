package engagement

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/detection"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/persona"
)

// morning is a time when every archetype is awake and outside lunch and
// busy windows.
var morning = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestAgent(t *testing.T, cfg AgentConfig) *Agent {
	t.Helper()
	if cfg.SessionID == "" {
		cfg.SessionID = "sess-test"
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	if cfg.Clock == nil {
		cfg.Clock = func() time.Time { return morning }
	}
	return NewAgent(cfg)
}

func TestAgentSelectsPersonaForScamType(t *testing.T) {
	a := newTestAgent(t, AgentConfig{ScamType: detection.ScamTypeBankFraud})
	if a.Identity().Name != "Shanti Devi" {
		t.Errorf("bank fraud persona = %q, want elderly", a.Identity().Name)
	}

	b := newTestAgent(t, AgentConfig{ScamType: detection.ScamTypePaymentScam})
	if b.Identity().Name != "Priya Nair" {
		t.Errorf("payment scam persona = %q, want young professional", b.Identity().Name)
	}
}

func TestAgentProcessMessage(t *testing.T) {
	gen := &stubGenerator{reply: "Kaun bol raha hai?"}
	a := newTestAgent(t, AgentConfig{ScamType: detection.ScamTypeBankFraud, Generator: gen})

	reply := a.ProcessMessage(context.Background(), "Your account is blocked, call 9876543210 now")

	if !reply.HasResponse {
		t.Fatal("expected a response")
	}
	if !reply.SessionActive {
		t.Error("session should stay active after one turn")
	}
	if reply.TurnCount != 1 {
		t.Errorf("turn count = %d", reply.TurnCount)
	}
	if reply.IntelligenceCount != 1 {
		t.Errorf("intelligence count = %d, want 1 (phone number)", reply.IntelligenceCount)
	}
	if reply.SuggestedDelay < 2*time.Second {
		t.Errorf("suggested delay = %v below floor", reply.SuggestedDelay)
	}
	if len(a.Transcript()) != 2 {
		t.Fatalf("transcript turns = %d, want 2", len(a.Transcript()))
	}
	if a.Transcript()[0].Role != RoleScammer || a.Transcript()[1].Role != RoleAgent {
		t.Error("transcript roles out of order")
	}
}

func TestAgentUnavailableWhileSleeping(t *testing.T) {
	night := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	a := newTestAgent(t, AgentConfig{
		ScamType: detection.ScamTypeBankFraud, // elderly, asleep by 21:30
		Clock:    func() time.Time { return night },
	})

	reply := a.ProcessMessage(context.Background(), "hello madam")

	if reply.HasResponse {
		t.Error("sleeping persona produced a response")
	}
	if !reply.SessionActive {
		t.Error("session closed by unavailability")
	}
	if reply.Reason == "" {
		t.Error("no availability reason given")
	}
	if len(a.Transcript()) != 0 {
		t.Error("unanswered message recorded in transcript")
	}
	if reply.TurnCount != 0 {
		t.Errorf("turn consumed while unavailable: %d", reply.TurnCount)
	}
}

func TestAgentClampsReplyToPlatform(t *testing.T) {
	long := strings.Repeat("x", 300)
	a := newTestAgent(t, AgentConfig{
		ScamType:  detection.ScamTypePaymentScam, // high tech savviness, no typo noise
		Platform:  persona.PlatformSMS,
		Generator: &stubGenerator{reply: long},
	})

	reply := a.ProcessMessage(context.Background(), "pay now")

	if len(reply.Response) != 160 {
		t.Errorf("response length = %d, want 160", len(reply.Response))
	}
	if !strings.HasSuffix(reply.Response, "...") {
		t.Error("clamped response missing ellipsis")
	}
}

func TestAgentFallsBackWhenGenerationFails(t *testing.T) {
	a := newTestAgent(t, AgentConfig{
		ScamType:  detection.ScamTypePaymentScam,
		Generator: &stubGenerator{err: errors.New("model down")},
	})

	reply := a.ProcessMessage(context.Background(), "pay this invoice today")

	if !reply.HasResponse || strings.TrimSpace(reply.Response) == "" {
		t.Fatal("no reply despite canned fallbacks")
	}
}

func TestAgentRejectsOutOfCharacterReply(t *testing.T) {
	// Elderly persona's spouse is deceased; a reply implying otherwise
	// must be replaced with a canned one.
	a := newTestAgent(t, AgentConfig{
		ScamType:  detection.ScamTypeBankFraud,
		Generator: &stubGenerator{reply: "My husband will handle this tomorrow"},
	})

	reply := a.ProcessMessage(context.Background(), "share your account details")

	if strings.Contains(strings.ToLower(reply.Response), "husband") {
		t.Errorf("out-of-character reply passed through: %q", reply.Response)
	}
}

func TestAgentCompletesAtTurnCap(t *testing.T) {
	a := newTestAgent(t, AgentConfig{
		ScamType:  detection.ScamTypeBankFraud,
		MaxTurns:  4,
		Generator: &stubGenerator{reply: "haan ji"},
	})

	var last Reply
	for i := 0; i < 4; i++ {
		last = a.ProcessMessage(context.Background(), "send the otp")
	}

	if last.SessionActive {
		t.Error("session still active at turn cap")
	}
	if !a.IsComplete() {
		t.Error("agent not complete at turn cap")
	}
}

func TestAgentDeduplicatesIntelligence(t *testing.T) {
	a := newTestAgent(t, AgentConfig{
		ScamType:  detection.ScamTypeBankFraud,
		Generator: &stubGenerator{reply: "accha"},
	})

	a.ProcessMessage(context.Background(), "pay to scam@ybl")
	a.ProcessMessage(context.Background(), "bhai pay to SCAM@YBL jaldi")

	if got := len(a.Intelligence()); got != 1 {
		t.Errorf("intelligence = %d, want 1 after dedupe", got)
	}
}
