package honeypot

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/callback"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/detection"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/engagement"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/persona"
	"github.com/Ak-cybe/India-AI-Impact-Buildathon/internal/session"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type cannedGenerator struct{}

func (cannedGenerator) Generate(context.Context, engagement.Prompt) (string, error) {
	return "haan ji, bataiye kya karna hai", nil
}

// callbackRecorder captures payloads the service delivers.
type callbackRecorder struct {
	mu       sync.Mutex
	payloads []callback.Payload
}

func (r *callbackRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var p callback.Payload
		if err := json.NewDecoder(req.Body).Decode(&p); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		r.mu.Lock()
		r.payloads = append(r.payloads, p)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}
}

func (r *callbackRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func (r *callbackRecorder) last() callback.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payloads[len(r.payloads)-1]
}

func testFactory(maxTurns int) session.AgentFactory {
	return func(sessionID string, scamType detection.ScamType, platform persona.Platform) *engagement.Agent {
		return engagement.NewAgent(engagement.AgentConfig{
			SessionID: sessionID,
			ScamType:  scamType,
			Platform:  platform,
			MaxTurns:  maxTurns,
			Generator: cannedGenerator{},
			Rand:      rand.New(rand.NewSource(1)),
			Clock:     func() time.Time { return testNow },
		})
	}
}

func newTestService(t *testing.T, maxTurns int, opts ...ServiceOption) (*Service, *callbackRecorder) {
	t.Helper()

	recorder := &callbackRecorder{}
	srv := httptest.NewServer(recorder.handler())
	t.Cleanup(srv.Close)

	// Detection threshold near 1 so only the keyword fast path can
	// trigger engagement in these tests.
	detector := detection.NewSystem(
		detection.NewEngine(0.99),
		nil,
		detection.NewTextAnalyst(),
	)
	manager := session.NewManager(testFactory(maxTurns), 30*time.Minute, nil)
	deliverer := callback.NewDeliverer(srv.URL, "test-key", nil, callback.WithBaseDelay(time.Millisecond))

	return NewService(detector, manager, deliverer, nil, opts...), recorder
}

func TestHandleMessageNonScam(t *testing.T) {
	svc, _ := newTestService(t, 20)

	result := svc.HandleMessage(context.Background(), "sess-benign", "hello, are we still on for lunch tomorrow?", persona.PlatformSMS)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.False(t, result.ScamDetected)
	assert.False(t, result.SessionActive)
	assert.False(t, result.HasReply)
	assert.Equal(t, 0, svc.ActiveSessionCount())
}

func TestHandleMessageKeywordFastPath(t *testing.T) {
	svc, _ := newTestService(t, 20)

	result := svc.HandleMessage(context.Background(), "sess-kw", "Please verify your KYC today", persona.PlatformSMS)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.True(t, result.ScamDetected)
	assert.True(t, result.SessionActive)
	assert.True(t, result.HasReply)
	assert.Equal(t, 1, svc.ActiveSessionCount())
}

func TestHandleMessageContinuingSessionSkipsDetection(t *testing.T) {
	svc, _ := newTestService(t, 20)

	first := svc.HandleMessage(context.Background(), "sess-cont", "your bank account is blocked", persona.PlatformSMS)
	require.True(t, first.ScamDetected)

	// The follow-up has no scam markers at all, but the session exists
	// so it goes straight to engagement.
	second := svc.HandleMessage(context.Background(), "sess-cont", "ok just do it fast", persona.PlatformSMS)

	assert.True(t, second.ScamDetected)
	assert.True(t, second.SessionActive)
	assert.True(t, second.HasReply)
	assert.Equal(t, 1, svc.ActiveSessionCount())
}

func TestHandleMessageCollectsIntelligence(t *testing.T) {
	svc, _ := newTestService(t, 20)

	result := svc.HandleMessage(context.Background(), "sess-intel", "urgent: pay to scam@ybl or account blocked, call 9876543210", persona.PlatformSMS)

	assert.True(t, result.ScamDetected)
	assert.Equal(t, 2, result.IntelligenceCount)
}

func TestCompleteSessionDeliversCallback(t *testing.T) {
	svc, recorder := newTestService(t, 20)

	svc.HandleMessage(context.Background(), "sess-fin", "urgent: send otp and pay to scam@ybl", persona.PlatformSMS)

	report, err := svc.CompleteSession("sess-fin")
	require.NoError(t, err)
	assert.Equal(t, "sess-fin", report.SessionID)

	require.Eventually(t, func() bool { return recorder.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	payload := recorder.last()
	assert.Equal(t, "sess-fin", payload.SessionID)
	assert.Equal(t, "bank_fraud", payload.ScamType)
	assert.NotEmpty(t, payload.IntelligenceGathered)
	assert.NotEmpty(t, payload.ConversationTranscript)
}

func TestSessionCompletesAtTurnCap(t *testing.T) {
	svc, recorder := newTestService(t, 4)

	var result Result
	for i := 0; i < 4; i++ {
		result = svc.HandleMessage(context.Background(), "sess-cap", "send the otp now", persona.PlatformSMS)
	}

	assert.Equal(t, StatusSessionComplete, result.Status)
	assert.False(t, result.SessionActive)
	assert.Equal(t, 0, svc.ActiveSessionCount())

	require.Eventually(t, func() bool { return recorder.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "sess-cap", recorder.last().SessionID)
}

func TestCompleteSessionArchivesReport(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	archive := session.NewArchive(client, time.Hour)

	svc, _ := newTestService(t, 20, WithArchive(archive))

	svc.HandleMessage(context.Background(), "sess-arch", "verify your upi pin now", persona.PlatformSMS)
	_, err := svc.CompleteSession("sess-arch")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		report, err := archive.Load(context.Background(), "sess-arch")
		return err == nil && report != nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCompleteUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, 20)
	_, err := svc.CompleteSession("ghost")
	assert.Error(t, err)
}

func TestSessionSummaryAndOverview(t *testing.T) {
	svc, _ := newTestService(t, 20)
	svc.HandleMessage(context.Background(), "sess-view", "urgent bank account issue", persona.PlatformSMS)

	summary, ok := svc.SessionSummary("sess-view")
	require.True(t, ok)
	assert.Equal(t, "active", summary.Status)

	overview := svc.Overview()
	assert.Equal(t, 1, overview.ActiveCount)
}
