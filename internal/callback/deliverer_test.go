package callback

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload() Payload {
	return Payload{
		SessionID:              "sess-cb",
		ScamType:               "bank_fraud",
		IntelligenceGathered:   []IntelligenceItem{},
		ConversationTranscript: []TranscriptTurn{},
		Confidence:             0.85,
	}
}

func TestDeliverSuccess(t *testing.T) {
	var gotAuth, gotAgent string
	var gotPayload Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("X-API-Key")
		gotAgent = r.Header.Get("User-Agent")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDeliverer(srv.URL, "secret", nil, WithBaseDelay(time.Millisecond))
	outcome := d.Deliver(context.Background(), testPayload())

	assert.True(t, outcome.Success)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, "secret", gotAuth)
	assert.Equal(t, userAgent, gotAgent)
	assert.Equal(t, "sess-cb", gotPayload.SessionID)
}

func TestDeliverRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDeliverer(srv.URL, "", nil, WithBaseDelay(time.Millisecond))
	outcome := d.Deliver(context.Background(), testPayload())

	assert.True(t, outcome.Success)
	assert.Equal(t, 3, outcome.Attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDeliverTerminalStatusDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	d := NewDeliverer(srv.URL, "", nil, WithBaseDelay(time.Millisecond))
	outcome := d.Deliver(context.Background(), testPayload())

	assert.False(t, outcome.Success)
	assert.Equal(t, http.StatusBadRequest, outcome.StatusCode)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDeliverExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewDeliverer(srv.URL, "", nil, WithBaseDelay(time.Millisecond), WithMaxAttempts(2))
	outcome := d.Deliver(context.Background(), testPayload())

	assert.False(t, outcome.Success)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Equal(t, "retries exhausted", outcome.Error)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDeliverConnectionErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	d := NewDeliverer(srv.URL, "", nil, WithBaseDelay(time.Millisecond), WithMaxAttempts(2))
	outcome := d.Deliver(context.Background(), testPayload())

	assert.False(t, outcome.Success)
	assert.Equal(t, 2, outcome.Attempts)
}

func TestDeliverHonorsContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	d := NewDeliverer(srv.URL, "", nil, WithBaseDelay(10*time.Second))
	outcome := d.Deliver(ctx, testPayload())

	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "canceled")
}
