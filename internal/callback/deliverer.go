package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ak-cybe/India-AI-Impact-Buildathon/pkg/logging"
)

var delivererTracer = otel.Tracer("callback.deliverer")

const userAgent = "AgenticHoneypot/" + apiVersion

// retryableStatus lists the HTTP codes worth retrying. Anything else
// that is not a 200 fails the delivery immediately.
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Outcome describes how a delivery ended.
type Outcome struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	Attempts   int    `json:"attempts"`
	Error      string `json:"error,omitempty"`
}

// Deliverer posts final-result payloads with bounded retries. Delivery
// reliability outranks everything else here: a Deliver call never
// panics and never returns an error, only an Outcome.
type Deliverer struct {
	endpoint    string
	apiKey      string
	client      *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *logging.Logger
}

// Option configures a Deliverer.
type Option func(*Deliverer)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Deliverer) {
		if client != nil {
			d.client = client
		}
	}
}

// WithMaxAttempts bounds the number of delivery attempts.
func WithMaxAttempts(n int) Option {
	return func(d *Deliverer) {
		if n > 0 {
			d.maxAttempts = n
		}
	}
}

// WithBaseDelay sets the initial retry backoff. Each retry doubles it.
func WithBaseDelay(delay time.Duration) Option {
	return func(d *Deliverer) {
		if delay > 0 {
			d.baseDelay = delay
		}
	}
}

// NewDeliverer builds a deliverer for the evaluation endpoint.
func NewDeliverer(endpoint, apiKey string, logger *logging.Logger, opts ...Option) *Deliverer {
	if endpoint == "" {
		panic("callback: endpoint is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	d := &Deliverer{
		endpoint:    endpoint,
		apiKey:      apiKey,
		client:      &http.Client{Timeout: 30 * time.Second},
		maxAttempts: 3,
		baseDelay:   time.Second,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deliver posts the payload, retrying transient failures with
// exponential backoff.
func (d *Deliverer) Deliver(ctx context.Context, p Payload) Outcome {
	ctx, span := delivererTracer.Start(ctx, "callback.deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", p.SessionID),
		attribute.Int("intel.count", len(p.IntelligenceGathered)),
	)

	logger := d.logger.WithSession(p.SessionID)

	body, err := json.Marshal(p)
	if err != nil {
		logger.Error("callback payload marshal failed", "error", err)
		return Outcome{Error: fmt.Sprintf("marshal payload: %v", err)}
	}

	delay := d.baseDelay
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		logger.Info("callback attempt", "attempt", attempt, "max_attempts", d.maxAttempts)

		status, err := d.post(ctx, body)
		switch {
		case err == nil && status == http.StatusOK:
			logger.Info("callback delivered", "attempt", attempt)
			return Outcome{Success: true, StatusCode: status, Attempts: attempt}
		case err == nil && !retryableStatus[status]:
			logger.Error("callback rejected", "status", status, "attempt", attempt)
			return Outcome{StatusCode: status, Attempts: attempt, Error: fmt.Sprintf("http status %d", status)}
		case err != nil:
			logger.Warn("callback attempt failed", "error", err, "attempt", attempt)
		default:
			logger.Warn("callback got retryable status", "status", status, "attempt", attempt)
		}

		if attempt < d.maxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				logger.Warn("callback canceled during backoff", "error", ctx.Err())
				return Outcome{Attempts: attempt, Error: fmt.Sprintf("canceled: %v", ctx.Err())}
			}
			delay *= 2
		}
	}

	logger.Error("callback retries exhausted", "attempts", d.maxAttempts)
	return Outcome{Attempts: d.maxAttempts, Error: "retries exhausted"}
}

func (d *Deliverer) post(ctx context.Context, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("callback: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if d.apiKey != "" {
		req.Header.Set("X-API-Key", d.apiKey)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("callback: post: %w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
