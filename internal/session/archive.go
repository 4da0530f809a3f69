package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Archive persists completed session reports to Redis so they survive
// a process restart. Active sessions stay in memory only; the archive
// is a write-behind record for reporting.
type Archive struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewArchive builds an archive on the given Redis client. A
// non-positive ttl falls back to 7 days.
func NewArchive(client *redis.Client, ttl time.Duration) *Archive {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Archive{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("session.archive"),
	}
}

// Save stores a completed report under its session ID.
func (a *Archive) Save(ctx context.Context, report *Report) error {
	ctx, span := a.tracer.Start(ctx, "session.archive_save")
	defer span.End()

	data, err := json.Marshal(report)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to marshal report: %w", err)
	}
	if err := a.redis.Set(ctx, archiveKey(report.SessionID), data, a.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to archive report: %w", err)
	}
	return nil
}

// Load retrieves an archived report. Unknown sessions return a nil
// report with no error.
func (a *Archive) Load(ctx context.Context, sessionID string) (*Report, error) {
	ctx, span := a.tracer.Start(ctx, "session.archive_load")
	defer span.End()

	data, err := a.redis.Get(ctx, archiveKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to load archived report: %w", err)
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("session: failed to decode archived report: %w", err)
	}
	return &report, nil
}

func archiveKey(sessionID string) string {
	return fmt.Sprintf("honeypot:session:%s", sessionID)
}
