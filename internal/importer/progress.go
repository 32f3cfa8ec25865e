package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/seller-directory/internal/domain"
)

// Reporter receives progress events as an import run advances.
// Implementations must tolerate events arriving from multiple
// goroutines.
type Reporter interface {
	Report(ctx context.Context, event domain.ProgressEvent)
}

// Fanout delivers each event to every registered reporter and drops
// events that would move a run's phase backwards, so consumers only
// ever observe the monotonic phase sequence.
type Fanout struct {
	reporters []Reporter

	mu     sync.Mutex
	phases map[string]int
}

func NewFanout(reporters ...Reporter) *Fanout {
	return &Fanout{
		reporters: reporters,
		phases:    make(map[string]int),
	}
}

func (f *Fanout) Report(ctx context.Context, event domain.ProgressEvent) {
	order := domain.PhaseOrder(event.Phase)
	if order < 0 {
		return
	}

	f.mu.Lock()
	if last, ok := f.phases[event.UploadID]; ok && order < last {
		f.mu.Unlock()
		return
	}
	f.phases[event.UploadID] = order
	f.mu.Unlock()

	for _, r := range f.reporters {
		r.Report(ctx, event)
	}
}

// Forget releases phase tracking for a finished run.
func (f *Fanout) Forget(uploadID string) {
	f.mu.Lock()
	delete(f.phases, uploadID)
	f.mu.Unlock()
}

// LogReporter writes progress to the structured log.
type LogReporter struct {
	log Logger
}

// Logger is the subset of the application logger the pipeline needs.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

func NewLogReporter(log Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (l *LogReporter) Report(_ context.Context, event domain.ProgressEvent) {
	l.log.Info("import progress",
		"upload_id", event.UploadID,
		"phase", string(event.Phase),
		"processed", event.Processed,
		"total", event.Total,
		"successful", event.Successful,
		"failed", event.Failed,
		"operation", event.Operation,
	)
}

// RedisReporter stores the latest event per run so pollers can read
// it back without hitting the database.
type RedisReporter struct {
	client *redis.Client
	ttl    time.Duration
}

const progressTTL = 24 * time.Hour

func NewRedisReporter(client *redis.Client) *RedisReporter {
	return &RedisReporter{client: client, ttl: progressTTL}
}

func progressKey(uploadID string) string {
	return fmt.Sprintf("import:progress:%s", uploadID)
}

func (r *RedisReporter) Report(ctx context.Context, event domain.ProgressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	r.client.Set(ctx, progressKey(event.UploadID), payload, r.ttl)
}

// Latest returns the most recent event recorded for a run, or
// ErrSessionNotFound when none exists.
func (r *RedisReporter) Latest(ctx context.Context, uploadID string) (*domain.ProgressEvent, error) {
	payload, err := r.client.Get(ctx, progressKey(uploadID)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	var event domain.ProgressEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}
	return &event, nil
}
