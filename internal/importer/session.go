package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/seller-directory/internal/domain"
)

// UploadSession is the preview artifact stored between Preview and the
// confirm call, so a later Import can be validated against a known
// upload and run without resubmitting the normalized records.
type UploadSession struct {
	UploadID  string                     `json:"upload_id"`
	FileName  string                     `json:"file_name,omitempty"`
	MimeType  string                     `json:"mime_type"`
	Companies []domain.NormalizedCompany `json:"companies"`
	Contacts  []domain.NormalizedContact `json:"contacts"`
	CreatedAt time.Time                  `json:"created_at"`
}

// SessionStore persists upload sessions between the preview and
// confirm calls. Sessions expire; a confirm against an expired session
// gets ErrSessionNotFound.
type SessionStore interface {
	Save(ctx context.Context, session *UploadSession) error
	Get(ctx context.Context, uploadID string) (*UploadSession, error)
	Delete(ctx context.Context, uploadID string) error
}

const sessionTTL = time.Hour

// RedisSessionStore keeps sessions in Redis under upload:session:<id>.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: sessionTTL}
}

func sessionKey(uploadID string) string {
	return fmt.Sprintf("upload:session:%s", uploadID)
}

func (s *RedisSessionStore) Save(ctx context.Context, session *UploadSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(session.UploadID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, uploadID string) (*UploadSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(uploadID)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var session UploadSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, uploadID string) error {
	return s.client.Del(ctx, sessionKey(uploadID)).Err()
}
