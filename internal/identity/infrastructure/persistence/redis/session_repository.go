package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/investghanahub/backend/internal/identity/domain"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "session:"

// sessionRepository 基于 Redis 的会话仓储
type sessionRepository struct {
	client *redis.Client
}

// NewSessionRepository 创建会话仓储
func NewSessionRepository(client *redis.Client) domain.SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.AuthSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}
	return r.client.Set(ctx, sessionKeyPrefix+session.Token, data, ttl).Err()
}

func (r *sessionRepository) Get(ctx context.Context, token string) (*domain.AuthSession, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session domain.AuthSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKeyPrefix+token).Err()
}
