package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ProofINer/proofin-backend/internal/domain"
	"github.com/ProofINer/proofin-backend/internal/infrastructure/redis"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore implements domain.SessionStore on redis. Keys carry
// a TTL matching the session expiry, so redis evicts what the lazy
// purge in the auth service would otherwise delete on first touch.
type RedisSessionStore struct {
	redis  *redis.Client
	logger *slog.Logger
}

// NewRedisSessionStore creates a redis-backed session store.
func NewRedisSessionStore(redisClient *redis.Client, logger *slog.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		redis:  redisClient,
		logger: logger,
	}
}

// Save stores a session under its token with a TTL until expiry.
func (r *RedisSessionStore) Save(session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := r.redis.Set(context.Background(), sessionKeyPrefix+session.Token, string(data), ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	r.logger.Debug("session stored", slog.String("address", session.Address))
	return nil
}

// Get retrieves a session by token.
func (r *RedisSessionStore) Get(token string) (*domain.Session, error) {
	data, err := r.redis.Get(context.Background(), sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, domain.NewNotFoundError("session", token)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// Delete removes a session and reports whether it existed.
func (r *RedisSessionStore) Delete(token string) (bool, error) {
	existed, err := r.redis.Delete(context.Background(), sessionKeyPrefix+token)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	return existed, nil
}
