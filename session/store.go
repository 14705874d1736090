// Package session persists the single active refresh token per subject in
// Redis. The store is the source of truth for "is this refresh token still
// the live one": a cryptographically valid token that no longer matches the
// stored value has been superseded or revoked.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps any transport-level Redis failure. Callers must be
// able to tell infrastructure trouble apart from a missing record.
var ErrUnavailable = errors.New("session store unavailable")

// ErrNotFound is returned by Get when no record exists for the subject,
// whether never issued or naturally expired by Redis.
var ErrNotFound = errors.New("session record not found")

// DefaultKeyPrefix matches the key layout of the original deployment.
const DefaultKeyPrefix = "refresh_token"

// Store is a Redis-backed refresh-token record store with overwrite
// semantics: one key per subject, Put replaces whatever was there.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore wraps the given Redis client. The client's own timeout and retry
// policy governs connection behavior; the store never retries. prefix may be
// empty, in which case DefaultKeyPrefix is used.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) key(subjectID string) string {
	return s.prefix + ":" + subjectID
}

// Put records refreshToken as the one active token for subjectID, replacing
// any prior record and setting the store expiry to ttl.
func (s *Store) Put(ctx context.Context, subjectID, refreshToken string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(subjectID), refreshToken, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get returns the currently recorded refresh token for subjectID, or
// ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, subjectID string) (string, error) {
	value, err := s.redis.Get(ctx, s.key(subjectID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, nil
}

// Delete removes the record for subjectID. Deleting an absent record is not
// an error; the desired end state already holds.
func (s *Store) Delete(ctx context.Context, subjectID string) error {
	if err := s.redis.Del(ctx, s.key(subjectID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time availability check and its latency. Startup
// uses it to fail fast when Redis is unreachable.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return time.Since(start), nil
}
