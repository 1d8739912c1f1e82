package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ridealong/event-carpool/internal/matching"
	"github.com/ridealong/event-carpool/pkg/common"
)

// keyPrefix namespaces stored match results in redis.
const keyPrefix = "match:result:"

// Store keeps finished match results as JSON blobs with a TTL. It is
// append-only: results are written once at the end of a run and never
// modified.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a results store. A zero ttl means results never expire.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// Put stores one match result under its run ID.
func (s *Store) Put(ctx context.Context, result *matching.MatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal match result: %w", err)
	}
	if err := s.client.Set(ctx, key(result.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store match result: %w", err)
	}
	return nil
}

// Get fetches a stored match result by run ID. A missing key maps to a
// not-found AppError so handlers can answer 404 directly.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*matching.MatchResult, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, common.NewNotFoundError("match result not found", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load match result: %w", err)
	}

	var result matching.MatchResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match result: %w", err)
	}
	return &result, nil
}
