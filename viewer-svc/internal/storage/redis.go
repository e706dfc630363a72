package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cibo-compass/dishcore/viewstate"
	"cibo-compass/viewer-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RedisSessionStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{Client: client, TTL: ttl}
}

func (s *RedisSessionStore) SessionKey(id string) string {
	return "viewer:session:" + id
}

// Save writes the snapshot and restarts its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, id string, state viewstate.State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return s.Client.Set(ctx, s.SessionKey(id), payload, s.TTL).Err()
}

func (s *RedisSessionStore) Load(ctx context.Context, id string) (viewstate.State, error) {
	payload, err := s.Client.Get(ctx, s.SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return viewstate.State{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return viewstate.State{}, err
	}

	var state viewstate.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return viewstate.State{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return state, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	removed, err := s.Client.Del(ctx, s.SessionKey(id)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
