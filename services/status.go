package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"reelsmith/config"
	"reelsmith/types"
)

const statusKeyPrefix = "reel:status:"

// StatusStore persists per-request reel state in Redis so the API can
// answer status queries after the asynchronous pipeline finishes.
type StatusStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusStore connects to Redis and verifies connectivity.
func NewStatusStore() (*StatusStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     getRedisAddr(),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getRedisDB(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", getRedisAddr(), err)
	}

	return &StatusStore{client: client, ttl: config.StatusTTL}, nil
}

// Set writes the request's current state, refreshing its TTL.
func (s *StatusStore) Set(ctx context.Context, st types.ReelStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, statusKeyPrefix+st.RequestID, data, s.ttl).Err()
}

// Get returns the stored state for a request, or nil when unknown.
func (s *StatusStore) Get(ctx context.Context, requestID string) (*types.ReelStatus, error) {
	data, err := s.client.Get(ctx, statusKeyPrefix+requestID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var st types.ReelStatus
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func getRedisDB() int {
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			return db
		}
	}
	return 0
}
