package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"surveypulse/api/internal/survey"
)

const (
	bundleKeyPrefix   = "bundle:"
	snapshotKeyPrefix = "snapshot:"

	// Bundles are the merge base and must outlive snapshots.
	bundleTTL   = 24 * time.Hour
	snapshotTTL = time.Hour
)

// RedisStore is the key-value durable cache backend. Unlike Postgres it
// keeps no history; the latest value simply overwrites the key.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SaveBundle(ctx context.Context, collectorID string, bundle survey.RawDataBundle) error {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	if err := s.client.Set(ctx, bundleKeyPrefix+collectorID, payload, bundleTTL).Err(); err != nil {
		return fmt.Errorf("save bundle: %w", err)
	}
	return nil
}

func (s *RedisStore) LatestBundle(ctx context.Context, collectorID string) (*survey.RawDataBundle, error) {
	payload, err := s.client.Get(ctx, bundleKeyPrefix+collectorID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}

	var bundle survey.RawDataBundle
	if err := json.Unmarshal(payload, &bundle); err != nil {
		return nil, fmt.Errorf("unmarshal bundle: %w", err)
	}
	return &bundle, nil
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, surveyID string, snapshot survey.DashboardData) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKeyPrefix+surveyID, payload, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) LatestSnapshot(ctx context.Context, surveyID string) (*survey.DashboardData, error) {
	payload, err := s.client.Get(ctx, snapshotKeyPrefix+surveyID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot survey.DashboardData
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
