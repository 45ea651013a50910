// Package redis keeps the snapshot under a single Redis key.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/uniformesbonaparte/operarias-bonaparte/internal/config"
	"github.com/uniformesbonaparte/operarias-bonaparte/internal/storage"
)

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	TxPipelined(context.Context, func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

type Storage struct {
	client cmdable
	key    string
}

// New connects and verifies the server answers.
func New(ctx context.Context, cfg config.Redis) (*Storage, error) {
	const op = "storage.redis.New"

	raw := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := raw.Ping(ctx).Err(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("%s: ping redis: %w", op, err)
	}

	return &Storage{client: raw, key: cfg.Key}, nil
}

func NewWithClient(client cmdable, key string) *Storage {
	return &Storage{client: client, key: key}
}

func (s *Storage) Name() string { return "redis" }

// Load returns nil, nil when the key does not exist.
func (s *Storage) Load(ctx context.Context) (*storage.Snapshot, error) {
	const op = "storage.redis.Load"

	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: get %s: %w", op, s.key, err)
	}

	var snap storage.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", op, err)
	}
	snap.Normalize()

	return &snap, nil
}

// Save copies the previous value to <key>:bak and writes the new one in one MULTI block.
func (s *Storage) Save(ctx context.Context, snap *storage.Snapshot) error {
	const op = "storage.redis.Save"

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Copy(ctx, s.key, s.key+":bak", 0, true)
		pipe.Set(ctx, s.key, raw, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: write %s: %w", op, s.key, err)
	}
	return nil
}
