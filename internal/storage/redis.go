package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps the value under key and a write counter under key:version.
// A value written without its counter (seeded by hand, or a counter that was
// evicted) reports version "0".
type RedisStore struct {
	inner *redis.Client
}

func NewRedisStore(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{inner: client}, nil
}

const missingVersion = "0"

func versionKey(key string) string {
	return key + ":version"
}

func (s *RedisStore) Get(ctx context.Context, key string) (*Object, error) {
	res, err := s.inner.MGet(ctx, key, versionKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("mget %s: %w", key, err)
	}
	value, ok := res[0].(string)
	if !ok {
		return nil, ErrNotFound
	}
	version, ok := res[1].(string)
	if !ok || version == "" {
		version = missingVersion
	}
	return &Object{Value: []byte(value), Version: version}, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) (string, error) {
	var incr *redis.IntCmd
	_, err := s.inner.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, value, 0)
		incr = pipe.Incr(ctx, versionKey(key))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("set %s: %w", key, err)
	}
	return strconv.FormatInt(incr.Val(), 10), nil
}

func (s *RedisStore) CompareAndSwap(ctx context.Context, key string, value []byte, version string) (string, error) {
	var incr *redis.IntCmd
	err := s.inner.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if version == "" {
			if exists != 0 {
				return ErrVersionMismatch
			}
		} else {
			current, err := tx.Get(ctx, versionKey(key)).Result()
			switch {
			case errors.Is(err, redis.Nil):
				current = missingVersion
			case err != nil:
				return err
			}
			if exists == 0 || current != version {
				return ErrVersionMismatch
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, 0)
			incr = pipe.Incr(ctx, versionKey(key))
			return nil
		})
		return err
	}, key, versionKey(key))

	switch {
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, ErrVersionMismatch):
		return "", ErrVersionMismatch
	case err != nil:
		return "", fmt.Errorf("cas %s: %w", key, err)
	}
	return strconv.FormatInt(incr.Val(), 10), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.inner.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.inner.Close()
}
