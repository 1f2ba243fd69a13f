package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

var _ KV = (*RedisKV)(nil)

type RedisKV struct {
	rdb redis.Cmdable
}

func NewRedisKV(rdb redis.Cmdable) *RedisKV {
	return &RedisKV{
		rdb: rdb,
	}
}

func (r *RedisKV) Get(ctx context.Context, key string) (_ string, _ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.get")
	defer tracing.EndSpanWithErrCheck(span, &err)

	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.set")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisKV) Remove(ctx context.Context, key string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.redis.remove")
	defer tracing.EndSpanWithErrCheck(span, &err)

	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
