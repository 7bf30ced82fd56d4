package staging

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const indexKeyPrefix = "staging:pdf:"

// RedisIndex 用带 TTL 的 key 表示暂存文件仍然有效。
type RedisIndex struct {
	client redis.Cmdable
}

func NewRedisIndex(client redis.Cmdable) *RedisIndex {
	return &RedisIndex{client: client}
}

func (r *RedisIndex) Mark(ctx context.Context, name string, ttl time.Duration) error {
	return r.client.Set(ctx, indexKeyPrefix+name, time.Now().UTC().Format(time.RFC3339), ttl).Err()
}

func (r *RedisIndex) Exists(ctx context.Context, name string) (bool, error) {
	n, err := r.client.Exists(ctx, indexKeyPrefix+name).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisIndex) Remove(ctx context.Context, name string) error {
	return r.client.Del(ctx, indexKeyPrefix+name).Err()
}
