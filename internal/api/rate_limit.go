package api

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// rateCounter 是 redis.Client 的子集，便于测试替换。
type rateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// hourlyLimiter 以自然小时为窗口计数，key 过期后自动归零。
type hourlyLimiter struct {
	counter rateCounter
	prefix  string
	limit   int
	now     func() time.Time
}

func newHourlyLimiter(counter rateCounter, prefix string, limit int) *hourlyLimiter {
	if counter == nil || limit <= 0 {
		return nil
	}
	return &hourlyLimiter{counter: counter, prefix: prefix, limit: limit, now: time.Now}
}

func (l *hourlyLimiter) key(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return l.prefix + strings.Join(parts, ":") + ":" + l.now().UTC().Format("2006010215")
}

// Exceeded 记一次并报告是否超过上限。nil limiter 永不限速。
func (l *hourlyLimiter) Exceeded(ctx context.Context, parts ...string) (bool, error) {
	if l == nil {
		return false, nil
	}
	key := l.key(parts...)
	count, err := l.counter.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		_ = l.counter.Expire(ctx, key, time.Hour).Err()
	}
	return count > int64(l.limit), nil
}
