package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportThrottle limits how often one user may repeat an action on a target.
type ReportThrottle interface {
	Allow(ctx context.Context, action, target, userID string) (bool, error)
}

type RedisThrottle struct {
	rdb    *redis.Client
	window time.Duration
}

func NewRedisThrottle(rdb *redis.Client, window time.Duration) *RedisThrottle {
	return &RedisThrottle{rdb: rdb, window: window}
}

// Allow claims the key for the window. Without a client everything is allowed.
func (rt *RedisThrottle) Allow(ctx context.Context, action, target, userID string) (bool, error) {
	if rt == nil || rt.rdb == nil {
		return true, nil
	}
	key := fmt.Sprintf("throttle:%s:%s:%s", action, target, userID)
	ok, err := rt.rdb.SetNX(ctx, key, time.Now().Unix(), rt.window).Result()
	if err != nil {
		return false, fmt.Errorf("throttle %s: %w", key, err)
	}
	return ok, nil
}
