package logic

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisClient defines the read-only subset of the Redis client used for stats.
// *redis.Client satisfies it.
type RedisClient interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd
	ZScore(ctx context.Context, key, member string) *redis.FloatCmd
	Ping(ctx context.Context) *redis.StatusCmd
}
