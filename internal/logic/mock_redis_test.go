package logic

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient implements RedisClient over in-memory sorted sets.
// Members of each set are kept in insertion order, which stands in for the
// store's iteration order.
type MockRedisClient struct {
	RedisClient

	Sets     map[string][]redis.Z
	RangeErr map[string]error
	// ScoreErr is keyed by "<set>/<member>"
	ScoreErr map[string]error
	ScanErr  error

	mu         sync.Mutex
	rangeCalls []string
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		Sets:     make(map[string][]redis.Z),
		RangeErr: make(map[string]error),
		ScoreErr: make(map[string]error),
	}
}

// AddPlayer appends a player to every counter set of a mode.
func (m *MockRedisClient) AddPlayer(mode, name string, counters map[string]float64) {
	for counter, v := range counters {
		key := mode + "|" + counter
		m.Sets[key] = append(m.Sets[key], redis.Z{Member: name, Score: v})
	}
}

func (m *MockRedisClient) ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd {
	m.mu.Lock()
	m.rangeCalls = append(m.rangeCalls, key)
	m.mu.Unlock()

	if err := m.RangeErr[key]; err != nil {
		return redis.NewZSliceCmdResult(nil, err)
	}
	return redis.NewZSliceCmdResult(m.Sets[key], nil)
}

func (m *MockRedisClient) ZScore(ctx context.Context, key, member string) *redis.FloatCmd {
	if err := m.ScoreErr[key+"/"+member]; err != nil {
		return redis.NewFloatResult(0, err)
	}
	for _, z := range m.Sets[key] {
		if z.Member == member {
			return redis.NewFloatResult(z.Score, nil)
		}
	}
	return redis.NewFloatResult(0, redis.Nil)
}

func (m *MockRedisClient) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	if m.ScanErr != nil {
		return redis.NewScanCmdResult(nil, 0, m.ScanErr)
	}
	keys := make([]string, 0, len(m.Sets))
	for key := range m.Sets {
		keys = append(keys, key)
	}
	return redis.NewScanCmdResult(keys, 0, nil)
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}
