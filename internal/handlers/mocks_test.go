package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type MockRelayQueue struct {
	Messages []string
	drains   int
}

func (m *MockRelayQueue) Drain() []string {
	m.drains++
	out := m.Messages
	m.Messages = nil
	return out
}

func (m *MockRelayQueue) Len() int { return len(m.Messages) }

type MockPinger struct {
	Err error
}

func (m *MockPinger) Ping(ctx context.Context) *redis.StatusCmd {
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	return redis.NewStatusResult("PONG", nil)
}

type MockSnapshotState struct {
	Loaded bool
}

func (m *MockSnapshotState) Ready() bool { return m.Loaded }
