package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RelayQueue is the staff message queue drained by the game server.
type RelayQueue interface {
	Drain() []string
	Len() int
}

// Pinger checks a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// SnapshotState reports whether stats have been loaded.
type SnapshotState interface {
	Ready() bool
}

type Config struct {
	Relay          RelayQueue
	Redis          Pinger
	Stats          SnapshotState
	AllowedOrigins []string
	Logger         *zap.Logger
}

type Handler struct {
	relay          RelayQueue
	redis          Pinger
	stats          SnapshotState
	allowedOrigins []string
	logger         *zap.SugaredLogger
}

func New(cfg Config) *Handler {
	return &Handler{
		relay:          cfg.Relay,
		redis:          cfg.Redis,
		stats:          cfg.Stats,
		allowedOrigins: cfg.AllowedOrigins,
		logger:         cfg.Logger.Sugar(),
	}
}
