package logic

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mt-ctf/rankings-bot/internal/models"
)

// ErrAllModesFailed is returned when no mode could be read during a cycle.
var ErrAllModesFailed = errors.New("every mode failed to load")

const keySeparator = "|"

// Prometheus metrics
var (
	aggregationCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankbot_aggregation_cycles_total",
		Help: "Aggregation cycles by result",
	}, []string{"result"})

	aggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rankbot_aggregation_duration_seconds",
		Help:    "Duration of a full aggregation cycle",
		Buckets: prometheus.DefBuckets,
	})

	counterFetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankbot_counter_fetch_failures_total",
		Help: "Counter reads that failed and were defaulted to zero",
	})

	modeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankbot_mode_failures_total",
		Help: "Modes omitted from a cycle because their ranking could not be read",
	}, []string{"mode"})

	modeNameCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rankbot_mode_name_collisions_total",
		Help: "Modes dropped because another mode already had the same display name",
	})

	modePlayers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rankbot_mode_players",
		Help: "Ranked players per mode in the current snapshot",
	}, []string{"mode"})
)

// AggregatorConfig configures the aggregator
type AggregatorConfig struct {
	Redis RedisClient
	Cache *Cache
	// Modes are store identifiers such as "ctf_mode_classic". When empty the
	// modes are discovered from "<ModePrefix>*|score" keys every cycle.
	Modes       []string
	ModePrefix  string
	Concurrency int
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Aggregator rebuilds the stats snapshot from the score store.
type Aggregator struct {
	redis       RedisClient
	cache       *Cache
	modes       []string
	prefix      string
	concurrency int
	timeout     time.Duration
	logger      *zap.SugaredLogger
	now         func() time.Time
}

func NewAggregator(cfg AggregatorConfig) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 32
	}
	if cfg.Cache == nil {
		cfg.Cache = NewCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Aggregator{
		redis:       cfg.Redis,
		cache:       cfg.Cache,
		modes:       cfg.Modes,
		prefix:      cfg.ModePrefix,
		concurrency: cfg.Concurrency,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger.Sugar(),
		now:         time.Now,
	}
}

// Cache returns the cache this aggregator writes to.
func (a *Aggregator) Cache() *Cache {
	return a.cache
}

// Refresh runs one cycle and swaps the cache only if the cycle completed.
func (a *Aggregator) Refresh(ctx context.Context) error {
	cycle := uuid.NewString()
	start := time.Now()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	snap, err := a.Aggregate(ctx)
	aggregationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		aggregationCycles.WithLabelValues("failed").Inc()
		a.logger.Errorw("Aggregation cycle failed, keeping previous snapshot",
			"cycle", cycle,
			"duration", time.Since(start),
			"error", err,
		)
		return fmt.Errorf("aggregate: %w", err)
	}

	a.cache.Store(snap)
	aggregationCycles.WithLabelValues("ok").Inc()
	for _, mode := range snap.Modes {
		modePlayers.WithLabelValues(mode.Name).Set(float64(mode.Len()))
	}

	a.logger.Infow("Aggregation cycle complete",
		"cycle", cycle,
		"modes", len(snap.Modes),
		"players", len(snap.Players),
		"duration", time.Since(start),
	)
	return nil
}

// Aggregate reads every mode and builds a new snapshot without touching the cache.
func (a *Aggregator) Aggregate(ctx context.Context) (*models.Snapshot, error) {
	modes, err := a.resolveModes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list modes: %w", err)
	}

	results := make([]*models.ModeSnapshot, len(modes))
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	for i, technical := range modes {
		i, technical := i, technical
		g.Go(func() error {
			mode, err := a.aggregateMode(gctx, technical)
			if err != nil {
				if isFatal(err) {
					return err
				}
				modeFailures.WithLabelValues(technical).Inc()
				a.logger.Errorw("Failed to read mode ranking, omitting mode", "mode", technical, "error", err)
				return nil
			}
			results[i] = mode
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		Modes:     make(map[string]*models.ModeSnapshot, len(modes)),
		UpdatedAt: a.now(),
	}
	seen := make(map[string]struct{})
	for _, mode := range results {
		if mode == nil {
			failed++
			continue
		}
		if kept, dup := snap.Modes[mode.Name]; dup {
			modeNameCollisions.Inc()
			a.logger.Warnw("Two modes share a display name, ignoring the later one",
				"name", mode.Name,
				"kept", kept.Technical,
				"ignored", mode.Technical,
			)
			continue
		}
		snap.Modes[mode.Name] = mode
		for _, rec := range mode.Ranked {
			if _, ok := seen[rec.Name]; ok {
				continue
			}
			seen[rec.Name] = struct{}{}
			snap.Players = append(snap.Players, rec.Name)
		}
	}
	sort.Strings(snap.Players)

	if len(modes) > 0 && failed == len(modes) {
		return nil, ErrAllModesFailed
	}
	return snap, nil
}

// aggregateMode reads one mode's ranking and every counter of its players.
func (a *Aggregator) aggregateMode(ctx context.Context, technical string) (*models.ModeSnapshot, error) {
	ranks, err := a.redis.ZRevRangeWithScores(ctx, technical+keySeparator+models.CounterScore, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", technical, err)
	}

	records := make([]models.StatRecord, len(ranks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, z := range ranks {
		i, z := i, z
		name := memberName(z.Member)
		g.Go(func() error {
			raw, err := a.fetchCounters(gctx, technical, name, z.Score)
			if err != nil {
				return err
			}
			records[i] = Normalize(name, raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	RankRecords(records)
	return models.NewModeSnapshot(models.ModeDisplayName(technical, a.prefix), technical, records), nil
}

// fetchCounters reads every counter of one player. Individual failures are
// absorbed and the counter is left out; only fatal errors are returned.
func (a *Aggregator) fetchCounters(ctx context.Context, technical, name string, rangeScore float64) (map[string]any, error) {
	values := make([]any, len(models.Counters))

	var g errgroup.Group
	for i, counter := range models.Counters {
		i, counter := i, counter
		g.Go(func() error {
			v, err := a.redis.ZScore(ctx, technical+keySeparator+counter, name).Result()
			switch {
			case err == nil:
				values[i] = v
			case errors.Is(err, redis.Nil):
			case isFatal(err):
				return err
			default:
				counterFetchFailures.Inc()
				a.logger.Debugw("Counter read failed, defaulting to zero",
					"mode", technical, "player", name, "counter", counter, "error", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The ranking already carries the score; a failed score read must not unrank the player.
	raw := map[string]any{models.CounterScore: rangeScore}
	for i, counter := range models.Counters {
		if values[i] != nil {
			raw[counter] = values[i]
		}
	}
	return raw, nil
}

// resolveModes returns the configured modes or discovers them from the store.
func (a *Aggregator) resolveModes(ctx context.Context) ([]string, error) {
	if len(a.modes) > 0 {
		modes := slices.Clone(a.modes)
		sort.Strings(modes)
		return slices.Compact(modes), nil
	}

	suffix := keySeparator + models.CounterScore
	pattern := a.prefix + "*" + suffix

	seen := make(map[string]struct{})
	var cursor uint64
	for {
		keys, next, err := a.redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			technical := strings.TrimSuffix(key, suffix)
			if technical == "" || strings.Contains(technical, keySeparator) {
				continue
			}
			seen[technical] = struct{}{}
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	modes := make([]string, 0, len(seen))
	for m := range seen {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes, nil
}

// RankRecords stable-sorts records by descending score and assigns places 1..N.
func RankRecords(records []models.StatRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	for i := range records {
		records[i].Place = i + 1
	}
}

func memberName(member interface{}) string {
	if s, ok := member.(string); ok {
		return s
	}
	return fmt.Sprint(member)
}

// isFatal reports errors that abort the whole cycle rather than one read.
func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, redis.ErrClosed)
}
