// Package worker runs the bot's periodic jobs.
//
// Each Scheduler owns one job and one ticker. A run that is still in flight
// when the next tick fires causes that tick to be skipped rather than queued,
// so a slow store or Discord outage never piles up overlapping cycles.
package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// ErrRunInFlight is returned by RunNow when the job is already running.
var ErrRunInFlight = errors.New("job is already running")

// Prometheus metrics
var (
	ticksSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankbot_scheduler_ticks_skipped_total",
		Help: "Ticks skipped because the previous run was still in flight",
	}, []string{"job"})

	jobFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rankbot_scheduler_job_failures_total",
		Help: "Scheduled job runs that returned an error",
	}, []string{"job"})

	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rankbot_scheduler_job_duration_seconds",
		Help:    "Duration of scheduled job runs",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

// Job is one unit of periodic work.
type Job func(ctx context.Context) error

// Scheduler runs a job on a fixed interval.
type Scheduler struct {
	name     string
	interval time.Duration
	job      Job
	logger   *zap.SugaredLogger

	inFlight atomic.Bool
	skipped  atomic.Int64

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewScheduler creates a scheduler. It does nothing until Start or RunNow.
func NewScheduler(name string, interval time.Duration, job Job, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		name:     name,
		interval: interval,
		job:      job,
		logger:   logger.Sugar().With("job", name),
	}
}

// RunNow runs the job synchronously unless a run is already in flight.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrRunInFlight
	}
	return s.run(ctx)
}

// run executes the job; the caller holds the in-flight flag.
func (s *Scheduler) run(ctx context.Context) error {
	defer s.inFlight.Store(false)

	start := time.Now()
	err := s.job(ctx)
	jobDuration.WithLabelValues(s.name).Observe(time.Since(start).Seconds())
	if err != nil {
		jobFailures.WithLabelValues(s.name).Inc()
	}
	return err
}

// Start launches the ticker loop. Runs stop when ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Infow("Scheduler started", "interval", s.interval)
}

// Stop cancels the loop and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		ticksSkipped.WithLabelValues(s.name).Inc()
		s.logger.Debug("Previous run still in flight, skipping tick")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Errorw("Scheduled run failed", "error", err)
		}
	}()
}
