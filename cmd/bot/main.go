package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mt-ctf/rankings-bot/internal/bot"
	"github.com/mt-ctf/rankings-bot/internal/config"
	"github.com/mt-ctf/rankings-bot/internal/discord"
	"github.com/mt-ctf/rankings-bot/internal/gamestatus"
	"github.com/mt-ctf/rankings-bot/internal/handlers"
	"github.com/mt-ctf/rankings-bot/internal/leaderboard"
	"github.com/mt-ctf/rankings-bot/internal/logic"
	"github.com/mt-ctf/rankings-bot/internal/relay"
	"github.com/mt-ctf/rankings-bot/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Sugar().Errorw("Bot stopped with error", "error", err)
		logger.Sync()
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	sugar := logger.Sugar()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	queue := relay.NewQueue()
	cache := logic.NewCache()

	var rdb *redis.Client
	if cfg.UseRedis {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			sugar.Warnw("Redis is not reachable yet, rankings will load on the next cycle", "addr", cfg.RedisAddr(), "error", err)
		}
	}

	b := bot.New(bot.Config{
		API:             session,
		Stats:           cache,
		Relay:           queue,
		GuildID:         cfg.GuildID,
		RankingsChannel: cfg.RankingsChannel,
		MuteRole:        cfg.MuteRole,
		Logger:          logger,
	})
	session.AddHandler(b.HandleReady)
	session.AddHandler(b.HandleInteraction)

	if err := session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}
	defer session.Close()

	channel := discord.NewChannelClient(session)
	var schedulers []*worker.Scheduler

	if rdb != nil {
		aggregator := logic.NewAggregator(logic.AggregatorConfig{
			Redis:       rdb,
			Cache:       cache,
			Modes:       cfg.Modes,
			ModePrefix:  cfg.ModePrefix,
			Concurrency: cfg.FetchConcurrency,
			Timeout:     cfg.AggregationTimeout,
			Logger:      logger,
		})
		rankings := worker.NewScheduler("rankings", cfg.PollInterval, worker.RankingsJob(worker.RankingsJobConfig{
			Refresher: aggregator,
			Snapshots: cache,
			Publisher: leaderboard.NewPublisher(channel, logger),
			ChannelID: cfg.RankingsChannel,
			Layout:    cfg.Layout(),
		}), logger)

		if err := rankings.RunNow(ctx); err != nil {
			sugar.Errorw("Initial rankings refresh failed", "error", err)
		}
		rankings.Start(ctx)
		schedulers = append(schedulers, rankings)
	}

	if cfg.GameStatsChannel != "" {
		updater := gamestatus.NewUpdater(gamestatus.NewClient(cfg.GameAPIURL, nil), channel, cfg.GameStatsChannel, logger)
		status := worker.NewScheduler("game_status", cfg.GameStatsInterval, updater.Update, logger)

		if err := status.RunNow(ctx); err != nil {
			sugar.Errorw("Initial game status update failed", "error", err)
		}
		status.Start(ctx)
		schedulers = append(schedulers, status)
	}

	hcfg := handlers.Config{
		Relay:          queue,
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	}
	if rdb != nil {
		hcfg.Redis = rdb
		hcfg.Stats = cache
	}
	h := handlers.New(hcfg)

	srv := &http.Server{
		Addr:              cfg.RelayAddr(),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		sugar.Infow("Relay server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		sugar.Info("Shutting down...")
	case err := <-serveErr:
		if err != nil {
			stop()
			shutdown(srv, schedulers, sugar)
			return fmt.Errorf("relay server: %w", err)
		}
	}

	shutdown(srv, schedulers, sugar)
	return nil
}

func shutdown(srv *http.Server, schedulers []*worker.Scheduler, sugar *zap.SugaredLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Warnw("Relay server shutdown", "error", err)
	}
	for _, s := range schedulers {
		s.Stop()
	}
}
