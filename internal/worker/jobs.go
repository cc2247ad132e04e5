package worker

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mt-ctf/rankings-bot/internal/leaderboard"
	"github.com/mt-ctf/rankings-bot/internal/models"
)

// Refresher rebuilds the stats snapshot.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SnapshotSource returns the latest published snapshot.
type SnapshotSource interface {
	Load() (*models.Snapshot, error)
}

// PagePublisher pushes rendered leaderboard pages to a channel.
type PagePublisher interface {
	Publish(ctx context.Context, channelID string, pages []*discordgo.MessageEmbed) error
}

// RankingsJobConfig wires the rankings refresh job.
type RankingsJobConfig struct {
	Refresher Refresher
	Snapshots SnapshotSource
	Publisher PagePublisher
	ChannelID string
	Layout    leaderboard.Layout
}

// RankingsJob refreshes the snapshot and republishes the leaderboard pages.
// A failed refresh leaves the channel untouched.
func RankingsJob(cfg RankingsJobConfig) Job {
	return func(ctx context.Context) error {
		if err := cfg.Refresher.Refresh(ctx); err != nil {
			return err
		}
		if cfg.Publisher == nil || cfg.ChannelID == "" {
			return nil
		}

		snap, err := cfg.Snapshots.Load()
		if err != nil {
			return err
		}
		pages := leaderboard.RenderPages(snap, cfg.Layout)
		if err := cfg.Publisher.Publish(ctx, cfg.ChannelID, pages); err != nil {
			return fmt.Errorf("publish leaderboard: %w", err)
		}
		return nil
	}
}
