package gamestatus

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/mt-ctf/rankings-bot/internal/discord"
	"github.com/mt-ctf/rankings-bot/internal/models"
)

var updates = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rankbot_game_status_updates_total",
	Help: "Game status message updates by result",
}, []string{"result"})

// Fetcher returns the current game status.
type Fetcher interface {
	Fetch(ctx context.Context) (*models.GameStatus, error)
}

// Channel is the message channel capability the updater needs.
type Channel interface {
	RecentMessages(ctx context.Context, channelID string, limit int) ([]discord.Message, error)
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	EditEmbed(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed) error
}

// Updater keeps the newest message of the status channel showing the current match.
type Updater struct {
	fetcher   Fetcher
	channel   Channel
	channelID string
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewUpdater(fetcher Fetcher, channel Channel, channelID string, logger *zap.Logger) *Updater {
	return &Updater{
		fetcher:   fetcher,
		channel:   channel,
		channelID: channelID,
		logger:    logger.Sugar(),
		now:       time.Now,
	}
}

// Update fetches the status and edits the bot's last message, or posts a new
// one when the channel is empty or someone else spoke last.
func (u *Updater) Update(ctx context.Context) error {
	status, err := u.fetcher.Fetch(ctx)
	if err != nil {
		updates.WithLabelValues("fetch_failed").Inc()
		return err
	}
	if !status.HasMap() {
		u.logger.Debug("No map running, leaving game status untouched")
		updates.WithLabelValues("idle").Inc()
		return nil
	}

	embed := RenderStatus(status, u.now())

	last, err := u.channel.RecentMessages(ctx, u.channelID, 1)
	if err != nil {
		updates.WithLabelValues("failed").Inc()
		return fmt.Errorf("fetch last status message: %w", err)
	}

	if len(last) == 0 || !last[0].FromBot {
		if err := u.channel.SendEmbed(ctx, u.channelID, embed); err != nil {
			updates.WithLabelValues("failed").Inc()
			return err
		}
		updates.WithLabelValues("sent").Inc()
		return nil
	}

	if err := u.channel.EditEmbed(ctx, u.channelID, last[0].ID, embed); err != nil {
		updates.WithLabelValues("failed").Inc()
		return err
	}
	updates.WithLabelValues("edited").Inc()
	return nil
}
