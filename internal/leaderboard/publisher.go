package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/mt-ctf/rankings-bot/internal/discord"
)

var publishResults = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rankbot_leaderboard_publish_total",
	Help: "Leaderboard publish attempts by result",
}, []string{"result"})

// Channel is the message channel capability the publisher needs.
type Channel interface {
	RecentMessages(ctx context.Context, channelID string, limit int) ([]discord.Message, error)
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	EditEmbed(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed) error
}

// Publisher keeps one message per page in the rankings channel.
type Publisher struct {
	channel Channel
	logger  *zap.SugaredLogger
}

func NewPublisher(channel Channel, logger *zap.Logger) *Publisher {
	return &Publisher{channel: channel, logger: logger.Sugar()}
}

// Publish edits the existing page messages in place, or posts every page
// again when the channel holds fewer messages than there are pages.
// The oldest message always carries the first page.
func (p *Publisher) Publish(ctx context.Context, channelID string, pages []*discordgo.MessageEmbed) error {
	if channelID == "" {
		p.logger.Debug("No rankings channel configured, skipping publish")
		return nil
	}
	if len(pages) == 0 {
		return nil
	}

	existing, err := p.channel.RecentMessages(ctx, channelID, len(pages))
	if err != nil {
		publishResults.WithLabelValues("failed").Inc()
		return fmt.Errorf("fetch messages of %s: %w", channelID, err)
	}

	if len(existing) < len(pages) {
		for i, page := range pages {
			if err := p.channel.SendEmbed(ctx, channelID, page); err != nil {
				publishResults.WithLabelValues("failed").Inc()
				return fmt.Errorf("send page %d: %w", i, err)
			}
		}
		publishResults.WithLabelValues("sent").Inc()
		p.logger.Infow("Published leaderboard pages as new messages", "channel", channelID, "pages", len(pages))
		return nil
	}

	ordered := OldestFirst(existing)
	ordered = ordered[len(ordered)-len(pages):]
	for i, page := range pages {
		if err := p.channel.EditEmbed(ctx, channelID, ordered[i].ID, page); err != nil {
			publishResults.WithLabelValues("failed").Inc()
			return fmt.Errorf("edit message %s with page %d: %w", ordered[i].ID, i, err)
		}
	}
	publishResults.WithLabelValues("edited").Inc()
	p.logger.Debugw("Edited leaderboard pages in place", "channel", channelID, "pages", len(pages))
	return nil
}

// OldestFirst returns a copy of msgs sorted by creation time, then by id.
func OldestFirst(msgs []discord.Message) []discord.Message {
	out := make([]discord.Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return discord.SnowflakeLess(out[i].ID, out[j].ID)
	})
	return out
}
