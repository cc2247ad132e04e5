// Package discord adapts a discordgo session to the small set of channel and
// guild operations the bot relies on.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// maxFetchLimit is the largest page Discord returns for a message fetch.
const maxFetchLimit = 100

// Message is the part of a posted message the bot cares about.
type Message struct {
	ID        string
	CreatedAt time.Time
	FromBot   bool
}

// FromDiscord converts a discordgo message, deriving the creation time from
// the snowflake when the payload carries none.
func FromDiscord(m *discordgo.Message) Message {
	created := m.Timestamp
	if created.IsZero() {
		if ts, err := discordgo.SnowflakeTimestamp(m.ID); err == nil {
			created = ts
		}
	}
	return Message{
		ID:        m.ID,
		CreatedAt: created,
		FromBot:   m.Author != nil && m.Author.Bot,
	}
}

// SnowflakeLess orders snowflake ids numerically without parsing them.
func SnowflakeLess(a, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ChannelClient reads and writes channel messages through a session.
type ChannelClient struct {
	session *discordgo.Session
}

func NewChannelClient(session *discordgo.Session) *ChannelClient {
	return &ChannelClient{session: session}
}

// RecentMessages returns up to limit of the newest messages in a channel.
func (c *ChannelClient) RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	if limit <= 0 {
		return nil, nil
	}
	limit = min(limit, maxFetchLimit)

	msgs, err := c.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("channel messages: %w", err)
	}

	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, FromDiscord(m))
	}
	return out, nil
}

// SendEmbed posts a new message holding one embed.
func (c *ChannelClient) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	if _, err := c.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send embed: %w", err)
	}
	return nil
}

// EditEmbed replaces the embed of an existing message.
func (c *ChannelClient) EditEmbed(ctx context.Context, channelID, messageID string, embed *discordgo.MessageEmbed) error {
	if _, err := c.session.ChannelMessageEditEmbed(channelID, messageID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("edit embed: %w", err)
	}
	return nil
}
