// Package bot registers the slash commands and answers interactions.
package bot

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/mt-ctf/rankings-bot/internal/models"
)

const interactionTimeout = 10 * time.Second

var interactionsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "rankbot_interactions_total",
	Help: "Interactions handled by command and result",
}, []string{"command", "result"})

// API is the subset of *discordgo.Session the bot calls.
type API interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
	GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error)
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// SnapshotSource returns the current stats snapshot.
type SnapshotSource interface {
	Load() (*models.Snapshot, error)
}

// StaffRelay queues a message for the game server.
type StaffRelay interface {
	Push(msg string)
}

type Config struct {
	API             API
	Stats           SnapshotSource
	Relay           StaffRelay
	GuildID         string
	RankingsChannel string
	MuteRole        string
	Logger          *zap.Logger
}

// commandHandler answers one slash command. A nil response sends nothing.
type commandHandler func(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse

type Bot struct {
	api             API
	stats           SnapshotSource
	relay           StaffRelay
	guildID         string
	rankingsChannel string
	muteRole        string
	logger          *zap.SugaredLogger

	selfID   atomic.Value // string, set on ready
	handlers map[string]commandHandler
}

func New(cfg Config) *Bot {
	b := &Bot{
		api:             cfg.API,
		stats:           cfg.Stats,
		relay:           cfg.Relay,
		guildID:         cfg.GuildID,
		rankingsChannel: cfg.RankingsChannel,
		muteRole:        cfg.MuteRole,
		logger:          cfg.Logger.Sugar(),
	}
	b.selfID.Store("")
	b.handlers = map[string]commandHandler{
		CommandRank:    b.handleRank,
		CommandLeaders: b.handleLeaders,
		CommandStaff:   b.handleStaff,
		CommandMute:    b.handleMute,
		CommandUnmute:  b.handleUnmute,
	}
	return b
}

// HandleReady registers the commands in the configured guild.
func (b *Bot) HandleReady(s *discordgo.Session, r *discordgo.Ready) {
	if r.User == nil {
		b.logger.Error("Ready event without a user")
		return
	}
	b.selfID.Store(r.User.ID)
	b.logger.Infow("Logged in", "user", r.User.Username, "id", r.User.ID)

	if err := b.RegisterCommands(r.User.ID); err != nil {
		b.logger.Errorw("Failed to register commands", "guild", b.guildID, "error", err)
	}
}

// RegisterCommands replaces the guild's commands with Commands().
func (b *Bot) RegisterCommands(appID string) error {
	registered, err := b.api.ApplicationCommandBulkOverwrite(appID, b.guildID, Commands())
	if err != nil {
		return err
	}
	b.logger.Infow("Registered commands", "guild", b.guildID, "count", len(registered))
	return nil
}

// HandleInteraction routes an interaction to its command handler.
func (b *Bot) HandleInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	i := ic.Interaction
	// Commands only make sense inside a guild
	if i.GuildID == "" || i.Member == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	var (
		name string
		resp *discordgo.InteractionResponse
	)
	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		name = i.ApplicationCommandData().Name
		if name != CommandRank {
			return
		}
		resp = b.rankAutocomplete(i)
	case discordgo.InteractionApplicationCommand:
		name = i.ApplicationCommandData().Name
		handler, ok := b.handlers[name]
		if !ok {
			b.logger.Warnw("Unknown command", "command", name)
			return
		}
		resp = handler(ctx, i)
	default:
		return
	}

	if resp == nil {
		interactionsHandled.WithLabelValues(name, "ignored").Inc()
		return
	}
	if err := b.api.InteractionRespond(i, resp, discordgo.WithContext(ctx)); err != nil {
		interactionsHandled.WithLabelValues(name, "failed").Inc()
		b.logger.Errorw("Failed to respond to interaction", "command", name, "error", err)
		return
	}
	interactionsHandled.WithLabelValues(name, "ok").Inc()
}

func embedReply(embed *discordgo.MessageEmbed, ephemeral bool) *discordgo.InteractionResponse {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}
}

func optionMap(i *discordgo.Interaction) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}
