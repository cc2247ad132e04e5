package bot

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mt-ctf/rankings-bot/internal/leaderboard"
	"github.com/mt-ctf/rankings-bot/internal/logic"
	"github.com/mt-ctf/rankings-bot/internal/relay"
)

const statsLoadingMessage = "Please wait, stats are still loading..."

// identityOf collects the names a member may be listed under.
func identityOf(member *discordgo.Member, explicit string) logic.Identity {
	q := logic.Identity{Explicit: strings.TrimSpace(explicit)}
	if member == nil {
		return q
	}
	q.Nickname = member.Nick
	if member.User != nil {
		q.GlobalName = member.User.GlobalName
		q.Username = member.User.Username
	}
	return q
}

// displayName prefers the guild nickname, then the global name, then the account name.
func displayName(member *discordgo.Member) string {
	if member == nil {
		return ""
	}
	if member.Nick != "" {
		return member.Nick
	}
	if member.User == nil {
		return ""
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}

func (b *Bot) handleRank(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	snap, err := b.stats.Load()
	if err != nil {
		return embedReply(leaderboard.ErrorEmbed(statsLoadingMessage), true)
	}

	var explicit string
	if opt, ok := optionMap(i)["player"]; ok {
		explicit = opt.StringValue()
	}
	q := identityOf(i.Member, explicit)

	res := logic.Resolve(snap, q)
	if !res.Found() {
		return embedReply(leaderboard.ErrorEmbed(logic.NotFoundMessage(q)), false)
	}
	return embedReply(leaderboard.RenderRankings(res, snap.UpdatedAt), false)
}

func (b *Bot) rankAutocomplete(i *discordgo.Interaction) *discordgo.InteractionResponse {
	choices := []*discordgo.ApplicationCommandOptionChoice{}

	if snap, err := b.stats.Load(); err == nil {
		var typed string
		for _, opt := range i.ApplicationCommandData().Options {
			if opt.Focused {
				typed = opt.StringValue()
			}
		}
		for _, name := range snap.PlayersWithPrefix(strings.TrimSpace(typed), maxAutocompleteChoices) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
		}
	}

	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}
}

func (b *Bot) handleLeaders(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	description := "There is no rankings channel"
	if b.rankingsChannel != "" {
		description = "Check out <#" + b.rankingsChannel + ">"
	}
	return embedReply(leaderboard.InfoEmbed(description), true)
}

func (b *Bot) handleStaff(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	opt, ok := optionMap(i)["message"]
	if !ok {
		return nil
	}
	text := opt.StringValue()
	name := relay.SanitizeName(displayName(i.Member))

	b.relay.Push(relay.StaffMessage(name, text))
	b.logger.Infow("Queued staff message", "name", name)

	return embedReply(leaderboard.InfoEmbed("**"+name+"**: "+text), false)
}
