package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/mt-ctf/rankings-bot/internal/leaderboard"
)

const (
	muteSelfMessage  = "No. You can't do that."
	muteStaffMessage = "The user you are trying to mute is a staff member!"
	muteRoleMissing  = "The mute role is not configured on this server."
)

// target is the member picked in a "user" option.
type target struct {
	user        *discordgo.User
	permissions int64
}

func targetOf(i *discordgo.Interaction) (target, bool) {
	opt, ok := optionMap(i)["user"]
	if !ok {
		return target{}, false
	}
	userID, ok := opt.Value.(string)
	if !ok || userID == "" {
		return target{}, false
	}

	t := target{user: &discordgo.User{ID: userID}}
	if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
		if u, ok := resolved.Users[userID]; ok {
			t.user = u
		}
		if m, ok := resolved.Members[userID]; ok {
			t.permissions = m.Permissions
		}
	}
	return t, true
}

// roleID looks up the mute role by name.
func (b *Bot) roleID(ctx context.Context, guildID string) (string, error) {
	roles, err := b.api.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	for _, r := range roles {
		if r.Name == b.muteRole {
			return r.ID, nil
		}
	}
	return "", nil
}

func (b *Bot) handleMute(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	t, ok := targetOf(i)
	if !ok {
		return nil
	}

	if self, _ := b.selfID.Load().(string); self != "" && t.user.ID == self {
		return embedReply(leaderboard.ErrorEmbed(muteSelfMessage), true)
	}
	if t.permissions&staffPermission != 0 {
		return embedReply(leaderboard.ErrorEmbed(muteStaffMessage), true)
	}

	roleID, resp := b.muteRoleOrReply(ctx, i.GuildID)
	if resp != nil {
		return resp
	}
	if err := b.api.GuildMemberRoleAdd(i.GuildID, t.user.ID, roleID, discordgo.WithContext(ctx)); err != nil {
		b.logger.Errorw("Failed to mute member", "user", t.user.ID, "error", err)
		return embedReply(leaderboard.ErrorEmbed("Failed to mute **"+leaderboard.EscapeMarkdown(t.user.Username)+"**."), true)
	}

	b.logger.Infow("Muted member", "user", t.user.ID, "by", actorID(i))
	return embedReply(leaderboard.InfoEmbed("**"+leaderboard.EscapeMarkdown(t.user.Username)+"** has been muted."), false)
}

func (b *Bot) handleUnmute(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	t, ok := targetOf(i)
	if !ok {
		return nil
	}

	roleID, resp := b.muteRoleOrReply(ctx, i.GuildID)
	if resp != nil {
		return resp
	}
	if err := b.api.GuildMemberRoleRemove(i.GuildID, t.user.ID, roleID, discordgo.WithContext(ctx)); err != nil {
		b.logger.Errorw("Failed to unmute member", "user", t.user.ID, "error", err)
		return embedReply(leaderboard.ErrorEmbed("Failed to unmute **"+leaderboard.EscapeMarkdown(t.user.Username)+"**."), true)
	}

	b.logger.Infow("Unmuted member", "user", t.user.ID, "by", actorID(i))
	return embedReply(leaderboard.InfoEmbed("**"+leaderboard.EscapeMarkdown(t.user.Username)+"** has been unmuted."), false)
}

func (b *Bot) muteRoleOrReply(ctx context.Context, guildID string) (string, *discordgo.InteractionResponse) {
	roleID, err := b.roleID(ctx, guildID)
	if err != nil {
		b.logger.Errorw("Failed to list guild roles", "guild", guildID, "error", err)
		return "", embedReply(leaderboard.ErrorEmbed(muteRoleMissing), true)
	}
	if roleID == "" {
		b.logger.Errorw("Could not find mute role in guild", "role", b.muteRole, "guild", guildID)
		return "", embedReply(leaderboard.ErrorEmbed(muteRoleMissing), true)
	}
	return roleID, nil
}

func actorID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	return ""
}
