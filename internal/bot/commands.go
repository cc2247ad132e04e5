package bot

import "github.com/bwmarrin/discordgo"

// Command names
const (
	CommandRank    = "rank"
	CommandLeaders = "leaders"
	CommandStaff   = "x"
	CommandMute    = "mute"
	CommandUnmute  = "unmute"
)

const maxAutocompleteChoices = 10

// staffPermission gates the moderation commands. Members who can kick are staff.
var staffPermission int64 = discordgo.PermissionKickMembers

// Commands returns the slash commands registered in the guild.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        CommandRank,
			Description: "Shows ingame rankings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "player",
					Description:  "The player",
					Autocomplete: true,
				},
			},
		},
		{
			Name:                     CommandStaff,
			Description:              "Send messages on staff channel",
			DefaultMemberPermissions: &staffPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Enter message",
					Required:    true,
				},
			},
		},
		{
			Name:        CommandLeaders,
			Description: "Shows the top 60 leaderboard or links to the dedicated channel for it",
		},
		{
			Name:                     CommandMute,
			Description:              "Mutes a user",
			DefaultMemberPermissions: &staffPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to mute",
					Required:    true,
				},
			},
		},
		{
			Name:                     CommandUnmute,
			Description:              "Unmutes a user",
			DefaultMemberPermissions: &staffPermission,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to unmute",
					Required:    true,
				},
			},
		},
	}
}
