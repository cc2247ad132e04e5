package gamestatus

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mt-ctf/rankings-bot/internal/leaderboard"
	"github.com/mt-ctf/rankings-bot/internal/models"
)

const (
	mapRepoURL      = "https://github.com/MT-CTF/maps/blob/master/"
	seasonalRepoURL = "https://github.com/MT-CTF/seasonal_xmas/blob/master/xmas_maps/maps/"
)

// seasonalMaps live in the seasonal repository instead of the main map repository.
var seasonalMaps = map[string]bool{
	"snow_globe": true,
}

// MapImageURL returns the screenshot URL of a map.
func MapImageURL(technicalName string) string {
	base := mapRepoURL
	if seasonalMaps[technicalName] {
		base = seasonalRepoURL
	}
	return base + technicalName + "/screenshot.png?raw=true"
}

// RenderStatus builds the live match embed.
func RenderStatus(status *models.GameStatus, now time.Time) *discordgo.MessageEmbed {
	started := time.Unix(int64(status.CurrentMap.StartTime), 0)
	minutes := int64(math.Round(now.Sub(started).Minutes()))
	if minutes < 0 {
		minutes = 0
	}

	description := fmt.Sprintf("**Match**: %d/%d\n**Duration**: %dm\n**Players (%d)**: %s",
		status.CurrentMode.MatchesPlayed, status.CurrentMode.Matches,
		minutes,
		status.PlayerInfo.Count,
		leaderboard.EscapeMarkdown(strings.Join(status.PlayerInfo.Players, ", ")),
	)

	return &discordgo.MessageEmbed{
		Title:       status.CurrentMap.Name + " - " + models.ModeDisplayName(status.CurrentMode.Name, ""),
		Description: description,
		Color:       leaderboard.ColorBlue,
		Image:       &discordgo.MessageEmbedImage{URL: MapImageURL(status.CurrentMap.TechnicalName)},
		Footer:      &discordgo.MessageEmbedFooter{Text: "Last Updated"},
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
}
