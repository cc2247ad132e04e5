package leaderboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mt-ctf/rankings-bot/internal/logic"
	"github.com/mt-ctf/rankings-bot/internal/models"
)

// goldPlaceCutoff is the best place that earns a gold rankings embed.
const goldPlaceCutoff = 20

// Ordinal returns "1st", "2nd", "11th", ...
func Ordinal(n int) string {
	if n == models.Unranked {
		return "Unranked"
	}
	suffix := "th"
	switch j, k := n%10, n%100; {
	case j == 1 && k != 11:
		suffix = "st"
	case j == 2 && k != 12:
		suffix = "nd"
	case j == 3 && k != 13:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// RenderRankings builds the /rank embed for a resolved player.
func RenderRankings(res logic.Resolution, updatedAt time.Time) *discordgo.MessageEmbed {
	color := ColorBlue
	if res.BestPlace() <= goldPlaceCutoff {
		color = ColorGold
	}

	topScore := 0.0
	for _, m := range res.Matches {
		topScore = math.Max(topScore, m.Record.Score)
	}

	embed := &discordgo.MessageEmbed{
		Description: "## Rankings of " + EscapeMarkdown(res.Name),
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Last Updated"},
		Timestamp:   updatedAt.UTC().Format(time.RFC3339),
	}

	for i, m := range res.Matches {
		embed.Fields = append(embed.Fields, rankingField(m, topScore))
		// two modes per row
		if (i+1)%2 == 0 {
			embed.Fields = append(embed.Fields, spacerField(false))
		}
	}
	if len(res.Matches)%2 != 0 {
		embed.Fields = append(embed.Fields, spacerField(true))
	}
	return embed
}

// ErrorEmbed is a red embed carrying a single message.
func ErrorEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Color: ColorRed, Description: description}
}

// InfoEmbed is a blue embed carrying a single message.
func InfoEmbed(description string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{Color: ColorBlue, Description: description}
}

func spacerField(inline bool) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{Name: "\u200b", Value: "\u200b", Inline: inline}
}

func rankingField(m logic.Match, topScore float64) *discordgo.MessageEmbedField {
	rec := m.Record
	kd := rec.KDRatio()

	// Pad every value to the widest one so the column lines up.
	width := len(FormatScore(topScore))
	for _, v := range []float64{kd * 100, rec.KillAssists, rec.BountyKills, rec.Kills, rec.Deaths, rec.HPHealed} {
		width = max(width, len(strconv.FormatInt(int64(math.Round(v)), 10)))
	}

	rows := []struct {
		label string
		value string
	}{
		{"Score:", FormatScore(rec.Score)},
		{"Kills:", roundString(rec.Kills)},
		{"HP Healed:", roundString(rec.HPHealed)},
		{"Kill Assists:", roundString(rec.KillAssists)},
		{"Deaths:", roundString(rec.Deaths)},
		{"Bounty Kills:", roundString(rec.BountyKills)},
		{"Captures:", roundString(rec.FlagCaptures)},
		{"Attempts:", roundString(rec.FlagAttempts)},
		{"K/D:", strconv.FormatFloat(kd, 'f', 1, 64)},
		{"Score/Kill:", roundString(rec.ScorePerKill())},
	}

	var sb strings.Builder
	sb.WriteString("```\n")
	for _, row := range rows {
		fmt.Fprintf(&sb, "%-13s %*s\n", row.label, width, row.value)
	}
	sb.WriteString("```")

	return &discordgo.MessageEmbedField{
		Name:   fmt.Sprintf("%s: `%s`", m.Mode, Ordinal(rec.Place)),
		Value:  sb.String(),
		Inline: true,
	}
}

func roundString(v float64) string {
	return strconv.FormatInt(int64(math.Round(v)), 10)
}
