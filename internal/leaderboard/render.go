// Package leaderboard turns ranked snapshots into Discord embeds and keeps the
// rankings channel in sync with them.
package leaderboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mt-ctf/rankings-bot/internal/models"
)

// Discord embed colours
const (
	ColorBlue = 0x3498DB
	ColorGold = 0xF1C40F
	ColorRed  = 0xED4245
)

// Discord embed limits
const (
	DiscordMaxFields      = 25
	DiscordFieldValueMax  = 1024
	DiscordEmbedTotalMax  = 6000
	embedOverheadReserve  = 200 // title, description, footer
	truncatedSectionTrail = "\n…"
)

// Layout bounds the rendered leaderboard of one mode.
type Layout struct {
	MaxEntries      int
	RowsPerSection  int
	MaxSections     int
	FieldValueLimit int
	EmbedTotalLimit int
}

// DefaultLayout shows the top 60 in sections of 10.
var DefaultLayout = Layout{
	MaxEntries:      60,
	RowsPerSection:  10,
	MaxSections:     DiscordMaxFields,
	FieldValueLimit: DiscordFieldValueMax,
	EmbedTotalLimit: DiscordEmbedTotalMax,
}

// Sections is the number of sections a full page needs.
func (l Layout) Sections() int {
	if l.RowsPerSection <= 0 {
		return 0
	}
	return (l.MaxEntries + l.RowsPerSection - 1) / l.RowsPerSection
}

// Longest line a layout must fit without truncation: a full-length in-game
// name made entirely of escaped characters, a nine-digit score and a wide K/D.
const (
	MaxNameLength = 20
	worstScore    = 999_999_999
	worstKills    = 99_999
)

// Validate checks the layout fits inside one embed and that a full section
// of worst-case lines fits in its share of the content limit.
func (l Layout) Validate() error {
	if err := l.checkSections(); err != nil {
		return err
	}
	if l.FieldValueLimit <= 0 || l.EmbedTotalLimit <= embedOverheadReserve {
		return errors.New("leaderboard: content limits must be positive")
	}
	if need, budget := l.worstSectionLen(), l.sectionBudget(); need > budget {
		return fmt.Errorf("leaderboard: %d rows per section need up to %d bytes, section budget is %d",
			l.RowsPerSection, need, budget)
	}
	return nil
}

// checkSections is the structural part of Validate that Paginate asserts.
func (l Layout) checkSections() error {
	if l.MaxEntries <= 0 {
		return errors.New("leaderboard: max entries must be positive")
	}
	if l.RowsPerSection <= 0 {
		return errors.New("leaderboard: rows per section must be positive")
	}
	if l.MaxSections <= 0 || l.MaxSections > DiscordMaxFields {
		return fmt.Errorf("leaderboard: max sections must be within 1..%d", DiscordMaxFields)
	}
	if l.Sections() > l.MaxSections {
		return fmt.Errorf("leaderboard: %d entries in sections of %d need %d sections, limit is %d",
			l.MaxEntries, l.RowsPerSection, l.Sections(), l.MaxSections)
	}
	return nil
}

func (l Layout) worstSectionLen() int {
	rec := models.StatRecord{
		Name:  strings.Repeat("_", MaxNameLength),
		Score: worstScore,
		Kills: worstKills,
		Place: l.MaxEntries,
	}
	placeWidth := len(strconv.Itoa(l.MaxEntries))
	line := len(FormatEntry(rec, placeWidth, len(FormatScore(worstScore))))
	return l.RowsPerSection*line + l.RowsPerSection - 1
}

// sectionBudget is the largest section body that keeps the whole embed within limits.
func (l Layout) sectionBudget() int {
	budget := l.FieldValueLimit
	if n := l.Sections(); n > 0 {
		if share := (l.EmbedTotalLimit - embedOverheadReserve) / n; share < budget {
			budget = share
		}
	}
	return budget
}

// Section is a contiguous rank range of one page.
type Section struct {
	From    int // first place, 1-based
	To      int // last place
	Entries []models.StatRecord
}

// Header names the rank range, e.g. "Top 1–20".
func (s Section) Header() string {
	return fmt.Sprintf("Top %d–%d", s.From, s.To)
}

// Paginate splits records (sorted by place) into sections. It panics if the
// layout needs more sections than one embed holds.
func Paginate(records []models.StatRecord, layout Layout) []Section {
	if err := layout.checkSections(); err != nil {
		panic(err)
	}

	n := min(len(records), layout.MaxEntries)
	sections := make([]Section, 0, layout.Sections())
	for i := 0; i < n; i += layout.RowsPerSection {
		end := min(i+layout.RowsPerSection, n)
		sections = append(sections, Section{
			From:    i + 1,
			To:      end,
			Entries: records[i:end],
		})
	}
	return sections
}

// RenderSection formats the entries of one section, one line per player.
// Content is cut at a line boundary when it exceeds limit.
func RenderSection(s Section, scoreWidth, limit int) string {
	content, _ := renderSection(s, scoreWidth, limit)
	return content
}

// renderSection also reports how many entries made it into the content.
func renderSection(s Section, scoreWidth, limit int) (string, int) {
	placeWidth := len(strconv.Itoa(s.To))

	lines := make([]string, len(s.Entries))
	for i, rec := range s.Entries {
		lines[i] = FormatEntry(rec, placeWidth, scoreWidth)
	}
	content := strings.Join(lines, "\n")
	if len(content) <= limit {
		return content, len(lines)
	}

	var sb strings.Builder
	shown := 0
	for i, line := range lines {
		sep := 0
		if i > 0 {
			sep = 1
		}
		if sb.Len()+sep+len(line)+len(truncatedSectionTrail) > limit {
			break
		}
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		shown++
	}
	sb.WriteString(truncatedSectionTrail)
	return sb.String(), shown
}

// FormatEntry renders "` 1.` Name · Score: `1,234` · K/D: `2.5`".
func FormatEntry(rec models.StatRecord, placeWidth, scoreWidth int) string {
	return fmt.Sprintf("`%*d.` %s · Score: `%*s` · K/D: `%s`",
		placeWidth, rec.Place,
		EscapeMarkdown(rec.Name),
		scoreWidth, FormatScore(rec.Score),
		FormatKD(rec),
	)
}

// RenderLeaderboard builds the embed for one mode.
func RenderLeaderboard(mode string, records []models.StatRecord, layout Layout, updatedAt time.Time) *discordgo.MessageEmbed {
	sections := Paginate(records, layout)

	scoreWidth := 0
	if len(records) > 0 {
		scoreWidth = len(FormatScore(records[0].Score))
	}
	budget := layout.sectionBudget()

	fields := make([]*discordgo.MessageEmbedField, 0, len(sections))
	for _, s := range sections {
		value, shown := renderSection(s, scoreWidth, budget)
		header := s.Header()
		if shown > 0 && shown < len(s.Entries) {
			// headers never claim ranks that were cut
			header = Section{From: s.From, To: s.From + shown - 1}.Header()
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   header,
			Value:  value,
			Inline: false,
		})
	}

	description := fmt.Sprintf("# Mode: %s `[1-%d]`", mode, layout.MaxEntries)
	if len(records) == 0 {
		description += "\nNo ranked players yet."
	}

	return &discordgo.MessageEmbed{
		Description: description,
		Color:       ColorBlue,
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Last Updated"},
		Timestamp:   updatedAt.UTC().Format(time.RFC3339),
	}
}

// RenderPages renders one page per mode, in mode name order.
func RenderPages(snap *models.Snapshot, layout Layout) []*discordgo.MessageEmbed {
	names := snap.ModeNames()
	pages := make([]*discordgo.MessageEmbed, 0, len(names))
	for _, name := range names {
		pages = append(pages, RenderLeaderboard(name, snap.Modes[name].Ranked, layout, snap.UpdatedAt))
	}
	return pages
}

var printer = message.NewPrinter(language.English)

// FormatScore rounds and groups thousands: 12345.6 -> "12,346".
func FormatScore(score float64) string {
	return printer.Sprintf("%d", int64(math.Round(score)))
}

// FormatKD formats kills per death with one decimal; zero deaths count as one.
func FormatKD(rec models.StatRecord) string {
	return strconv.FormatFloat(rec.KDRatio(), 'f', 1, 64)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"|", `\|`,
	">", `\>`,
)

// EscapeMarkdown escapes characters Discord would read as formatting.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
