package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/mt-ctf/rankings-bot/internal/leaderboard"
	"github.com/mt-ctf/rankings-bot/internal/models"
)

func testSnapshot() *models.Snapshot {
	classes := []models.StatRecord{
		{Name: "Alice", Score: 500, Kills: 10, Deaths: 2, Place: 1},
		{Name: "Alfred", Score: 300, Kills: 3, Place: 2},
	}
	classic := []models.StatRecord{
		{Name: "bob", Score: 900, Kills: 40, Deaths: 20, Place: 1},
		{Name: "Alice", Score: 100, Kills: 1, Deaths: 1, Place: 2},
	}
	return &models.Snapshot{
		Modes: map[string]*models.ModeSnapshot{
			"Classes": models.NewModeSnapshot("Classes", "ctf_mode_classes", classes),
			"Classic": models.NewModeSnapshot("Classic", "ctf_mode_classic", classic),
		},
		Players:   []string{"Alfred", "Alice", "bob"},
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestBot(api *MockAPI, snap *models.Snapshot, relay *MockRelay) *Bot {
	b := New(Config{
		API:             api,
		Stats:           &MockStats{Snap: snap},
		Relay:           relay,
		GuildID:         "guild",
		RankingsChannel: "555",
		MuteRole:        "Muterated",
		Logger:          zap.NewNop(),
	})
	b.selfID.Store("bot-id")
	return b
}

func member(nick, global, username string) *discordgo.Member {
	return &discordgo.Member{Nick: nick, User: &discordgo.User{ID: "u-" + username, GlobalName: global, Username: username}}
}

func command(name string, m *discordgo.Member, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "guild",
		Member:  m,
		Data:    discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func onlyResponse(t *testing.T, api *MockAPI) *discordgo.InteractionResponse {
	t.Helper()
	if len(api.responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(api.responses))
	}
	return api.responses[0]
}

func isEphemeral(resp *discordgo.InteractionResponse) bool {
	return resp.Data.Flags&discordgo.MessageFlagsEphemeral != 0
}

func TestCommands(t *testing.T) {
	staff := map[string]bool{CommandStaff: true, CommandMute: true, CommandUnmute: true}
	for _, cmd := range Commands() {
		gated := cmd.DefaultMemberPermissions != nil && *cmd.DefaultMemberPermissions == discordgo.PermissionKickMembers
		if gated != staff[cmd.Name] {
			t.Errorf("command %s gated = %v", cmd.Name, gated)
		}
	}
}

func TestHandleReady_RegistersCommands(t *testing.T) {
	api := &MockAPI{}
	b := newTestBot(api, nil, &MockRelay{})

	b.HandleReady(nil, &discordgo.Ready{User: &discordgo.User{ID: "app", Username: "rankbot"}})

	if api.appID != "app" || len(api.registered) != len(Commands()) {
		t.Errorf("registered %d commands for %q", len(api.registered), api.appID)
	}
	if got, _ := b.selfID.Load().(string); got != "app" {
		t.Errorf("selfID = %q", got)
	}
}

func TestHandleInteraction_IgnoresDirectMessages(t *testing.T) {
	api := &MockAPI{}
	b := newTestBot(api, testSnapshot(), &MockRelay{})

	ic := command(CommandLeaders, nil)
	ic.GuildID = ""
	ic.User = &discordgo.User{ID: "dm-user"}
	b.HandleInteraction(nil, ic)

	if len(api.responses) != 0 {
		t.Error("answered an interaction outside a guild")
	}
}

func TestRank_StatsLoading(t *testing.T) {
	api := &MockAPI{}
	b := newTestBot(api, nil, &MockRelay{})

	b.HandleInteraction(nil, command(CommandRank, member("", "", "alice")))

	resp := onlyResponse(t, api)
	if !isEphemeral(resp) || resp.Data.Embeds[0].Description != statsLoadingMessage {
		t.Errorf("response = %+v", resp.Data)
	}
}

func TestRank_Explicit(t *testing.T) {
	api := &MockAPI{}
	b := newTestBot(api, testSnapshot(), &MockRelay{})

	b.HandleInteraction(nil, command(CommandRank, member("", "", "someone"), stringOpt("player", "  alice ")))

	resp := onlyResponse(t, api)
	embed := resp.Data.Embeds[0]
	if isEphemeral(resp) {
		t.Error("rank reply should be public")
	}
	if !strings.Contains(embed.Description, "Alice") || embed.Color != leaderboard.ColorGold {
		t.Errorf("embed = %+v", embed)
	}
	// Classes and Classic both list Alice
	if !strings.HasPrefix(embed.Fields[0].Name, "Classes") || !strings.HasPrefix(embed.Fields[1].Name, "Classic") {
		t.Errorf("fields = %q, %q", embed.Fields[0].Name, embed.Fields[1].Name)
	}
}

func TestRank_FallsBackToMemberNames(t *testing.T) {
	api := &MockAPI{}
	b := newTestBot(api, testSnapshot(), &MockRelay{})

	b.HandleInteraction(nil, command(CommandRank, member("Bob", "", "bob")))

	embed := onlyResponse(t, api).Data.Embeds[0]
	if !strings.Contains(embed.Description, "bob") || len(embed.Fields) != 2 {
		t.Errorf("embed = %+v", embed)
	}
}

func TestRank_NotFound(t *testing.T) {
	api := &MockAPI{}
	b := newTestBot(api, testSnapshot(), &MockRelay{})

	b.HandleInteraction(nil, command(CommandRank, member("Zed", "zed", "zed_99")))

	embed := onlyResponse(t, api).Data.Embeds[0]
	if embed.Color != leaderboard.ColorRed {
		t.Errorf("Color = %#x", embed.Color)
	}
	if embed.Description != "Unable to find Zed or zed_99, please provide username explicitly." {
		t.Errorf("Description = %q", embed.Description)
	}
}

func TestRankAutocomplete(t *testing.T) {
	api := &MockAPI{}
	b := newTestBot(api, testSnapshot(), &MockRelay{})

	ic := command(CommandRank, member("", "", "x"), &discordgo.ApplicationCommandInteractionDataOption{
		Name: "player", Type: discordgo.ApplicationCommandOptionString, Value: "AL", Focused: true,
	})
	ic.Type = discordgo.InteractionApplicationCommandAutocomplete
	b.HandleInteraction(nil, ic)

	resp := onlyResponse(t, api)
	if resp.Type != discordgo.InteractionApplicationCommandAutocompleteResult {
		t.Fatalf("Type = %v", resp.Type)
	}
	if len(resp.Data.Choices) != 2 || resp.Data.Choices[0].Name != "Alfred" {
		t.Errorf("choices = %+v", resp.Data.Choices)
	}

	// Unavailable stats give no choices
	api = &MockAPI{}
	newTestBot(api, nil, &MockRelay{}).HandleInteraction(nil, ic)
	if got := onlyResponse(t, api).Data.Choices; len(got) != 0 {
		t.Errorf("choices while loading = %+v", got)
	}
}

func TestLeaders(t *testing.T) {
	api := &MockAPI{}
	b := newTestBot(api, nil, &MockRelay{})
	b.HandleInteraction(nil, command(CommandLeaders, member("", "", "a")))

	resp := onlyResponse(t, api)
	if !isEphemeral(resp) || resp.Data.Embeds[0].Description != "Check out <#555>" {
		t.Errorf("response = %+v", resp.Data.Embeds[0])
	}

	api = &MockAPI{}
	b = newTestBot(api, nil, &MockRelay{})
	b.rankingsChannel = ""
	b.HandleInteraction(nil, command(CommandLeaders, member("", "", "a")))
	if got := onlyResponse(t, api).Data.Embeds[0].Description; got != "There is no rankings channel" {
		t.Errorf("Description = %q", got)
	}
}

func TestStaffMessage(t *testing.T) {
	api := &MockAPI{}
	relay := &MockRelay{}
	b := newTestBot(api, nil, relay)

	b.HandleInteraction(nil, command(CommandStaff, member("", "Ruben Wardy!", "rubenwardy"), stringOpt("message", "server restart in 5")))

	if len(relay.messages) != 1 || relay.messages[0] != "<RubenWardy@Discord> server restart in 5" {
		t.Errorf("relay = %v", relay.messages)
	}
	if got := onlyResponse(t, api).Data.Embeds[0].Description; got != "**RubenWardy**: server restart in 5" {
		t.Errorf("echo = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		m    *discordgo.Member
		want string
	}{
		{member("Nick", "Global", "user"), "Nick"},
		{member("", "Global", "user"), "Global"},
		{member("", "", "user"), "user"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := displayName(tt.m); got != tt.want {
			t.Errorf("displayName() = %q, want %q", got, tt.want)
		}
	}
}
