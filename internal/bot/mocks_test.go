package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/mt-ctf/rankings-bot/internal/logic"
	"github.com/mt-ctf/rankings-bot/internal/models"
)

type roleChange struct {
	userID, roleID string
	added          bool
}

// MockAPI implements API for testing
type MockAPI struct {
	API
	Roles    []*discordgo.Role
	RolesErr error

	responses   []*discordgo.InteractionResponse
	roleChanges []roleChange
	registered  []*discordgo.ApplicationCommand
	appID       string
}

func (m *MockAPI) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	m.responses = append(m.responses, resp)
	return nil
}

func (m *MockAPI) ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	m.appID = appID
	m.registered = commands
	return commands, nil
}

func (m *MockAPI) GuildRoles(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return m.Roles, m.RolesErr
}

func (m *MockAPI) GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	m.roleChanges = append(m.roleChanges, roleChange{userID: userID, roleID: roleID, added: true})
	return nil
}

func (m *MockAPI) GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error {
	m.roleChanges = append(m.roleChanges, roleChange{userID: userID, roleID: roleID})
	return nil
}

type MockRelay struct {
	messages []string
}

func (m *MockRelay) Push(msg string) { m.messages = append(m.messages, msg) }

type MockStats struct {
	Snap *models.Snapshot
}

func (m *MockStats) Load() (*models.Snapshot, error) {
	if m.Snap == nil {
		return nil, logic.ErrStatsUnavailable
	}
	return m.Snap, nil
}
