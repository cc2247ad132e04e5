package models

// GameStatus is the public status document served by the game server.
type GameStatus struct {
	CurrentMap  CurrentMap  `json:"current_map"`
	CurrentMode CurrentMode `json:"current_mode"`
	PlayerInfo  PlayerInfo  `json:"player_info"`
}

type CurrentMap struct {
	Name          string  `json:"name"`
	TechnicalName string  `json:"technical_name"`
	StartTime     FlexInt `json:"start_time"` // unix seconds
}

type CurrentMode struct {
	Name          string  `json:"name"` // technical, e.g. "nade_fight"
	Matches       FlexInt `json:"matches"`
	MatchesPlayed FlexInt `json:"matches_played"`
}

type PlayerInfo struct {
	Count   FlexInt  `json:"count"`
	Players []string `json:"players"`
}

// HasMap reports whether a match is currently running.
func (g *GameStatus) HasMap() bool {
	return g.CurrentMap.Name != ""
}
