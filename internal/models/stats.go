package models

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Unranked is the place of a player that has records but was never scored.
const Unranked = math.MaxInt

// Store counter keys, one sorted set per mode and counter: "<mode>|<counter>".
const (
	CounterScore              = "score"
	CounterKills              = "kills"
	CounterDeaths             = "deaths"
	CounterBountyKills        = "bounty_kills"
	CounterFlagCaptures       = "flag_captures"
	CounterFlagAttempts       = "flag_attempts"
	CounterHPHealed           = "hp_healed"
	CounterKillAssists        = "kill_assists"
	CounterRewardGivenToEnemy = "reward_given_to_enemy"
)

// Counters lists every counter the store keeps per player.
var Counters = []string{
	CounterKills,
	CounterKillAssists,
	CounterDeaths,
	CounterScore,
	CounterBountyKills,
	CounterFlagCaptures,
	CounterFlagAttempts,
	CounterHPHealed,
	CounterRewardGivenToEnemy,
}

// StatRecord holds one player's counters for one mode
type StatRecord struct {
	Name               string  `json:"name"`
	Score              float64 `json:"score"`
	Kills              float64 `json:"kills"`
	Deaths             float64 `json:"deaths"`
	BountyKills        float64 `json:"bounty_kills"`
	FlagCaptures       float64 `json:"flag_captures"`
	FlagAttempts       float64 `json:"flag_attempts"`
	HPHealed           float64 `json:"hp_healed"`
	KillAssists        float64 `json:"kill_assists"`
	RewardGivenToEnemy float64 `json:"reward_given_to_enemy"`
	Place              int     `json:"place"`
}

// Ranked reports whether a place has been assigned.
func (r StatRecord) Ranked() bool {
	return r.Place != Unranked
}

// KDRatio divides kills by deaths, counting zero deaths as one.
func (r StatRecord) KDRatio() float64 {
	deaths := r.Deaths
	if deaths == 0 {
		deaths = 1
	}
	return r.Kills / deaths
}

// ScorePerKill divides score by kills, counting zero kills as one.
func (r StatRecord) ScorePerKill() float64 {
	kills := r.Kills
	if kills == 0 {
		kills = 1
	}
	return r.Score / kills
}

// NameKey is the lookup key for player names: trimmed and lower-cased.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ModeSnapshot is the immutable ranking of one mode.
type ModeSnapshot struct {
	Name      string
	Technical string
	Ranked    []StatRecord
	byName    map[string]int
}

// NewModeSnapshot indexes records that are already sorted by place.
func NewModeSnapshot(name, technical string, ranked []StatRecord) *ModeSnapshot {
	byName := make(map[string]int, len(ranked))
	for i, rec := range ranked {
		key := NameKey(rec.Name)
		if _, dup := byName[key]; !dup {
			byName[key] = i
		}
	}
	return &ModeSnapshot{
		Name:      name,
		Technical: technical,
		Ranked:    ranked,
		byName:    byName,
	}
}

// Lookup finds a player by name, ignoring case and surrounding whitespace.
func (m *ModeSnapshot) Lookup(name string) (StatRecord, bool) {
	key := NameKey(name)
	if key == "" {
		return StatRecord{}, false
	}
	i, ok := m.byName[key]
	if !ok {
		return StatRecord{}, false
	}
	return m.Ranked[i], true
}

// Len returns the number of ranked players.
func (m *ModeSnapshot) Len() int {
	return len(m.Ranked)
}

// Snapshot is one complete aggregation cycle across all modes.
// It is never modified after it has been published to the cache.
type Snapshot struct {
	Modes     map[string]*ModeSnapshot
	Players   []string
	UpdatedAt time.Time
}

// ModeNames returns the display names of all modes in sorted order.
func (s *Snapshot) ModeNames() []string {
	names := make([]string, 0, len(s.Modes))
	for name := range s.Modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlayersWithPrefix returns at most limit known players whose name starts
// with prefix, compared case-insensitively.
func (s *Snapshot) PlayersWithPrefix(prefix string, limit int) []string {
	prefix = strings.ToLower(prefix)
	out := make([]string, 0, limit)
	for _, p := range s.Players {
		if len(out) >= limit {
			break
		}
		if strings.HasPrefix(strings.ToLower(p), prefix) {
			out = append(out, p)
		}
	}
	return out
}

// ModeDisplayName turns a store identifier into a title, dropping prefix.
// e.g. "ctf_mode_nade_fight" with prefix "ctf_mode_" -> "Nade Fight"
func ModeDisplayName(technical, prefix string) string {
	trimmed := strings.TrimPrefix(technical, prefix)
	if trimmed == "" {
		trimmed = technical
	}
	words := strings.Split(trimmed, "_")
	out := words[:0]
	for _, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		out = append(out, string(unicode.ToTitle(r))+w[size:])
	}
	return strings.Join(out, " ")
}
