package logic

import "github.com/mt-ctf/rankings-bot/internal/models"

// Normalize builds a StatRecord from raw store values keyed by counter name.
// Missing, nil or non-numeric values become 0; Place is left Unranked.
func Normalize(name string, raw map[string]any) models.StatRecord {
	get := func(key string) float64 {
		v, ok := raw[key]
		if !ok {
			return 0
		}
		n, ok := models.ParseNumber(v)
		if !ok {
			return 0
		}
		return n
	}

	return models.StatRecord{
		Name:               name,
		Score:              get(models.CounterScore),
		Kills:              get(models.CounterKills),
		Deaths:             get(models.CounterDeaths),
		BountyKills:        get(models.CounterBountyKills),
		FlagCaptures:       get(models.CounterFlagCaptures),
		FlagAttempts:       get(models.CounterFlagAttempts),
		HPHealed:           get(models.CounterHPHealed),
		KillAssists:        get(models.CounterKillAssists),
		RewardGivenToEnemy: get(models.CounterRewardGivenToEnemy),
		Place:              models.Unranked,
	}
}
