package logic

import (
	"strings"

	"github.com/mt-ctf/rankings-bot/internal/models"
)

// Identity carries the names a rank lookup can be resolved from.
// Explicit disables every fallback when set.
type Identity struct {
	Explicit   string
	Nickname   string
	GlobalName string
	Username   string
}

// Match is one player's record in one mode.
type Match struct {
	Record models.StatRecord
	Mode   string
}

// Resolution is the result of a lookup; Matches is ordered by mode name.
type Resolution struct {
	Matches []Match
	// Name is the in-game name of the first match, or the first identity tried.
	Name string
}

// Found reports whether any mode matched.
func (r Resolution) Found() bool {
	return len(r.Matches) > 0
}

// BestPlace returns the lowest place across all matches.
func (r Resolution) BestPlace() int {
	best := models.Unranked
	for _, m := range r.Matches {
		if m.Record.Place < best {
			best = m.Record.Place
		}
	}
	return best
}

// candidates returns the distinct non-blank identities in lookup order.
func (q Identity) candidates() []string {
	if strings.TrimSpace(q.Explicit) != "" {
		return []string{strings.TrimSpace(q.Explicit)}
	}

	var out []string
	seen := make(map[string]struct{}, 3)
	for _, name := range []string{q.Nickname, q.GlobalName, q.Username} {
		name = strings.TrimSpace(name)
		key := models.NameKey(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Resolve finds a player's records in every mode of the snapshot.
// Each mode independently takes the first identity that has a record there.
func Resolve(snap *models.Snapshot, q Identity) Resolution {
	names := q.candidates()
	res := Resolution{}
	if len(names) > 0 {
		res.Name = names[0]
	}
	if snap == nil {
		return res
	}

	for _, modeName := range snap.ModeNames() {
		mode := snap.Modes[modeName]
		for _, name := range names {
			if rec, ok := mode.Lookup(name); ok {
				res.Matches = append(res.Matches, Match{Record: rec, Mode: modeName})
				break
			}
		}
	}

	if len(res.Matches) > 0 {
		res.Name = res.Matches[0].Record.Name
	}
	return res
}

// NotFoundMessage describes a failed lookup, naming each distinct identity once.
// The global name is only mentioned next to a guild nickname.
func NotFoundMessage(q Identity) string {
	if strings.TrimSpace(q.Nickname) == "" {
		q.GlobalName = ""
	}
	names := q.candidates()
	if strings.TrimSpace(q.Explicit) != "" {
		return "Unable to find " + names[0] + "."
	}

	var list string
	switch len(names) {
	case 0:
		return "Unable to find you, please provide username explicitly."
	case 1:
		list = names[0]
	default:
		list = strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
	}
	return "Unable to find " + list + ", please provide username explicitly."
}
