package logic

import (
	"testing"

	"github.com/mt-ctf/rankings-bot/internal/models"
)

func snapshotOf(modes map[string][]string) *models.Snapshot {
	snap := &models.Snapshot{Modes: make(map[string]*models.ModeSnapshot)}
	for mode, names := range modes {
		records := make([]models.StatRecord, len(names))
		for i, name := range names {
			records[i] = models.StatRecord{Name: name, Score: float64(100 - i), Place: i + 1}
		}
		snap.Modes[mode] = models.NewModeSnapshot(mode, mode, records)
	}
	return snap
}

func TestResolve_PrecedencePerMode(t *testing.T) {
	snap := snapshotOf(map[string][]string{
		"Classes":    {"Foo", "Bar", "Baz"},
		"Classic":    {"Bar", "Baz"},
		"Nade Fight": {"Baz"},
		"Other":      {"Nobody"},
	})

	res := Resolve(snap, Identity{Nickname: "foo", GlobalName: " Bar ", Username: "BAZ"})

	want := map[string]string{
		"Classes":    "Foo",
		"Classic":    "Bar",
		"Nade Fight": "Baz",
	}
	if len(res.Matches) != len(want) {
		t.Fatalf("got %d matches, want %d: %+v", len(res.Matches), len(want), res.Matches)
	}
	for _, m := range res.Matches {
		if want[m.Mode] != m.Record.Name {
			t.Errorf("mode %s resolved to %s, want %s", m.Mode, m.Record.Name, want[m.Mode])
		}
	}
	// ordered by mode name
	if res.Matches[0].Mode != "Classes" || res.Matches[2].Mode != "Nade Fight" {
		t.Errorf("matches not sorted by mode: %+v", res.Matches)
	}
	if res.Name != "Foo" {
		t.Errorf("Name = %q, want Foo", res.Name)
	}
	if res.BestPlace() != 1 {
		t.Errorf("BestPlace() = %d, want 1", res.BestPlace())
	}
}

func TestResolve_ExplicitNeverFallsBack(t *testing.T) {
	snap := snapshotOf(map[string][]string{"Classic": {"Account", "Nick"}})

	res := Resolve(snap, Identity{Explicit: "Zzz", Nickname: "Nick", Username: "Account"})
	if res.Found() {
		t.Errorf("explicit lookup fell back: %+v", res.Matches)
	}
	if res.Name != "Zzz" {
		t.Errorf("Name = %q, want Zzz", res.Name)
	}

	res = Resolve(snap, Identity{Explicit: "  nick  ", Username: "Account"})
	if len(res.Matches) != 1 || res.Matches[0].Record.Name != "Nick" {
		t.Errorf("explicit lookup = %+v", res.Matches)
	}
}

func TestResolve_NilSnapshot(t *testing.T) {
	res := Resolve(nil, Identity{Username: "x"})
	if res.Found() {
		t.Error("nil snapshot should not match")
	}
	if res.BestPlace() != models.Unranked {
		t.Errorf("BestPlace() = %d, want Unranked", res.BestPlace())
	}
}

func TestNotFoundMessage(t *testing.T) {
	tests := []struct {
		name string
		q    Identity
		want string
	}{
		{
			name: "explicit",
			q:    Identity{Explicit: " Zzz ", Nickname: "a", Username: "b"},
			want: "Unable to find Zzz.",
		},
		{
			name: "all distinct",
			q:    Identity{Nickname: "Nick", GlobalName: "Global", Username: "user"},
			want: "Unable to find Nick, Global or user, please provide username explicitly.",
		},
		{
			name: "global equals nickname",
			q:    Identity{Nickname: "Nick", GlobalName: "nick ", Username: "user"},
			want: "Unable to find Nick or user, please provide username explicitly.",
		},
		{
			name: "nickname equals username",
			q:    Identity{Nickname: "User", Username: "user"},
			want: "Unable to find User, please provide username explicitly.",
		},
		{
			name: "username only",
			q:    Identity{Username: "user"},
			want: "Unable to find user, please provide username explicitly.",
		},
		{
			name: "global without nickname",
			q:    Identity{GlobalName: "Global", Username: "user"},
			want: "Unable to find user, please provide username explicitly.",
		},
		{
			name: "blank nickname",
			q:    Identity{Nickname: "  ", GlobalName: "Global", Username: "user"},
			want: "Unable to find user, please provide username explicitly.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NotFoundMessage(tt.q); got != tt.want {
				t.Errorf("NotFoundMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
