package dal

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

func newTestSQLiteDAL(t *testing.T) *SQLiteDAL {
	t.Helper()
	d, err := NewSQLiteDAL(filepath.Join(t.TempDir(), "league.db"))
	if err != nil {
		t.Fatalf("NewSQLiteDAL: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSQLiteDALSeedAndState(t *testing.T) {
	d := newTestSQLiteDAL(t)

	state, err := d.GetState()
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if len(state.Teams) != 4 {
		t.Fatalf("seeded league has %d teams, want 4", len(state.Teams))
	}
	for _, team := range state.Teams {
		if len(team.Players) == 0 {
			t.Errorf("team %s loaded with no players", team.Name)
		}
	}
}

func TestSQLiteDALRosterOrderStable(t *testing.T) {
	d := newTestSQLiteDAL(t)
	team, err := d.AddTeam("Order Test", "", "")
	if err != nil {
		t.Fatalf("AddTeam: %v", err)
	}

	names := []string{"First Up", "Second Up", "Third Up"}
	for _, name := range names {
		if _, err := d.AddPlayer(team.ID, &models.Player{Name: name}); err != nil {
			t.Fatalf("AddPlayer(%s): %v", name, err)
		}
	}

	state, err := d.GetState()
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	for _, tm := range state.Teams {
		if tm.ID != team.ID {
			continue
		}
		if len(tm.Players) != 3 {
			t.Fatalf("roster has %d players, want 3", len(tm.Players))
		}
		for i, name := range names {
			if tm.Players[i].Name != name {
				t.Errorf("lineup slot %d = %s, want %s", i, tm.Players[i].Name, name)
			}
		}
		return
	}
	t.Fatal("added team missing from state")
}

func TestSQLiteDALPlayerRoundTrip(t *testing.T) {
	d := newTestSQLiteDAL(t)
	team, _ := d.AddTeam("Round Trip", "", "")

	in := &models.Player{
		Name:      "Ace Holloway",
		Position:  "P",
		IsPitcher: true,
		IsStar:    true,
		Attrs:     models.Attributes{Hit: 22, Pwr: 18, Spd: 40, Def: 61, Arm: 75, Pit: 88},
	}
	added, err := d.AddPlayer(team.ID, in)
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}

	state, _ := d.GetState()
	for _, tm := range state.Teams {
		if tm.ID != team.ID {
			continue
		}
		p := tm.Players[0]
		if p.ID != added.ID || !p.IsPitcher || !p.IsStar || p.Attrs.Pit != 88 {
			t.Errorf("player did not round-trip: %+v", p)
		}
		return
	}
	t.Fatal("team missing from state")
}

func TestSQLiteDALDeleteTeamRemovesRoster(t *testing.T) {
	d := newTestSQLiteDAL(t)
	team, _ := d.AddTeam("Doomed", "", "")
	d.AddPlayer(team.ID, &models.Player{Name: "Gone Soon"})

	if err := d.DeleteTeam(team.ID); err != nil {
		t.Fatalf("DeleteTeam: %v", err)
	}
	if _, err := d.AddPlayer(team.ID, &models.Player{Name: "Orphan"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound adding to deleted team, got %v", err)
	}
}

func TestSQLiteDALSeasonUpsert(t *testing.T) {
	d := newTestSQLiteDAL(t)

	if err := d.SaveSeason("s1", "Alpha", []byte(`{"cursor":0}`)); err != nil {
		t.Fatalf("SaveSeason: %v", err)
	}
	if err := d.SaveSeason("s1", "Alpha", []byte(`{"cursor":5}`)); err != nil {
		t.Fatalf("SaveSeason upsert: %v", err)
	}

	data, err := d.LoadSeason("s1")
	if err != nil {
		t.Fatalf("LoadSeason: %v", err)
	}
	if string(data) != `{"cursor":5}` {
		t.Errorf("loaded %q, want updated blob", data)
	}

	infos, err := d.ListSeasons()
	if err != nil {
		t.Fatalf("ListSeasons: %v", err)
	}
	if len(infos) != 1 {
		t.Errorf("upsert produced %d rows, want 1", len(infos))
	}
}
