package dal

import (
	"errors"
	"testing"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

func TestMemoryDALSeedsDefaultLeague(t *testing.T) {
	m := NewMemoryDAL()
	state, err := m.GetState()
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if len(state.Teams) != 4 {
		t.Fatalf("default league has %d teams, want 4", len(state.Teams))
	}
	for _, team := range state.Teams {
		if len(team.Players) < 9 {
			t.Errorf("team %s seeded with only %d players", team.Name, len(team.Players))
		}
		hasPitcher := false
		for _, p := range team.Players {
			if p.IsPitcher {
				hasPitcher = true
			}
		}
		if !hasPitcher {
			t.Errorf("team %s seeded without a pitcher", team.Name)
		}
	}
}

func TestMemoryDALGetStateReturnsCopies(t *testing.T) {
	m := NewMemoryDAL()
	state, _ := m.GetState()
	state.Teams[0].Name = "Mutated"
	state.Teams[0].Players[0].Name = "Mutated"

	fresh, _ := m.GetState()
	if fresh.Teams[0].Name == "Mutated" || fresh.Teams[0].Players[0].Name == "Mutated" {
		t.Error("GetState leaked internal state")
	}
}

func TestMemoryDALTeamCRUD(t *testing.T) {
	m := NewMemoryDAL()

	team, err := m.AddTeam("Wharf Rats", "Dockside", "Pier Nine")
	if err != nil {
		t.Fatalf("AddTeam: %v", err)
	}
	if team.ID == "" {
		t.Fatal("AddTeam did not assign an id")
	}
	if team.HomeAdvantage != 50 {
		t.Errorf("default home advantage = %d, want 50", team.HomeAdvantage)
	}

	team.Name = "River Rats"
	team.Stadium = "Pier Ten"
	updated, err := m.UpdateTeam(team)
	if err != nil {
		t.Fatalf("UpdateTeam: %v", err)
	}
	if updated.Name != "River Rats" || updated.Stadium != "Pier Ten" {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := m.DeleteTeam(team.ID); err != nil {
		t.Fatalf("DeleteTeam: %v", err)
	}
	if err := m.DeleteTeam(team.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestMemoryDALPlayerCRUD(t *testing.T) {
	m := NewMemoryDAL()
	team, _ := m.AddTeam("Testers", "", "")

	p, err := m.AddPlayer(team.ID, &models.Player{Name: "Rook Ellison", Position: "2B"})
	if err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if p.ID == "" {
		t.Fatal("AddPlayer did not assign an id")
	}
	// Zero attributes get rolled into a playable range.
	if p.Attrs.Hit < 30 || p.Attrs.Hit > 79 {
		t.Errorf("rolled HIT = %d outside [30,79]", p.Attrs.Hit)
	}

	p.Name = "Rook Ellison Jr"
	p.Attrs.Hit = 150 // clamps to 100
	if _, err := m.UpdatePlayer(team.ID, p); err != nil {
		t.Fatalf("UpdatePlayer: %v", err)
	}

	got, err := m.SetPlayerAttributes(team.ID, p.ID, models.Attributes{Hit: 120, Pwr: -5, Spd: 60, Def: 55, Arm: 50, Pit: 0})
	if err != nil {
		t.Fatalf("SetPlayerAttributes: %v", err)
	}
	if got.Attrs.Hit != 100 {
		t.Errorf("HIT = %d, want clamped 100", got.Attrs.Hit)
	}
	if got.Attrs.Pwr != 0 {
		t.Errorf("PWR = %d, want clamped 0", got.Attrs.Pwr)
	}

	if err := m.DeletePlayer(team.ID, p.ID); err != nil {
		t.Fatalf("DeletePlayer: %v", err)
	}
	if _, err := m.SetPlayerAttributes(team.ID, p.ID, models.Attributes{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for deleted player, got %v", err)
	}
}

func TestMemoryDALSeasonStorage(t *testing.T) {
	m := NewMemoryDAL()

	blob := []byte(`{"id":"s1","teamIds":["a","b"]}`)
	if err := m.SaveSeason("s1", "First Season", blob); err != nil {
		t.Fatalf("SaveSeason: %v", err)
	}

	got, err := m.LoadSeason("s1")
	if err != nil {
		t.Fatalf("LoadSeason: %v", err)
	}
	if string(got) != string(blob) {
		t.Errorf("loaded %q, want %q", got, blob)
	}

	if _, err := m.LoadSeason("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	infos, err := m.ListSeasons()
	if err != nil {
		t.Fatalf("ListSeasons: %v", err)
	}
	if len(infos) != 1 || infos[0].ID != "s1" || infos[0].Name != "First Season" {
		t.Errorf("unexpected listing: %+v", infos)
	}
}

func TestMemoryDALReset(t *testing.T) {
	m := NewMemoryDAL()
	m.AddTeam("Extra", "", "")
	m.SaveSeason("s1", "S", []byte(`{}`))

	if err := m.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	state, _ := m.GetState()
	if len(state.Teams) != 4 {
		t.Errorf("reset league has %d teams, want 4", len(state.Teams))
	}
	if infos, _ := m.ListSeasons(); len(infos) != 0 {
		t.Errorf("reset kept %d seasons", len(infos))
	}
}
