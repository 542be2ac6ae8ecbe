package sim

import (
	"errors"
	"fmt"
	"testing"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

// defaultRoster builds a 9-man lineup plus one flagged pitcher, all at the
// given rating, with ids prefixed so two teams never collide.
func defaultRoster(prefix string, rating int) []models.Player {
	players := make([]models.Player, 0, 10)
	for i := 0; i < 9; i++ {
		players = append(players, testPlayer(
			fmt.Sprintf("%s-b%d", prefix, i),
			rating, rating, rating, rating, rating, 0, false))
	}
	players = append(players, testPlayer(prefix+"-p", 30, 30, 30, rating, rating, rating, true))
	return players
}

func newTestGame(t *testing.T, seed int64) *Game {
	t.Helper()
	home := testTeam("home", defaultRoster("h", 60)...)
	away := testTeam("away", defaultRoster("a", 55)...)
	g, err := NewGame(home, away, NewRand(seed))
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	return g
}

func TestNewGameRejectsSmallRoster(t *testing.T) {
	home := testTeam("home", testPlayer("only", 50, 50, 50, 50, 50, 50, false))
	away := testTeam("away", defaultRoster("a", 50)...)

	if _, err := NewGame(home, away, NewRand(1)); !errors.Is(err, ErrInvalidSetup) {
		t.Errorf("expected ErrInvalidSetup, got %v", err)
	}
	if _, err := NewGame(nil, away, NewRand(1)); !errors.Is(err, ErrUnknownTeam) {
		t.Errorf("expected ErrUnknownTeam for nil team, got %v", err)
	}
}

func TestStartingPitcherPrefersFlaggedPitchers(t *testing.T) {
	team := testTeam("t",
		testPlayer("ace-bat", 90, 90, 90, 90, 90, 95, false),
		testPlayer("weak-arm", 40, 40, 40, 40, 40, 55, true),
		testPlayer("closer", 40, 40, 40, 40, 40, 70, true),
	)
	if p := startingPitcher(team); p.ID != "closer" {
		t.Errorf("expected flagged pitcher with best PIT, got %s", p.ID)
	}

	noPitchers := testTeam("t2",
		testPlayer("x", 50, 50, 50, 50, 50, 40, false),
		testPlayer("y", 50, 50, 50, 50, 50, 65, false),
	)
	if p := startingPitcher(noPitchers); p.ID != "y" {
		t.Errorf("expected highest PIT fallback, got %s", p.ID)
	}
}

func TestWalkWithBasesLoadedScoresExactlyOne(t *testing.T) {
	g := newTestGame(t, 1)
	g.Bases = [3]string{"r1", "r2", "r3"}
	batter := &g.Away.Players[0]

	runs := g.advanceRunners(OutcomeWalk, batter)

	if runs != 1 {
		t.Fatalf("bases-loaded walk scored %d runs, want 1", runs)
	}
	want := [3]string{batter.ID, "r1", "r2"}
	if g.Bases != want {
		t.Errorf("bases after walk = %v, want %v", g.Bases, want)
	}
	if g.AwayScore != 1 {
		t.Errorf("away score = %d, want 1", g.AwayScore)
	}
	if g.Box.Line("r3").Runs != 1 {
		t.Errorf("runner from third not credited a run")
	}
	if g.Box.Line(batter.ID).RBI != 1 {
		t.Errorf("batter not credited the RBI")
	}
}

func TestWalkWithOpenFirstDoesNotMoveRunners(t *testing.T) {
	g := newTestGame(t, 1)
	g.Bases = [3]string{"", "r2", "r3"}
	batter := &g.Away.Players[0]

	if runs := g.advanceRunners(OutcomeWalk, batter); runs != 0 {
		t.Fatalf("unforced walk scored %d runs, want 0", runs)
	}
	want := [3]string{batter.ID, "r2", "r3"}
	if g.Bases != want {
		t.Errorf("bases after walk = %v, want %v", g.Bases, want)
	}
}

func TestGrandSlamScoresFourAndClearsBases(t *testing.T) {
	g := newTestGame(t, 1)
	g.Bases = [3]string{"r1", "r2", "r3"}
	batter := &g.Away.Players[0]

	runs := g.advanceRunners(OutcomeHomeRun, batter)

	if runs != 4 {
		t.Fatalf("grand slam scored %d runs, want 4", runs)
	}
	if g.Bases != [3]string{} {
		t.Errorf("bases not cleared after home run: %v", g.Bases)
	}
	if g.Box.Line(batter.ID).RBI != 4 {
		t.Errorf("batter RBI = %d, want 4", g.Box.Line(batter.ID).RBI)
	}
	if g.Box.Line(batter.ID).Runs != 1 {
		t.Errorf("batter should score themself on a home run")
	}
}

func TestDoubleScoresRunnerFromSecond(t *testing.T) {
	g := newTestGame(t, 1)
	g.Bases = [3]string{"", "r2", ""}
	batter := &g.Away.Players[0]

	runs := g.advanceRunners(OutcomeDouble, batter)

	if runs != 1 {
		t.Fatalf("double with runner on second scored %d, want 1", runs)
	}
	want := [3]string{"", batter.ID, ""}
	if g.Bases != want {
		t.Errorf("bases after double = %v, want %v", g.Bases, want)
	}
}

func TestSingleAdvancesEachRunnerOneBase(t *testing.T) {
	g := newTestGame(t, 1)
	g.Bases = [3]string{"r1", "", "r3"}
	batter := &g.Away.Players[0]

	runs := g.advanceRunners(OutcomeSingle, batter)

	if runs != 1 {
		t.Fatalf("single scored %d, want 1 (runner from third)", runs)
	}
	want := [3]string{batter.ID, "r1", ""}
	if g.Bases != want {
		t.Errorf("bases after single = %v, want %v", g.Bases, want)
	}
}

func TestThirdOutResetsHalfInningAtomically(t *testing.T) {
	g := newTestGame(t, 1)
	g.Bases = [3]string{"r1", "r2", ""}
	g.Outs = 2

	g.recordOut(1)
	g.endHalfInningIfNeeded()

	if g.Outs != 0 {
		t.Errorf("outs = %d after reset, want 0", g.Outs)
	}
	if g.Bases != [3]string{} {
		t.Errorf("bases not cleared on half-inning flip: %v", g.Bases)
	}
	if g.TopHalf {
		t.Error("expected bottom half after top-half third out")
	}
	if g.Inning != 1 {
		t.Errorf("inning advanced too early: %d", g.Inning)
	}

	// Bottom-half third out rolls to the top of the next inning.
	g.Outs = 3
	g.endHalfInningIfNeeded()
	if !g.TopHalf || g.Inning != 2 {
		t.Errorf("expected top of 2nd, got inning=%d top=%v", g.Inning, g.TopHalf)
	}
}

func TestOutsInvariantHoldsForFullGame(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		g := newTestGame(t, seed)
		plays := 0
		for !g.Over() {
			if g.Outs < 0 || g.Outs > 2 {
				t.Fatalf("seed %d: outs = %d outside [0,2] between plays", seed, g.Outs)
			}
			if _, err := g.AdvanceOnePlay(); err != nil {
				t.Fatalf("seed %d: AdvanceOnePlay: %v", seed, err)
			}
			if plays++; plays > 5000 {
				t.Fatalf("seed %d: game did not terminate", seed)
			}
		}
		if g.Inning > maxInnings+1 {
			t.Errorf("seed %d: game ran past the hard cap, inning=%d", seed, g.Inning)
		}
	}
}

func TestAdvanceOnePlayAfterGameOver(t *testing.T) {
	g := newTestGame(t, 9)
	if _, err := g.PlayToCompletion(); err != nil {
		t.Fatalf("PlayToCompletion: %v", err)
	}
	if _, err := g.AdvanceOnePlay(); !errors.Is(err, ErrGameOver) {
		t.Errorf("expected ErrGameOver, got %v", err)
	}
}

func TestPlayHalfInningStopsAtBoundary(t *testing.T) {
	g := newTestGame(t, 4)
	events, err := g.PlayHalfInning()
	if err != nil {
		t.Fatalf("PlayHalfInning: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected at least one play in the half inning")
	}
	if g.TopHalf || g.Inning != 1 {
		t.Errorf("expected bottom of 1st after one half, got inning=%d top=%v", g.Inning, g.TopHalf)
	}
	for _, ev := range events {
		if ev.Inning != 1 || !ev.TopHalf {
			t.Errorf("event reports inning=%d top=%v, want top of 1st", ev.Inning, ev.TopHalf)
		}
	}
}

func TestNextBatterSkipsPitchersAndCycles(t *testing.T) {
	g := newTestGame(t, 1)

	seen := map[string]int{}
	for i := 0; i < 18; i++ {
		p := g.nextBatter()
		if p.IsPitcher {
			t.Fatalf("lineup served the pitcher %s", p.ID)
		}
		seen[p.ID]++
	}
	for id, n := range seen {
		if n != 2 {
			t.Errorf("batter %s appeared %d times over two full cycles, want 2", id, n)
		}
	}
}

func TestRunsChargedToFieldingPitcher(t *testing.T) {
	g := newTestGame(t, 1)
	g.Bases = [3]string{"", "", "r3"}
	batter := &g.Away.Players[0]

	g.advanceRunners(OutcomeSingle, batter)

	if got := g.Box.Line(g.HomePitcher.ID).EarnedRuns; got != 1 {
		t.Errorf("home pitcher charged %d earned runs, want 1", got)
	}
}

func TestBoxScoreBalancesTeamScores(t *testing.T) {
	g := newTestGame(t, 31)
	if _, err := g.PlayToCompletion(); err != nil {
		t.Fatalf("PlayToCompletion: %v", err)
	}

	runs := 0
	for _, line := range g.Box {
		runs += line.Runs
	}
	if runs != g.HomeScore+g.AwayScore {
		t.Errorf("box score runs %d != scoreboard total %d", runs, g.HomeScore+g.AwayScore)
	}

	earned := 0
	for _, line := range g.Box {
		earned += line.EarnedRuns
	}
	if earned != g.HomeScore+g.AwayScore {
		t.Errorf("earned runs %d != scoreboard total %d", earned, g.HomeScore+g.AwayScore)
	}
}
