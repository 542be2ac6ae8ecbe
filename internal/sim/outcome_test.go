package sim

import (
	"testing"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

func testPlayer(id string, hit, pwr, spd, def, arm, pit int, pitcher bool) models.Player {
	return models.Player{
		ID:        id,
		Name:      "Player " + id,
		IsPitcher: pitcher,
		Attrs:     models.Attributes{Hit: hit, Pwr: pwr, Spd: spd, Def: def, Arm: arm, Pit: pit},
	}
}

func testTeam(id string, players ...models.Player) *models.Team {
	return &models.Team{ID: id, Name: "Team " + id, Players: players}
}

func TestPrimaryWeightsNonNegative(t *testing.T) {
	for _, pit := range []float64{0, 0.25, 0.5, 0.75, 1} {
		walk, strikeout, inPlay := primaryWeights(pit)
		if walk < 0 || strikeout < 0 || inPlay < 0 {
			t.Errorf("pit=%v: negative primary weight (%v, %v, %v)", pit, walk, strikeout, inPlay)
		}
	}
}

func TestInPlayWeightsNonNegativeAfterClamp(t *testing.T) {
	rng := NewRand(5)
	// Extreme power makes the raw single weight negative; the draw must
	// still return a valid outcome.
	weights := inPlayWeights(1.0, 1.0, 1.0, 0.85)
	for i := 0; i < 1000; i++ {
		idx := weightedIndex(rng, weights[:])
		if idx < 0 || idx >= len(inPlayOutcomes) {
			t.Fatalf("draw returned invalid index %d", idx)
		}
	}
}

func TestResolveAlwaysReturnsMember(t *testing.T) {
	rng := NewRand(11)
	r := NewResolver(rng)
	batter := testPlayer("b", 70, 60, 50, 50, 50, 0, false)
	pitcher := testPlayer("p", 20, 20, 20, 40, 60, 80, true)
	defense := testTeam("d", pitcher)

	valid := map[Outcome]bool{
		OutcomeWalk: true, OutcomeStrikeout: true, OutcomeOut: true,
		OutcomeSingle: true, OutcomeDouble: true, OutcomeTriple: true, OutcomeHomeRun: true,
	}
	for i := 0; i < 5000; i++ {
		if o := r.Resolve(&batter, &pitcher, defense); !valid[o] {
			t.Fatalf("Resolve returned invalid outcome %d", o)
		}
	}
}

func TestResolveDefaultsMissingAttributes(t *testing.T) {
	rng := NewRand(3)
	r := NewResolver(rng)
	batter := models.Player{ID: "empty"}

	// Must never fail even with zero-value records and nil collaborators.
	for i := 0; i < 100; i++ {
		r.Resolve(&batter, nil, nil)
	}
}

func TestEliteBatterCrushesWeakPitcher(t *testing.T) {
	// HIT=90 PWR=80 SPD=70 vs PIT=20: contact should be near the top of
	// [0,1] and extra-base weight share should dwarf the out share.
	hit, pwr, spd := attrFrac(90), attrFrac(80), attrFrac(70)
	pit := attrFrac(20)

	contact := contactRating(hit, pit)
	if contact < 0.8 {
		t.Errorf("expected contact near top of range, got %v", contact)
	}

	factor := defenseFactor(attrFrac(50))
	weights := inPlayWeights(contact, pwr, spd, factor)

	outShare := weights[0]
	power := weights[2] + weights[3] + weights[4] // double+triple+HR
	if power <= outShare {
		t.Errorf("expected extra-base weight (%v) to exceed out weight (%v)", power, outShare)
	}

	// Statistical check over a large sample: hits should clearly
	// outnumber in-play outs for this matchup.
	rng := NewRand(21)
	r := NewResolver(rng)
	batter := testPlayer("b", 90, 80, 70, 50, 50, 0, false)
	pitcher := testPlayer("p", 50, 50, 50, 50, 50, 20, true)
	defense := testTeam("d", pitcher)

	hits, outs := 0, 0
	for i := 0; i < 20000; i++ {
		switch o := r.Resolve(&batter, &pitcher, defense); {
		case o.IsHit():
			hits++
		case o == OutcomeOut:
			outs++
		}
	}
	if hits <= outs {
		t.Errorf("elite batter should out-hit outs: hits=%d outs=%d", hits, outs)
	}
}

func TestDefenseFactorRange(t *testing.T) {
	for _, q := range []float64{-1, 0, 0.5, 1, 2} {
		f := defenseFactor(q)
		if f < 0.85 || f > 1.15 {
			t.Errorf("defenseFactor(%v) = %v outside [0.85, 1.15]", q, f)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		OutcomeWalk:      "walk",
		OutcomeStrikeout: "strikeout",
		OutcomeOut:       "out",
		OutcomeSingle:    "single",
		OutcomeDouble:    "double",
		OutcomeTriple:    "triple",
		OutcomeHomeRun:   "home run",
	}
	for o, want := range cases {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", o, got, want)
		}
	}
}
