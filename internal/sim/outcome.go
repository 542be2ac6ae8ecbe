package sim

import (
	"math/rand"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

// Outcome is the result of a single plate appearance.
type Outcome int

const (
	OutcomeWalk Outcome = iota
	OutcomeStrikeout
	OutcomeOut
	OutcomeSingle
	OutcomeDouble
	OutcomeTriple
	OutcomeHomeRun
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWalk:
		return "walk"
	case OutcomeStrikeout:
		return "strikeout"
	case OutcomeOut:
		return "out"
	case OutcomeSingle:
		return "single"
	case OutcomeDouble:
		return "double"
	case OutcomeTriple:
		return "triple"
	case OutcomeHomeRun:
		return "home run"
	default:
		return "unknown"
	}
}

// IsHit reports whether the outcome counts as a base hit.
func (o Outcome) IsHit() bool {
	switch o {
	case OutcomeSingle, OutcomeDouble, OutcomeTriple, OutcomeHomeRun:
		return true
	}
	return false
}

// Resolver computes plate-appearance outcomes via weighted random draws
// over the batter's and pitcher's attributes. All randomness flows
// through the injected source, so a fixed seed replays identically.
type Resolver struct {
	rng *rand.Rand
}

// NewResolver creates a resolver around the given random source.
func NewResolver(rng *rand.Rand) *Resolver {
	return &Resolver{rng: rng}
}

// primaryWeights returns the walk / strikeout / in-play weights for a
// batter-pitcher matchup. All three are non-negative.
func primaryWeights(pitFrac float64) (walk, strikeout, inPlay float64) {
	walk = clamp01(0.05 + (1-pitFrac)*0.07)
	strikeout = clamp01(0.10 + pitFrac*0.18)
	inPlay = clamp01(1 - walk - strikeout)
	return
}

// contactRating blends the batter's hit tool against the pitcher.
func contactRating(hitFrac, pitFrac float64) float64 {
	return clamp01(hitFrac*(1-pitFrac*0.70) + (hitFrac-0.50)*0.20)
}

// inPlayWeights returns the five ball-in-play weights, ordered
// OUT / SINGLE / DOUBLE / TRIPLE / HOME_RUN. Negative weights are left
// to the draw primitive to clamp.
func inPlayWeights(contact, pwrFrac, spdFrac, defFactor float64) [5]float64 {
	return [5]float64{
		(1 - contact) * 1.15 * defFactor,
		contact * (0.62 - pwrFrac*0.18) / defFactor,
		contact * (0.22 + pwrFrac*0.08) / defFactor,
		contact * (0.03 + spdFrac*0.03) / defFactor,
		contact * (0.05 + pwrFrac*0.22) / defFactor,
	}
}

var inPlayOutcomes = [5]Outcome{OutcomeOut, OutcomeSingle, OutcomeDouble, OutcomeTriple, OutcomeHomeRun}

// Resolve computes the outcome of one plate appearance. It never fails;
// missing attributes default to the neutral rating.
func (r *Resolver) Resolve(batter, pitcher *models.Player, defense *models.Team) Outcome {
	hit := attrFrac(batter.Attrs.Hit)
	pwr := attrFrac(batter.Attrs.Pwr)
	spd := attrFrac(batter.Attrs.Spd)
	pit := attrFrac(neutralRating)
	if pitcher != nil {
		pit = attrFrac(pitcher.Attrs.Pit)
	}

	walk, strikeout, inPlay := primaryWeights(pit)
	switch weightedIndex(r.rng, []float64{walk, strikeout, inPlay}) {
	case 0:
		return OutcomeWalk
	case 1:
		return OutcomeStrikeout
	}

	contact := contactRating(hit, pit)
	factor := defenseFactor(defenseQuality(defense))
	weights := inPlayWeights(contact, pwr, spd, factor)
	return inPlayOutcomes[weightedIndex(r.rng, weights[:])]
}
