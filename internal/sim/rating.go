package sim

import (
	"sort"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

// neutralRating stands in for any attribute that was never set.
// A zero-value player simulates as a league-average one instead of
// failing.
const neutralRating = 50

// attrFrac normalizes a 0-100 attribute to a [0,1] fraction, defaulting
// missing (zero) values to the neutral rating.
func attrFrac(v int) float64 {
	if v == 0 {
		v = neutralRating
	}
	return float64(models.ClampRating(v)) / 100.0
}

// defenseQuality returns the average DEF of the defending team's best
// nine fielders (all players when the roster is shorter), as a [0,1]
// fraction.
func defenseQuality(team *models.Team) float64 {
	if team == nil || len(team.Players) == 0 {
		return attrFrac(neutralRating)
	}

	defs := make([]int, 0, len(team.Players))
	for i := range team.Players {
		d := team.Players[i].Attrs.Def
		if d == 0 {
			d = neutralRating
		}
		defs = append(defs, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(defs)))

	n := len(defs)
	if n > 9 {
		n = 9
	}
	sum := 0
	for _, d := range defs[:n] {
		sum += d
	}
	return float64(sum) / float64(n) / 100.0
}

// defenseFactor maps defense quality onto [0.85, 1.15]. Better defense
// yields a larger factor, which suppresses offense in the in-play table.
func defenseFactor(quality float64) float64 {
	return clamp(0.85+clamp01(quality)*0.30, 0.85, 1.15)
}
