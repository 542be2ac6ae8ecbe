package sim

import "github.com/matthewkirk009-hue/baseball-sim/internal/models"

// Base slots are indexed 0=1st, 1=2nd, 2=3rd. A slot holds the runner's
// player id, never a shared struct: a runner is removed from its slot
// before being placed on a new one or scored.

// advanceRunners applies a walk or hit to the base state, moving runners,
// crediting runs and RBIs, and placing the batter. It returns the number
// of runs scored on the play.
func (g *Game) advanceRunners(outcome Outcome, batter *models.Player) int {
	runs := 0
	score := func(runnerID string, creditRBI bool) {
		g.Box.Line(runnerID).Runs++
		if creditRBI {
			g.Box.Line(batter.ID).RBI++
		}
		runs++
	}

	switch outcome {
	case OutcomeWalk:
		// Classic force logic: runners move only when pushed.
		if g.Bases[0] != "" {
			if g.Bases[1] != "" {
				if g.Bases[2] != "" {
					score(g.Bases[2], true)
					g.Bases[2] = ""
				}
				g.Bases[2] = g.Bases[1]
				g.Bases[1] = ""
			}
			g.Bases[1] = g.Bases[0]
			g.Bases[0] = ""
		}
		g.Bases[0] = batter.ID

	case OutcomeSingle:
		if g.Bases[2] != "" {
			score(g.Bases[2], true)
			g.Bases[2] = ""
		}
		if g.Bases[1] != "" {
			g.Bases[2] = g.Bases[1]
			g.Bases[1] = ""
		}
		if g.Bases[0] != "" {
			g.Bases[1] = g.Bases[0]
			g.Bases[0] = ""
		}
		g.Bases[0] = batter.ID

	case OutcomeDouble:
		if g.Bases[2] != "" {
			score(g.Bases[2], true)
			g.Bases[2] = ""
		}
		if g.Bases[1] != "" {
			score(g.Bases[1], true)
			g.Bases[1] = ""
		}
		if g.Bases[0] != "" {
			g.Bases[2] = g.Bases[0]
			g.Bases[0] = ""
		}
		g.Bases[1] = batter.ID

	case OutcomeTriple:
		for i := 2; i >= 0; i-- {
			if g.Bases[i] != "" {
				score(g.Bases[i], true)
				g.Bases[i] = ""
			}
		}
		g.Bases[2] = batter.ID

	case OutcomeHomeRun:
		for i := 2; i >= 0; i-- {
			if g.Bases[i] != "" {
				score(g.Bases[i], true)
				g.Bases[i] = ""
			}
		}
		// The batter scores themself and still earns the RBI.
		score(batter.ID, true)
	}

	g.creditRuns(runs)
	return runs
}

// advanceOnError places the batter on first after a fielding error.
// Runners on 2nd then 1st each take an extra base with independent 55%
// chance when the base ahead is open; anyone still in the batter's path
// is then forced forward walk-style. Runs scored this way credit the
// runner but no RBI and no hit.
func (g *Game) advanceOnError(batter *models.Player) int {
	runs := 0

	if g.Bases[1] != "" && g.Bases[2] == "" && chance(g.rng, 0.55) {
		g.Bases[2] = g.Bases[1]
		g.Bases[1] = ""
	}
	if g.Bases[0] != "" && g.Bases[1] == "" && chance(g.rng, 0.55) {
		g.Bases[1] = g.Bases[0]
		g.Bases[0] = ""
	}

	// Force chain for the batter taking first.
	if g.Bases[0] != "" {
		if g.Bases[1] != "" {
			if g.Bases[2] != "" {
				g.Box.Line(g.Bases[2]).Runs++
				runs++
				g.Bases[2] = ""
			}
			g.Bases[2] = g.Bases[1]
			g.Bases[1] = ""
		}
		g.Bases[1] = g.Bases[0]
		g.Bases[0] = ""
	}
	g.Bases[0] = batter.ID

	g.creditRuns(runs)
	return runs
}
