package sim

import (
	"fmt"
	"math/rand"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

const (
	regulationInnings = 9
	// Hard safety cutoff: no play happens past this inning, tied or not.
	maxInnings = 14

	minRosterSize = 2
)

// Highlight points the UI at a player worth showcasing after a play.
type Highlight struct {
	PlayerID string `json:"playerId"`
	Caption  string `json:"caption"`
}

// PlayEvent describes one resolved play. The description is presentation
// only; the outcome and stat deltas are the contract.
type PlayEvent struct {
	Kind        string     `json:"kind"` // plate | steal | caught-stealing | double-play | error
	Description string     `json:"description"`
	Outcome     string     `json:"outcome,omitempty"`
	BatterID    string     `json:"batterId,omitempty"`
	RunnerID    string     `json:"runnerId,omitempty"`
	Runs        int        `json:"runs"`
	Inning      int        `json:"inning"`
	TopHalf     bool       `json:"topHalf"`
	Outs        int        `json:"outs"`
	HomeScore   int        `json:"homeScore"`
	AwayScore   int        `json:"awayScore"`
	Highlight   *Highlight `json:"highlight,omitempty"`
}

// Game is one simulated contest. It is a plain value object owned by the
// single call path driving it; no ambient state, no locking.
type Game struct {
	Home *models.Team
	Away *models.Team

	HomePitcher *models.Player
	AwayPitcher *models.Player

	Inning  int
	TopHalf bool // away bats in the top half
	Outs    int

	HomeScore int
	AwayScore int

	// Bases holds batting-side runner ids, 0=1st 1=2nd 2=3rd, "" empty.
	Bases [3]string

	HomeErrors int
	AwayErrors int

	Box BoxScore

	rng        *rand.Rand
	resolver   *Resolver
	homeCursor int
	awayCursor int
	players    map[string]*models.Player
}

// NewGame validates both rosters and constructs a game ready for the top
// of the 1st. The starting pitcher per side is the highest PIT among
// flagged pitchers, falling back to the highest PIT overall; ties go to
// the first encountered.
func NewGame(home, away *models.Team, rng *rand.Rand) (*Game, error) {
	if home == nil || away == nil {
		return nil, ErrUnknownTeam
	}
	if len(home.Players) < minRosterSize || len(away.Players) < minRosterSize {
		return nil, fmt.Errorf("%w: %s has %d, %s has %d",
			ErrInvalidSetup, home.Name, len(home.Players), away.Name, len(away.Players))
	}

	g := &Game{
		Home:        home,
		Away:        away,
		HomePitcher: startingPitcher(home),
		AwayPitcher: startingPitcher(away),
		Inning:      1,
		TopHalf:     true,
		Box:         BoxScore{},
		rng:         rng,
		resolver:    NewResolver(rng),
		players:     map[string]*models.Player{},
	}
	for i := range home.Players {
		g.players[home.Players[i].ID] = &home.Players[i]
	}
	for i := range away.Players {
		g.players[away.Players[i].ID] = &away.Players[i]
	}
	return g, nil
}

// startingPitcher picks the highest PIT among flagged pitchers, else the
// highest PIT overall. First encountered wins ties.
func startingPitcher(team *models.Team) *models.Player {
	var best *models.Player
	for i := range team.Players {
		p := &team.Players[i]
		if !p.IsPitcher {
			continue
		}
		if best == nil || p.Attrs.Pit > best.Attrs.Pit {
			best = p
		}
	}
	if best != nil {
		return best
	}
	for i := range team.Players {
		p := &team.Players[i]
		if best == nil || p.Attrs.Pit > best.Attrs.Pit {
			best = p
		}
	}
	return best
}

// Over reports whether the game has ended: regulation complete with a
// winner at a bottom-half boundary, or the hard inning cap reached.
func (g *Game) Over() bool {
	if g.Inning > maxInnings {
		return true
	}
	return g.Inning > regulationInnings && g.TopHalf && g.HomeScore != g.AwayScore
}

func (g *Game) battingTeam() *models.Team {
	if g.TopHalf {
		return g.Away
	}
	return g.Home
}

func (g *Game) fieldingTeam() *models.Team {
	if g.TopHalf {
		return g.Home
	}
	return g.Away
}

func (g *Game) fieldingPitcher() *models.Player {
	if g.TopHalf {
		return g.HomePitcher
	}
	return g.AwayPitcher
}

// creditRuns adds runs to the batting side's score and charges them to
// the defending pitcher. Earned runs are approximated as all runs
// allowed.
func (g *Game) creditRuns(runs int) {
	if runs == 0 {
		return
	}
	if g.TopHalf {
		g.AwayScore += runs
	} else {
		g.HomeScore += runs
	}
	if p := g.fieldingPitcher(); p != nil {
		g.Box.Line(p.ID).EarnedRuns += runs
	}
}

// nextBatter returns the next hitter in cyclic lineup order for the
// batting side, skipping pitchers unless the whole roster pitches. Each
// side keeps its own cursor, independent of the opponent's.
func (g *Game) nextBatter() *models.Player {
	team := g.battingTeam()
	cursor := &g.awayCursor
	if !g.TopHalf {
		cursor = &g.homeCursor
	}

	hasHitter := false
	for i := range team.Players {
		if !team.Players[i].IsPitcher {
			hasHitter = true
			break
		}
	}

	n := len(team.Players)
	for i := 0; i < n; i++ {
		idx := (*cursor + i) % n
		p := &team.Players[idx]
		if hasHitter && p.IsPitcher {
			continue
		}
		*cursor = (idx + 1) % n
		return p
	}
	// Unreachable with a validated roster.
	return &team.Players[0]
}

// recordOut increments outs and the pitcher's outs-recorded counter.
func (g *Game) recordOut(n int) {
	g.Outs += n
	if p := g.fieldingPitcher(); p != nil {
		g.Box.Line(p.ID).OutsRecorded += n
	}
}

// endHalfInningIfNeeded performs the atomic 3-out reset: outs to zero,
// bases cleared, side flipped, inning bumped when flipping to the top.
func (g *Game) endHalfInningIfNeeded() {
	if g.Outs < 3 {
		return
	}
	g.Outs = 0
	g.Bases = [3]string{}
	g.TopHalf = !g.TopHalf
	if g.TopHalf {
		g.Inning++
	}
}

// stealCandidate returns the runner id and origin base (0=1st, 1=2nd)
// for a possible steal attempt, preferring the runner on first. The
// target base must be open.
func (g *Game) stealCandidate() (string, int) {
	if g.Bases[0] != "" && g.Bases[1] == "" {
		return g.Bases[0], 0
	}
	if g.Bases[1] != "" && g.Bases[2] == "" {
		return g.Bases[1], 1
	}
	return "", -1
}

// trySteal evaluates a steal attempt before the plate appearance. A
// resolved attempt, safe or out, consumes the play slot. Returns nil when
// no attempt happens.
func (g *Game) trySteal() *PlayEvent {
	if g.Outs >= 2 {
		return nil
	}
	runnerID, base := g.stealCandidate()
	if base < 0 {
		return nil
	}

	runner := g.players[runnerID]
	spd := attrFrac(runner.Attrs.Spd)

	attemptP := 0.04 + spd*0.10
	if runner.IsStar {
		attemptP += 0.04
	}
	if !chance(g.rng, attemptP) {
		return nil
	}

	arm := teamArm(g.fieldingTeam())
	pit := attrFrac(neutralRating)
	if p := g.fieldingPitcher(); p != nil {
		pit = attrFrac(p.Attrs.Pit)
	}
	successP := clamp(0.45+spd*0.40-arm*0.15-pit*0.10, 0.10, 0.95)

	if chance(g.rng, successP) {
		g.Bases[base] = ""
		g.Bases[base+1] = runnerID
		g.Box.Line(runnerID).StolenBases++
		ev := g.newEvent("steal", 0)
		ev.RunnerID = runnerID
		ev.Description = fmt.Sprintf("%s steals %s", runner.Name, baseName(base+1))
		ev.Highlight = &Highlight{PlayerID: runnerID, Caption: fmt.Sprintf("%s swipes a bag", runner.Name)}
		return ev
	}

	g.Bases[base] = ""
	g.Box.Line(runnerID).CaughtStealing++
	g.recordOut(1)
	ev := g.newEvent("caught-stealing", 0)
	ev.RunnerID = runnerID
	ev.Description = fmt.Sprintf("%s caught stealing %s", runner.Name, baseName(base+1))
	g.endHalfInningIfNeeded()
	ev.Outs = g.Outs
	return ev
}

// teamArm is the average defensive ARM of the fielding team, [0,1].
func teamArm(team *models.Team) float64 {
	if team == nil || len(team.Players) == 0 {
		return attrFrac(neutralRating)
	}
	sum := 0.0
	for i := range team.Players {
		sum += attrFrac(team.Players[i].Attrs.Arm)
	}
	return sum / float64(len(team.Players))
}

func baseName(idx int) string {
	switch idx {
	case 0:
		return "first"
	case 1:
		return "second"
	case 2:
		return "third"
	}
	return "home"
}

func (g *Game) newEvent(kind string, runs int) *PlayEvent {
	return &PlayEvent{
		Kind:      kind,
		Runs:      runs,
		Inning:    g.Inning,
		TopHalf:   g.TopHalf,
		Outs:      g.Outs,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
	}
}

// AdvanceOnePlay resolves the next play: a steal attempt when one
// triggers, otherwise a full plate appearance. The 3-out reset happens
// inside the same call that records the third out.
func (g *Game) AdvanceOnePlay() (*PlayEvent, error) {
	if g.Over() {
		return nil, ErrGameOver
	}

	if ev := g.trySteal(); ev != nil {
		return ev, nil
	}

	batter := g.nextBatter()
	pitcher := g.fieldingPitcher()
	defense := g.fieldingTeam()
	outcome := g.resolver.Resolve(batter, pitcher, defense)

	batterLine := g.Box.Line(batter.ID)
	var pitcherLine *BoxLine
	if pitcher != nil {
		pitcherLine = g.Box.Line(pitcher.ID)
		pitcherLine.BattersFaced++
	}

	var ev *PlayEvent
	switch outcome {
	case OutcomeStrikeout:
		batterLine.AtBats++
		batterLine.Strikeouts++
		if pitcherLine != nil {
			pitcherLine.StrikeoutsThrown++
		}
		g.recordOut(1)
		ev = g.newEvent("plate", 0)
		ev.Description = fmt.Sprintf("%s strikes out", batter.Name)

	case OutcomeOut:
		ev = g.resolveBallInPlayOut(batter, batterLine)

	case OutcomeWalk:
		batterLine.Walks++
		if pitcherLine != nil {
			pitcherLine.WalksAllowed++
		}
		runs := g.advanceRunners(OutcomeWalk, batter)
		ev = g.newEvent("plate", runs)
		ev.Description = fmt.Sprintf("%s walks", batter.Name)

	default: // single, double, triple, home run
		batterLine.AtBats++
		batterLine.Hits++
		switch outcome {
		case OutcomeDouble:
			batterLine.Doubles++
		case OutcomeTriple:
			batterLine.Triples++
		case OutcomeHomeRun:
			batterLine.HomeRuns++
		}
		if pitcherLine != nil {
			pitcherLine.HitsAllowed++
		}
		runs := g.advanceRunners(outcome, batter)
		ev = g.newEvent("plate", runs)
		ev.Description = fmt.Sprintf("%s hits a %s", batter.Name, outcome)
		if outcome == OutcomeHomeRun {
			caption := fmt.Sprintf("%s goes deep", batter.Name)
			if runs == 4 {
				caption = fmt.Sprintf("%s hits a grand slam", batter.Name)
			}
			ev.Highlight = &Highlight{PlayerID: batter.ID, Caption: caption}
		}
	}

	ev.Outcome = outcome.String()
	ev.BatterID = batter.ID
	ev.HomeScore = g.HomeScore
	ev.AwayScore = g.AwayScore

	g.endHalfInningIfNeeded()
	ev.Outs = g.Outs
	return ev, nil
}

// resolveBallInPlayOut handles the OUT outcome: a double-play chance with
// a runner on first, then an error chance, then a routine out.
func (g *Game) resolveBallInPlayOut(batter *models.Player, batterLine *BoxLine) *PlayEvent {
	defQ := defenseQuality(g.fieldingTeam())

	if g.Outs < 2 && g.Bases[0] != "" {
		lead := g.players[g.Bases[0]]
		dpP := clamp01(0.30 + (defQ-0.5)*0.25 - attrFrac(lead.Attrs.Spd)*0.18)
		if chance(g.rng, dpP) {
			batterLine.AtBats++
			g.Bases[0] = ""
			g.recordOut(2)
			ev := g.newEvent("double-play", 0)
			ev.Description = fmt.Sprintf("%s grounds into a double play", batter.Name)
			return ev
		}
	}

	errP := clamp(0.045-(defQ-0.5)*0.05, 0.02, 0.07)
	if chance(g.rng, errP) {
		batterLine.AtBats++
		if g.TopHalf {
			g.HomeErrors++
		} else {
			g.AwayErrors++
		}
		runs := g.advanceOnError(batter)
		ev := g.newEvent("error", runs)
		ev.Description = fmt.Sprintf("%s reaches on an error", batter.Name)
		return ev
	}

	batterLine.AtBats++
	g.recordOut(1)
	ev := g.newEvent("plate", 0)
	ev.Description = fmt.Sprintf("%s is out", batter.Name)
	return ev
}

// PlayHalfInning advances plays until the current half-inning ends or
// the game is over, returning the events in order.
func (g *Game) PlayHalfInning() ([]*PlayEvent, error) {
	startInning, startTop := g.Inning, g.TopHalf
	var events []*PlayEvent
	for !g.Over() && g.Inning == startInning && g.TopHalf == startTop {
		ev, err := g.AdvanceOnePlay()
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// PlayToCompletion runs the game until the termination predicate holds.
func (g *Game) PlayToCompletion() ([]*PlayEvent, error) {
	var events []*PlayEvent
	for !g.Over() {
		ev, err := g.AdvanceOnePlay()
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}
