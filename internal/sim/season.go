package sim

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/matthewkirk009-hue/baseball-sim/internal/models"
)

// Season owns a fixture schedule over a pool of team ids, per-team
// records, and a league-wide box score aggregate merged from every
// completed game.
type Season struct {
	ID           string                        `json:"id"`
	Name         string                        `json:"name"`
	GamesPerTeam int                           `json:"gamesPerTeam"`
	TeamIDs      []string                      `json:"teamIds"`
	Schedule     []models.Fixture              `json:"schedule"`
	Cursor       int                           `json:"cursor"`
	Records      map[string]*models.TeamRecord `json:"records"`
	PlayerStats  map[string]*BoxLine           `json:"playerStats"`
	CreatedAt    int64                         `json:"createdAt"`
	UpdatedAt    int64                         `json:"updatedAt"`
}

// NewSeason builds a season with a generated schedule. At least two
// teams are required.
func NewSeason(id, name string, teamIDs []string, gamesPerTeam int, rng *rand.Rand) (*Season, error) {
	if len(teamIDs) < 2 {
		return nil, fmt.Errorf("%w: a season needs at least two teams", ErrInvalidSetup)
	}
	if gamesPerTeam < 1 {
		gamesPerTeam = 1
	}

	now := time.Now().UnixMilli()
	s := &Season{
		ID:           id,
		Name:         name,
		GamesPerTeam: gamesPerTeam,
		TeamIDs:      append([]string(nil), teamIDs...),
		Schedule:     generateSchedule(teamIDs, gamesPerTeam, rng),
		Records:      map[string]*models.TeamRecord{},
		PlayerStats:  map[string]*BoxLine{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, id := range teamIDs {
		s.Records[id] = &models.TeamRecord{}
	}
	return s, nil
}

// generateSchedule builds floor(teams*gamesPerTeam/2) fixtures by
// repeatedly shuffling the list of all unordered team pairs and
// appending them with random home/away assignment. Pairs appear roughly
// evenly; this is not an exact round robin.
func generateSchedule(teamIDs []string, gamesPerTeam int, rng *rand.Rand) []models.Fixture {
	var pairs [][2]string
	for i := 0; i < len(teamIDs); i++ {
		for j := i + 1; j < len(teamIDs); j++ {
			pairs = append(pairs, [2]string{teamIDs[i], teamIDs[j]})
		}
	}

	target := len(teamIDs) * gamesPerTeam / 2
	fixtures := make([]models.Fixture, 0, target)
	for len(fixtures) < target {
		rng.Shuffle(len(pairs), func(a, b int) { pairs[a], pairs[b] = pairs[b], pairs[a] })
		for _, pair := range pairs {
			if len(fixtures) >= target {
				break
			}
			home, away := pair[0], pair[1]
			if rng.Intn(2) == 1 {
				home, away = away, home
			}
			fixtures = append(fixtures, models.Fixture{
				Index:  len(fixtures),
				HomeID: home,
				AwayID: away,
			})
		}
	}
	return fixtures
}

// GamesRemaining returns the number of unplayed fixtures.
func (s *Season) GamesRemaining() int {
	return len(s.Schedule) - s.Cursor
}

// PlayGames plays up to n fixtures from the cursor forward, running each
// game to completion and folding results into the season. Fixtures whose
// teams are missing or cannot field a game are marked played with a
// zero result so the schedule always terminates. A fixture, once played,
// is never replayed. Returns the number of fixtures actually resolved.
func (s *Season) PlayGames(league *models.LeagueState, n int, rng *rand.Rand) int {
	played := 0
	for played < n && s.Cursor < len(s.Schedule) {
		fixture := &s.Schedule[s.Cursor]
		s.Cursor++
		if fixture.Played {
			continue
		}

		home := league.FindTeam(fixture.HomeID)
		away := league.FindTeam(fixture.AwayID)
		game, err := func() (*Game, error) {
			if home == nil || away == nil {
				return nil, ErrUnknownTeam
			}
			return NewGame(home, away, rng)
		}()
		if err != nil {
			// Deleted team or invalid roster: void the fixture rather
			// than wedging the schedule.
			fixture.Played = true
			fixture.HomeScore = 0
			fixture.AwayScore = 0
			played++
			continue
		}

		if _, err := game.PlayToCompletion(); err != nil {
			fixture.Played = true
			played++
			continue
		}

		fixture.Played = true
		fixture.HomeScore = game.HomeScore
		fixture.AwayScore = game.AwayScore
		s.recordResult(fixture)
		game.Box.MergeInto(s.PlayerStats)
		played++
	}
	s.UpdatedAt = time.Now().UnixMilli()
	return played
}

func (s *Season) recordResult(f *models.Fixture) {
	homeRec, ok := s.Records[f.HomeID]
	if !ok {
		homeRec = &models.TeamRecord{}
		s.Records[f.HomeID] = homeRec
	}
	awayRec, ok := s.Records[f.AwayID]
	if !ok {
		awayRec = &models.TeamRecord{}
		s.Records[f.AwayID] = awayRec
	}

	homeRec.RunsFor += f.HomeScore
	homeRec.RunsAgainst += f.AwayScore
	awayRec.RunsFor += f.AwayScore
	awayRec.RunsAgainst += f.HomeScore

	// A game still tied at the hard inning cutoff counts for the home
	// side, so every fixture yields exactly one decision.
	if f.AwayScore > f.HomeScore {
		awayRec.Wins++
		homeRec.Losses++
	} else {
		homeRec.Wins++
		awayRec.Losses++
	}
}

// StandingsRow pairs a team id with its record for ordered display.
type StandingsRow struct {
	TeamID string            `json:"teamId"`
	Record models.TeamRecord `json:"record"`
}

func winPct(r *models.TeamRecord) float64 {
	decisions := r.Wins + r.Losses
	if decisions == 0 {
		return 0
	}
	return float64(r.Wins) / float64(decisions)
}

// Standings returns teams ordered by win percentage, then run
// differential, then raw runs scored, all descending.
func (s *Season) Standings() []StandingsRow {
	rows := make([]StandingsRow, 0, len(s.TeamIDs))
	for _, id := range s.TeamIDs {
		rec := s.Records[id]
		if rec == nil {
			rec = &models.TeamRecord{}
		}
		rows = append(rows, StandingsRow{TeamID: id, Record: *rec})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i].Record, &rows[j].Record
		ap, bp := winPct(a), winPct(b)
		if ap != bp {
			return ap > bp
		}
		ad, bd := a.RunsFor-a.RunsAgainst, b.RunsFor-b.RunsAgainst
		if ad != bd {
			return ad > bd
		}
		return a.RunsFor > b.RunsFor
	})
	return rows
}

// LeaderRow pairs a player id with its season line.
type LeaderRow struct {
	PlayerID string  `json:"playerId"`
	Line     BoxLine `json:"line"`
}

const (
	leaderCount     = 8
	minAtBats       = 10
	minBattersFaced = 10
)

// BattingLeaders returns the top hitters with at least 10 at-bats,
// ranked by home runs, then RBI, then batting average, descending.
func (s *Season) BattingLeaders() []LeaderRow {
	var rows []LeaderRow
	for id, line := range s.PlayerStats {
		if line.AtBats < minAtBats {
			continue
		}
		rows = append(rows, LeaderRow{PlayerID: id, Line: *line})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i].Line, &rows[j].Line
		if a.HomeRuns != b.HomeRuns {
			return a.HomeRuns > b.HomeRuns
		}
		if a.RBI != b.RBI {
			return a.RBI > b.RBI
		}
		return a.BattingAverage() > b.BattingAverage()
	})

	if len(rows) > leaderCount {
		rows = rows[:leaderCount]
	}
	return rows
}

// PitchingLeaders returns the top pitchers with at least 10 batters
// faced, ranked by ERA ascending, then strikeouts descending.
func (s *Season) PitchingLeaders() []LeaderRow {
	var rows []LeaderRow
	for id, line := range s.PlayerStats {
		if line.BattersFaced < minBattersFaced {
			continue
		}
		rows = append(rows, LeaderRow{PlayerID: id, Line: *line})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i].Line, &rows[j].Line
		ae, be := a.ERA(), b.ERA()
		if ae != be {
			return ae < be
		}
		return a.StrikeoutsThrown > b.StrikeoutsThrown
	})

	if len(rows) > leaderCount {
		rows = rows[:leaderCount]
	}
	return rows
}

// Export serializes the season. The JSON shape is the persistence and
// exchange contract: teamIds, schedule, records and playerStats must
// round-trip losslessly.
func (s *Season) Export() ([]byte, error) {
	return json.Marshal(s)
}

// ImportSeason parses and validates a serialized season. Malformed input
// returns a single descriptive error and mutates nothing.
func ImportSeason(data []byte) (*Season, error) {
	var s Season
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("malformed season data: %w", err)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("malformed season data: missing id")
	}
	if len(s.TeamIDs) < 2 {
		return nil, fmt.Errorf("malformed season data: needs at least two team ids")
	}
	if s.Cursor < 0 || s.Cursor > len(s.Schedule) {
		return nil, fmt.Errorf("malformed season data: cursor %d out of range", s.Cursor)
	}

	teamSet := map[string]bool{}
	for _, id := range s.TeamIDs {
		if id == "" {
			return nil, fmt.Errorf("malformed season data: empty team id")
		}
		teamSet[id] = true
	}
	for i := range s.Schedule {
		f := &s.Schedule[i]
		if !teamSet[f.HomeID] || !teamSet[f.AwayID] {
			return nil, fmt.Errorf("malformed season data: fixture %d references a team outside the pool", i)
		}
		if f.HomeID == f.AwayID {
			return nil, fmt.Errorf("malformed season data: fixture %d has identical home and away", i)
		}
	}

	if s.Records == nil {
		s.Records = map[string]*models.TeamRecord{}
	}
	if s.PlayerStats == nil {
		s.PlayerStats = map[string]*BoxLine{}
	}
	return &s, nil
}
