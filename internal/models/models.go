package models

// Attributes holds a player's six rated tools, each on a 0-100 scale.
type Attributes struct {
	Hit int `json:"hit"`
	Pwr int `json:"pwr"`
	Spd int `json:"spd"`
	Def int `json:"def"`
	Arm int `json:"arm"`
	Pit int `json:"pit"`
}

// ClampRating forces a rating into the [0,100] range.
func ClampRating(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Clamp forces every attribute into the [0,100] range.
// Called on every write path (add, update, import).
func (a *Attributes) Clamp() {
	a.Hit = ClampRating(a.Hit)
	a.Pwr = ClampRating(a.Pwr)
	a.Spd = ClampRating(a.Spd)
	a.Def = ClampRating(a.Def)
	a.Arm = ClampRating(a.Arm)
	a.Pit = ClampRating(a.Pit)
}

// Player represents a roster player
type Player struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Image     string     `json:"image"`
	Position  string     `json:"position"`
	IsPitcher bool       `json:"isPitcher"`
	IsStar    bool       `json:"isStar"`
	Attrs     Attributes `json:"attrs"`
}

// Overall returns the player's derived overall rating.
// Batting blends HIT/PWR/SPD, fielding blends DEF/ARM; pitchers are
// dominated by their PIT rating.
func (p *Player) Overall() float64 {
	batting := float64(p.Attrs.Hit)*0.45 + float64(p.Attrs.Pwr)*0.35 + float64(p.Attrs.Spd)*0.20
	fielding := float64(p.Attrs.Def)*0.65 + float64(p.Attrs.Arm)*0.35
	position := batting*0.70 + fielding*0.30
	if p.IsPitcher {
		return float64(p.Attrs.Pit)*0.70 + position*0.30
	}
	return position
}

// Team represents a roster team. Player insertion order defines the
// default lineup order.
type Team struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	City          string    `json:"city"`
	Stadium       string    `json:"stadium"`
	HomeAdvantage int       `json:"homeAdvantage"`
	Colors        [3]string `json:"colors"`
	Logo          string    `json:"logo"`
	Players       []Player  `json:"players"`
	CreatedAt     int64     `json:"createdAt"`
	UpdatedAt     int64     `json:"updatedAt"`
}

// Overall returns the team rating: the mean overall of its top 9 rated
// players, or of every player when the roster is short. Roster order
// does not affect the result.
func (t *Team) Overall() float64 {
	if len(t.Players) == 0 {
		return 0
	}

	ratings := make([]float64, len(t.Players))
	for i := range t.Players {
		ratings[i] = t.Players[i].Overall()
	}

	n := len(ratings)
	if n > 9 {
		n = 9
	}
	// Partial selection sort: only the top n slots need to be in place.
	for i := 0; i < n; i++ {
		maxIdx := i
		for j := i + 1; j < len(ratings); j++ {
			if ratings[j] > ratings[maxIdx] {
				maxIdx = j
			}
		}
		ratings[i], ratings[maxIdx] = ratings[maxIdx], ratings[i]
	}

	sum := 0.0
	for _, r := range ratings[:n] {
		sum += r
	}
	return sum / float64(n)
}

// LeagueState is the full roster snapshot exchanged with the persistence
// layer and the UI.
type LeagueState struct {
	Teams []Team `json:"teams"`
}

// FindTeam returns the team with the given id, or nil.
func (s *LeagueState) FindTeam(id string) *Team {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i]
		}
	}
	return nil
}

// Fixture is a single scheduled game within a season.
type Fixture struct {
	Index     int    `json:"index"`
	HomeID    string `json:"homeId"`
	AwayID    string `json:"awayId"`
	Played    bool   `json:"played"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
}

// TeamRecord accumulates a team's season results.
type TeamRecord struct {
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	RunsFor     int `json:"runsFor"`
	RunsAgainst int `json:"runsAgainst"`
}
