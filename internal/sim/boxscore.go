package sim

// BoxLine holds one player's counting stats. Lines are created lazily on
// first reference and every counter is monotonically non-decreasing, both
// within a game and across season accumulation.
type BoxLine struct {
	AtBats         int `json:"atBats"`
	Hits           int `json:"hits"`
	Doubles        int `json:"doubles"`
	Triples        int `json:"triples"`
	HomeRuns       int `json:"homeRuns"`
	Walks          int `json:"walks"`
	Strikeouts     int `json:"strikeouts"`
	Runs           int `json:"runs"`
	RBI            int `json:"rbi"`
	StolenBases    int `json:"stolenBases"`
	CaughtStealing int `json:"caughtStealing"`

	// Pitching-side counters.
	BattersFaced     int `json:"battersFaced"`
	OutsRecorded     int `json:"outsRecorded"`
	HitsAllowed      int `json:"hitsAllowed"`
	WalksAllowed     int `json:"walksAllowed"`
	StrikeoutsThrown int `json:"strikeoutsThrown"`
	EarnedRuns       int `json:"earnedRuns"`
}

// Add merges other into b additively.
func (b *BoxLine) Add(other *BoxLine) {
	b.AtBats += other.AtBats
	b.Hits += other.Hits
	b.Doubles += other.Doubles
	b.Triples += other.Triples
	b.HomeRuns += other.HomeRuns
	b.Walks += other.Walks
	b.Strikeouts += other.Strikeouts
	b.Runs += other.Runs
	b.RBI += other.RBI
	b.StolenBases += other.StolenBases
	b.CaughtStealing += other.CaughtStealing
	b.BattersFaced += other.BattersFaced
	b.OutsRecorded += other.OutsRecorded
	b.HitsAllowed += other.HitsAllowed
	b.WalksAllowed += other.WalksAllowed
	b.StrikeoutsThrown += other.StrikeoutsThrown
	b.EarnedRuns += other.EarnedRuns
}

// BattingAverage returns hits per at-bat, 0 with no at-bats.
func (b *BoxLine) BattingAverage() float64 {
	if b.AtBats == 0 {
		return 0
	}
	return float64(b.Hits) / float64(b.AtBats)
}

// InningsPitched returns outs recorded converted to innings, with a
// floor of 0.1 to keep ERA finite.
func (b *BoxLine) InningsPitched() float64 {
	ip := float64(b.OutsRecorded) / 3.0
	if ip < 0.1 {
		ip = 0.1
	}
	return ip
}

// ERA returns earned runs per nine innings. Earned runs here are
// approximated as all runs charged to the pitcher, not true earned-run
// accounting.
func (b *BoxLine) ERA() float64 {
	return float64(b.EarnedRuns) * 9.0 / b.InningsPitched()
}

// BoxScore accumulates lines per player id for one game. It never resets
// mid-game; completed games merge into a season aggregate of the same
// shape.
type BoxScore map[string]*BoxLine

// Line returns the box line for a player, creating it on first use.
func (bs BoxScore) Line(playerID string) *BoxLine {
	line, ok := bs[playerID]
	if !ok {
		line = &BoxLine{}
		bs[playerID] = line
	}
	return line
}

// MergeInto folds every line of bs into the aggregate map additively.
func (bs BoxScore) MergeInto(aggregate map[string]*BoxLine) {
	for id, line := range bs {
		agg, ok := aggregate[id]
		if !ok {
			agg = &BoxLine{}
			aggregate[id] = agg
		}
		agg.Add(line)
	}
}
