package sim

import "testing"

func TestBoxLineBattingAverage(t *testing.T) {
	line := &BoxLine{}
	if avg := line.BattingAverage(); avg != 0 {
		t.Errorf("empty line average = %v, want 0", avg)
	}
	line.AtBats, line.Hits = 4, 3
	if avg := line.BattingAverage(); avg != 0.75 {
		t.Errorf("average = %v, want 0.75", avg)
	}
}

func TestBoxLineERAStaysFinite(t *testing.T) {
	line := &BoxLine{EarnedRuns: 3}
	if ip := line.InningsPitched(); ip != 0.1 {
		t.Errorf("innings pitched floor = %v, want 0.1", ip)
	}
	if era := line.ERA(); era != 270 {
		t.Errorf("ERA with zero outs = %v, want 270", era)
	}

	line.OutsRecorded = 27
	if era := line.ERA(); era != 3 {
		t.Errorf("ERA over nine innings = %v, want 3", era)
	}
}

func TestBoxScoreLineLazyCreation(t *testing.T) {
	bs := BoxScore{}
	line := bs.Line("p1")
	if line == nil {
		t.Fatal("Line returned nil")
	}
	line.Hits++
	if bs.Line("p1").Hits != 1 {
		t.Error("second lookup returned a different line")
	}
	if len(bs) != 1 {
		t.Errorf("box score holds %d lines, want 1", len(bs))
	}
}

func TestBoxScoreMergeIntoIsAdditive(t *testing.T) {
	aggregate := map[string]*BoxLine{
		"p1": {AtBats: 10, Hits: 3, HomeRuns: 1},
	}

	game := BoxScore{
		"p1": {AtBats: 4, Hits: 2, HomeRuns: 1, RBI: 3},
		"p2": {BattersFaced: 20, OutsRecorded: 15, StrikeoutsThrown: 6},
	}
	game.MergeInto(aggregate)

	p1 := aggregate["p1"]
	if p1.AtBats != 14 || p1.Hits != 5 || p1.HomeRuns != 2 || p1.RBI != 3 {
		t.Errorf("merged line wrong: %+v", p1)
	}
	p2 := aggregate["p2"]
	if p2 == nil || p2.BattersFaced != 20 || p2.StrikeoutsThrown != 6 {
		t.Errorf("new player not merged: %+v", p2)
	}
}
