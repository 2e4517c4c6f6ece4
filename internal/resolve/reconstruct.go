package resolve

import (
	"github.com/statforge/propgrade/internal/domain"
)

// BlockFromPlays reconstructs a synthetic stats block for one player by
// tallying the game's play events where the player is the batter or the
// pitcher of record. Field names mirror the boxscore block so the same
// extractor runs unchanged against either source.
//
// Only stats that plate-appearance events can attest are emitted. Runs
// scored, stolen bases, and earned runs are baserunning or scoring-
// decision stats invisible to this log, so they stay absent (unknown)
// rather than being written as zero.
func BlockFromPlays(playerID int64, events []domain.PlayEvent) domain.StatsBlock {
	var batting, pitching tally

	for _, ev := range events {
		if ev.BatterID == playerID {
			batting.add(ev)
		}
		if ev.PitcherID == playerID {
			pitching.add(ev)
		}
	}

	block := domain.StatsBlock{}
	if batting.pa > 0 {
		block.Batting = map[string]float64{
			"plateAppearances": float64(batting.pa),
			"atBats":           float64(batting.ab),
			"hits":             float64(batting.hits),
			"doubles":          float64(batting.doubles),
			"triples":          float64(batting.triples),
			"homeRuns":         float64(batting.homeRuns),
			"totalBases":       float64(batting.totalBases),
			"baseOnBalls":      float64(batting.walks),
			"strikeOuts":       float64(batting.strikeouts),
			"rbi":              float64(batting.rbi),
		}
	}
	if pitching.pa > 0 {
		block.Pitching = map[string]float64{
			"battersFaced": float64(pitching.pa),
			"hits":         float64(pitching.hits),
			"homeRuns":     float64(pitching.homeRuns),
			"baseOnBalls":  float64(pitching.walks),
			"strikeOuts":   float64(pitching.strikeouts),
			"outs":         float64(pitching.outs),
		}
	}
	return block
}

// tally is the single-pass accumulator for one side of a player's line.
type tally struct {
	pa, ab, hits, doubles, triples, homeRuns int
	totalBases, walks, strikeouts, rbi, outs int
}

func (t *tally) add(ev domain.PlayEvent) {
	t.pa++
	if ev.Type.CountsAsAtBat() {
		t.ab++
	}
	if bases, ok := ev.Type.Hit(); ok {
		t.hits++
		t.totalBases += bases
	}
	switch ev.Type {
	case domain.EventDouble:
		t.doubles++
	case domain.EventTriple:
		t.triples++
	case domain.EventHomeRun:
		t.homeRuns++
	case domain.EventWalk, domain.EventIntentionalWalk:
		t.walks++
	case domain.EventStrikeout:
		t.strikeouts++
	}
	t.rbi += ev.RBI
	t.outs += ev.OutsRecorded
}
