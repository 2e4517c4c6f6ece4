// Package matchup computes cumulative batter-vs-pitcher statistics by
// filtering a game's play-by-play log to one specific pair of participants
// and summing plate-appearance outcomes.
package matchup

import (
	"github.com/statforge/propgrade/internal/domain"
)

// Aggregate filters events to plays between batterID and pitcherID and
// reduces them into a single MatchupAggregate. Returns nil when zero plays
// match; the caller decides whether that means a zero-filled row or a skip.
// The reduction is order-independent, so shuffled input yields identical
// totals.
func Aggregate(batterID, pitcherID int64, events []domain.PlayEvent) *domain.MatchupAggregate {
	var agg *domain.MatchupAggregate
	for _, ev := range events {
		if ev.BatterID != batterID || ev.PitcherID != pitcherID {
			continue
		}
		if agg == nil {
			agg = &domain.MatchupAggregate{
				BatterID:  batterID,
				PitcherID: pitcherID,
				GameID:    ev.GameID,
			}
		}
		apply(agg, ev)
	}
	return agg
}

func apply(agg *domain.MatchupAggregate, ev domain.PlayEvent) {
	agg.PlateAppearances++
	if ev.Type.CountsAsAtBat() {
		agg.AtBats++
	}
	if bases, ok := ev.Type.Hit(); ok {
		agg.Hits++
		agg.TotalBases += bases
		if ev.Type == domain.EventHomeRun {
			agg.HomeRuns++
		}
	}
	switch ev.Type {
	case domain.EventStrikeout:
		agg.Strikeouts++
	case domain.EventWalk, domain.EventIntentionalWalk:
		agg.Walks++
	}
	agg.RBIs += ev.RBI
}

// LatestPitcherFor returns the most recent pitcher the batter faced in the
// log, by feed order. When a batter faced multiple pitchers in one game,
// the engine needs a single explicit pair; the most recent pairing is the
// one a live prop refers to.
func LatestPitcherFor(batterID int64, events []domain.PlayEvent) (int64, bool) {
	bestIdx := -1
	var pitcher int64
	for _, ev := range events {
		if ev.BatterID != batterID {
			continue
		}
		if ev.Index >= bestIdx {
			bestIdx = ev.Index
			pitcher = ev.PitcherID
		}
	}
	if bestIdx < 0 {
		return 0, false
	}
	return pitcher, true
}
