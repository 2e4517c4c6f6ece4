package features

import (
	"fmt"
	"time"

	"github.com/statforge/propgrade/internal/domain"
)

// DefaultWindowDays are the calendar windows every feature row carries,
// matching the d7/d15/d30 columns the model schemas expect.
var DefaultWindowDays = []int{7, 15, 30}

// winRateGames is the count window for the rolling win-rate feature.
const winRateGames = 7

// BuildRow assembles the full DerivedFeatureRow for one (player, prop
// type, as-of date) coordinate from that player's observation history.
// The history need not be pre-filtered, but an observation dated on or
// after asOf while flagged as history is rejected via VerifyPrior by
// callers that read from a strictly-prior store query; BuildRow itself
// re-filters defensively through the same strict boundary.
func BuildRow(playerID int64, propType domain.PropType, asOf time.Time, obs []domain.Observation, windowDays []int) (domain.DerivedFeatureRow, error) {
	if !propType.Valid() {
		return domain.DerivedFeatureRow{}, fmt.Errorf("build features: unknown prop type %q", propType)
	}
	if len(windowDays) == 0 {
		windowDays = DefaultWindowDays
	}

	averages := make(map[string]*float64, len(windowDays))
	for _, days := range windowDays {
		key := fmt.Sprintf("d%d_avg", days)
		averages[key] = RollingAverage(obs, asOf, Window{Mode: CalendarWindow, N: days})
	}

	row := domain.DerivedFeatureRow{
		PlayerID:    playerID,
		PropType:    propType,
		AsOf:        asOf,
		Averages:    averages,
		Streak:      StreakAsOf(obs, asOf),
		WinRate7:    winRate(obs, asOf, winRateGames),
		Observed:    countValidPrior(obs, asOf),
		GeneratedAt: time.Now().UTC(),
	}
	return row, nil
}

// winRate is the share of wins over the most recent n resolved win/loss
// outcomes prior to asOf. Pushes are excluded from both sides of the rate.
func winRate(obs []domain.Observation, asOf time.Time, n int) *float64 {
	prior := sortedPrior(obs, asOf)
	wins, total := 0, 0
	for _, o := range prior {
		if total == n {
			break
		}
		if o.Outcome == nil {
			continue
		}
		switch *o.Outcome {
		case domain.OutcomeWin:
			wins++
			total++
		case domain.OutcomeLoss:
			total++
		}
	}
	if total == 0 {
		return nil
	}
	rate := float64(wins) / float64(total)
	return &rate
}

func countValidPrior(obs []domain.Observation, asOf time.Time) int {
	n := 0
	for _, o := range obs {
		if o.Valid && o.Date.Before(asOf) {
			n++
		}
	}
	return n
}
