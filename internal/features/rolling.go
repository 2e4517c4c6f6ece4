// Package features computes point-in-time derived features — trailing
// window averages, streaks, and win rates — from a player's historical
// observations. Every computation is leakage-safe: an observation dated on
// or after the as-of date can never influence a result.
package features

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/statforge/propgrade/internal/domain"
)

// ErrLeakage flags an observation that violates the strictly-prior
// contract. It is a programming or data error, never silently dropped,
// because it threatens the no-leakage guarantee.
var ErrLeakage = errors.New("observation not strictly prior to as-of date")

// WindowMode selects between the two trailing-window semantics upstream
// callers mix: N most recent games vs all games within N calendar days.
type WindowMode int

const (
	// CountWindow averages the N most recent prior observations
	// regardless of calendar span.
	CountWindow WindowMode = iota
	// CalendarWindow averages all prior observations within N days of
	// the as-of date.
	CalendarWindow
)

// Window is an explicit, per-call window specification.
type Window struct {
	Mode WindowMode
	N    int // games for CountWindow, days for CalendarWindow
}

func (w Window) String() string {
	if w.Mode == CountWindow {
		return fmt.Sprintf("last %d games", w.N)
	}
	return fmt.Sprintf("last %d days", w.N)
}

// RollingAverage computes the plain arithmetic mean of the valid prior
// observations inside the window. The boundary is strictly less-than: the
// game being evaluated is always excluded, even when same-dated. A window
// with zero valid observations returns nil, never zero.
func RollingAverage(obs []domain.Observation, asOf time.Time, w Window) *float64 {
	prior := sortedPrior(obs, asOf)

	switch w.Mode {
	case CountWindow:
		taken := 0
		var sum float64
		count := 0
		for _, o := range prior {
			if taken == w.N {
				break
			}
			taken++
			if !o.Valid {
				continue
			}
			sum += o.Value
			count++
		}
		return mean(sum, count)
	case CalendarWindow:
		cutoff := asOf.AddDate(0, 0, -w.N)
		var sum float64
		count := 0
		for _, o := range prior {
			if o.Date.Before(cutoff) {
				break
			}
			if !o.Valid {
				continue
			}
			sum += o.Value
			count++
		}
		return mean(sum, count)
	}
	return nil
}

// VerifyPrior checks a history that a caller claims is strictly prior to
// asOf. A violation is surfaced loudly rather than filtered away.
func VerifyPrior(obs []domain.Observation, asOf time.Time) error {
	for _, o := range obs {
		if !o.Date.Before(asOf) {
			return fmt.Errorf("%w: game %d dated %s vs as-of %s",
				ErrLeakage, o.GameID, o.Date.Format("2006-01-02"), asOf.Format("2006-01-02"))
		}
	}
	return nil
}

// sortedPrior returns the strictly-prior observations, most recent first.
// Sorting is stable on date then game id so replays are deterministic.
func sortedPrior(obs []domain.Observation, asOf time.Time) []domain.Observation {
	prior := make([]domain.Observation, 0, len(obs))
	for _, o := range obs {
		if o.Date.Before(asOf) {
			prior = append(prior, o)
		}
	}
	sort.SliceStable(prior, func(i, j int) bool {
		if prior[i].Date.Equal(prior[j].Date) {
			return prior[i].GameID > prior[j].GameID
		}
		return prior[i].Date.After(prior[j].Date)
	})
	return prior
}

func mean(sum float64, count int) *float64 {
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}
