package features

import (
	"time"

	"github.com/statforge/propgrade/internal/domain"
)

// CurrentStreak walks a most-recent-first win/loss sequence and counts the
// run of consecutive identical outcomes at its head. The input must
// already exclude pushes and non-terminal outcomes. A single observation
// yields a streak of length one, not neutral.
func CurrentStreak(outcomes []domain.Outcome) domain.Streak {
	if len(outcomes) == 0 {
		return domain.Streak{Type: domain.StreakNeutral, Count: 0}
	}
	head := outcomes[0]
	count := 0
	for _, o := range outcomes {
		if o != head {
			break
		}
		count++
	}
	st := domain.StreakCold
	if head == domain.OutcomeWin {
		st = domain.StreakHot
	}
	return domain.Streak{Type: st, Count: count}
}

// StreakAsOf filters a raw observation history down to the win/loss
// outcomes strictly prior to asOf, orders them most recent first, and
// computes the current streak.
func StreakAsOf(obs []domain.Observation, asOf time.Time) domain.Streak {
	prior := sortedPrior(obs, asOf)
	outcomes := make([]domain.Outcome, 0, len(prior))
	for _, o := range prior {
		if o.Outcome == nil {
			continue
		}
		switch *o.Outcome {
		case domain.OutcomeWin, domain.OutcomeLoss:
			outcomes = append(outcomes, *o.Outcome)
		}
	}
	return CurrentStreak(outcomes)
}
