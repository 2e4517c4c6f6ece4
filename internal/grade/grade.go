// Package grade turns a resolved stat value, a line, and a direction into
// a three-way win/loss/push verdict.
package grade

import (
	"math"

	"github.com/statforge/propgrade/internal/domain"
)

// Verdict is the grading result. Invalid marks malformed inputs, which are
// a taxonomy problem for the caller, never a graded outcome.
type Verdict string

const (
	VerdictWin     Verdict = "win"
	VerdictLoss    Verdict = "loss"
	VerdictPush    Verdict = "push"
	VerdictInvalid Verdict = "invalid"
)

// pushEpsilon bounds float comparison for exact-equality pushes. Lines are
// quoted in half-point increments, so anything tighter than this is noise.
const pushEpsilon = 1e-9

// Grade applies sportsbook semantics: push on exact equality, otherwise the
// over side wins strictly above the line and the under side strictly below.
func Grade(value, line float64, direction domain.Direction) Verdict {
	if !finite(value) || !finite(line) {
		return VerdictInvalid
	}
	if direction != domain.DirectionOver && direction != domain.DirectionUnder {
		return VerdictInvalid
	}
	if math.Abs(value-line) < pushEpsilon {
		return VerdictPush
	}
	over := value > line
	if (direction == domain.DirectionOver) == over {
		return VerdictWin
	}
	return VerdictLoss
}

// Outcome converts a terminal verdict to the prop outcome enum. ok is false
// for VerdictInvalid, which has no outcome representation.
func (v Verdict) Outcome() (domain.Outcome, bool) {
	switch v {
	case VerdictWin:
		return domain.OutcomeWin, true
	case VerdictLoss:
		return domain.OutcomeLoss, true
	case VerdictPush:
		return domain.OutcomePush, true
	}
	return "", false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
