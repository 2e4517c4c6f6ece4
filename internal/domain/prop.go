package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction is the side of the line a prop is betting on.
type Direction string

const (
	DirectionOver  Direction = "over"
	DirectionUnder Direction = "under"
)

// ParseDirection validates a caller-supplied direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionOver:
		return DirectionOver, nil
	case DirectionUnder:
		return DirectionUnder, nil
	}
	return "", fmt.Errorf("invalid direction: %q", s)
}

// Status is the lifecycle state of a prop. Props are created pending by an
// external collaborator and mutated exactly once when the underlying game
// reaches a terminal state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
	StatusDNP      Status = "dnp"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
	StatusExpired  Status = "expired"
)

// Outcome is the three-way grading verdict for a resolved prop.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// Prop is a gradeable claim that a player's statistic will land over or
// under a line in a given game.
type Prop struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PlayerID         int64      `db:"player_id" json:"player_id"`
	GameID           int64      `db:"game_id" json:"game_id"`
	GameDate         time.Time  `db:"game_date" json:"game_date"`
	PropType         PropType   `db:"prop_type" json:"prop_type"`
	Line             float64    `db:"line" json:"line"`
	Direction        Direction  `db:"direction" json:"direction"`
	Status           Status     `db:"status" json:"status"`
	Outcome          *Outcome   `db:"outcome" json:"outcome,omitempty"`
	Result           *float64   `db:"result" json:"result,omitempty"`
	PredictedOutcome *Outcome   `db:"predicted_outcome" json:"predicted_outcome,omitempty"`
	WasCorrect       *bool      `db:"was_correct" json:"was_correct,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt       *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// Validate rejects malformed claims before any grading is attempted.
// A negative line is an invalid claim, not a grading outcome.
func (p *Prop) Validate() error {
	if !p.PropType.Valid() {
		return fmt.Errorf("prop %s: unknown prop type %q", p.ID, p.PropType)
	}
	if p.Direction != DirectionOver && p.Direction != DirectionUnder {
		return fmt.Errorf("prop %s: invalid direction %q", p.ID, p.Direction)
	}
	if p.Line < 0 {
		return fmt.Errorf("prop %s: negative line %.2f", p.ID, p.Line)
	}
	return nil
}

// Resolve transitions the prop to its terminal resolved state. It is the
// only place the outcome/result/status invariant is written: outcome is
// non-nil iff status is resolved.
func (p *Prop) Resolve(outcome Outcome, result float64, at time.Time) error {
	if p.Status != StatusPending {
		return fmt.Errorf("prop %s: already %s, refusing to re-resolve", p.ID, p.Status)
	}
	p.Status = StatusResolved
	p.Outcome = &outcome
	p.Result = &result
	p.ResolvedAt = &at
	p.WasCorrect = WasCorrect(p.PredictedOutcome, outcome)
	return nil
}

// MarkDNP records that the player did not meaningfully participate.
func (p *Prop) MarkDNP() {
	p.Status = StatusDNP
	p.Outcome = nil
	p.Result = nil
}

// Terminal reports whether the prop has left the pending state.
func (p *Prop) Terminal() bool {
	return p.Status != StatusPending
}

// WasCorrect compares a prior predicted outcome against the graded one.
// Returns nil when no prediction exists; a push grades every prediction
// as incorrect rather than unscored, matching how accuracy is reported.
func WasCorrect(predicted *Outcome, graded Outcome) *bool {
	if predicted == nil {
		return nil
	}
	correct := *predicted == graded
	return &correct
}
