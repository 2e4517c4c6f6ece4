// Package persistence defines the engine's storage interfaces. The engine
// owns no long-lived state itself: props, historical observations, and
// feature snapshots live in the relational store, and these interfaces are
// the full extent of what the engine asks of it.
package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/statforge/propgrade/internal/domain"
)

// ErrAlreadyResolved is returned by MarkResolved when the guarded update
// matched no pending row — another run got there first. Callers treat it
// as a skip, which is what makes batch re-runs idempotent.
var ErrAlreadyResolved = errors.New("prop already resolved")

// PropsRepo accesses gradeable prop rows.
type PropsRepo interface {
	// ListPending returns pending props for the given games, oldest first.
	ListPending(ctx context.Context, gameIDs []int64, limit int) ([]domain.Prop, error)

	// MarkResolved applies a prop's terminal resolution exactly once. The
	// update is predicated on status still being pending; a lost race
	// returns ErrAlreadyResolved.
	MarkResolved(ctx context.Context, prop domain.Prop) error

	// MarkStatus moves a prop to a non-resolved terminal status (dnp,
	// skipped, error) without touching outcome or result.
	MarkStatus(ctx context.Context, id uuid.UUID, status domain.Status) error
}

// PlayerProp identifies one (player, prop type) feature stream.
type PlayerProp struct {
	PlayerID int64           `db:"player_id"`
	PropType domain.PropType `db:"prop_type"`
}

// ObservationsRepo reads and writes the historical resolved observations
// that feed the rolling feature and streak engines.
type ObservationsRepo interface {
	// History returns observations for the player and prop type strictly
	// before asOf, newest first, bounded by limit. The strict inequality
	// lives in the query so leakage cannot depend on caller discipline.
	History(ctx context.Context, playerID int64, propType domain.PropType, asOf time.Time, limit int) ([]domain.Observation, error)

	// Record upserts an observation produced by a grading run.
	Record(ctx context.Context, obs domain.Observation) error

	// ActivePairs returns the distinct (player, prop type) streams with at
	// least one observation on or after since. Feature batches use it to
	// enumerate which rows to rebuild.
	ActivePairs(ctx context.Context, since time.Time) ([]PlayerProp, error)
}

// FeaturesRepo persists derived feature snapshots for external consumers.
type FeaturesRepo interface {
	// UpsertRow writes one feature row keyed by (player, prop type, as-of
	// date). Re-running a batch refreshes the same rows.
	UpsertRow(ctx context.Context, row domain.DerivedFeatureRow) error
}
