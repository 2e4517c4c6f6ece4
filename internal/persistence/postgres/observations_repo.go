package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/persistence"
)

// observationsRepo implements persistence.ObservationsRepo for PostgreSQL.
type observationsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewObservationsRepo creates a PostgreSQL observations repository.
func NewObservationsRepo(db *sqlx.DB, timeout time.Duration) persistence.ObservationsRepo {
	return &observationsRepo{db: db, timeout: timeout}
}

func (r *observationsRepo) History(ctx context.Context, playerID int64, propType domain.PropType, asOf time.Time, limit int) ([]domain.Observation, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// strictly less-than: the evaluated date itself is never history
	query := `
		SELECT player_id, game_id, prop_type, game_date, result, valid, outcome
		FROM observations
		WHERE player_id = $1 AND prop_type = $2 AND game_date < $3
		ORDER BY game_date DESC, game_id DESC
		LIMIT $4`

	var obs []domain.Observation
	if err := r.db.SelectContext(ctx, &obs, query, playerID, propType, asOf, limit); err != nil {
		return nil, fmt.Errorf("failed to query observation history: %w", err)
	}
	return obs, nil
}

func (r *observationsRepo) ActivePairs(ctx context.Context, since time.Time) ([]persistence.PlayerProp, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT DISTINCT player_id, prop_type
		FROM observations
		WHERE game_date >= $1
		ORDER BY player_id, prop_type`

	var pairs []persistence.PlayerProp
	if err := r.db.SelectContext(ctx, &pairs, query, since); err != nil {
		return nil, fmt.Errorf("failed to query active pairs: %w", err)
	}
	return pairs, nil
}

func (r *observationsRepo) Record(ctx context.Context, obs domain.Observation) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO observations (player_id, game_id, prop_type, game_date, result, valid, outcome)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player_id, game_id, prop_type)
		DO UPDATE SET result = EXCLUDED.result, valid = EXCLUDED.valid, outcome = EXCLUDED.outcome`

	_, err := r.db.ExecContext(ctx, query,
		obs.PlayerID, obs.GameID, obs.PropType, obs.Date, obs.Value, obs.Valid, obs.Outcome)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("duplicate observation: %w", err)
		}
		return fmt.Errorf("failed to record observation: %w", err)
	}
	return nil
}
