package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/persistence"
)

// featuresRepo implements persistence.FeaturesRepo for PostgreSQL.
// Averages go into a JSONB column so window sets can evolve without
// schema churn; streaks are first-class columns for query filters.
type featuresRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewFeaturesRepo creates a PostgreSQL feature snapshot repository.
func NewFeaturesRepo(db *sqlx.DB, timeout time.Duration) persistence.FeaturesRepo {
	return &featuresRepo{db: db, timeout: timeout}
}

func (r *featuresRepo) UpsertRow(ctx context.Context, row domain.DerivedFeatureRow) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	averagesJSON, err := json.Marshal(row.Averages)
	if err != nil {
		return fmt.Errorf("failed to marshal averages: %w", err)
	}

	query := `
		INSERT INTO feature_snapshots
			(player_id, prop_type, as_of_date, averages, streak_type, streak_count,
			 win_rate_7, observations, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (player_id, prop_type, as_of_date)
		DO UPDATE SET averages = EXCLUDED.averages,
		              streak_type = EXCLUDED.streak_type,
		              streak_count = EXCLUDED.streak_count,
		              win_rate_7 = EXCLUDED.win_rate_7,
		              observations = EXCLUDED.observations,
		              generated_at = EXCLUDED.generated_at`

	_, err = r.db.ExecContext(ctx, query,
		row.PlayerID, row.PropType, row.AsOf, averagesJSON,
		row.Streak.Type, row.Streak.Count, row.WinRate7, row.Observed, row.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert feature row: %w", err)
	}
	return nil
}
