package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/persistence"
)

// propsRepo implements persistence.PropsRepo for PostgreSQL.
type propsRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPropsRepo creates a PostgreSQL props repository.
func NewPropsRepo(db *sqlx.DB, timeout time.Duration) persistence.PropsRepo {
	return &propsRepo{db: db, timeout: timeout}
}

func (r *propsRepo) ListPending(ctx context.Context, gameIDs []int64, limit int) ([]domain.Prop, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if len(gameIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, player_id, game_id, game_date, prop_type, line, direction,
		       status, outcome, result, predicted_outcome, was_correct,
		       created_at, resolved_at
		FROM props
		WHERE status = 'pending' AND game_id = ANY($1)
		ORDER BY created_at ASC
		LIMIT $2`

	var props []domain.Prop
	if err := r.db.SelectContext(ctx, &props, query, pq.Array(gameIDs), limit); err != nil {
		return nil, fmt.Errorf("failed to list pending props: %w", err)
	}
	return props, nil
}

func (r *propsRepo) MarkResolved(ctx context.Context, prop domain.Prop) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if prop.Status != domain.StatusResolved || prop.Outcome == nil || prop.Result == nil {
		return fmt.Errorf("prop %s: refusing to persist a non-resolved state as resolved", prop.ID)
	}

	// the status predicate makes the terminal write single-shot
	query := `
		UPDATE props
		SET status = $2, outcome = $3, result = $4, was_correct = $5, resolved_at = $6
		WHERE id = $1 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query,
		prop.ID, prop.Status, *prop.Outcome, *prop.Result, prop.WasCorrect, prop.ResolvedAt)
	if err != nil {
		return fmt.Errorf("failed to mark prop %s resolved: %w", prop.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for prop %s: %w", prop.ID, err)
	}
	if affected == 0 {
		return persistence.ErrAlreadyResolved
	}
	return nil
}

func (r *propsRepo) MarkStatus(ctx context.Context, id uuid.UUID, status domain.Status) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if status == domain.StatusResolved {
		return fmt.Errorf("prop %s: resolved status requires MarkResolved", id)
	}

	query := `
		UPDATE props
		SET status = $2, outcome = NULL, result = NULL
		WHERE id = $1 AND status = 'pending'`

	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to mark prop %s as %s: %w", id, status, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for prop %s: %w", id, err)
	}
	if affected == 0 {
		return persistence.ErrAlreadyResolved
	}
	return nil
}

// GetByID fetches one prop, mostly for audit tooling.
func (r *propsRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prop, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, player_id, game_id, game_date, prop_type, line, direction,
		       status, outcome, result, predicted_outcome, was_correct,
		       created_at, resolved_at
		FROM props
		WHERE id = $1`

	var prop domain.Prop
	if err := r.db.GetContext(ctx, &prop, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prop %s: %w", id, err)
	}
	return &prop, nil
}
