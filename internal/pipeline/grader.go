// Package pipeline runs the batch orchestration: grading pending props
// against a day's final games and building derived feature snapshots. All
// concurrency is bounded here; the engine packages underneath stay
// synchronous and deterministic.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/grade"
	"github.com/statforge/propgrade/internal/metrics"
	"github.com/statforge/propgrade/internal/persistence"
	"github.com/statforge/propgrade/internal/resolve"
)

// Summary is the accounting for one grading batch. Considered always
// equals the sum of the other four buckets.
type Summary struct {
	RunID      uuid.UUID     `json:"run_id"`
	Considered int           `json:"considered"`
	Resolved   int           `json:"resolved"`
	DNP        int           `json:"dnp"`
	Skipped    int           `json:"skipped"`
	Errors     int           `json:"errors"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Grader grades batches of pending props.
type Grader struct {
	props        persistence.PropsRepo
	observations persistence.ObservationsRepo
	source       GameDataSource
	cache        GameDataCache
	workers      int
	logger       zerolog.Logger
}

// NewGrader wires a grader over the given stores and provider. cache may
// be nil to run without Redis. workers below 1 is clamped to 1.
func NewGrader(props persistence.PropsRepo, observations persistence.ObservationsRepo, source GameDataSource, cache GameDataCache, workers int) *Grader {
	if workers < 1 {
		workers = 1
	}
	return &Grader{
		props:        props,
		observations: observations,
		source:       source,
		cache:        cache,
		workers:      workers,
		logger:       log.With().Str("component", "grader").Logger(),
	}
}

// Grade resolves and grades every prop in the batch with a bounded worker
// pool. Individual prop failures are counted and logged, never returned:
// one bad prop cannot sink the batch. The returned error covers only
// context cancellation.
func (g *Grader) Grade(ctx context.Context, props []domain.Prop) (Summary, error) {
	start := time.Now()
	summary := Summary{RunID: uuid.New(), Considered: len(props)}
	if len(props) == 0 {
		return summary, nil
	}

	batch := newBatchSource(g.source, g.cache)
	chain := resolve.NewChain(batch)

	logger := g.logger.With().Str("run_id", summary.RunID.String()).Logger()
	logger.Info().Int("props", len(props)).Int("workers", g.workers).Msg("grading batch started")

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		queue = make(chan domain.Prop)
	)

	record := func(bucket *int) {
		mu.Lock()
		*bucket++
		mu.Unlock()
	}

	for i := 0; i < g.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for prop := range queue {
				switch g.gradeOne(ctx, chain, logger, prop) {
				case domain.StatusResolved:
					record(&summary.Resolved)
				case domain.StatusDNP:
					record(&summary.DNP)
				case domain.StatusSkipped:
					record(&summary.Skipped)
				default:
					record(&summary.Errors)
				}
			}
		}()
	}

feed:
	for _, prop := range props {
		select {
		case queue <- prop:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	summary.Elapsed = time.Since(start)
	metrics.BatchDuration.WithLabelValues("grade").Observe(summary.Elapsed.Seconds())
	logger.Info().
		Int("resolved", summary.Resolved).
		Int("dnp", summary.DNP).
		Int("skipped", summary.Skipped).
		Int("errors", summary.Errors).
		Dur("elapsed", summary.Elapsed).
		Msg("grading batch finished")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// gradeOne runs the full resolve-grade-persist path for a single prop and
// returns the terminal status it reached.
func (g *Grader) gradeOne(ctx context.Context, chain *resolve.Chain, logger zerolog.Logger, prop domain.Prop) domain.Status {
	plog := logger.With().
		Str("prop_id", prop.ID.String()).
		Int64("player_id", prop.PlayerID).
		Int64("game_id", prop.GameID).
		Str("prop_type", string(prop.PropType)).
		Logger()

	if prop.Terminal() {
		plog.Debug().Str("status", string(prop.Status)).Msg("prop already terminal, skipping")
		metrics.PropsGraded.WithLabelValues(string(domain.StatusSkipped)).Inc()
		return domain.StatusSkipped
	}
	if err := prop.Validate(); err != nil {
		plog.Warn().Err(err).Msg("invalid prop, skipping")
		g.markStatus(ctx, plog, prop.ID, domain.StatusSkipped)
		metrics.PropsGraded.WithLabelValues(string(domain.StatusSkipped)).Inc()
		return domain.StatusSkipped
	}

	resolution, err := chain.Resolve(ctx, prop.PlayerID, prop.GameID, prop.PropType)
	if err != nil {
		plog.Error().Err(err).Msg("resolution failed")
		g.markStatus(ctx, plog, prop.ID, domain.StatusError)
		metrics.PropsGraded.WithLabelValues(string(domain.StatusError)).Inc()
		return domain.StatusError
	}
	metrics.ResolutionSource.WithLabelValues(string(resolution.Source)).Inc()

	if !resolution.Resolved() {
		plog.Info().Msg("no stat attributable, marking dnp")
		g.markStatus(ctx, plog, prop.ID, domain.StatusDNP)
		g.recordObservation(ctx, plog, prop, 0, false, nil)
		metrics.PropsGraded.WithLabelValues(string(domain.StatusDNP)).Inc()
		return domain.StatusDNP
	}

	verdict := grade.Grade(resolution.Value, prop.Line, prop.Direction)
	outcome, ok := verdict.Outcome()
	if !ok {
		plog.Error().Float64("value", resolution.Value).Msg("ungradeable value")
		g.markStatus(ctx, plog, prop.ID, domain.StatusError)
		metrics.PropsGraded.WithLabelValues(string(domain.StatusError)).Inc()
		return domain.StatusError
	}

	if err := prop.Resolve(outcome, resolution.Value, time.Now().UTC()); err != nil {
		plog.Error().Err(err).Msg("resolve transition rejected")
		metrics.PropsGraded.WithLabelValues(string(domain.StatusError)).Inc()
		return domain.StatusError
	}
	if err := g.props.MarkResolved(ctx, prop); err != nil {
		if err == persistence.ErrAlreadyResolved {
			plog.Debug().Msg("lost resolution race, skipping")
			metrics.PropsGraded.WithLabelValues(string(domain.StatusSkipped)).Inc()
			return domain.StatusSkipped
		}
		plog.Error().Err(err).Msg("persist resolution failed")
		metrics.PropsGraded.WithLabelValues(string(domain.StatusError)).Inc()
		return domain.StatusError
	}

	g.recordObservation(ctx, plog, prop, resolution.Value, true, &outcome)
	plog.Info().
		Float64("value", resolution.Value).
		Str("source", string(resolution.Source)).
		Str("outcome", string(outcome)).
		Msg("prop resolved")
	metrics.PropsGraded.WithLabelValues(string(domain.StatusResolved)).Inc()
	return domain.StatusResolved
}

func (g *Grader) markStatus(ctx context.Context, logger zerolog.Logger, id uuid.UUID, status domain.Status) {
	if err := g.props.MarkStatus(ctx, id, status); err != nil {
		logger.Error().Err(err).Str("status", string(status)).Msg("persist status failed")
	}
}

func (g *Grader) recordObservation(ctx context.Context, logger zerolog.Logger, prop domain.Prop, value float64, valid bool, outcome *domain.Outcome) {
	obs := domain.Observation{
		PlayerID: prop.PlayerID,
		GameID:   prop.GameID,
		PropType: prop.PropType,
		Date:     prop.GameDate,
		Value:    value,
		Valid:    valid,
		Outcome:  outcome,
	}
	if err := g.observations.Record(ctx, obs); err != nil {
		logger.Error().Err(err).Msg("record observation failed")
	}
}
