package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/statforge/propgrade/internal/domain"
	"github.com/statforge/propgrade/internal/features"
	"github.com/statforge/propgrade/internal/metrics"
	"github.com/statforge/propgrade/internal/persistence"
)

// historyLimit bounds the observation history pulled per coordinate. The
// widest window is 30 calendar days, so a season of daily games fits with
// room to spare.
const historyLimit = 90

// Coordinate names one feature row to build.
type Coordinate struct {
	PlayerID int64
	PropType domain.PropType
	AsOf     time.Time
}

// FeatureSummary is the accounting for one feature-building batch.
type FeatureSummary struct {
	Requested int           `json:"requested"`
	Written   int           `json:"written"`
	Errors    int           `json:"errors"`
	Elapsed   time.Duration `json:"elapsed"`
}

// FeatureBuilder computes and persists derived feature rows.
type FeatureBuilder struct {
	observations persistence.ObservationsRepo
	snapshots    persistence.FeaturesRepo
	windowDays   []int
	workers      int
	logger       zerolog.Logger
}

// NewFeatureBuilder wires a builder over the given stores. windowDays nil
// or empty falls back to the default calendar windows.
func NewFeatureBuilder(observations persistence.ObservationsRepo, snapshots persistence.FeaturesRepo, windowDays []int, workers int) *FeatureBuilder {
	if workers < 1 {
		workers = 1
	}
	if len(windowDays) == 0 {
		windowDays = features.DefaultWindowDays
	}
	return &FeatureBuilder{
		observations: observations,
		snapshots:    snapshots,
		windowDays:   windowDays,
		workers:      workers,
		logger:       log.With().Str("component", "features").Logger(),
	}
}

// Build computes feature rows for every coordinate with bounded
// parallelism. Coordinates are independent, so per-coordinate failures
// are counted and logged without stopping the batch. A leakage violation
// in the fetched history is the one failure logged at error level with
// the offending coordinate, since it means the store query contract is
// broken.
func (b *FeatureBuilder) Build(ctx context.Context, coords []Coordinate) (FeatureSummary, error) {
	start := time.Now()
	summary := FeatureSummary{Requested: len(coords)}
	if len(coords) == 0 {
		return summary, nil
	}

	b.logger.Info().Int("coordinates", len(coords)).Int("workers", b.workers).Msg("feature batch started")

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		queue = make(chan Coordinate)
	)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for coord := range queue {
				err := b.buildOne(ctx, coord)
				mu.Lock()
				if err != nil {
					summary.Errors++
				} else {
					summary.Written++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, coord := range coords {
		select {
		case queue <- coord:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	summary.Elapsed = time.Since(start)
	metrics.BatchDuration.WithLabelValues("features").Observe(summary.Elapsed.Seconds())
	b.logger.Info().
		Int("written", summary.Written).
		Int("errors", summary.Errors).
		Dur("elapsed", summary.Elapsed).
		Msg("feature batch finished")

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

func (b *FeatureBuilder) buildOne(ctx context.Context, coord Coordinate) error {
	clog := b.logger.With().
		Int64("player_id", coord.PlayerID).
		Str("prop_type", string(coord.PropType)).
		Time("as_of", coord.AsOf).
		Logger()

	history, err := b.observations.History(ctx, coord.PlayerID, coord.PropType, coord.AsOf, historyLimit)
	if err != nil {
		clog.Error().Err(err).Msg("history fetch failed")
		return err
	}
	if err := features.VerifyPrior(history, coord.AsOf); err != nil {
		if errors.Is(err, features.ErrLeakage) {
			clog.Error().Err(err).Msg("history query returned observations at or past the as-of boundary")
		}
		return err
	}

	row, err := features.BuildRow(coord.PlayerID, coord.PropType, coord.AsOf, history, b.windowDays)
	if err != nil {
		clog.Warn().Err(err).Msg("feature row rejected")
		return err
	}
	if err := b.snapshots.UpsertRow(ctx, row); err != nil {
		clog.Error().Err(err).Msg("persist feature row failed")
		return err
	}
	metrics.FeatureRows.Inc()
	return nil
}
