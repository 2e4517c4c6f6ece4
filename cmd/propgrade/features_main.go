package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/statforge/propgrade/internal/application"
	"github.com/statforge/propgrade/internal/persistence/postgres"
	"github.com/statforge/propgrade/internal/pipeline"
)

// runFeatures rebuilds feature snapshots for every stream that was active
// inside the lookback horizon.
func runFeatures(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	asOfArg, _ := cmd.Flags().GetString("as-of")
	lookbackDays, _ := cmd.Flags().GetInt("lookback-days")

	cfg, err := application.LoadConfig(configPath)
	if err != nil {
		return err
	}
	asOfDate, err := resolveDate(asOfArg, time.Now().UTC())
	if err != nil {
		return err
	}
	asOf, err := time.Parse(dateLayout, asOfDate)
	if err != nil {
		return err
	}
	if lookbackDays < 1 {
		return fmt.Errorf("lookback-days must be positive, got %d", lookbackDays)
	}

	ctx, cancel := signalContext()
	defer cancel()

	db, err := postgres.Connect(cfg.Postgres.StoreConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	queryTimeout := cfg.Postgres.StoreConfig().QueryTimeout
	obsRepo := postgres.NewObservationsRepo(db, queryTimeout)
	featuresRepo := postgres.NewFeaturesRepo(db, queryTimeout)

	since := asOf.AddDate(0, 0, -lookbackDays)
	pairs, err := obsRepo.ActivePairs(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to enumerate active streams: %w", err)
	}
	coords := make([]pipeline.Coordinate, 0, len(pairs))
	for _, pair := range pairs {
		coords = append(coords, pipeline.Coordinate{
			PlayerID: pair.PlayerID,
			PropType: pair.PropType,
			AsOf:     asOf,
		})
	}
	log.Info().Time("as_of", asOf).Int("streams", len(coords)).Msg("feature run prepared")

	builder := pipeline.NewFeatureBuilder(obsRepo, featuresRepo, cfg.Features.WindowDays, cfg.Features.Workers)
	summary, err := builder.Build(ctx, coords)
	if err != nil {
		return err
	}
	return printJSON(summary)
}
