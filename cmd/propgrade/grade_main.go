package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/statforge/propgrade/internal/application"
	"github.com/statforge/propgrade/internal/cache"
	"github.com/statforge/propgrade/internal/persistence/postgres"
	"github.com/statforge/propgrade/internal/pipeline"
	"github.com/statforge/propgrade/internal/provider"
)

const dateLayout = "2006-01-02"

// runGrade is the day-level grading flow: final games for the date, then
// every pending prop attached to them.
func runGrade(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	dateArg, _ := cmd.Flags().GetString("date")
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := application.LoadConfig(configPath)
	if err != nil {
		return err
	}
	date, err := resolveDate(dateArg, time.Now().UTC().AddDate(0, 0, -1))
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = cfg.Grading.MaxProps
	}

	ctx, cancel := signalContext()
	defer cancel()

	db, err := postgres.Connect(cfg.Postgres.StoreConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	var gameCache pipeline.GameDataCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.DefaultTTL())
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		gameCache = redisCache
	}

	client := provider.NewClient(cfg.Provider.ClientConfig())
	queryTimeout := cfg.Postgres.StoreConfig().QueryTimeout
	propsRepo := postgres.NewPropsRepo(db, queryTimeout)
	obsRepo := postgres.NewObservationsRepo(db, queryTimeout)

	log.Info().Str("date", date).Msg("fetching final games")
	gameIDs, err := client.FinalGames(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to fetch final games: %w", err)
	}
	if len(gameIDs) == 0 {
		log.Info().Str("date", date).Msg("no final games, nothing to grade")
		return nil
	}

	props, err := propsRepo.ListPending(ctx, gameIDs, limit)
	if err != nil {
		return fmt.Errorf("failed to list pending props: %w", err)
	}
	log.Info().Int("games", len(gameIDs)).Int("props", len(props)).Msg("grading run prepared")

	grader := pipeline.NewGrader(propsRepo, obsRepo, client, gameCache, cfg.Grading.Workers)
	summary, err := grader.Grade(ctx, props)
	if err != nil {
		return err
	}
	return printJSON(summary)
}

// resolveDate validates a YYYY-MM-DD argument, substituting the fallback
// when empty.
func resolveDate(arg string, fallback time.Time) (string, error) {
	if arg == "" {
		return fallback.Format(dateLayout), nil
	}
	if _, err := time.Parse(dateLayout, arg); err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", arg)
	}
	return arg, nil
}

// signalContext cancels on SIGINT/SIGTERM so a batch drains cleanly.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
