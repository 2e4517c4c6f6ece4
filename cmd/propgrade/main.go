package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	appName = "propgrade"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Player-prop stat resolution and feature derivation",
		Version: version,
		Long: `propgrade resolves player-prop bets against final game statistics and
derives leakage-safe rolling features for downstream models.

Grading walks a two-step resolution chain (official boxscore, then
play-by-play reconstruction), classifies non-participation, and applies
win/loss/push verdicts idempotently. Feature runs rebuild point-in-time
rolling averages, streaks, and win rates per player and prop type.`,
	}
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		// accept snake_case spellings of every flag
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	rootCmd.PersistentFlags().String("config", "config/config.yaml", "Path to YAML configuration")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Force JSON log output even on a terminal")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
			log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		}
	}

	gradeCmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade pending props for a day's final games",
		Long:  "Fetches the day's final games, resolves each pending prop through the boxscore and play-by-play chain, and applies win/loss/push verdicts",
		RunE:  runGrade,
	}
	gradeCmd.Flags().String("date", "", "Game date (YYYY-MM-DD), defaults to yesterday")
	gradeCmd.Flags().Int("limit", 0, "Cap on props per run (0 uses the configured maximum)")

	featuresCmd := &cobra.Command{
		Use:   "features",
		Short: "Rebuild derived feature snapshots",
		Long:  "Recomputes rolling averages, streaks, and win rates for every active (player, prop type) stream as of the given date",
		RunE:  runFeatures,
	}
	featuresCmd.Flags().String("as-of", "", "Evaluation date (YYYY-MM-DD), defaults to today")
	featuresCmd.Flags().Int("lookback-days", 30, "How far back a stream must have an observation to be rebuilt")

	matchupCmd := &cobra.Command{
		Use:   "matchup",
		Short: "Batter-versus-pitcher aggregate for one game",
		Long:  "Reconstructs the within-game plate-appearance history between a batter and a pitcher from the play-by-play log",
		RunE:  runMatchup,
	}
	matchupCmd.Flags().Int64("game", 0, "Game id (required)")
	matchupCmd.Flags().Int64("batter", 0, "Batter player id (required)")
	matchupCmd.Flags().Int64("pitcher", 0, "Pitcher player id (defaults to the batter's most recent opposing pitcher)")
	_ = matchupCmd.MarkFlagRequired("game")
	_ = matchupCmd.MarkFlagRequired("batter")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Start the monitoring HTTP server",
		Long:  "Serves /health and Prometheus /metrics for the grading and feature pipelines",
		RunE:  runMonitor,
	}
	monitorCmd.Flags().String("addr", "", "Listen address (overrides monitor.addr from config)")

	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(matchupCmd)
	rootCmd.AddCommand(monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
