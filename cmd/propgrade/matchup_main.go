package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statforge/propgrade/internal/application"
	"github.com/statforge/propgrade/internal/matchup"
	"github.com/statforge/propgrade/internal/provider"
)

// runMatchup prints the within-game batter-versus-pitcher aggregate.
func runMatchup(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	gameID, _ := cmd.Flags().GetInt64("game")
	batterID, _ := cmd.Flags().GetInt64("batter")
	pitcherID, _ := cmd.Flags().GetInt64("pitcher")

	cfg, err := application.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := provider.NewClient(cfg.Provider.ClientConfig())
	events, err := client.PlayLog(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to fetch play log for game %d: %w", gameID, err)
	}

	if pitcherID == 0 {
		latest, ok := matchup.LatestPitcherFor(batterID, events)
		if !ok {
			return fmt.Errorf("batter %d has no plate appearances in game %d", batterID, gameID)
		}
		pitcherID = latest
	}

	agg := matchup.Aggregate(batterID, pitcherID, events)
	if agg == nil {
		return fmt.Errorf("no plate appearances between batter %d and pitcher %d in game %d", batterID, pitcherID, gameID)
	}
	return printJSON(agg)
}
