package cmd

import (
	"fmt"

	"github.com/mselser95/binarybot/internal/app"
	"github.com/mselser95/binarybot/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured bots",
	Long: `Starts every bot listed in the bot manifest, each driven by its
configured strategy (TA50 or arbitrage) against a live market feed.

Use --bots to point at a manifest other than ./bots.json.`,
	RunE: runBots,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("bots", "b", "", "Path to the bot manifest JSON file (default bots.json)")
}

func runBots(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	manifestPath, _ := cmd.Flags().GetString("bots")

	opts := &app.Options{
		BotManifestPath: manifestPath,
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
