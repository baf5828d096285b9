package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mselser95/binarybot/internal/backtest"
	"github.com/mselser95/binarybot/internal/storage"
	"github.com/mselser95/binarybot/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay recorded sessions through the strategy pipeline",
	Long: `Replays every recording session that started on --date through
the Time-Above-0.5 pipeline and the simulated limit-order matcher,
then persists the run and prints its summary metrics.`,
	RunE: runBacktest,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(backtestCmd)
	backtestCmd.Flags().StringP("date", "d", "", "Recording session date, YYYY-MM-DD (default today)")
	backtestCmd.Flags().Float64P("capital", "c", 10000, "Initial capital")
	backtestCmd.Flags().String("mode", string(backtest.ModeLimit), "Execution mode: immediate or limit")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	repo, err := storage.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	rawDate, _ := cmd.Flags().GetString("date")
	date, err := parseDateFlag(rawDate)
	if err != nil {
		return fmt.Errorf("parse --date: %w", err)
	}

	capital, _ := cmd.Flags().GetFloat64("capital")
	mode, _ := cmd.Flags().GetString("mode")

	ctx := context.Background()
	sessions, err := loadSessionData(ctx, repo, date)
	if err != nil {
		return err
	}

	runCfg := backtest.RunConfig{
		InitialCapital: capital,
		ExecutionMode:  backtest.ExecutionMode(mode),
		ValidateTrades: true,
	}
	for _, sd := range sessions {
		runCfg.SessionIDs = append(runCfg.SessionIDs, sd.Session.ID)
	}

	params := config.DefaultStrategyParams()

	result, err := backtest.Run(runCfg, sessions, params)
	if err != nil {
		return fmt.Errorf("run backtest: %w", err)
	}

	record := storage.BacktestRunRecord{
		ID:             uuid.New().String(),
		SessionIDs:     runCfg.SessionIDs,
		StrategySlug:   "ta50",
		Params:         params,
		InitialCapital: capital,
		ExecutionMode:  runCfg.ExecutionMode,
		Result:         result,
	}
	if err := repo.SaveBacktestRun(ctx, record); err != nil {
		return fmt.Errorf("save backtest run: %w", err)
	}

	fmt.Printf("backtest %s: sessions=%d trades=%d final-equity=%.2f\n",
		record.ID, len(sessions), len(result.Trades), finalEquity(result, capital))

	return nil
}

func finalEquity(result backtest.RunResult, initialCapital float64) float64 {
	if len(result.Equity) == 0 {
		return initialCapital
	}
	return result.Equity[len(result.Equity)-1].Equity
}
