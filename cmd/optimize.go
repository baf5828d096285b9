package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/backtest"
	"github.com/mselser95/binarybot/internal/optimizer"
	"github.com/mselser95/binarybot/internal/performance"
	"github.com/mselser95/binarybot/internal/storage"
	"github.com/mselser95/binarybot/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Phased parameter search over recorded sessions",
	Long: `Runs the multi-phase optimizer over the Time-Above-0.5 strategy
parameters, evaluating every candidate as a full backtest replay of
the recording sessions that started on --date.`,
	RunE: runOptimize,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(optimizeCmd)
	optimizeCmd.Flags().StringP("date", "d", "", "Recording session date, YYYY-MM-DD (default today)")
	optimizeCmd.Flags().Float64P("capital", "c", 10000, "Initial capital used by every evaluation")
}

func runOptimize(cmd *cobra.Command, args []string) error {
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

	ctx := context.Background()
	sessions, err := loadSessionData(ctx, repo, date)
	if err != nil {
		return err
	}

	sessionIDs := make([]string, len(sessions))
	for i, sd := range sessions {
		sessionIDs[i] = sd.Session.ID
	}

	eval := func(_ context.Context, params config.StrategyParams) (performance.Metrics, error) {
		result, err := backtest.Run(backtest.RunConfig{
			SessionIDs:     sessionIDs,
			InitialCapital: capital,
			ExecutionMode:  backtest.ModeLimit,
		}, sessions, params)
		if err != nil {
			return performance.Metrics{}, err
		}
		return performance.Compute(capital, result.Equity, result.Trades), nil
	}

	opt := optimizer.New(logger, eval)
	go logOptimizerProgress(opt, logger)

	base := config.DefaultStrategyParams()
	phases := defaultOptimizationPhases()

	phaseResults, best, err := opt.Run(ctx, base, phases)
	if err != nil {
		return fmt.Errorf("run optimizer: %w", err)
	}

	record := storage.OptimizationRunRecord{
		ID:           uuid.New().String(),
		SessionIDs:   sessionIDs,
		StrategySlug: "ta50",
		BaseParams:   base,
		BestParams:   best,
	}
	if err := repo.SaveOptimizationRun(ctx, record, phaseResults); err != nil {
		return fmt.Errorf("save optimization run: %w", err)
	}

	fmt.Printf("optimize %s: phases=%d best-alpha=%.3f best-beta=%.3f\n",
		record.ID, len(phaseResults), best.Alpha, best.Beta)

	return nil
}

func logOptimizerProgress(opt *optimizer.Optimizer, logger *zap.Logger) {
	for p := range opt.Progress() {
		logger.Info("optimizer-progress",
			zap.Int("phase", p.PhaseNumber),
			zap.String("phase-name", p.PhaseName),
			zap.Int("evaluated", p.Evaluated),
			zap.Int("phase-total", p.PhaseTotal),
			zap.Float64("overall-percent", p.OverallPercent),
			zap.Float64("best-score", p.BestScore))
	}
}

// defaultOptimizationPhases sweeps the theta time scaler (T0, theta_b)
// and the sizing gain k ahead of the terminal multi-stage refinement
// (spec.md §4.12 "sequential phases narrowing the search space").
func defaultOptimizationPhases() []optimizer.Phase {
	return []optimizer.Phase{
		{
			Number: 1,
			Name:   "theta-scaler",
			ParameterRanges: []optimizer.ParameterRange{
				{Name: "T0", Min: 1.5, Max: 5.0, Step: 0.5},
				{Name: "theta_b", Min: 0.5, Max: 2.5, Step: 0.5},
			},
			OptimizeMetric: optimizer.MetricSharpe,
			TopN:           5,
			Algorithm:      optimizer.AlgorithmExhaustive,
		},
		{
			Number: 2,
			Name:   "sizing-gain",
			ParameterRanges: []optimizer.ParameterRange{
				{Name: "k", Min: 0.1, Max: 1.0, Step: 0.1},
			},
			OptimizeMetric: optimizer.MetricSharpe,
			TopN:           5,
			Algorithm:      optimizer.AlgorithmExhaustive,
		},
		{
			Number:            3,
			Name:              "terminal-refinement",
			OptimizeMetric:    optimizer.MetricComposite,
			TopN:              1,
			Algorithm:         optimizer.AlgorithmMultiStage,
			RandomSampleCount: 50,
		},
	}
}
