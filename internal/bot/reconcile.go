package bot

import (
	"context"

	"go.uber.org/zap"

	"github.com/mselser95/binarybot/internal/storage"
	"github.com/mselser95/binarybot/pkg/types"
)

// Reconcile rebuilds an Instance's ledger from persisted positions so a
// restarted process doesn't re-trade a market it already holds a
// position in. Dry-run bots skip reconciliation entirely, mirroring
// kalshi-btc15m's reconcilePositions bailing out under cfg.DryRun since
// paper positions don't outlive a process restart.
func Reconcile(ctx context.Context, repo storage.Repository, in *Instance, logger *zap.Logger) error {
	if in.Bot.Mode == types.ModeDryRun {
		logger.Info("skipping-position-reconciliation-dry-run", zap.String("bot_id", in.Bot.ID))
		return nil
	}

	positions, err := repo.GetPositionsForBot(ctx, in.Bot.ID)
	if err != nil {
		return err
	}

	in.Lock()
	defer in.Unlock()

	for _, pos := range positions {
		if pos.Size <= 0 {
			continue
		}
		switch pos.Outcome {
		case types.Yes:
			in.Book.Yes = pos
		case types.No:
			in.Book.No = pos
		}
		logger.Info("position-reconciled",
			zap.String("bot_id", in.Bot.ID),
			zap.String("outcome", string(pos.Outcome)),
			zap.Float64("size", pos.Size),
			zap.Float64("avg_entry", pos.AvgEntry))
	}

	return nil
}
