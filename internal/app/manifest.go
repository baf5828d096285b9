package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mselser95/binarybot/pkg/types"
)

// BotManifestEntry is one statically configured live bot: the market it
// trades, which strategy core drives it, and the sizing metadata the
// tick cache needs before the first snapshot arrives. spec.md leaves
// how bots are provisioned outside the Repository/MarketFeed/
// OrderGateway interfaces it names, so this is the thin on-disk format
// the `run` command reads, analogous to the teacher's single
// Gamma-API-discovered market replaced by an explicit list.
type BotManifestEntry struct {
	ID             string            `json:"id"`
	MarketID       string            `json:"market_id"`
	YesTokenID     string            `json:"yes_token_id"`
	NoTokenID      string            `json:"no_token_id"`
	StrategySlug   string            `json:"strategy_slug"`
	Mode           string            `json:"mode"`
	InitialCapital float64           `json:"initial_capital"`
	TickSize       float64           `json:"tick_size"`
	MinSize        float64           `json:"min_size"`
	MarketEndTime  string            `json:"market_end_time"`
	StrategyConfig map[string]string `json:"strategy_config"`
}

// loadBotManifest reads a JSON array of BotManifestEntry from path.
func loadBotManifest(path string) ([]BotManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bot manifest: %w", err)
	}

	var entries []BotManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse bot manifest: %w", err)
	}

	return entries, nil
}

// toBotInstance converts a manifest entry into the persistence/strategy
// record types.BotInstance carries, folding market_end_time into
// StrategyConfig the way internal/bot.marketEndTime expects to read it.
func (e BotManifestEntry) toBotInstance() types.BotInstance {
	cfg := make(map[string]string, len(e.StrategyConfig)+1)
	for k, v := range e.StrategyConfig {
		cfg[k] = v
	}
	if e.MarketEndTime != "" {
		cfg["market_end_time"] = e.MarketEndTime
	}

	mode := types.ModeDryRun
	if e.Mode == string(types.ModeLive) {
		mode = types.ModeLive
	}

	return types.BotInstance{
		ID:             e.ID,
		MarketID:       e.MarketID,
		StrategySlug:   e.StrategySlug,
		Mode:           mode,
		StrategyConfig: cfg,
		State:          types.BotIdle,
	}
}
