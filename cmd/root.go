package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "binarybot",
	Short: "Binary prediction-market trading bot",
	Long: `binarybot trades binary (YES/NO) prediction markets.

It runs one or more bot instances against a statically configured
market manifest, each driven by either the TA50 directional strategy
or the complementary-pair arbitrage engine, and can replay historical
sessions for backtesting or parameter optimization.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Flags can be added here if needed
}
