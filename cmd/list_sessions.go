package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mselser95/binarybot/internal/storage"
	"github.com/mselser95/binarybot/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listSessionsCmd = &cobra.Command{
	Use:   "list-sessions",
	Short: "List recorded sessions for a date",
	Long:  `Lists every recording session whose start time falls on --date.`,
	RunE:  runListSessions,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listSessionsCmd)
	listSessionsCmd.Flags().StringP("date", "d", "", "Recording session date, YYYY-MM-DD (default today)")
}

func runListSessions(cmd *cobra.Command, args []string) error {
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

	sessions, err := repo.GetSessionsForDate(context.Background(), date)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintln(w, "ID\tMARKET\tSTART\tEND")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.MarketName, s.StartTime.Format("15:04:05"), s.EndTime.Format("15:04:05"))
	}

	return nil
}
