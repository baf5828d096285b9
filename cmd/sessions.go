package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/mselser95/binarybot/internal/backtest"
	"github.com/mselser95/binarybot/internal/storage"
)

// loadSessionData resolves every recording session starting on date
// into full backtest.SessionData, fetching each session's ticks and
// snapshots from the repository.
func loadSessionData(ctx context.Context, repo storage.Repository, date time.Time) ([]backtest.SessionData, error) {
	sessions, err := repo.GetSessionsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no recording sessions found for %s", date.Format("2006-01-02"))
	}

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}

	snapshots, err := repo.GetSnapshotsForSessions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	snapsBySession := make(map[string][]int, len(sessions))
	for i, snap := range snapshots {
		snapsBySession[snap.SessionID] = append(snapsBySession[snap.SessionID], i)
	}

	out := make([]backtest.SessionData, 0, len(sessions))
	for _, session := range sessions {
		ticks, err := repo.GetTicksBySession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("load ticks for session %s: %w", session.ID, err)
		}

		sd := backtest.SessionData{Session: session, Ticks: ticks}
		for _, idx := range snapsBySession[session.ID] {
			sd.Snapshots = append(sd.Snapshots, snapshots[idx])
		}
		out = append(out, sd)
	}

	return out, nil
}

func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
