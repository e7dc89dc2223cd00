package app

import (
	"context"
	"fmt"

	"chinchon/internal/ports"
)

// PlayerStats is the win/loss summary shown to a player.
type PlayerStats struct {
	Scope ports.StatsRecord
	Total ports.StatsRecord
	// WinRate is the percentage of won matches in scope, truncated.
	WinRate int64
}

// StatsService records finished matches and reads player statistics.
type StatsService struct {
	stats ports.StatsPort
}

func NewStatsService(stats ports.StatsPort) *StatsService {
	return &StatsService{stats: stats}
}

// RecordMatch credits a win to winner and a loss to each loser, both in scope and in the
// total scope. Bots should be filtered out by the caller.
func (s *StatsService) RecordMatch(ctx context.Context, scope, winner string, losers []string) error {
	if s.stats == nil {
		return fmt.Errorf("stats service not configured")
	}
	for _, sc := range scopes(scope) {
		if winner != "" {
			if err := s.stats.IncrementWin(ctx, sc, winner); err != nil {
				return fmt.Errorf("failed to record win for %s: %w", winner, err)
			}
		}
		for _, loser := range losers {
			if err := s.stats.IncrementLoss(ctx, sc, loser); err != nil {
				return fmt.Errorf("failed to record loss for %s: %w", loser, err)
			}
		}
	}
	return nil
}

// Get returns the player's counters in scope and in total.
func (s *StatsService) Get(ctx context.Context, scope, userID string) (PlayerStats, error) {
	if s.stats == nil {
		return PlayerStats{}, fmt.Errorf("stats service not configured")
	}
	if scope == "" {
		scope = ports.StatsScopeTotal
	}
	scoped, err := s.stats.Get(ctx, scope, userID)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("failed to read stats: %w", err)
	}
	total := scoped
	if scope != ports.StatsScopeTotal {
		if total, err = s.stats.Get(ctx, ports.StatsScopeTotal, userID); err != nil {
			return PlayerStats{}, fmt.Errorf("failed to read stats: %w", err)
		}
	}
	return PlayerStats{Scope: scoped, Total: total, WinRate: winRate(scoped)}, nil
}

func winRate(r ports.StatsRecord) int64 {
	played := r.Wins + r.Losses
	if played == 0 {
		return 0
	}
	return r.Wins * 100 / played
}

func scopes(scope string) []string {
	if scope == "" || scope == ports.StatsScopeTotal {
		return []string{ports.StatsScopeTotal}
	}
	return []string{scope, ports.StatsScopeTotal}
}
