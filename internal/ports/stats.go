package ports

import "context"

// StatsScopeTotal is the scope that aggregates every table a player has finished on.
const StatsScopeTotal = "total"

// StatsRecord is the win/loss tally of one player in one scope.
type StatsRecord struct {
	Wins   int64
	Losses int64
}

// StatsPort persists per-player win/loss counters.
type StatsPort interface {
	// IncrementWin adds a win for userID in scope.
	IncrementWin(ctx context.Context, scope, userID string) error

	// IncrementLoss adds a loss for userID in scope.
	IncrementLoss(ctx context.Context, scope, userID string) error

	// Get returns the counters of userID in scope. Missing counters read as zero.
	Get(ctx context.Context, scope, userID string) (StatsRecord, error)
}
