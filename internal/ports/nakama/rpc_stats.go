package nakama

import (
	"context"
	"database/sql"

	"chinchon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

type StatsRequest struct {
	Scope string `json:"scope"`
}

type statsCounters struct {
	Wins   int64 `json:"wins"`
	Losses int64 `json:"losses"`
}

type StatsResponse struct {
	Scope   string        `json:"scope"`
	Stats   statsCounters `json:"stats"`
	Total   statsCounters `json:"total"`
	WinRate int64         `json:"win_rate"`
}

// rpcStats returns the caller's record in a scope and overall.
func (m *module) rpcStats(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	if m.stats == nil {
		return "", runtime.NewError("stats are disabled", codeUnavailable)
	}
	var req StatsRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.Scope == "" {
		req.Scope = ports.StatsScopeTotal
	}

	st, err := m.stats.Get(ctx, req.Scope, userID)
	if err != nil {
		logger.Error("RpcStats [User:%s]: %v", userID, err)
		return "", runtime.NewError("stats lookup failed", codeInternal)
	}
	return encodeResponse(StatsResponse{
		Scope:   req.Scope,
		Stats:   statsCounters{Wins: st.Scope.Wins, Losses: st.Scope.Losses},
		Total:   statsCounters{Wins: st.Total.Wins, Losses: st.Total.Losses},
		WinRate: st.WinRate,
	})
}
