package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// rpcQuickMatch returns a public lobby with a free seat, creating one owned by the caller
// when none exists.
func (m *module) rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	// Find any public lobby with at least one open seat.
	query := fmt.Sprintf("+label.%s:>=1 +label.%s:%s +label.%s:F", labelKeyOpen, labelKeyPhase, phaseLobby, labelKeyPrivate)

	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 3

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to list matches: %v", userID, err)
		return "", runtime.NewError("match list failed", codeInternal)
	}

	if len(matches) > 0 {
		logger.Info("RpcQuickMatch [User:%s]: Found existing match %s", userID, matches[0].MatchId)
		return encodeResponse(QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
	}

	// Create new match; seat/owner assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameChinchon, map[string]interface{}{
		"creator": userID,
		"private": false,
	})
	if err != nil {
		logger.Error("RpcQuickMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("match create failed", codeInternal)
	}

	logger.Info("RpcQuickMatch [User:%s]: Created new match %s", userID, matchID)
	return encodeResponse(QuickMatchResponse{MatchID: matchID, IsNew: true})
}

// callerID returns the authenticated user of an RPC.
func callerID(ctx context.Context) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("authentication required", codePermissionDenied)
	}
	return userID, nil
}

func decodePayload(payload string, v interface{}) error {
	if payload == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return runtime.NewError("invalid payload", codeInvalidArgument)
	}
	return nil
}

func encodeResponse(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("failed to encode response", codeInternal)
	}
	return string(b), nil
}

// rpcError converts err into a runtime error with a matching gRPC code.
func rpcError(err error) error {
	return runtime.NewError(err.Error(), rpcCode(err))
}
