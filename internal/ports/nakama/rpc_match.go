package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"chinchon/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// CreateMatchRequest opens a table. A private table admits only the creator and the
// invitees.
type CreateMatchRequest struct {
	Private    bool     `json:"private"`
	Invitees   []string `json:"invitees"`
	MaxPlayers int      `json:"max_players"`
	Scope      string   `json:"scope"`
	Bots       *bool    `json:"bots"`
}

// CreateMatchResponse carries the new match and one invite token per invitee.
type CreateMatchResponse struct {
	MatchID string            `json:"match_id"`
	Invites map[string]string `json:"invites,omitempty"`
}

func (m *module) rpcCreateMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	req := CreateMatchRequest{MaxPlayers: domain.MaxPlayers}
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.MaxPlayers < domain.MinPlayers || req.MaxPlayers > domain.MaxPlayers {
		return "", runtime.NewError(fmt.Sprintf("max_players must be between %d and %d", domain.MinPlayers, domain.MaxPlayers), codeInvalidArgument)
	}

	invitees := slices.DeleteFunc(slices.Clone(req.Invitees), func(id string) bool { return id == "" || id == userID })
	params := map[string]interface{}{
		"creator":     userID,
		"private":     req.Private,
		"max_players": req.MaxPlayers,
		"scope":       req.Scope,
	}
	if req.Private {
		params["invitees"] = invitees
	}
	if req.Bots != nil {
		params["bots"] = *req.Bots
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameChinchon, params)
	if err != nil {
		logger.Error("RpcCreateMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("match create failed", codeInternal)
	}
	logger.Info("RpcCreateMatch [User:%s]: Created match %s (private=%t)", userID, matchID, req.Private)

	resp := CreateMatchResponse{MatchID: matchID}
	if req.Private && m.invites != nil {
		resp.Invites = make(map[string]string, len(invitees))
		for _, invitee := range invitees {
			token, err := m.invites.Generate(matchID, userID, invitee)
			if err != nil {
				logger.Error("RpcCreateMatch [User:%s]: Failed to sign invite for %s: %v", userID, invitee, err)
				return "", runtime.NewError("invite signing failed", codeInternal)
			}
			resp.Invites[invitee] = token
		}
	}
	return encodeResponse(resp)
}

// RestoreMatchRequest names a saved match.
type RestoreMatchRequest struct {
	MatchID string `json:"match_id"`
}

// rpcRestoreMatch reopens a saved match on this node. Only its players may do so.
func (m *module) rpcRestoreMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	var req RestoreMatchRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.MatchID == "" {
		return "", runtime.NewError("match_id is required", codeInvalidArgument)
	}

	st, err := loadTable(ctx, m.store, req.MatchID)
	if err != nil {
		logger.Warn("RpcRestoreMatch [User:%s]: Cannot load %s: %v", userID, req.MatchID, err)
		return "", rpcError(err)
	}
	if !st.seated(userID) {
		return "", runtime.NewError("not a player of this match", codePermissionDenied)
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameChinchon, map[string]interface{}{"restore": req.MatchID})
	if err != nil {
		logger.Error("RpcRestoreMatch [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("match create failed", codeInternal)
	}
	logger.Info("RpcRestoreMatch [User:%s]: Restored %s as %s", userID, req.MatchID, matchID)
	return encodeResponse(QuickMatchResponse{MatchID: matchID, IsNew: true})
}
