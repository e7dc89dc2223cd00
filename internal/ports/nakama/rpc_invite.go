package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"chinchon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// InviteRequest asks for a token to a private table. An empty UserID signs an open
// invite usable by whoever receives it.
type InviteRequest struct {
	MatchID string `json:"match_id"`
	UserID  string `json:"user_id"`
}

type InviteResponse struct {
	Token string `json:"token"`
}

// rpcInvite lets the creator of a private table invite another player.
func (m *module) rpcInvite(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}
	if m.invites == nil {
		return "", runtime.NewError("invites are disabled", codeUnavailable)
	}
	var req InviteRequest
	if err := decodePayload(payload, &req); err != nil {
		return "", err
	}
	if req.MatchID == "" {
		return "", runtime.NewError("match_id is required", codeInvalidArgument)
	}

	match, err := nk.MatchGet(ctx, req.MatchID)
	if err != nil {
		logger.Error("RpcInvite [User:%s]: Failed to get match %s: %v", userID, req.MatchID, err)
		return "", runtime.NewError("match lookup failed", codeInternal)
	}
	if match == nil {
		return "", rpcError(ports.ErrSnapshotNotFound)
	}
	label, err := parseLabel(match.GetLabel().GetValue())
	if err != nil {
		logger.Error("RpcInvite [User:%s]: Bad label on %s: %v", userID, req.MatchID, err)
		return "", runtime.NewError("match lookup failed", codeInternal)
	}
	if label[labelKeyCreator] != userID {
		return "", runtime.NewError("only the table creator can invite", codePermissionDenied)
	}
	if private, _ := label[labelKeyPrivate].(bool); !private {
		return "", runtime.NewError("table is public", codeFailedPrecondition)
	}

	if req.UserID != "" {
		signal, _ := json.Marshal(map[string]string{"invite": req.UserID})
		if _, err := nk.MatchSignal(ctx, req.MatchID, string(signal)); err != nil {
			logger.Error("RpcInvite [User:%s]: Failed to signal %s: %v", userID, req.MatchID, err)
			return "", runtime.NewError("match signal failed", codeInternal)
		}
	}

	token, err := m.invites.Generate(req.MatchID, userID, req.UserID)
	if err != nil {
		logger.Error("RpcInvite [User:%s]: Failed to sign invite: %v", userID, err)
		return "", runtime.NewError("invite signing failed", codeInternal)
	}
	return encodeResponse(InviteResponse{Token: token})
}

// parseLabel decodes a match label written by matchHandler.label.
func parseLabel(raw string) (map[string]interface{}, error) {
	var label structpb.Struct
	if err := protojson.Unmarshal([]byte(raw), &label); err != nil {
		return nil, err
	}
	return label.AsMap(), nil
}
