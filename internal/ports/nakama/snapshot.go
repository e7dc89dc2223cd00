package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"chinchon/internal/app"
	"chinchon/internal/domain"
	"chinchon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// savedTable is what survives a terminated match: the table layout and the match
// record, so the players can reopen it on a new host.
type savedTable struct {
	Seats       [domain.MaxPlayers]string `json:"seats"`
	OwnerSeat   int                       `json:"owner_seat"`
	Creator     string                    `json:"creator"`
	Private     bool                      `json:"private"`
	Invitees    []string                  `json:"invitees,omitempty"`
	MaxPlayers  int                       `json:"max_players"`
	Scope       string                    `json:"scope"`
	BotsEnabled bool                      `json:"bots_enabled"`
	Match       json.RawMessage           `json:"match"`
}

func (st savedTable) seated(userID string) bool {
	for _, id := range st.Seats {
		if id != "" && id == userID {
			return true
		}
	}
	return false
}

func encodeTable(state *MatchState) ([]byte, error) {
	match, err := json.Marshal(state.Match)
	if err != nil {
		return nil, err
	}
	return json.Marshal(savedTable{
		Seats:       state.Seats,
		OwnerSeat:   state.OwnerSeat,
		Creator:     state.Invitation.Creator,
		Private:     state.Invitation.Private(),
		Invitees:    state.Invitation.Invitees(),
		MaxPlayers:  state.MaxSeats(),
		Scope:       state.Scope,
		BotsEnabled: state.BotsEnabled,
		Match:       match,
	})
}

func decodeTable(data []byte) (savedTable, error) {
	var st savedTable
	if err := json.Unmarshal(data, &st); err != nil {
		return savedTable{}, fmt.Errorf("decode saved table: %w", err)
	}
	return st, nil
}

// loadTable reads the table saved under key.
func loadTable(ctx context.Context, store ports.MatchStorePort, key string) (savedTable, error) {
	data, err := store.LoadMatch(ctx, key)
	if err != nil {
		return savedTable{}, err
	}
	return decodeTable(data)
}

// restore rebuilds state from the table saved under key and moves the snapshot to the
// new match id.
func (mh *matchHandler) restore(ctx context.Context, state *MatchState, key string) error {
	if mh.m.store == nil {
		return ports.ErrSnapshotNotFound
	}
	st, err := loadTable(ctx, mh.m.store, key)
	if err != nil {
		return err
	}
	match, err := state.App.RestoreMatch(st.Match)
	if err != nil {
		return err
	}

	var invitees []string
	if st.Private {
		invitees = st.Invitees
		if invitees == nil {
			invitees = []string{}
		}
	}
	state.Invitation = app.NewInvitation(st.Creator, invitees, st.MaxPlayers)
	state.Seats = st.Seats
	state.OwnerSeat = st.OwnerSeat
	state.Scope = st.Scope
	state.BotsEnabled = st.BotsEnabled
	state.Match = match
	for _, id := range st.Seats {
		if id == "" || isBotUserId(id) {
			continue
		}
		if err := state.Invitation.Accept(id); err != nil && !errors.Is(err, app.ErrAlreadyJoined) {
			return fmt.Errorf("reseat %s: %w", id, err)
		}
	}

	if state.Key != "" && state.Key != key {
		if err := mh.m.store.DeleteMatch(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// saveSnapshot stores a running match. Lobbies are not saved.
func (mh *matchHandler) saveSnapshot(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if mh.m.store == nil || state.Match == nil || state.Key == "" {
		return
	}
	if _, over := state.Match.IsMatchOver(); over {
		return
	}
	data, err := encodeTable(state)
	if err != nil {
		logger.Error("saveSnapshot: Failed to encode match %s: %v", state.Key, err)
		return
	}
	if err := mh.m.store.SaveMatch(ctx, state.Key, data); err != nil {
		logger.Error("saveSnapshot: %v", err)
	}
}

func (mh *matchHandler) deleteSnapshot(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if mh.m.store == nil || state.Key == "" {
		return
	}
	if err := mh.m.store.DeleteMatch(ctx, state.Key); err != nil {
		logger.Error("deleteSnapshot: %v", err)
	}
}
