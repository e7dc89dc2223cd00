package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"chinchon/internal/app"
	"chinchon/internal/config"
	"chinchon/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

func userCtx(userID string) context.Context {
	return context.WithValue(context.Background(), runtime.RUNTIME_CTX_USER_ID, userID)
}

func newTestModule(nk *fakeNakama) *module {
	return &module{
		cfg:     &config.GameConfig{TurnDurationSeconds: 60, IdleTimeoutHours: 24},
		store:   NewNakamaMatchStore(nk),
		invites: app.NewInviteService("test-secret", "chinchon", time.Hour),
	}
}

func errCode(t *testing.T, err error) int {
	t.Helper()
	var rerr *runtime.Error
	if !errors.As(err, &rerr) {
		t.Fatalf("expected runtime error, got %v", err)
	}
	return rerr.Code
}

// privateLabel builds the label a private lobby created by creator publishes.
func privateLabel(t *testing.T, creator string, private bool) string {
	t.Helper()
	mh := &matchHandler{m: newTestModule(newFakeNakama())}
	var invitees []string
	if private {
		invitees = []string{}
	}
	label, err := mh.label(&MatchState{Invitation: app.NewInvitation(creator, invitees, 4)})
	if err != nil {
		t.Fatalf("label: %v", err)
	}
	return label
}

func TestRpcQuickMatch(t *testing.T) {
	nk := newFakeNakama()
	m := newTestModule(nk)

	raw, err := m.rpcQuickMatch(userCtx("u1"), noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("rpcQuickMatch: %v", err)
	}
	var resp QuickMatchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.IsNew || resp.MatchID != "match-new" {
		t.Fatalf("response %+v", resp)
	}
	if len(nk.created) != 1 || nk.created[0]["creator"] != "u1" {
		t.Fatalf("created %v", nk.created)
	}

	nk.addMatch("match-open", privateLabel(t, "u9", false))
	raw, err = m.rpcQuickMatch(userCtx("u1"), noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("rpcQuickMatch: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.IsNew || resp.MatchID != "match-open" {
		t.Fatalf("response %+v", resp)
	}

	if _, err := m.rpcQuickMatch(context.Background(), noopLogger{}, nil, nk, ""); errCode(t, err) != codePermissionDenied {
		t.Fatalf("anonymous callers must be rejected")
	}
}

func TestRpcCreateMatch(t *testing.T) {
	nk := newFakeNakama()
	m := newTestModule(nk)

	payload := `{"private": true, "invitees": ["u2", "u3", "u1", ""], "max_players": 3, "scope": "club"}`
	raw, err := m.rpcCreateMatch(userCtx("u1"), noopLogger{}, nil, nk, payload)
	if err != nil {
		t.Fatalf("rpcCreateMatch: %v", err)
	}
	var resp CreateMatchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.MatchID != "match-new" || len(resp.Invites) != 2 {
		t.Fatalf("response %+v", resp)
	}
	for invitee, token := range resp.Invites {
		claims, err := m.invites.Verify(token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if claims.MatchID != "match-new" || claims.Creator != "u1" || !claims.Admits(invitee) {
			t.Fatalf("claims %+v for %s", claims, invitee)
		}
	}

	params := nk.created[0]
	if params["private"] != true || params["scope"] != "club" || params["max_players"] != 3 {
		t.Fatalf("params %v", params)
	}
	if invitees, _ := params["invitees"].([]string); len(invitees) != 2 {
		t.Fatalf("invitees %v", params["invitees"])
	}

	tests := []struct {
		name    string
		payload string
		code    int
	}{
		{name: "bad json", payload: "{", code: codeInvalidArgument},
		{name: "too many players", payload: `{"max_players": 5}`, code: codeInvalidArgument},
		{name: "too few players", payload: `{"max_players": 1}`, code: codeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.rpcCreateMatch(userCtx("u1"), noopLogger{}, nil, nk, tt.payload)
			if errCode(t, err) != tt.code {
				t.Fatalf("code = %d, want %d", errCode(t, err), tt.code)
			}
		})
	}
}

func TestRpcInvite(t *testing.T) {
	nk := newFakeNakama()
	m := newTestModule(nk)
	nk.addMatch("match-private", privateLabel(t, "u1", true))
	nk.addMatch("match-public", privateLabel(t, "u1", false))

	raw, err := m.rpcInvite(userCtx("u1"), noopLogger{}, nil, nk, `{"match_id": "match-private", "user_id": "u2"}`)
	if err != nil {
		t.Fatalf("rpcInvite: %v", err)
	}
	var resp InviteResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	claims, err := m.invites.Verify(resp.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.MatchID != "match-private" || claims.Invitee != "u2" {
		t.Fatalf("claims %+v", claims)
	}
	if len(nk.signals) != 1 || nk.signals[0] != `{"invite":"u2"}` {
		t.Fatalf("signals %v", nk.signals)
	}

	// An open invite does not touch the guest list.
	if _, err := m.rpcInvite(userCtx("u1"), noopLogger{}, nil, nk, `{"match_id": "match-private"}`); err != nil {
		t.Fatalf("open invite: %v", err)
	}
	if len(nk.signals) != 1 {
		t.Fatalf("open invite signalled the match")
	}

	tests := []struct {
		name    string
		userID  string
		payload string
		code    int
	}{
		{name: "not the creator", userID: "u2", payload: `{"match_id": "match-private", "user_id": "u3"}`, code: codePermissionDenied},
		{name: "public table", userID: "u1", payload: `{"match_id": "match-public", "user_id": "u3"}`, code: codeFailedPrecondition},
		{name: "unknown match", userID: "u1", payload: `{"match_id": "nope"}`, code: codeNotFound},
		{name: "missing match id", userID: "u1", payload: `{}`, code: codeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.rpcInvite(userCtx(tt.userID), noopLogger{}, nil, nk, tt.payload)
			if got := errCode(t, err); got != tt.code {
				t.Fatalf("code = %d, want %d", got, tt.code)
			}
		})
	}

	m.invites = nil
	if _, err := m.rpcInvite(userCtx("u1"), noopLogger{}, nil, nk, `{"match_id": "match-private"}`); errCode(t, err) != codeUnavailable {
		t.Fatalf("invites should be unavailable without a secret")
	}
}

func TestRpcStats(t *testing.T) {
	nk := newFakeNakama()
	m := newTestModule(nk)

	if _, err := m.rpcStats(userCtx("u1"), noopLogger{}, nil, nk, ""); errCode(t, err) != codeUnavailable {
		t.Fatalf("stats should be unavailable without Redis")
	}

	stats := newMemStats()
	m.stats = app.NewStatsService(stats)
	ctx := context.Background()
	if err := m.stats.RecordMatch(ctx, "club", "u1", []string{"u2"}); err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}
	if err := m.stats.RecordMatch(ctx, "public", "u2", []string{"u1"}); err != nil {
		t.Fatalf("RecordMatch: %v", err)
	}

	raw, err := m.rpcStats(userCtx("u1"), noopLogger{}, nil, nk, `{"scope": "club"}`)
	if err != nil {
		t.Fatalf("rpcStats: %v", err)
	}
	var resp StatsResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Stats.Wins != 1 || resp.Stats.Losses != 0 || resp.WinRate != 100 {
		t.Fatalf("scoped stats %+v", resp)
	}
	if resp.Total.Wins != 1 || resp.Total.Losses != 1 {
		t.Fatalf("total stats %+v", resp.Total)
	}

	raw, err = m.rpcStats(userCtx("u1"), noopLogger{}, nil, nk, "")
	if err != nil {
		t.Fatalf("rpcStats: %v", err)
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Scope != ports.StatsScopeTotal || resp.WinRate != 50 {
		t.Fatalf("total response %+v", resp)
	}
}

func TestRpcRestoreMatch(t *testing.T) {
	nk := newFakeNakama()
	_, d, state := startTwoPlayerGame(t, nk)
	mh := &matchHandler{m: newTestModule(nk)}
	mh.MatchLeave(context.Background(), noopLogger{}, nil, nil, d, 0, state, []runtime.Presence{presence("u1"), presence("u2")})
	m := mh.m

	raw, err := m.rpcRestoreMatch(userCtx("u2"), noopLogger{}, nil, nk, `{"match_id": "match-1"}`)
	if err != nil {
		t.Fatalf("rpcRestoreMatch: %v", err)
	}
	var resp QuickMatchResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.MatchID != "match-new" || nk.created[0]["restore"] != "match-1" {
		t.Fatalf("response %+v, created %v", resp, nk.created)
	}

	tests := []struct {
		name    string
		userID  string
		payload string
		code    int
	}{
		{name: "not seated", userID: "u3", payload: `{"match_id": "match-1"}`, code: codePermissionDenied},
		{name: "unknown match", userID: "u1", payload: `{"match_id": "nope"}`, code: codeNotFound},
		{name: "missing match id", userID: "u1", payload: `{}`, code: codeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.rpcRestoreMatch(userCtx(tt.userID), noopLogger{}, nil, nk, tt.payload)
			if got := errCode(t, err); got != tt.code {
				t.Fatalf("code = %d, want %d", got, tt.code)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		code string
		rpc  int
	}{
		{err: errNotOwner, code: "not_owner", rpc: codePermissionDenied},
		{err: app.ErrNotInvited, code: "internal", rpc: codePermissionDenied},
		{err: ports.ErrSnapshotNotFound, code: "internal", rpc: codeNotFound},
		{err: errors.New("boom"), code: "internal", rpc: codeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := errorCode(tt.err); got != tt.code {
				t.Fatalf("errorCode = %q, want %q", got, tt.code)
			}
			if got := rpcCode(tt.err); got != tt.rpc {
				t.Fatalf("rpcCode = %d, want %d", got, tt.rpc)
			}
		})
	}
}

func TestParams(t *testing.T) {
	params := map[string]interface{}{
		"name":     "x",
		"flag":     true,
		"count":    float64(3),
		"list":     []interface{}{"a", 1, "", "b"},
		"strings":  []string{"c"},
		"int":      int64(2),
		"wrongInt": "3",
	}
	if paramString(params, "name") != "x" || paramString(params, "flag") != "" {
		t.Fatalf("paramString")
	}
	if !paramBool(params, "flag", false) || !paramBool(params, "missing", true) {
		t.Fatalf("paramBool")
	}
	if paramInt(params, "count", 0) != 3 || paramInt(params, "int", 0) != 2 || paramInt(params, "wrongInt", 4) != 4 {
		t.Fatalf("paramInt")
	}
	if got := paramStrings(params, "list"); len(got) != 2 || got[1] != "b" {
		t.Fatalf("paramStrings(list) = %v", got)
	}
	if got := paramStrings(params, "strings"); len(got) != 1 {
		t.Fatalf("paramStrings(strings) = %v", got)
	}
	if paramStrings(params, "missing") != nil {
		t.Fatalf("missing list should be nil")
	}
}
