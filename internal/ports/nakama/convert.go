package nakama

import (
	"errors"

	"chinchon/internal/app"
	"chinchon/internal/domain"
	"chinchon/internal/ports"
)

// gRPC status codes used for RPC errors.
const (
	codeInvalidArgument    = 3
	codeNotFound           = 5
	codePermissionDenied   = 7
	codeFailedPrecondition = 9
	codeInternal           = 13
	codeUnavailable        = 14
)

// errorCodes maps engine errors to the stable codes clients switch on.
var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrNotYourTurn, "not_your_turn"},
	{domain.ErrMustDrawFirst, "must_draw_first"},
	{domain.ErrMustDiscardFirst, "must_discard_first"},
	{domain.ErrCannotLayDown, "cannot_lay_down"},
	{domain.ErrMustDiscardOrCloseWithCard, "must_discard_or_close_with_card"},
	{domain.ErrCardNotHeld, "card_not_held"},
	{domain.ErrNoDiscardsAvailable, "no_discards_available"},
	{domain.ErrScoreTooHigh, "score_too_high"},
	{domain.ErrTargetNotInMatch, "target_not_in_match"},
	{domain.ErrMatchOver, "match_over"},
	{domain.ErrPlayerEliminated, "player_eliminated"},
	{domain.ErrInvalidPile, "invalid_pile"},
	{domain.ErrNoMatch, "invalid_card"},
	{domain.ErrInvalidRank, "invalid_card"},
	{domain.ErrInvalidSuit, "invalid_card"},
	{app.ErrUnknownPlayer, "unknown_player"},
	{app.ErrTooFewPlayers, "too_few_players"},
	{app.ErrTooManyPlayers, "too_many_players"},
	{errNotOwner, "not_owner"},
	{errNoGame, "no_game"},
	{errBadRequest, "bad_request"},
}

// errorCode returns the client code for err, or "internal" for unexpected errors.
func errorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return "internal"
}

// rpcCode picks the gRPC status for an RPC failure.
func rpcCode(err error) int {
	switch {
	case errors.Is(err, ports.ErrSnapshotNotFound):
		return codeNotFound
	case errors.Is(err, app.ErrNotInvited), errors.Is(err, app.ErrInvalidInvite), errors.Is(err, errNotOwner):
		return codePermissionDenied
	case errors.Is(err, errBadRequest):
		return codeInvalidArgument
	default:
		return codeInternal
	}
}

type drawRequest struct {
	Pile string `json:"pile"`
}

// cardRequest carries a card for discard, close and can_close. The card may be written
// in any form ParseCard accepts; close accepts an empty card.
type cardRequest struct {
	Card string `json:"card"`
}

type voteRequest struct {
	Target string `json:"target"`
}

type canCloseMessage struct {
	Card     domain.Card `json:"card"`
	CanClose bool        `json:"can_close"`
}

type gameErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// roundClosedMessage adds a readable summary to the round_closed payload.
type roundClosedMessage struct {
	app.RoundClosedPayload
	Summary string `json:"summary"`
}

type playerView struct {
	UserID      string `json:"user_id"`
	Seat        int    `json:"seat"`
	DisplayName string `json:"display_name"`
	IsOwner     bool   `json:"is_owner"`
	IsBot       bool   `json:"is_bot"`
	Score       int    `json:"score"`
	Cards       int    `json:"cards"`
	Eliminated  bool   `json:"eliminated"`
}

// matchStateMessage is the public table snapshot sent on joins and reconnects.
type matchStateMessage struct {
	Phase           string       `json:"phase"`
	Seats           []string     `json:"seats"`
	OwnerSeat       int          `json:"owner_seat"`
	Tick            int64        `json:"tick"`
	Players         []playerView `json:"players"`
	CurrentTurn     string       `json:"current_turn,omitempty"`
	TopDiscard      *domain.Card `json:"top_discard,omitempty"`
	DrawPileCount   int          `json:"draw_pile_count"`
	TurnSecondsLeft int64        `json:"turn_seconds_left"`
}

// Match params arrive as decoded JSON when a client creates a match, or as Go values
// when the server does.

func paramString(params map[string]interface{}, key string) string {
	s, _ := params[key].(string)
	return s
}

func paramBool(params map[string]interface{}, key string, fallback bool) bool {
	if b, ok := params[key].(bool); ok {
		return b
	}
	return fallback
}

func paramInt(params map[string]interface{}, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func paramStrings(params map[string]interface{}, key string) []string {
	switch v := params[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
