package app

import "chinchon/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventMatchStarted  EventKind = "match_started"
	EventHandDealt     EventKind = "hand_dealt"
	EventCardDrawn     EventKind = "card_drawn"
	EventCardReceived  EventKind = "card_received"
	EventCardDiscarded EventKind = "card_discarded"
	EventRoundClosed   EventKind = "round_closed"
	EventVoteCast      EventKind = "vote_cast"
	EventPlayerRemoved EventKind = "player_removed"
	EventMatchEnded    EventKind = "match_ended"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type MatchStartedPayload struct {
	Players         []string `json:"players"`
	FirstTurnUserID string   `json:"first_turn_user_id"`
}

type HandDealtPayload struct {
	UserID string        `json:"user_id"`
	Hand   []domain.Card `json:"hand"`
}

// CardDrawnPayload is public. Card is only set when the card came from the discard pile.
type CardDrawnPayload struct {
	UserID string       `json:"user_id"`
	Pile   string       `json:"pile"`
	Card   *domain.Card `json:"card,omitempty"`
}

type CardReceivedPayload struct {
	UserID string      `json:"user_id"`
	Card   domain.Card `json:"card"`
}

type CardDiscardedPayload struct {
	UserID         string      `json:"user_id"`
	Card           domain.Card `json:"card"`
	NextTurnUserID string      `json:"next_turn_user_id"`
}

type RoundClosedPayload struct {
	UserID         string               `json:"user_id"`
	Card           *domain.Card         `json:"card,omitempty"`
	Results        []domain.RoundResult `json:"results"`
	NextTurnUserID string               `json:"next_turn_user_id,omitempty"`
}

type VoteCastPayload struct {
	VoterID  string `json:"voter_id"`
	TargetID string `json:"target_id"`
	Votes    int    `json:"votes"`
	Needed   int    `json:"needed"`
}

type PlayerRemovedPayload struct {
	UserID         string `json:"user_id"`
	Reason         string `json:"reason"`
	NextTurnUserID string `json:"next_turn_user_id,omitempty"`
}

type MatchEndedPayload struct {
	WinnerID string         `json:"winner_id"`
	Scores   map[string]int `json:"scores"`
}
