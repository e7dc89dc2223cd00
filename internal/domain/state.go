package domain

import (
	"math/rand"
	"time"
)

// Suit is one of the four suits of the Spanish deck.
type Suit int

const (
	SuitCups Suit = iota
	SuitSwords
	SuitCoins
	SuitClubs
)

// Suits lists every suit in deck order.
var Suits = [...]Suit{SuitCups, SuitSwords, SuitCoins, SuitClubs}

// Card represents a Spanish deck card. Cards order by suit first and rank second and
// encode as their text code ("7 de oro").
type Card struct {
	Rank int
	Suit Suit
}

// Pile identifies where a card is drawn from.
type Pile int

const (
	// PileNone means no card has been drawn this round.
	PileNone Pile = iota
	// PileDraw is the face-down draw pile.
	PileDraw
	// PileDiscard is the face-up discard pile.
	PileDiscard
)

// PlayerRecord holds the persistent state of one participant. RemovalVotes holds the
// ids of the players who voted to remove this player.
type PlayerRecord struct {
	ID           string   `json:"id"`
	Hand         []Card   `json:"hand"`
	Score        int      `json:"score"`
	Eliminated   bool     `json:"eliminated"`
	RemovalVotes []string `json:"removal_votes,omitempty"`
}

// Match captures the authoritative state of a Chinchón match. Every exported field is
// part of the persisted record; the random source and clock are re-injected after a
// restore and are never serialized.
type Match struct {
	LastAction    time.Time      `json:"last_action"`
	DrawPile      []Card         `json:"draw_pile"`
	DiscardPile   []Card         `json:"discard_pile"`
	LastDrawnFrom Pile           `json:"last_drawn_from"`
	Players       []PlayerRecord `json:"players"`
	Turn          int            `json:"turn"`
	NextStarter   int            `json:"next_starter"`

	rng *rand.Rand
	now func() time.Time
}

// RoundResult reports how a closed round affected one player.
type RoundResult struct {
	PlayerID string `json:"player_id"`
	// Points is what the round added to the player's score, chinchón penalty included.
	Points int `json:"points"`
	// Total is the cumulative score after the round, floored at zero.
	Total int `json:"total"`
	// Eliminated reports whether the round pushed the player over the elimination score.
	Eliminated bool   `json:"eliminated"`
	Chinchon   bool   `json:"chinchon"`
	Melds      []Meld `json:"melds"`
	Leftovers  []Card `json:"leftovers"`
}
