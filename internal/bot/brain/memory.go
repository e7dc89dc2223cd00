package brain

import (
	"chinchon/internal/domain"
)

// CardStatus represents what the bot knows about a specific card.
type CardStatus int

const (
	StatusUnknown  CardStatus = iota // In the draw pile or an unseen hand
	StatusMine                       // In the bot's hand
	StatusPlayed                     // Thrown on the discard pile
	StatusOpponent                   // Picked from the discard pile by an opponent
)

// GameMemory stores the bot's private view of the round.
type GameMemory struct {
	// DeckStatus tracks all 48 cards. Index = Suit*12 + Rank-1.
	DeckStatus [domain.DeckSize]CardStatus
}

// NewMemory initializes a fresh memory state.
func NewMemory() *GameMemory {
	return &GameMemory{}
}

// Reset clears the memory for a new round.
func (m *GameMemory) Reset() {
	for i := range m.DeckStatus {
		m.DeckStatus[i] = StatusUnknown
	}
}

// MarkMine records the cards currently in the bot's hand.
func (m *GameMemory) MarkMine(cards []domain.Card) {
	for _, c := range cards {
		m.DeckStatus[cardToIndex(c)] = StatusMine
	}
}

// MarkPlayed records a card thrown on the discard pile.
func (m *GameMemory) MarkPlayed(c domain.Card) {
	m.DeckStatus[cardToIndex(c)] = StatusPlayed
}

// MarkOpponent records a card an opponent took from the discard pile.
func (m *GameMemory) MarkOpponent(c domain.Card) {
	m.DeckStatus[cardToIndex(c)] = StatusOpponent
}

// UpdateHand marks the current hand as Mine and forgets cards that left it.
func (m *GameMemory) UpdateHand(hand []domain.Card) {
	for i, status := range m.DeckStatus {
		if status == StatusMine {
			m.DeckStatus[i] = StatusUnknown
		}
	}
	m.MarkMine(hand)
}

// Status returns what is known about c.
func (m *GameMemory) Status(c domain.Card) CardStatus {
	return m.DeckStatus[cardToIndex(c)]
}

// LivePartners counts the cards that could still join c in a meld and are neither
// discarded nor known to sit in an opponent's hand. Cards already in the bot's hand
// count as live.
func (m *GameMemory) LivePartners(c domain.Card) int {
	live := 0
	count := func(p domain.Card) {
		switch m.Status(p) {
		case StatusUnknown, StatusMine:
			live++
		}
	}
	for _, s := range domain.Suits {
		if s != c.Suit {
			count(domain.Card{Rank: c.Rank, Suit: s})
		}
	}
	for _, d := range []int{-2, -1, 1, 2} {
		r := c.Rank + d
		if r >= 1 && r <= domain.MaxRank {
			count(domain.Card{Rank: r, Suit: c.Suit})
		}
	}
	return live
}

// cardToIndex converts domain.Card to a 0-47 index.
func cardToIndex(c domain.Card) int {
	return int(c.Suit)*domain.MaxRank + c.Rank - 1
}
