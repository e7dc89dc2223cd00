package domain

import (
	"math/rand"
	"sort"
)

// NewDeck returns a sorted 48-card deck: ranks 1..12 in each of the four suits.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := 1; r <= MaxRank; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

// NewShuffledDeck returns a full deck in uniformly random order.
// A nil rng uses the package-level source.
func NewShuffledDeck(rng *rand.Rand) []Card {
	deck := NewDeck()
	Shuffle(rng, deck)
	return deck
}

// Shuffle permutes cards in place.
func Shuffle(rng *rand.Rand, cards []Card) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if rng == nil {
		rand.Shuffle(len(cards), swap)
		return
	}
	rng.Shuffle(len(cards), swap)
}

// SortCards orders cards by suit and then rank.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		return cards[i].Less(cards[j])
	})
}

// Compare returns -1, 0 or 1 comparing suit first and rank second.
func (c Card) Compare(o Card) int {
	switch {
	case c.Suit < o.Suit:
		return -1
	case c.Suit > o.Suit:
		return 1
	case c.Rank < o.Rank:
		return -1
	case c.Rank > o.Rank:
		return 1
	}
	return 0
}

// Less reports whether c sorts before o.
func (c Card) Less(o Card) bool {
	return c.Compare(o) < 0
}
