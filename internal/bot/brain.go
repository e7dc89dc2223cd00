package bot

import (
	"chinchon/internal/domain"
)

// DiscardOption is the outcome of throwing one card from an eight-card hand.
type DiscardOption struct {
	Card     domain.Card
	Leftover int
}

// discardOptions evaluates every card of hand as the card to throw.
func discardOptions(hand []domain.Card, cache *SolverCache) []DiscardOption {
	options := make([]DiscardOption, 0, len(hand))
	for i, card := range hand {
		rest := make([]domain.Card, 0, len(hand)-1)
		rest = append(rest, hand[:i]...)
		rest = append(rest, hand[i+1:]...)
		options = append(options, DiscardOption{Card: card, Leftover: cache.Leftover(rest)})
	}
	return options
}

// bestLeftoverWith returns the lowest leftover reachable by adding card to hand and
// throwing any other card.
func bestLeftoverWith(hand []domain.Card, card domain.Card, cache *SolverCache) int {
	best := -1
	for i := range hand {
		rest := make([]domain.Card, 0, len(hand))
		rest = append(rest, hand[:i]...)
		rest = append(rest, hand[i+1:]...)
		rest = append(rest, card)
		if points := cache.Leftover(rest); best < 0 || points < best {
			best = points
		}
	}
	if best < 0 {
		return cache.Leftover([]domain.Card{card})
	}
	return best
}
