package bot

import (
	"strings"

	"github.com/dgraph-io/ristretto"

	"chinchon/internal/domain"
)

// SolverCache memoizes leftover points per hand. Bots evaluate the same hands many times
// per turn, once for every card they consider throwing.
type SolverCache struct {
	cache *ristretto.Cache
}

// NewSolverCache creates a cache holding roughly maxHands entries.
func NewSolverCache(maxHands int64) (*SolverCache, error) {
	if maxHands <= 0 {
		maxHands = 1
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        maxHands * 10,
		MaxCost:            maxHands,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &SolverCache{cache: cache}, nil
}

// Leftover returns the minimum leftover points of hand. A nil cache computes directly.
func (c *SolverCache) Leftover(hand []domain.Card) int {
	if c == nil {
		points, _ := domain.BestMelds(hand)
		return points
	}
	key := handKey(hand)
	if v, ok := c.cache.Get(key); ok {
		if points, ok := v.(int); ok {
			return points
		}
	}
	points, _ := domain.BestMelds(hand)
	c.cache.Set(key, points, 1)
	return points
}

// Wait blocks until pending writes are visible to Leftover.
func (c *SolverCache) Wait() {
	if c != nil {
		c.cache.Wait()
	}
}

// Close releases the cache.
func (c *SolverCache) Close() {
	if c != nil {
		c.cache.Close()
	}
}

func (c *SolverCache) cached(hand []domain.Card) bool {
	_, ok := c.cache.Get(handKey(hand))
	return ok
}

// handKey builds an order independent key for hand.
func handKey(hand []domain.Card) string {
	sorted := make([]domain.Card, len(hand))
	copy(sorted, hand)
	domain.SortCards(sorted)

	var b strings.Builder
	for i, card := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(card.String())
	}
	return b.String()
}
