package domain

import "sort"

// Meld is a group of cards that scores nothing: a run or a set.
type Meld []Card

// Points returns the rank total of the meld.
func (m Meld) Points() int {
	return SumRanks(m)
}

// IsRun reports whether the meld is three or more same-suit cards with consecutive ranks,
// in ascending order.
func (m Meld) IsRun() bool {
	if len(m) < minMeldSize {
		return false
	}
	for i := 1; i < len(m); i++ {
		if m[i].Suit != m[i-1].Suit || m[i].Rank != m[i-1].Rank+1 {
			return false
		}
	}
	return true
}

// IsSet reports whether the meld is three or four cards of the same rank.
func (m Meld) IsSet() bool {
	if len(m) < minMeldSize || len(m) > maxSetSize {
		return false
	}
	for _, c := range m[1:] {
		if c.Rank != m[0].Rank {
			return false
		}
	}
	return true
}

// Valid reports whether the meld is a run or a set.
func (m Meld) Valid() bool {
	return m.IsRun() || m.IsSet()
}

func (m Meld) overlaps(o Meld) bool {
	for _, a := range m {
		for _, b := range o {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Decomposition is the best split of a hand into melds and leftover cards.
type Decomposition struct {
	// Points is the rank total of the leftover cards.
	Points    int
	Melds     []Meld
	Leftovers []Card
}

// CandidateMelds enumerates every run and set that can be formed from hand. Candidates may
// share cards; choosing a disjoint subset is left to BestMelds.
func CandidateMelds(hand []Card) []Meld {
	cards := cloneCards(hand)
	SortCards(cards)

	var candidates []Meld
	for size := minMeldSize; size <= maxRunSize; size++ {
		for i := 0; i+size <= len(cards); i++ {
			window := Meld(cards[i : i+size])
			if window.IsRun() {
				candidates = append(candidates, cloneMeld(window))
			}
		}
	}

	// Within a rank the suit order from the previous sort is kept.
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Rank < cards[j].Rank
	})
	for i := 0; i+maxSetSize <= len(cards); i++ {
		w := cards[i : i+maxSetSize]
		if !Meld(w).IsSet() {
			continue
		}
		candidates = append(candidates,
			cloneMeld(w),
			Meld{w[0], w[2], w[3]},
			Meld{w[0], w[1], w[3]},
		)
	}
	for i := 0; i+minMeldSize <= len(cards); i++ {
		w := Meld(cards[i : i+minMeldSize])
		if w.IsSet() {
			candidates = append(candidates, cloneMeld(w))
		}
	}
	return candidates
}

// BestMelds chooses the disjoint melds that leave the fewest points in hand. It returns
// the leftover point total and the chosen melds. When two choices score the same, the one
// with fewer melds wins.
func BestMelds(hand []Card) (int, []Meld) {
	score, melds := bestCombination(CandidateMelds(hand))
	return SumRanks(hand) - score, melds
}

// Decompose is BestMelds plus the leftover cards, in hand order.
func Decompose(hand []Card) Decomposition {
	points, melds := BestMelds(hand)
	used := make(map[Card]bool)
	for _, m := range melds {
		for _, c := range m {
			used[c] = true
		}
	}
	var leftovers []Card
	for _, c := range hand {
		if !used[c] {
			leftovers = append(leftovers, c)
		}
	}
	return Decomposition{Points: points, Melds: melds, Leftovers: leftovers}
}

// bestCombination is a branch search over the conflict graph of the candidates. Each
// candidate is tried as the first meld of the selection and the search recurses on the
// later candidates that do not overlap it, so every disjoint selection is visited once.
// Hands never exceed eight cards, which keeps the candidate list short.
func bestCombination(candidates []Meld) (int, []Meld) {
	bestScore := 0
	var best []Meld
	for i, m := range candidates {
		var rest []Meld
		for _, o := range candidates[i+1:] {
			if !m.overlaps(o) {
				rest = append(rest, o)
			}
		}
		score, melds := bestCombination(rest)
		score += m.Points()
		if score > bestScore || (score == bestScore && len(melds)+1 < len(best)) {
			bestScore = score
			best = append([]Meld{m}, melds...)
		}
	}
	return bestScore, best
}

func cloneMeld(m Meld) Meld {
	return Meld(cloneCards(m))
}
