package domain

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

// NewMatch seats the given players in order and deals the first round. The first player
// starts. A nil rng uses the package-level random source.
func NewMatch(ids []string, rng *rand.Rand) (*Match, error) {
	if len(ids) < MinPlayers || len(ids) > MaxPlayers {
		return nil, ErrInvalidPlayerCount
	}
	seen := make(map[string]bool, len(ids))
	players := make([]PlayerRecord, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = true
		players = append(players, PlayerRecord{ID: id})
	}

	m := &Match{Players: players, rng: rng, now: time.Now}
	m.startRound()
	return m, nil
}

// RestoreMatch decodes a persisted match and checks that it still describes a playable
// table: all 48 cards accounted for without duplicates, seat indexes in range, and a
// running match with its turn on an active seat and dealt hand sizes.
func RestoreMatch(data []byte, rng *rand.Rand) (*Match, error) {
	var m Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode match: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	m.rng = rng
	m.now = time.Now
	return &m, nil
}

func (m *Match) validate() error {
	n := len(m.Players)
	if n < MinPlayers || n > MaxPlayers {
		return ErrInvalidPlayerCount
	}
	if m.Turn < 0 || m.Turn >= n || m.NextStarter < 0 || m.NextStarter >= n {
		return fmt.Errorf("%w: seat index out of range", ErrCorruptState)
	}
	seen := make(map[Card]bool, DeckSize)
	for _, c := range m.AllCards() {
		if seen[c] {
			return fmt.Errorf("%w: duplicate card %s", ErrCorruptState, c)
		}
		seen[c] = true
	}
	if len(seen) != DeckSize {
		return fmt.Errorf("%w: %d cards in play", ErrCorruptState, len(seen))
	}
	if m.LastDrawnFrom < PileNone || m.LastDrawnFrom > PileDiscard {
		return fmt.Errorf("%w: unknown pile %d", ErrCorruptState, m.LastDrawnFrom)
	}
	if m.ActiveCount() < MinPlayers {
		return nil
	}

	// A running match: the turn is on an active seat and every hand has its dealt size.
	if !m.Players[m.Turn].active() {
		return fmt.Errorf("%w: turn on eliminated seat %d", ErrCorruptState, m.Turn)
	}
	for i, p := range m.Players {
		n := len(p.Hand)
		switch {
		case !p.active():
			if n != 0 {
				return fmt.Errorf("%w: eliminated %s holds %d cards", ErrCorruptState, p.ID, n)
			}
		case i == m.Turn:
			if n != HandSize && n != TurnHandSize {
				return fmt.Errorf("%w: %s holds %d cards on turn", ErrCorruptState, p.ID, n)
			}
		case n != HandSize:
			return fmt.Errorf("%w: %s holds %d cards", ErrCorruptState, p.ID, n)
		}
	}
	return nil
}

// SetRand replaces the random source used for dealing and reshuffles.
func (m *Match) SetRand(rng *rand.Rand) { m.rng = rng }

// SetClock replaces the clock used to stamp LastAction.
func (m *Match) SetClock(now func() time.Time) { m.now = now }

func (m *Match) touch() {
	if m.now == nil {
		m.now = time.Now
	}
	m.LastAction = m.now()
}

// Idle returns how long the match has gone without an action.
func (m *Match) Idle() time.Duration {
	if m.now == nil {
		return time.Since(m.LastAction)
	}
	return m.now().Sub(m.LastAction)
}

// Player returns a handle for the player with the given id.
func (m *Match) Player(id string) (*Player, bool) {
	i := m.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return &Player{index: i, match: m}, true
}

// CurrentPlayer returns the id of the player whose turn it is.
func (m *Match) CurrentPlayer() string {
	return m.Players[m.Turn].ID
}

// Scores maps every player id to its cumulative score.
func (m *Match) Scores() map[string]int {
	scores := make(map[string]int, len(m.Players))
	for _, p := range m.Players {
		scores[p.ID] = p.Score
	}
	return scores
}

// TopDiscard returns the face-up card, if any.
func (m *Match) TopDiscard() (Card, bool) {
	if len(m.DiscardPile) == 0 {
		return Card{}, false
	}
	return m.DiscardPile[len(m.DiscardPile)-1], true
}

// ActiveCount returns the number of players still in the match.
func (m *Match) ActiveCount() int {
	n := 0
	for i := range m.Players {
		if m.Players[i].active() {
			n++
		}
	}
	return n
}

// ActivePlayers returns the ids of players still in the match, in seat order.
func (m *Match) ActivePlayers() []string {
	var ids []string
	for i := range m.Players {
		if m.Players[i].active() {
			ids = append(ids, m.Players[i].ID)
		}
	}
	return ids
}

// IsMatchOver reports the winner once a single player remains.
func (m *Match) IsMatchOver() (string, bool) {
	winner := ""
	for i := range m.Players {
		if !m.Players[i].active() {
			continue
		}
		if winner != "" {
			return "", false
		}
		winner = m.Players[i].ID
	}
	return winner, winner != ""
}

// AllCards returns every card in play: both piles and all hands.
func (m *Match) AllCards() []Card {
	cards := make([]Card, 0, DeckSize)
	cards = append(cards, m.DrawPile...)
	cards = append(cards, m.DiscardPile...)
	for _, p := range m.Players {
		cards = append(cards, p.Hand...)
	}
	return cards
}

func (p *PlayerRecord) active() bool {
	return !p.Eliminated && p.Score <= EliminationScore
}

func (m *Match) indexOf(id string) int {
	for i := range m.Players {
		if m.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// activeFrom returns the first active seat at or after i, wrapping around, or -1.
func (m *Match) activeFrom(i int) int {
	n := len(m.Players)
	for k := 0; k < n; k++ {
		seat := (i + k) % n
		if m.Players[seat].active() {
			return seat
		}
	}
	return -1
}

func (m *Match) advanceTurn() {
	if next := m.activeFrom(m.Turn + 1); next >= 0 {
		m.Turn = next
	}
}

// startRound collects every card, reshuffles and deals. The starter gets the extra card.
func (m *Match) startRound() {
	deck := NewShuffledDeck(m.rng)
	m.DiscardPile = nil
	m.LastDrawnFrom = PileNone

	starter := m.activeFrom(m.NextStarter)
	if starter < 0 {
		starter = 0
	}
	for i := range m.Players {
		p := &m.Players[i]
		p.Hand = nil
		if !p.active() {
			continue
		}
		n := HandSize
		if i == starter {
			n = TurnHandSize
		}
		p.Hand = cloneCards(deck[len(deck)-n:])
		deck = deck[:len(deck)-n]
		SortCards(p.Hand)
	}
	m.DrawPile = deck
	m.Turn = starter
	if next := m.activeFrom(starter + 1); next >= 0 {
		m.NextStarter = next
	}
	m.touch()
}

// recycleDiscards turns the discard pile into a fresh draw pile, keeping its top card
// face up. It needs at least two discards.
func (m *Match) recycleDiscards() bool {
	if len(m.DiscardPile) < 2 {
		return false
	}
	top := m.DiscardPile[len(m.DiscardPile)-1]
	m.DrawPile = append(m.DrawPile, m.DiscardPile[:len(m.DiscardPile)-1]...)
	m.DiscardPile = []Card{top}
	Shuffle(m.rng, m.DrawPile)
	return true
}

// eliminate removes a player from play, returning its cards to the draw pile.
func (m *Match) eliminate(i int) {
	p := &m.Players[i]
	p.Eliminated = true
	if len(p.Hand) > 0 {
		m.DrawPile = append(m.DrawPile, p.Hand...)
		p.Hand = nil
		Shuffle(m.rng, m.DrawPile)
	}
	if m.Turn == i {
		m.advanceTurn()
	}
	m.touch()
}

// scoreRound evaluates every active hand for a round closed by the closer seat. The
// result slice is indexed by seat; inactive seats are nil.
func (m *Match) scoreRound(closer int) []*RoundResult {
	results := make([]*RoundResult, len(m.Players))
	for i := range m.Players {
		p := &m.Players[i]
		if !p.active() {
			continue
		}
		d := Decompose(p.Hand)
		r := &RoundResult{
			PlayerID:  p.ID,
			Points:    d.Points,
			Melds:     d.Melds,
			Leftovers: d.Leftovers,
		}
		if i == closer && d.Points == 0 {
			r.Points = ZeroLeftoverScore
			r.Chinchon = len(d.Melds) == 1
		}
		results[i] = r
	}
	if results[closer].Chinchon {
		for i, r := range results {
			if r != nil && i != closer {
				r.Points += ChinchonPenalty
			}
		}
	}
	for i, r := range results {
		if r == nil {
			continue
		}
		sum := m.Players[i].Score + r.Points
		r.Total = max(sum, 0)
		r.Eliminated = sum > EliminationScore
	}
	return results
}

// applyRound commits scored results and deals the next round while two or more players
// remain. Results come back ordered from the closer around the table.
func (m *Match) applyRound(closer int, results []*RoundResult) []RoundResult {
	for i, r := range results {
		if r == nil {
			continue
		}
		m.Players[i].Score = r.Total
		if r.Eliminated {
			m.Players[i].Eliminated = true
		}
	}

	ordered := make([]RoundResult, 0, len(results))
	for k := range results {
		if r := results[(closer+k)%len(results)]; r != nil {
			ordered = append(ordered, *r)
		}
	}

	if m.ActiveCount() >= MinPlayers {
		m.startRound()
	} else {
		m.touch()
	}
	return ordered
}
