package domain

// Player is a handle through which one participant acts on a match. Handles do not own
// any state; they stay valid across rounds and snapshots of the same match value.
type Player struct {
	index int
	match *Match
}

// ID returns the player id.
func (p *Player) ID() string { return p.record().ID }

// IsTurn reports whether it is this player's turn.
func (p *Player) IsTurn() bool { return p.match.Turn == p.index }

// Hand returns a copy of the player's sorted hand.
func (p *Player) Hand() []Card { return cloneCards(p.record().Hand) }

// Score returns the player's cumulative score.
func (p *Player) Score() int { return p.record().Score }

// Eliminated reports whether the player is out of the match.
func (p *Player) Eliminated() bool { return !p.record().active() }

// RemovalVotes returns how many players voted to remove this player.
func (p *Player) RemovalVotes() int { return len(p.record().RemovalVotes) }

func (p *Player) record() *PlayerRecord { return &p.match.Players[p.index] }

func (p *Player) checkTurn() error {
	if _, over := p.match.IsMatchOver(); over {
		return ErrMatchOver
	}
	if !p.record().active() {
		return ErrPlayerEliminated
	}
	if !p.IsTurn() {
		return ErrNotYourTurn
	}
	return nil
}

// Draw takes the top card of a pile into the hand. An empty draw pile is rebuilt from
// the discards, leaving the top discard face up.
func (p *Player) Draw(pile Pile) (Card, error) {
	if err := p.checkTurn(); err != nil {
		return Card{}, err
	}
	m := p.match
	rec := p.record()
	if len(rec.Hand) >= TurnHandSize {
		return Card{}, ErrMustDiscardFirst
	}

	var card Card
	switch pile {
	case PileDraw:
		if len(m.DrawPile) == 0 && !m.recycleDiscards() {
			return Card{}, ErrNoDiscardsAvailable
		}
		card = m.DrawPile[len(m.DrawPile)-1]
		m.DrawPile = m.DrawPile[:len(m.DrawPile)-1]
	case PileDiscard:
		if len(m.DiscardPile) == 0 {
			return Card{}, ErrNoDiscardsAvailable
		}
		card = m.DiscardPile[len(m.DiscardPile)-1]
		m.DiscardPile = m.DiscardPile[:len(m.DiscardPile)-1]
	default:
		return Card{}, ErrInvalidPile
	}

	rec.Hand = InsertSorted(rec.Hand, card)
	m.LastDrawnFrom = pile
	m.touch()
	return card, nil
}

// Discard puts a card from the hand face up and passes the turn.
func (p *Player) Discard(card Card) error {
	if err := p.checkTurn(); err != nil {
		return err
	}
	m := p.match
	rec := p.record()
	if len(rec.Hand) < TurnHandSize {
		return ErrMustDrawFirst
	}
	hand, ok := RemoveCard(rec.Hand, card)
	if !ok {
		return ErrCardNotHeld
	}
	rec.Hand = hand
	m.DiscardPile = append(m.DiscardPile, card)
	m.advanceTurn()
	m.touch()
	return nil
}

// CanClose reports whether the hand, minus card when held, leaves few enough points to
// close without crossing the elimination score.
func (p *Player) CanClose(card Card) bool {
	rec := p.record()
	if !rec.active() {
		return false
	}
	hand := cloneCards(rec.Hand)
	hand, _ = RemoveCard(hand, card)
	points, _ := BestMelds(hand)
	return points <= MaxClosePoints && rec.Score+points <= EliminationScore
}

// Close ends the round. With a card the player must hold eight cards and lays that card
// down first; without one the player must hold seven. When the leftover points are too
// high the hand is restored and ErrScoreTooHigh is returned.
func (p *Player) Close(card *Card) ([]RoundResult, error) {
	if err := p.checkTurn(); err != nil {
		return nil, err
	}
	m := p.match
	rec := p.record()
	if card != nil {
		if len(rec.Hand) < TurnHandSize {
			return nil, ErrCannotLayDown
		}
		hand, ok := RemoveCard(rec.Hand, *card)
		if !ok {
			return nil, ErrCardNotHeld
		}
		rec.Hand = hand
	} else if len(rec.Hand) >= TurnHandSize {
		return nil, ErrMustDiscardOrCloseWithCard
	}

	results := m.scoreRound(p.index)
	own := results[p.index]
	if own.Points > MaxClosePoints || own.Eliminated {
		if card != nil {
			rec.Hand = InsertSorted(rec.Hand, *card)
		}
		return nil, ErrScoreTooHigh
	}

	if card != nil {
		m.DiscardPile = append(m.DiscardPile, *card)
	}
	return m.applyRound(p.index, results), nil
}

// VoteRemove records a vote to remove target. The target is eliminated once more than
// half of the remaining players voted for it; the return value reports that.
func (p *Player) VoteRemove(target string) (bool, error) {
	m := p.match
	if _, over := m.IsMatchOver(); over {
		return false, ErrMatchOver
	}
	if !p.record().active() {
		return false, ErrPlayerEliminated
	}
	ti := m.indexOf(target)
	if ti < 0 || !m.Players[ti].active() {
		return false, ErrTargetNotInMatch
	}

	t := &m.Players[ti]
	voter := p.ID()
	voted := false
	for _, id := range t.RemovalVotes {
		if id == voter {
			voted = true
			break
		}
	}
	if !voted {
		t.RemovalVotes = append(t.RemovalVotes, voter)
	}
	m.touch()

	if len(t.RemovalVotes) > m.ActiveCount()/2 {
		m.eliminate(ti)
		return true, nil
	}
	return false, nil
}

// Leave eliminates the player at once. Leaving twice, or leaving a finished match, is a
// no-op.
func (p *Player) Leave() {
	if !p.record().active() {
		return
	}
	if _, over := p.match.IsMatchOver(); over {
		return
	}
	p.match.eliminate(p.index)
}
