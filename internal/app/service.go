package app

import (
	"errors"
	"math/rand"
	"time"

	"chinchon/internal/domain"
)

// Service contains Chinchón use-cases operating on domain state.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrTooManyPlayers = errors.New("too many players for one table")
	ErrUnknownPlayer  = errors.New("player not found")
)

// StartMatch creates a match with the provided players and deals the first round.
// It expects a list of userIDs in seat order (empty strings for empty seats).
func (s *Service) StartMatch(playerIDs []string) (*domain.Match, []Event, error) {
	var seats []string
	for _, userID := range playerIDs {
		if userID != "" {
			seats = append(seats, userID)
		}
	}
	if len(seats) < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}
	if len(seats) > MaxPlayersPerMatch {
		return nil, nil, ErrTooManyPlayers
	}

	match, err := domain.NewMatch(seats, s.rng)
	if err != nil {
		return nil, nil, err
	}

	events := dealEvents(match)
	events = append(events, Event{
		Kind: EventMatchStarted,
		Payload: MatchStartedPayload{
			Players:         seats,
			FirstTurnUserID: match.CurrentPlayer(),
		},
	})
	return match, events, nil
}

// RestoreMatch rebuilds a match from a snapshot and attaches the service's random source.
func (s *Service) RestoreMatch(snapshot []byte) (*domain.Match, error) {
	return domain.RestoreMatch(snapshot, s.rng)
}

// Draw takes a card from pile for the actor. Everyone learns which pile was used; only the
// actor sees a card drawn face down.
func (s *Service) Draw(match *domain.Match, actorUserID string, pile domain.Pile) ([]Event, error) {
	pl, err := s.player(match, actorUserID)
	if err != nil {
		return nil, err
	}
	card, err := pl.Draw(pile)
	if err != nil {
		return nil, err
	}

	drawn := CardDrawnPayload{UserID: actorUserID, Pile: pile.String()}
	if pile == domain.PileDiscard {
		drawn.Card = &card
	}
	return []Event{
		{Kind: EventCardDrawn, Payload: drawn},
		{
			Kind:       EventCardReceived,
			Payload:    CardReceivedPayload{UserID: actorUserID, Card: card},
			Recipients: []string{actorUserID},
		},
	}, nil
}

// Discard throws card face up and passes the turn.
func (s *Service) Discard(match *domain.Match, actorUserID string, card domain.Card) ([]Event, error) {
	pl, err := s.player(match, actorUserID)
	if err != nil {
		return nil, err
	}
	if err := pl.Discard(card); err != nil {
		return nil, err
	}
	return []Event{{
		Kind: EventCardDiscarded,
		Payload: CardDiscardedPayload{
			UserID:         actorUserID,
			Card:           card,
			NextTurnUserID: match.CurrentPlayer(),
		},
	}}, nil
}

// CanClose reports whether the actor may close after laying down card.
func (s *Service) CanClose(match *domain.Match, actorUserID string, card domain.Card) (bool, error) {
	pl, err := s.player(match, actorUserID)
	if err != nil {
		return false, err
	}
	return pl.CanClose(card), nil
}

// Close ends the round for everyone. When the match goes on, the new hands are dealt
// privately; otherwise the winner is announced.
func (s *Service) Close(match *domain.Match, actorUserID string, card *domain.Card) ([]Event, error) {
	pl, err := s.player(match, actorUserID)
	if err != nil {
		return nil, err
	}
	results, err := pl.Close(card)
	if err != nil {
		return nil, err
	}

	closed := RoundClosedPayload{UserID: actorUserID, Card: card, Results: results}
	if _, over := match.IsMatchOver(); !over {
		closed.NextTurnUserID = match.CurrentPlayer()
	}
	events := []Event{{Kind: EventRoundClosed, Payload: closed}}
	for _, r := range results {
		if r.Eliminated {
			events = append(events, Event{
				Kind:    EventPlayerRemoved,
				Payload: PlayerRemovedPayload{UserID: r.PlayerID, Reason: RemovalReasonScore},
			})
		}
	}
	if ended, ok := matchEndedEvent(match); ok {
		return append(events, ended), nil
	}
	return append(events, dealEvents(match)...), nil
}

// VoteRemove registers the actor's vote against target.
func (s *Service) VoteRemove(match *domain.Match, actorUserID, targetUserID string) ([]Event, error) {
	pl, err := s.player(match, actorUserID)
	if err != nil {
		return nil, err
	}
	needed := match.ActiveCount()/2 + 1
	removed, err := pl.VoteRemove(targetUserID)
	if err != nil {
		return nil, err
	}

	target, _ := match.Player(targetUserID)
	events := []Event{{
		Kind: EventVoteCast,
		Payload: VoteCastPayload{
			VoterID:  actorUserID,
			TargetID: targetUserID,
			Votes:    target.RemovalVotes(),
			Needed:   needed,
		},
	}}
	if !removed {
		return events, nil
	}
	return append(events, s.removedEvents(match, targetUserID, RemovalReasonVote)...), nil
}

// Leave takes the actor out of the match. Leaving an already finished seat emits nothing.
func (s *Service) Leave(match *domain.Match, actorUserID string) ([]Event, error) {
	pl, err := s.player(match, actorUserID)
	if err != nil {
		return nil, err
	}
	if _, over := match.IsMatchOver(); over || pl.Eliminated() {
		return nil, nil
	}
	pl.Leave()
	return s.removedEvents(match, actorUserID, RemovalReasonLeft), nil
}

func (s *Service) removedEvents(match *domain.Match, userID, reason string) []Event {
	removed := PlayerRemovedPayload{UserID: userID, Reason: reason}
	ended, over := matchEndedEvent(match)
	if !over {
		removed.NextTurnUserID = match.CurrentPlayer()
	}
	events := []Event{{Kind: EventPlayerRemoved, Payload: removed}}
	if over {
		events = append(events, ended)
	}
	return events
}

func (s *Service) player(match *domain.Match, userID string) (*domain.Player, error) {
	pl, ok := match.Player(userID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	return pl, nil
}

func dealEvents(match *domain.Match) []Event {
	var events []Event
	for _, userID := range match.ActivePlayers() {
		pl, _ := match.Player(userID)
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: userID, Hand: pl.Hand()},
			Recipients: []string{userID},
		})
	}
	return events
}

func matchEndedEvent(match *domain.Match) (Event, bool) {
	winner, over := match.IsMatchOver()
	if !over {
		return Event{}, false
	}
	return Event{
		Kind:    EventMatchEnded,
		Payload: MatchEndedPayload{WinnerID: winner, Scores: match.Scores()},
	}, true
}
