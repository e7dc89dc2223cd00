package app

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"

	"chinchon/internal/domain"
)

func eventsOfKind(evs []Event, kind EventKind) []Event {
	var out []Event
	for _, ev := range evs {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

func mustCards(t *testing.T, codes ...string) []domain.Card {
	t.Helper()
	cards, err := domain.ParseCards(codes)
	if err != nil {
		t.Fatalf("ParseCards: %v", err)
	}
	domain.SortCards(cards)
	return cards
}

func TestStartMatchDealsHands(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(42)))

	match, evs, err := svc.StartMatch([]string{"u1", "", "u2"})
	if err != nil {
		t.Fatalf("start match error: %v", err)
	}
	if match.CurrentPlayer() != "u1" {
		t.Fatalf("first turn = %s, want u1", match.CurrentPlayer())
	}

	hands := eventsOfKind(evs, EventHandDealt)
	if len(hands) != 2 {
		t.Fatalf("hand events = %d, want 2", len(hands))
	}
	for _, ev := range hands {
		payload := ev.Payload.(HandDealtPayload)
		want := domain.HandSize
		if payload.UserID == "u1" {
			want = domain.TurnHandSize
		}
		if len(payload.Hand) != want {
			t.Fatalf("hand size = %d, want %d", len(payload.Hand), want)
		}
		if len(ev.Recipients) != 1 || ev.Recipients[0] != payload.UserID {
			t.Fatalf("hand must be private, recipients %v", ev.Recipients)
		}
	}
	started := eventsOfKind(evs, EventMatchStarted)
	if len(started) != 1 || started[0].Payload.(MatchStartedPayload).FirstTurnUserID != "u1" {
		t.Fatalf("unexpected start events %+v", started)
	}
}

func TestStartMatchPlayerCount(t *testing.T) {
	svc := NewService(nil)
	if _, _, err := svc.StartMatch([]string{"u1", "", "", ""}); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("expected ErrTooFewPlayers, got %v", err)
	}
	if _, _, err := svc.StartMatch([]string{"a", "b", "c", "d", "e"}); !errors.Is(err, ErrTooManyPlayers) {
		t.Fatalf("expected ErrTooManyPlayers, got %v", err)
	}
	if _, _, err := svc.StartMatch([]string{"a", "a"}); !errors.Is(err, domain.ErrDuplicatePlayer) {
		t.Fatalf("expected ErrDuplicatePlayer, got %v", err)
	}
}

func TestDiscardAndDraw(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(7)))
	match, _, err := svc.StartMatch([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start match error: %v", err)
	}

	if _, err := svc.Draw(match, "u2", domain.PileDraw); !errors.Is(err, domain.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := svc.Draw(match, "ghost", domain.PileDraw); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("expected ErrUnknownPlayer, got %v", err)
	}

	u1, _ := match.Player("u1")
	card := u1.Hand()[0]
	evs, err := svc.Discard(match, "u1", card)
	if err != nil {
		t.Fatalf("discard error: %v", err)
	}
	discarded := evs[0].Payload.(CardDiscardedPayload)
	if discarded.Card != card || discarded.NextTurnUserID != "u2" {
		t.Fatalf("unexpected discard payload %+v", discarded)
	}

	evs, err = svc.Draw(match, "u2", domain.PileDiscard)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	drawn := eventsOfKind(evs, EventCardDrawn)[0].Payload.(CardDrawnPayload)
	if drawn.Pile != "discard" || drawn.Card == nil || *drawn.Card != card {
		t.Fatalf("unexpected draw payload %+v", drawn)
	}
	received := eventsOfKind(evs, EventCardReceived)
	if len(received) != 1 || received[0].Recipients[0] != "u2" {
		t.Fatalf("drawn card must go privately to u2: %+v", received)
	}

	u2, _ := match.Player("u2")
	if _, err := svc.Discard(match, "u2", u2.Hand()[0]); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	evs, err = svc.Draw(match, "u1", domain.PileDraw)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if drawn := evs[0].Payload.(CardDrawnPayload); drawn.Card != nil {
		t.Fatalf("a card drawn face down must not be broadcast")
	}
}

func TestCloseWithChinchonEndsMatch(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(3)))
	match, _, err := svc.StartMatch([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start match error: %v", err)
	}
	match.Players[0].Hand = mustCards(t, "1 de oro", "2 de oro", "3 de oro", "4 de oro", "5 de oro", "6 de oro", "7 de oro", "12 de basto")
	match.Players[1].Hand = mustCards(t, "1 de espada", "3 de espada", "6 de basto", "8 de copas", "10 de copas", "11 de basto", "12 de copas")

	ok, err := svc.CanClose(match, "u1", domain.Card{Rank: 12, Suit: domain.SuitClubs})
	if err != nil || !ok {
		t.Fatalf("CanClose = %v, %v", ok, err)
	}
	evs, err := svc.Close(match, "u1", &domain.Card{Rank: 12, Suit: domain.SuitClubs})
	if err != nil {
		t.Fatalf("close error: %v", err)
	}

	closed := eventsOfKind(evs, EventRoundClosed)[0].Payload.(RoundClosedPayload)
	if len(closed.Results) != 2 || !closed.Results[0].Chinchon || closed.NextTurnUserID != "" {
		t.Fatalf("unexpected round payload %+v", closed)
	}
	removed := eventsOfKind(evs, EventPlayerRemoved)
	if len(removed) != 1 || removed[0].Payload.(PlayerRemovedPayload).Reason != RemovalReasonScore {
		t.Fatalf("u2 should be removed by score: %+v", removed)
	}
	ended := eventsOfKind(evs, EventMatchEnded)
	if len(ended) != 1 || ended[0].Payload.(MatchEndedPayload).WinnerID != "u1" {
		t.Fatalf("expected u1 to win: %+v", ended)
	}
	if len(eventsOfKind(evs, EventHandDealt)) != 0 {
		t.Fatalf("no new round may be dealt after the match ends")
	}
}

func TestCloseDealsNextRound(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(4)))
	match, _, err := svc.StartMatch([]string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("start match error: %v", err)
	}
	match.Players[0].Hand = mustCards(t, "1 de copas", "2 de copas", "3 de copas", "5 de espada", "5 de oro", "5 de basto", "2 de oro", "12 de basto")

	if _, err := svc.Close(match, "u1", &domain.Card{Rank: 2, Suit: domain.SuitCoins}); !errors.Is(err, domain.ErrScoreTooHigh) {
		t.Fatalf("expected ErrScoreTooHigh, got %v", err)
	}
	evs, err := svc.Close(match, "u1", &domain.Card{Rank: 12, Suit: domain.SuitClubs})
	if err != nil {
		t.Fatalf("close error: %v", err)
	}
	closed := eventsOfKind(evs, EventRoundClosed)[0].Payload.(RoundClosedPayload)
	if closed.NextTurnUserID != "u2" {
		t.Fatalf("next round should start with u2, got %q", closed.NextTurnUserID)
	}
	if got := len(eventsOfKind(evs, EventHandDealt)); got != 3 {
		t.Fatalf("hand events = %d, want 3", got)
	}
}

func TestVoteRemove(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(5)))
	match, _, err := svc.StartMatch([]string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("start match error: %v", err)
	}

	evs, err := svc.VoteRemove(match, "u2", "u1")
	if err != nil {
		t.Fatalf("vote error: %v", err)
	}
	vote := evs[0].Payload.(VoteCastPayload)
	if len(evs) != 1 || vote.Votes != 1 || vote.Needed != 2 {
		t.Fatalf("unexpected vote events %+v", evs)
	}

	evs, err = svc.VoteRemove(match, "u3", "u1")
	if err != nil {
		t.Fatalf("vote error: %v", err)
	}
	removed := eventsOfKind(evs, EventPlayerRemoved)
	if len(removed) != 1 {
		t.Fatalf("expected u1 removed: %+v", evs)
	}
	payload := removed[0].Payload.(PlayerRemovedPayload)
	if payload.Reason != RemovalReasonVote || payload.NextTurnUserID != "u2" {
		t.Fatalf("unexpected removal payload %+v", payload)
	}

	if _, err := svc.VoteRemove(match, "u2", "u1"); !errors.Is(err, domain.ErrTargetNotInMatch) {
		t.Fatalf("expected ErrTargetNotInMatch, got %v", err)
	}
}

func TestLeaveEndsTwoPlayerMatch(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(6)))
	match, _, err := svc.StartMatch([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start match error: %v", err)
	}
	evs, err := svc.Leave(match, "u1")
	if err != nil {
		t.Fatalf("leave error: %v", err)
	}
	ended := eventsOfKind(evs, EventMatchEnded)
	if len(ended) != 1 || ended[0].Payload.(MatchEndedPayload).WinnerID != "u2" {
		t.Fatalf("expected u2 to win: %+v", evs)
	}
	if evs, err := svc.Leave(match, "u1"); err != nil || len(evs) != 0 {
		t.Fatalf("leaving twice = %v, %v", evs, err)
	}
	if evs, err := svc.Leave(match, "u2"); err != nil || len(evs) != 0 {
		t.Fatalf("winner leaving = %v, %v", evs, err)
	}
	if winner, over := match.IsMatchOver(); !over || winner != "u2" {
		t.Fatalf("IsMatchOver = %q, %v", winner, over)
	}
}

func TestRestoreMatch(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(8)))
	match, _, err := svc.StartMatch([]string{"u1", "u2"})
	if err != nil {
		t.Fatalf("start match error: %v", err)
	}
	data, err := json.Marshal(match)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	restored, err := svc.RestoreMatch(data)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.CurrentPlayer() != "u1" || len(restored.DrawPile) != len(match.DrawPile) {
		t.Fatalf("restored match differs")
	}
}
