package domain

import (
	"encoding/json"
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestParseCard(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Card
	}{
		{name: "full form", in: "7 de oro", want: Card{Rank: 7, Suit: SuitCoins}},
		{name: "plural suit", in: "12 espadas", want: Card{Rank: 12, Suit: SuitSwords}},
		{name: "compact", in: "3c", want: Card{Rank: 3, Suit: SuitCups}},
		{name: "single letter suit", in: "1 de b", want: Card{Rank: 1, Suit: SuitClubs}},
		{name: "palos alias", in: "10 de palos", want: Card{Rank: 10, Suit: SuitClubs}},
		{name: "short de", in: "4 d copa", want: Card{Rank: 4, Suit: SuitCups}},
		{name: "upper case", in: "11 DE ESP", want: Card{Rank: 11, Suit: SuitSwords}},
		{name: "embedded in text", in: "descarto el 5 oro", want: Card{Rank: 5, Suit: SuitCoins}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCard(tt.in)
			if err != nil {
				t.Fatalf("ParseCard(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseCard(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCardErrors(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantErr   error
		wantToken string
	}{
		{name: "rank too high", in: "13 de oro", wantErr: ErrInvalidRank, wantToken: "13"},
		{name: "rank zero", in: "0 copas", wantErr: ErrInvalidRank, wantToken: "0"},
		{name: "unknown suit", in: "5 de xyz", wantErr: ErrInvalidSuit, wantToken: "xyz"},
		{name: "plural coins", in: "5 oros", wantErr: ErrInvalidSuit, wantToken: "oros"},
		{name: "no code", in: "hello", wantErr: ErrNoMatch},
		{name: "empty", in: "", wantErr: ErrNoMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCard(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseCard(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Token != tt.wantToken {
				t.Fatalf("token = %q, want %q", perr.Token, tt.wantToken)
			}
		})
	}
}

func TestCardStringRoundTrip(t *testing.T) {
	for _, c := range NewDeck() {
		got, err := ParseCard(c.String())
		if err != nil {
			t.Fatalf("ParseCard(%q) error: %v", c.String(), err)
		}
		if got != c {
			t.Fatalf("round trip of %v gave %v", c, got)
		}
	}
	if s := (Card{Rank: 1, Suit: SuitCups}).String(); s != "1 de copas" {
		t.Fatalf("String() = %q", s)
	}
}

func TestCardJSON(t *testing.T) {
	hand := []Card{{Rank: 7, Suit: SuitCoins}, {Rank: 12, Suit: SuitSwords}}
	data, err := json.Marshal(hand)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["7 de oro","12 de espada"]` {
		t.Fatalf("unexpected encoding %s", data)
	}
	var back []Card
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, hand) {
		t.Fatalf("got %v, want %v", back, hand)
	}
	if err := json.Unmarshal([]byte(`["14 de oro"]`), &back); !errors.Is(err, ErrInvalidRank) {
		t.Fatalf("expected ErrInvalidRank, got %v", err)
	}
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck has %d cards", len(deck))
	}
	seen := make(map[Card]bool)
	for i, c := range deck {
		if c.Rank < 1 || c.Rank > MaxRank {
			t.Fatalf("bad rank %d", c.Rank)
		}
		if seen[c] {
			t.Fatalf("duplicate card %v", c)
		}
		seen[c] = true
		if i > 0 && !deck[i-1].Less(c) {
			t.Fatalf("deck not sorted at %d", i)
		}
	}
}

func TestNewShuffledDeckIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	deck := NewShuffledDeck(rng)
	if reflect.DeepEqual(deck, NewDeck()) {
		t.Fatalf("shuffled deck kept the sorted order")
	}
	SortCards(deck)
	if !reflect.DeepEqual(deck, NewDeck()) {
		t.Fatalf("shuffled deck is not a permutation of the full deck")
	}
}

func TestCardOrdering(t *testing.T) {
	a := Card{Rank: 12, Suit: SuitCups}
	b := Card{Rank: 1, Suit: SuitSwords}
	c := Card{Rank: 2, Suit: SuitSwords}
	if !a.Less(b) || !b.Less(c) || c.Less(a) {
		t.Fatalf("suit must order before rank")
	}
	if a.Compare(a) != 0 {
		t.Fatalf("card must compare equal to itself")
	}
	hand := []Card{c, {Rank: 3, Suit: SuitClubs}, a, b}
	SortCards(hand)
	want := []Card{a, b, c, {Rank: 3, Suit: SuitClubs}}
	if !reflect.DeepEqual(hand, want) {
		t.Fatalf("SortCards = %v, want %v", hand, want)
	}
}

func TestInsertAndRemoveSorted(t *testing.T) {
	hand := []Card{{Rank: 2, Suit: SuitCups}, {Rank: 9, Suit: SuitCoins}}
	hand = InsertSorted(hand, Card{Rank: 5, Suit: SuitSwords})
	hand = InsertSorted(hand, Card{Rank: 1, Suit: SuitCups})
	hand = InsertSorted(hand, Card{Rank: 12, Suit: SuitClubs})
	want := []Card{
		{Rank: 1, Suit: SuitCups},
		{Rank: 2, Suit: SuitCups},
		{Rank: 5, Suit: SuitSwords},
		{Rank: 9, Suit: SuitCoins},
		{Rank: 12, Suit: SuitClubs},
	}
	if !reflect.DeepEqual(hand, want) {
		t.Fatalf("InsertSorted = %v, want %v", hand, want)
	}

	hand, ok := RemoveCard(hand, Card{Rank: 5, Suit: SuitSwords})
	if !ok || len(hand) != 4 {
		t.Fatalf("RemoveCard failed: %v %v", hand, ok)
	}
	if _, ok := SearchCard(hand, Card{Rank: 5, Suit: SuitSwords}); ok {
		t.Fatalf("card still present after removal")
	}
	if _, ok := RemoveCard(hand, Card{Rank: 7, Suit: SuitCoins}); ok {
		t.Fatalf("removing a missing card must fail")
	}
}

func TestSumRanks(t *testing.T) {
	cards, err := ParseCards([]string{"1 de oro", "12 de copas", "7 de basto"})
	if err != nil {
		t.Fatalf("ParseCards: %v", err)
	}
	if got := SumRanks(cards); got != 20 {
		t.Fatalf("SumRanks = %d, want 20", got)
	}
	if _, err := ParseCards([]string{"1 de oro", "nope"}); !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}
