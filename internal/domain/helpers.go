package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNoMatch is returned when the text holds no rank/suit pattern at all.
	ErrNoMatch = errors.New("no card code found")
	// ErrInvalidRank is returned for a rank of 0 or above 12.
	ErrInvalidRank = errors.New("invalid card rank")
	// ErrInvalidSuit is returned when the suit token matches no known alias.
	ErrInvalidSuit = errors.New("invalid card suit")
)

// ParseError describes why a card code could not be parsed.
type ParseError struct {
	Input string
	// Token is the offending rank or suit token, empty for ErrNoMatch.
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse card %q: %v", e.Input, e.Err)
	}
	return fmt.Sprintf("parse card %q: %v %q", e.Input, e.Err, e.Token)
}

func (e *ParseError) Unwrap() error { return e.Err }

var cardCodeRe = regexp.MustCompile(`(\d{1,2}) ?(?:de? )?([a-z]+)`)

var suitNames = [...]string{
	SuitCups:   "copas",
	SuitSwords: "espada",
	SuitCoins:  "oro",
	SuitClubs:  "basto",
}

// Name returns the display name of the suit.
func (s Suit) Name() string {
	if s < SuitCups || s > SuitClubs {
		return "?"
	}
	return suitNames[s]
}

func (s Suit) String() string { return s.Name() }

// ParseSuit matches full names, abbreviations and single letters, ignoring case.
func ParseSuit(token string) (Suit, bool) {
	switch strings.ToLower(token) {
	case "o", "oro":
		return SuitCoins, true
	case "e", "esp", "espada", "espadas":
		return SuitSwords, true
	case "c", "copa", "copas":
		return SuitCups, true
	case "b", "basto", "bastos", "p", "palo", "palos":
		return SuitClubs, true
	}
	return 0, false
}

// ParseCard reads codes such as "7 de oro", "12 espadas", "3c" or "1 de b".
func ParseCard(text string) (Card, error) {
	m := cardCodeRe.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return Card{}, &ParseError{Input: text, Err: ErrNoMatch}
	}
	rank, err := strconv.Atoi(m[1])
	if err != nil || rank == 0 || rank > MaxRank {
		return Card{}, &ParseError{Input: text, Token: m[1], Err: ErrInvalidRank}
	}
	suit, ok := ParseSuit(m[2])
	if !ok {
		return Card{}, &ParseError{Input: text, Token: m[2], Err: ErrInvalidSuit}
	}
	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses a list of card codes, stopping at the first failure.
func ParseCards(codes []string) ([]Card, error) {
	cards := make([]Card, 0, len(codes))
	for _, code := range codes {
		c, err := ParseCard(code)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// String renders the canonical "<rank> de <suit>" form accepted by ParseCard.
func (c Card) String() string {
	return fmt.Sprintf("%d de %s", c.Rank, c.Suit.Name())
}

// MarshalText implements encoding.TextMarshaler with the canonical card code.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler through ParseCard.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// SearchCard finds card in a sorted hand, returning its index and whether it was found.
func SearchCard(hand []Card, card Card) (int, bool) {
	i := sort.Search(len(hand), func(i int) bool {
		return !hand[i].Less(card)
	})
	return i, i < len(hand) && hand[i] == card
}

// InsertSorted inserts card keeping the hand sorted.
func InsertSorted(hand []Card, card Card) []Card {
	i, _ := SearchCard(hand, card)
	hand = append(hand, Card{})
	copy(hand[i+1:], hand[i:])
	hand[i] = card
	return hand
}

// RemoveCard removes one copy of card from a sorted hand.
func RemoveCard(hand []Card, card Card) ([]Card, bool) {
	i, ok := SearchCard(hand, card)
	if !ok {
		return hand, false
	}
	return append(hand[:i], hand[i+1:]...), true
}

// SumRanks adds up the ranks of cards, which is also their point value.
func SumRanks(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Rank
	}
	return total
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}

var pileNames = [...]string{
	PileNone:    "none",
	PileDraw:    "draw",
	PileDiscard: "discard",
}

func (p Pile) String() string {
	if p < PileNone || p > PileDiscard {
		return "unknown"
	}
	return pileNames[p]
}

// ParsePile maps "draw"/"mazo" and "discard"/"descarte" to a pile.
func ParsePile(name string) (Pile, bool) {
	switch strings.ToLower(name) {
	case "draw", "mazo":
		return PileDraw, true
	case "discard", "descarte":
		return PileDiscard, true
	}
	return PileNone, false
}
