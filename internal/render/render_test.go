package render

import (
	"strings"
	"testing"

	"chinchon/internal/domain"
)

func TestParseGlyphs(t *testing.T) {
	g, err := ParseGlyphs(map[string]string{"oro": "O", "e": "E"})
	if err != nil {
		t.Fatalf("ParseGlyphs: %v", err)
	}
	if g[domain.SuitCoins] != "O" || g[domain.SuitSwords] != "E" || g[domain.SuitCups] != "" {
		t.Fatalf("glyphs = %v", g)
	}
	if _, err := ParseGlyphs(map[string]string{"hearts": "H"}); err == nil {
		t.Fatal("expected error for unknown suit")
	}
}

func TestCardAndHand(t *testing.T) {
	r := NewRenderer(Glyphs{domain.SuitCoins: "🪙"})
	hand := []domain.Card{{Rank: 7, Suit: domain.SuitCoins}, {Rank: 12, Suit: domain.SuitClubs}}
	if got := r.Hand(hand); got != "7🪙 12 de basto" {
		t.Fatalf("Hand() = %q", got)
	}
	if got := r.Hand(nil); got != "" {
		t.Fatalf("Hand(nil) = %q", got)
	}
}

func TestRoundSummary(t *testing.T) {
	r := NewRenderer(Glyphs{})
	results := []domain.RoundResult{
		{
			PlayerID:  "u1",
			Points:    2,
			Total:     2,
			Melds:     []domain.Meld{{{Rank: 1, Suit: domain.SuitCups}, {Rank: 2, Suit: domain.SuitCups}, {Rank: 3, Suit: domain.SuitCups}}},
			Leftovers: []domain.Card{{Rank: 2, Suit: domain.SuitCoins}},
		},
		{PlayerID: "u2", Points: 60, Total: 104, Eliminated: true, Leftovers: []domain.Card{{Rank: 12, Suit: domain.SuitClubs}}},
	}
	names := map[string]string{"u1": "Ana", "u2": "Beto"}
	out := r.RoundSummary("u1", results, func(id string) string { return names[id] })

	for _, want := range []string{
		"Ana closed the round.",
		"1 de copas 2 de copas 3 de copas",
		"Adds 2 and stands at 2",
		"Cards of Beto:",
		"Adds 60 and stands at 104, out of the match",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRoundSummaryChinchon(t *testing.T) {
	run := domain.Meld{}
	for rank := 1; rank <= 7; rank++ {
		run = append(run, domain.Card{Rank: rank, Suit: domain.SuitCoins})
	}
	results := []domain.RoundResult{
		{PlayerID: "u1", Points: -10, Chinchon: true, Melds: []domain.Meld{run}},
		{PlayerID: "u2", Points: 1030, Total: 1030, Eliminated: true},
	}
	out := NewRenderer(Glyphs{domain.SuitCoins: "o"}).RoundSummary("u1", results, nil)
	if out != "u1 made chinchón!\n1o 2o 3o 4o 5o 6o 7o\n" {
		t.Fatalf("summary = %q", out)
	}
}
