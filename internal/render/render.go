package render

import (
	"fmt"
	"strconv"
	"strings"

	"chinchon/internal/domain"
)

// Glyphs holds the symbol printed for each suit. Empty entries fall back to the suit name.
type Glyphs [len(domain.Suits)]string

// ParseGlyphs builds Glyphs from a suit-name keyed map such as the one in the game
// config. Keys accept every alias ParseSuit does.
func ParseGlyphs(m map[string]string) (Glyphs, error) {
	var g Glyphs
	for name, glyph := range m {
		s, ok := domain.ParseSuit(name)
		if !ok {
			return Glyphs{}, fmt.Errorf("unknown suit %q in glyphs", name)
		}
		g[s] = glyph
	}
	return g, nil
}

// Renderer turns cards and round results into display text.
type Renderer struct {
	glyphs Glyphs
}

func NewRenderer(glyphs Glyphs) *Renderer {
	return &Renderer{glyphs: glyphs}
}

// Card renders "7🪙" when a glyph is configured and "7 de oro" otherwise.
func (r *Renderer) Card(c domain.Card) string {
	if g := r.glyphs[c.Suit]; g != "" {
		return strconv.Itoa(c.Rank) + g
	}
	return c.String()
}

// Hand renders cards separated by spaces, in the given order.
func (r *Renderer) Hand(cards []domain.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = r.Card(c)
	}
	return strings.Join(parts, " ")
}

// RoundSummary describes a closed round. name resolves player ids to display names; a
// nil name prints the ids.
func (r *Renderer) RoundSummary(closer string, results []domain.RoundResult, name func(string) string) string {
	if name == nil {
		name = func(id string) string { return id }
	}

	var b strings.Builder
	for _, res := range results {
		if res.Chinchon && len(res.Melds) > 0 {
			fmt.Fprintf(&b, "%s made chinchón!\n%s\n", name(res.PlayerID), r.Hand(res.Melds[0]))
			return b.String()
		}
	}

	fmt.Fprintf(&b, "%s closed the round.\n\n", name(closer))
	for _, res := range results {
		fmt.Fprintf(&b, "Cards of %s:\n", name(res.PlayerID))
		for _, m := range res.Melds {
			b.WriteString(r.Hand(m))
			b.WriteByte('\n')
		}
		if len(res.Leftovers) > 0 {
			b.WriteString(r.Hand(res.Leftovers))
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Adds %d and stands at %d", res.Points, res.Total)
		if res.Eliminated {
			b.WriteString(", out of the match")
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
