package bot

import (
	"chinchon/internal/bot/brain"
)

// SelectionContext holds the discard candidates still in the running.
type SelectionContext struct {
	Candidates []DiscardOption
}

// SelectionRule narrows the candidates of a discard decision.
type SelectionRule interface {
	Name() string
	Apply(ctx *SelectionContext)
}

// LowestLeftoverRule keeps the cards whose throw leaves the fewest points.
type LowestLeftoverRule struct{}

func (r *LowestLeftoverRule) Name() string { return "LowestLeftover" }

func (r *LowestLeftoverRule) Apply(ctx *SelectionContext) {
	keepLowest(ctx, func(o DiscardOption) int { return o.Leftover })
}

// FavorDeadCardsRule prefers throwing cards with the fewest live meld partners.
type FavorDeadCardsRule struct {
	Memory *brain.GameMemory
}

func (r *FavorDeadCardsRule) Name() string { return "FavorDeadCards" }

func (r *FavorDeadCardsRule) Apply(ctx *SelectionContext) {
	if r.Memory == nil {
		return
	}
	keepLowest(ctx, func(o DiscardOption) int { return r.Memory.LivePartners(o.Card) })
}

// FavorHighRankRule prefers throwing high cards, which cost the most when left over.
type FavorHighRankRule struct{}

func (r *FavorHighRankRule) Name() string { return "FavorHighRank" }

func (r *FavorHighRankRule) Apply(ctx *SelectionContext) {
	keepLowest(ctx, func(o DiscardOption) int { return -o.Card.Rank })
}

func keepLowest(ctx *SelectionContext, score func(DiscardOption) int) {
	if len(ctx.Candidates) == 0 {
		return
	}
	best := score(ctx.Candidates[0])
	for _, c := range ctx.Candidates[1:] {
		if s := score(c); s < best {
			best = s
		}
	}
	kept := ctx.Candidates[:0]
	for _, c := range ctx.Candidates {
		if score(c) == best {
			kept = append(kept, c)
		}
	}
	ctx.Candidates = kept
}

// runPipeline applies rules in order and returns the first surviving candidate.
func runPipeline(options []DiscardOption, rules []SelectionRule) (DiscardOption, bool) {
	ctx := &SelectionContext{Candidates: append([]DiscardOption(nil), options...)}
	for _, rule := range rules {
		rule.Apply(ctx)
	}
	if len(ctx.Candidates) == 0 {
		return DiscardOption{}, false
	}
	return ctx.Candidates[0], true
}
