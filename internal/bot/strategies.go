package bot

import (
	"math/rand"

	"chinchon/internal/app"
	"chinchon/internal/bot/brain"
	"chinchon/internal/domain"
)

// RandomBot picks piles and cards at random but never misses a chance to close.
type RandomBot struct {
	rng *rand.Rand
}

func (b *RandomBot) ChoosePile(view View) domain.Pile {
	if view.TopDiscard == nil || b.rng.Intn(2) == 0 {
		return domain.PileDraw
	}
	return domain.PileDiscard
}

func (b *RandomBot) ChooseFinish(view View) Finish {
	if len(view.Hand) == 0 {
		return Finish{}
	}
	order := b.rng.Perm(len(view.Hand))
	if view.CanClose != nil {
		for _, i := range order {
			if view.CanClose(view.Hand[i]) {
				return Finish{Card: view.Hand[i], Close: true}
			}
		}
	}
	return Finish{Card: view.Hand[order[0]]}
}

func (b *RandomBot) OnEvent(app.Event) {}

// GreedyBot throws the card that leaves the fewest points, breaking ties with what it
// remembers about the discards.
type GreedyBot struct {
	Memory *brain.GameMemory
	Tuning GreedyTuning

	cache *SolverCache
	rules []SelectionRule
}

// NewGreedyBot builds a GreedyBot evaluating hands through cache, which may be nil.
func NewGreedyBot(cache *SolverCache, tuning GreedyTuning) *GreedyBot {
	memory := brain.NewMemory()
	return &GreedyBot{
		Memory: memory,
		Tuning: tuning,
		cache:  cache,
		rules: []SelectionRule{
			&LowestLeftoverRule{},
			&FavorDeadCardsRule{Memory: memory},
			&FavorHighRankRule{},
		},
	}
}

func (b *GreedyBot) ChoosePile(view View) domain.Pile {
	if view.TopDiscard == nil {
		return domain.PileDraw
	}
	current := b.cache.Leftover(view.Hand)
	with := bestLeftoverWith(view.Hand, *view.TopDiscard, b.cache)
	if current-with >= b.Tuning.TakeDiscardGain {
		return domain.PileDiscard
	}
	return domain.PileDraw
}

func (b *GreedyBot) ChooseFinish(view View) Finish {
	options := discardOptions(view.Hand, b.cache)

	if view.CanClose != nil {
		var closing []DiscardOption
		for _, o := range options {
			if o.Leftover <= b.Tuning.CloseAt && view.CanClose(o.Card) {
				closing = append(closing, o)
			}
		}
		if best, ok := runPipeline(closing, b.rules); ok {
			return Finish{Card: best.Card, Close: true}
		}
	}

	best, ok := runPipeline(options, b.rules)
	if !ok {
		return Finish{}
	}
	return Finish{Card: best.Card}
}

// OnEvent keeps the memory in step with the events visible to the bot.
func (b *GreedyBot) OnEvent(event app.Event) {
	switch p := event.Payload.(type) {
	case app.HandDealtPayload:
		b.Memory.Reset()
		b.Memory.MarkMine(p.Hand)
	case app.CardDrawnPayload:
		if p.Card != nil {
			b.Memory.MarkOpponent(*p.Card)
		}
	case app.CardReceivedPayload:
		b.Memory.MarkMine([]domain.Card{p.Card})
	case app.CardDiscardedPayload:
		b.Memory.MarkPlayed(p.Card)
	case app.RoundClosedPayload:
		b.Memory.Reset()
	}
}
