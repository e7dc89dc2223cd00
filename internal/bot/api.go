package bot

import (
	"chinchon/internal/app"
	"chinchon/internal/domain"
)

// View is the part of the match a bot may look at when deciding.
type View struct {
	Hand       []domain.Card
	TopDiscard *domain.Card
	Score      int
	// CanClose reports whether laying down card would allow closing the round.
	CanClose func(card domain.Card) bool
}

// Finish is how a bot ends its turn: throwing Card, or laying it down to close.
type Finish struct {
	Card  domain.Card
	Close bool
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	ChoosePile(view View) domain.Pile
	ChooseFinish(view View) Finish
	OnEvent(event app.Event)
}
