package domain

import "errors"

// Action failures. A failed action leaves the match unchanged.
var (
	ErrNotYourTurn                = errors.New("not your turn")
	ErrMustDrawFirst              = errors.New("must draw a card first")
	ErrMustDiscardFirst           = errors.New("must discard or close before drawing again")
	ErrCannotLayDown              = errors.New("cannot close with a card before drawing")
	ErrMustDiscardOrCloseWithCard = errors.New("must discard or close with a card")
	ErrCardNotHeld                = errors.New("card not in hand")
	ErrNoDiscardsAvailable        = errors.New("discard pile is empty")
	ErrScoreTooHigh               = errors.New("leftover points too high to close")
	ErrTargetNotInMatch           = errors.New("player is not in the match")
	ErrMatchOver                  = errors.New("match is over")
	ErrPlayerEliminated           = errors.New("player has been eliminated")
	ErrInvalidPile                = errors.New("unknown pile")
)

// Construction and restore failures.
var (
	ErrInvalidPlayerCount = errors.New("a match needs between 2 and 4 players")
	ErrDuplicatePlayer    = errors.New("player listed twice")
	ErrCorruptState       = errors.New("match state is inconsistent")
)
