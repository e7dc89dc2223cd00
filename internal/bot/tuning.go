package bot

import "chinchon/internal/domain"

// GreedyTuning adjusts how eagerly the greedy bot takes discards and closes.
type GreedyTuning struct {
	// TakeDiscardGain is how many leftover points the top discard must save to be taken.
	TakeDiscardGain int
	// CloseAt is the highest leftover the bot is willing to close with.
	CloseAt int
}

// DefaultTuning takes any improving discard and closes as soon as the rules allow.
var DefaultTuning = GreedyTuning{
	TakeDiscardGain: 1,
	CloseAt:         domain.MaxClosePoints,
}
