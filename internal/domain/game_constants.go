package domain

const (
	// DeckSize is the number of cards in a Spanish deck with eights and nines.
	DeckSize = 48
	// MaxRank is the highest card rank.
	MaxRank = 12

	// HandSize is the number of cards a player holds while waiting for their turn.
	HandSize = 7
	// TurnHandSize is the number of cards held after drawing and before discarding.
	TurnHandSize = HandSize + 1

	// MinPlayers and MaxPlayers bound the participants of a match.
	MinPlayers = 2
	MaxPlayers = 4

	// EliminationScore is the cumulative score a player must exceed to be eliminated.
	EliminationScore = 100
	// MaxClosePoints is the highest leftover total that still allows closing a round.
	MaxClosePoints = 5
	// ZeroLeftoverScore replaces a zero leftover total for the player who closes.
	ZeroLeftoverScore = -10
	// ChinchonPenalty is added to every other player when the round is closed with chinchón.
	ChinchonPenalty = 1000

	minMeldSize = 3
	maxRunSize  = 7
	maxSetSize  = 4
)
