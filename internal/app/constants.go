package app

import "chinchon/internal/domain"

// MinPlayersToStartGame defines the minimum number of occupied seats required to start a match.
// Keep this centralized so the lobby and the invitation flow agree on the rule.
const MinPlayersToStartGame = domain.MinPlayers

// MaxPlayersPerMatch caps the number of seats at a table.
const MaxPlayersPerMatch = domain.MaxPlayers

// Reasons carried by PlayerRemovedPayload.
const (
	RemovalReasonVote  = "vote"
	RemovalReasonLeft  = "left"
	RemovalReasonScore = "score"
)
