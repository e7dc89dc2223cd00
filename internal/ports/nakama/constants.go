package nakama

const (
	// MatchNameChinchon is the authoritative match handler name registered with Nakama.
	MatchNameChinchon = "chinchon_match"

	// RpcQuickMatch finds an open public lobby or creates one.
	RpcQuickMatch = "chinchon_quick_match"
	// RpcCreateMatch opens a new table, public or invite only.
	RpcCreateMatch = "chinchon_create_match"
	// RpcInvite signs an invite token for a private table.
	RpcInvite = "chinchon_invite"
	// RpcStats returns the caller's win/loss counters.
	RpcStats = "chinchon_stats"
	// RpcRestoreMatch reopens a match saved when its previous host terminated it.
	RpcRestoreMatch = "chinchon_restore_match"

	// matchCollection is the storage collection holding saved tables.
	matchCollection = "chinchon_matches"
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server
	OpStartGame  int64 = 1
	OpDraw       int64 = 2
	OpDiscard    int64 = 3
	OpClose      int64 = 4
	OpVoteRemove int64 = 5
	OpLeaveGame  int64 = 6
	OpCanClose   int64 = 7

	// Server -> Client events
	OpMatchState     int64 = 100
	OpMatchStarted   int64 = 101
	OpHandDealt      int64 = 102 // send privately
	OpCardDrawn      int64 = 103
	OpCardReceived   int64 = 104 // send privately
	OpCardDiscarded  int64 = 105
	OpRoundClosed    int64 = 106
	OpVoteCast       int64 = 107
	OpPlayerRemoved  int64 = 108
	OpMatchEnded     int64 = 109
	OpCanCloseResult int64 = 110 // send privately
	OpGameError      int64 = 111 // send privately
)

// Match label keys.
const (
	labelKeyOpen       = "open"
	labelKeyPhase      = "phase"
	labelKeyPrivate    = "private"
	labelKeyCreator    = "creator"
	labelKeyMaxPlayers = "max_players"
)

const (
	phaseLobby   = "lobby"
	phasePlaying = "playing"
)
