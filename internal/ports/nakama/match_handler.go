package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"

	"chinchon/internal/app"
	"chinchon/internal/bot"
	"chinchon/internal/domain"
	"chinchon/internal/render"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var (
	errNotOwner   = errors.New("only the table owner can start the game")
	errNoGame     = errors.New("no game in progress")
	errBadRequest = errors.New("malformed request")
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Key                  string                      `json:"key"`        // Match id, also the storage key of its snapshot
	Seats                [domain.MaxPlayers]string   `json:"seats"`      // Array of user IDs, empty string means seat is empty
	OwnerSeat            int                         `json:"owner_seat"` // Seat index of the table owner
	Scope                string                      `json:"scope"`      // Statistics scope the table reports to
	Tick                 int64                       `json:"tick"`       // Current tick of the match for turn-based logic
	Invitation           *app.Invitation             `json:"-"`          // Who may sit at the table
	Presences            map[string]runtime.Presence `json:"-"`          // Map UserId -> Presence for targeted messaging
	App                  *app.Service                `json:"-"`          // Chinchón app service with game logic
	Match                *domain.Match               `json:"-"`          // Current match state (nil if in lobby)
	BotsEnabled          bool                        `json:"bots_enabled"`
	BotMinDelay          int                         `json:"bot_min_delay"`
	BotMaxDelay          int                         `json:"bot_max_delay"`
	BotAutoFillDelay     int                         `json:"bot_auto_fill_delay"`
	BotWaitUntil         int64                       `json:"bot_wait_until"`
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"`
	TurnSecondsRemaining int64                       `json:"turn_seconds_remaining"`
	Bots                 map[string]*bot.Agent       `json:"-"`

	turnUser string
}

// MaxSeats returns how many seats the table offers.
func (ms *MatchState) MaxSeats() int {
	if ms.Invitation == nil {
		return domain.MaxPlayers
	}
	return ms.Invitation.MaxPlayers
}

// GetOpenSeatsCount counts the seats a newcomer could take. Seats held for accepted
// players who have not sat down yet are not open.
func (ms *MatchState) GetOpenSeatsCount() int {
	return max(ms.MaxSeats()-ms.GetOccupiedSeatCount()-ms.reservedSeats(), 0)
}

func (ms *MatchState) reservedSeats() int {
	if ms.Invitation == nil {
		return 0
	}
	count := 0
	for _, id := range ms.Invitation.Players() {
		if id != "" && ms.SeatOf(id) < 0 {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// SeatOf returns the seat index of userID or -1.
func (ms *MatchState) SeatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

// PlayerIDs lists the seated players in seat order.
func (ms *MatchState) PlayerIDs() []string {
	var ids []string
	for _, seat := range ms.Seats {
		if seat != "" {
			ids = append(ids, seat)
		}
	}
	return ids
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

type matchHandler struct {
	m *module
}

// MatchInit is called when the match is created. A "restore" param reopens a saved table.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state := mh.newState(matchID, params)

	if key := paramString(params, "restore"); key != "" {
		if err := mh.restore(ctx, state, key); err != nil {
			logger.Error("MatchInit: Failed to restore match %s: %v", key, err)
			return nil, 0, ""
		}
		logger.Info("MatchInit: Restored match %s as %s.", key, matchID)
	}

	label, err := mh.label(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, label
}

func (mh *matchHandler) newState(matchID string, params map[string]interface{}) *MatchState {
	private := paramBool(params, "private", false)
	var invitees []string
	if private {
		invitees = paramStrings(params, "invitees")
		if invitees == nil {
			invitees = []string{}
		}
	}
	scope := paramString(params, "scope")
	if scope == "" {
		scope = "public"
	}

	cfg := mh.m.cfg
	return &MatchState{
		Key:              matchID,
		OwnerSeat:        -1,
		Scope:            scope,
		Invitation:       app.NewInvitation(paramString(params, "creator"), invitees, paramInt(params, "max_players", domain.MaxPlayers)),
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil),
		BotsEnabled:      paramBool(params, "bots", !private),
		BotMinDelay:      1,
		BotMaxDelay:      3,
		BotAutoFillDelay: cfg.BotAutoFillDelaySeconds,
		Bots:             make(map[string]*bot.Agent),
	}
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	userID := presence.GetUserId()
	if matchState.SeatOf(userID) >= 0 {
		// Reconnecting player.
		return state, true, ""
	}
	if matchState.Match != nil {
		return state, false, "Match in progress"
	}

	if !matchState.Invitation.Invited(userID) {
		if err := mh.admitWithToken(matchState, userID, metadata["invite"]); err != nil {
			logger.Debug("MatchJoinAttempt: Rejected %s: %v", userID, err)
			return state, false, "Not invited"
		}
	}

	if matchState.GetOpenSeatsCount() <= 0 && !matchState.Invitation.Joined(userID) {
		hasBot := false
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

// admitWithToken adds userID to a private table's guest list when token is a valid
// invite to this match.
func (mh *matchHandler) admitWithToken(state *MatchState, userID, token string) error {
	if token == "" || mh.m.invites == nil {
		return app.ErrNotInvited
	}
	claims, err := mh.m.invites.Verify(token)
	if err != nil {
		return err
	}
	if claims.MatchID != state.Key || !claims.Admits(userID) {
		return app.ErrNotInvited
	}
	return state.Invitation.Invite(userID)
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	var reconnected []runtime.Presence
	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p

		if matchState.SeatOf(userID) >= 0 {
			reconnected = append(reconnected, p)
			continue
		}
		if !mh.assignSeat(matchState, userID, logger) {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	mh.updateOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger, nil)

	if matchState.Match != nil {
		for _, p := range reconnected {
			mh.sendHand(matchState, dispatcher, logger, p)
		}
	}

	return matchState
}

// assignSeat seats userID in the first empty seat, or in place of a lobby bot.
func (mh *matchHandler) assignSeat(state *MatchState, userID string, logger runtime.Logger) bool {
	if err := state.Invitation.Accept(userID); err != nil && !errors.Is(err, app.ErrAlreadyJoined) {
		logger.Warn("MatchJoin: User %s cannot take a seat: %v", userID, err)
		return false
	}

	for i := 0; i < state.MaxSeats(); i++ {
		if state.Seats[i] == "" {
			state.Seats[i] = userID
			return true
		}
	}

	if state.Match == nil {
		for i, seatUserId := range state.Seats {
			if isBotUserId(seatUserId) {
				logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
				delete(state.Bots, seatUserId)
				state.Seats[i] = userID
				return true
			}
		}
	}

	state.Invitation.Withdraw(userID)
	return false
}

// updateOwner keeps the owner on a human seat, preferring the table creator.
func (mh *matchHandler) updateOwner(state *MatchState, logger runtime.Logger) {
	owner := state.SeatOf(state.Invitation.Creator)
	if owner < 0 || state.Invitation.Creator == "" {
		owner = state.OwnerSeat
		if !isHumanSeat(state.Seats[:], owner) {
			owner = findFirstHumanSeat(state.Seats[:])
		}
	}
	if owner != state.OwnerSeat {
		state.OwnerSeat = owner
		if owner >= 0 {
			logger.Debug("Owner set to human seat %d.", owner)
		}
	}
}

// MatchLeave is called when one or more players leave the match. Seats stay taken while
// a game is running so players can reconnect.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		if matchState.Match != nil {
			logger.Debug("MatchLeave: User %s disconnected mid-game.", userID)
			continue
		}
		if seat := matchState.SeatOf(userID); seat >= 0 {
			matchState.Seats[seat] = ""
			matchState.Invitation.Release(userID)
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans connected.")
		mh.saveSnapshot(ctx, matchState, logger)
		return nil
	}

	mh.updateOwner(matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger, nil)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpCanClose:
			mh.handleCanClose(matchState, dispatcher, logger, msg)
		case OpDraw, OpDiscard, OpClose, OpVoteRemove, OpLeaveGame:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.Match != nil {
		if idle := matchState.Match.Idle(); idle > mh.m.cfg.IdleTimeout() {
			logger.Info("MatchLoop: Ending match idle for %s.", idle)
			mh.deleteSnapshot(ctx, matchState, logger)
			return nil
		}
		mh.processTurnTimer(ctx, matchState, dispatcher, logger)
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.SeatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if state.Match != nil {
		logger.Warn("StartGame: Match already running.")
		return
	}
	if senderSeat < 0 || senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, errNotOwner)
		return
	}

	match, events, err := state.App.StartMatch(state.PlayerIDs())
	if err != nil {
		logger.Warn("StartGame: Failed to start match: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}

	state.Match = match
	state.turnUser = ""
	for _, id := range state.PlayerIDs() {
		if isBotUserId(id) {
			mh.ensureAgent(state, id, logger)
		}
	}

	mh.updateLabel(state, dispatcher, logger)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	mh.saveSnapshot(ctx, state, logger)

	logger.Info("StartGame: Match started with %d players.", len(state.PlayerIDs()))
}

// handleAction applies one player action and broadcasts its events. Failures are
// reported to the sender only.
func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Match == nil {
		mh.sendError(state, dispatcher, logger, senderID, errNoGame)
		return
	}

	events, err := mh.applyAction(state, senderID, msg.GetOpCode(), msg.GetData())
	if err != nil {
		logger.Debug("handleAction: User %s failed op %d: %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) applyAction(state *MatchState, userID string, opCode int64, data []byte) ([]app.Event, error) {
	svc, match := state.App, state.Match
	switch opCode {
	case OpDraw:
		var req drawRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		pile, ok := domain.ParsePile(req.Pile)
		if !ok {
			return nil, domain.ErrInvalidPile
		}
		return svc.Draw(match, userID, pile)
	case OpDiscard:
		card, err := decodeCard(data)
		if err != nil {
			return nil, err
		}
		if card == nil {
			return nil, fmt.Errorf("%w: card is required", errBadRequest)
		}
		return svc.Discard(match, userID, *card)
	case OpClose:
		card, err := decodeCard(data)
		if err != nil {
			return nil, err
		}
		return svc.Close(match, userID, card)
	case OpVoteRemove:
		var req voteRequest
		if err := decode(data, &req); err != nil {
			return nil, err
		}
		return svc.VoteRemove(match, userID, req.Target)
	case OpLeaveGame:
		return svc.Leave(match, userID)
	default:
		return nil, fmt.Errorf("%w: op code %d", errBadRequest, opCode)
	}
}

// handleCanClose answers a private query without changing the match.
func (mh *matchHandler) handleCanClose(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Match == nil {
		mh.sendError(state, dispatcher, logger, senderID, errNoGame)
		return
	}
	card, err := decodeCard(msg.GetData())
	if err == nil && card == nil {
		err = fmt.Errorf("%w: card is required", errBadRequest)
	}
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	can, err := state.App.CanClose(state.Match, senderID, *card)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.sendTo(state, dispatcher, logger, senderID, OpCanCloseResult, canCloseMessage{Card: *card, CanClose: can})
}

// processTurnTimer plays on behalf of a human who let the turn clock run out.
func (mh *matchHandler) processTurnTimer(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if _, over := state.Match.IsMatchOver(); over {
		return
	}
	current := state.Match.CurrentPlayer()
	if current != state.turnUser {
		state.turnUser = current
		state.TurnSecondsRemaining = int64(mh.m.cfg.TurnDurationSeconds)
		return
	}
	if isBotUserId(current) {
		return
	}

	state.TurnSecondsRemaining--
	if state.TurnSecondsRemaining > 0 {
		return
	}

	logger.Info("processTurnTimer: Turn of %s timed out, playing for them.", current)
	standIn := &bot.Agent{ID: current, Name: "stand-in", Strategy: bot.NewGreedyBot(mh.m.cache, bot.DefaultTuning)}
	events, err := standIn.TakeTurn(state.App, state.Match)
	state.turnUser = ""
	if err != nil {
		logger.Error("processTurnTimer: Stand-in turn for %s failed: %v", current, err)
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill a public lobby with bots once a single human waited long enough.
	if state.Match == nil {
		if state.GetHumanPlayerCount() != 1 || state.Invitation.Private() {
			state.LastSinglePlayerTick = 0
			return
		}
		if state.LastSinglePlayerTick == 0 {
			state.LastSinglePlayerTick = state.Tick
			logger.Debug("processBots: Single player detected, starting auto-fill timer.")
		}
		if state.Tick-state.LastSinglePlayerTick < int64(state.BotAutoFillDelay) {
			return
		}

		added := false
		for i := 0; i < state.MaxSeats(); i++ {
			if state.Seats[i] != "" {
				continue
			}
			identity := bot.GetBotIdentity(i)
			botID := identity.UserID
			if botID == "" || state.SeatOf(botID) >= 0 {
				botID = bot.NewBotID()
			}
			state.Seats[i] = botID
			mh.ensureAgent(state, botID, logger)
			logger.Info("processBots: Added bot %s to seat %d", botID, i)
			added = true
		}
		if added {
			mh.updateLabel(state, dispatcher, logger)
			mh.broadcastMatchState(state, dispatcher, logger, nil)
		}
		state.LastSinglePlayerTick = 0
		return
	}

	// 2. Handle bot turns in-game.
	if _, over := state.Match.IsMatchOver(); over {
		return
	}
	currentUserID := state.Match.CurrentPlayer()
	if !isBotUserId(currentUserID) {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		delay := rand.Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", currentUserID, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	agent := mh.ensureAgent(state, currentUserID, logger)
	events, err := agent.TakeTurn(state.App, state.Match)
	if err != nil {
		logger.Error("processBots: Bot %s failed to play: %v", currentUserID, err)
	}
	// A failed discard still leaves the draw to announce.
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// ensureAgent returns the agent playing botID, creating it on first use.
func (mh *matchHandler) ensureAgent(state *MatchState, botID string, logger runtime.Logger) *bot.Agent {
	if agent, ok := state.Bots[botID]; ok {
		return agent
	}
	strategy := mh.m.cfg.BotStrategy
	if identity, ok := bot.GetBotConfig(botID); ok {
		strategy = identity.Strategy(strategy)
	}
	brain, err := bot.NewBrain(strategy, mh.m.cache, nil)
	if err != nil {
		logger.Warn("ensureAgent: %v, falling back to %s", err, bot.StrategyGreedy)
		brain = bot.NewGreedyBot(mh.m.cache, bot.DefaultTuning)
	}
	agent := &bot.Agent{ID: botID, Name: bot.GetBotDisplayName(botID), Strategy: brain}
	state.Bots[botID] = agent
	return agent
}

// dispatchEvents sends events to clients and lets the bots observe them.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
		for _, agent := range state.Bots {
			agent.OnGameEvent(ev)
		}
	}
}

var eventOpCodes = map[app.EventKind]int64{
	app.EventMatchStarted:  OpMatchStarted,
	app.EventHandDealt:     OpHandDealt,
	app.EventCardDrawn:     OpCardDrawn,
	app.EventCardReceived:  OpCardReceived,
	app.EventCardDiscarded: OpCardDiscarded,
	app.EventRoundClosed:   OpRoundClosed,
	app.EventVoteCast:      OpVoteCast,
	app.EventPlayerRemoved: OpPlayerRemoved,
	app.EventMatchEnded:    OpMatchEnded,
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	payload := ev.Payload
	switch p := ev.Payload.(type) {
	case app.RoundClosedPayload:
		renderer := render.NewRenderer(mh.m.glyphs)
		payload = roundClosedMessage{
			RoundClosedPayload: p,
			Summary:            renderer.RoundSummary(p.UserID, p.Results, state.displayName),
		}
		state.turnUser = ""
		mh.saveSnapshot(ctx, state, logger)
	case app.PlayerRemovedPayload:
		state.turnUser = ""
	case app.MatchEndedPayload:
		mh.recordStats(ctx, state, logger, p.WinnerID)
		mh.deleteSnapshot(ctx, state, logger)
		// Back to the lobby; the owner may start a new match.
		state.Match = nil
		mh.updateLabel(state, dispatcher, logger)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Private events whose recipients are not connected (e.g. bots) must not fall
		// back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

// recordStats credits the result of a finished match to the human players.
func (mh *matchHandler) recordStats(ctx context.Context, state *MatchState, logger runtime.Logger, winner string) {
	if mh.m.stats == nil {
		return
	}
	var losers []string
	for _, id := range state.PlayerIDs() {
		if id != winner && !isBotUserId(id) {
			losers = append(losers, id)
		}
	}
	if isBotUserId(winner) {
		winner = ""
	}
	if err := mh.m.stats.RecordMatch(ctx, state.Scope, winner, losers); err != nil {
		logger.Error("recordStats: %v", err)
	}
}

// displayName resolves the name shown for userID in summaries.
func (ms *MatchState) displayName(userID string) string {
	if p, ok := ms.Presences[userID]; ok && p.GetUsername() != "" {
		return p.GetUsername()
	}
	if agent, ok := ms.Bots[userID]; ok && agent.Name != "" {
		return agent.Name
	}
	return userID
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, recipients []runtime.Presence) {
	msg := matchStateMessage{
		Phase:           phaseLobby,
		Seats:           state.Seats[:state.MaxSeats()],
		OwnerSeat:       state.OwnerSeat,
		Tick:            state.Tick,
		TurnSecondsLeft: state.TurnSecondsRemaining,
	}
	if state.Match != nil {
		msg.Phase = phasePlaying
		msg.CurrentTurn = state.Match.CurrentPlayer()
		msg.DrawPileCount = len(state.Match.DrawPile)
		if top, ok := state.Match.TopDiscard(); ok {
			msg.TopDiscard = &top
		}
	}

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		view := playerView{
			UserID:      userID,
			Seat:        i,
			DisplayName: state.displayName(userID),
			IsOwner:     i == state.OwnerSeat,
			IsBot:       isBotUserId(userID),
		}
		if state.Match != nil {
			if pl, ok := state.Match.Player(userID); ok {
				view.Score = pl.Score()
				view.Cards = len(pl.Hand())
				view.Eliminated = pl.Eliminated()
			}
		}
		msg.Players = append(msg.Players, view)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("broadcastMatchState: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMatchState, data, recipients, nil, true); err != nil {
		logger.Error("broadcastMatchState: %v", err)
	}
}

// sendHand resends the private hand of a reconnecting player.
func (mh *matchHandler) sendHand(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, presence runtime.Presence) {
	pl, ok := state.Match.Player(presence.GetUserId())
	if !ok {
		return
	}
	mh.sendTo(state, dispatcher, logger, presence.GetUserId(), OpHandDealt, app.HandDealtPayload{UserID: pl.ID(), Hand: pl.Hand()})
}

// sendError sends a game error to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, err error) {
	mh.sendTo(state, dispatcher, logger, userID, OpGameError, gameErrorMessage{Code: errorCode(err), Message: err.Error()})
}

func (mh *matchHandler) sendTo(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, opCode int64, payload interface{}) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send op %d to %s: Presence not found", opCode, userID)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal op %d: %v", opCode, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send op %d to %s: %v", opCode, userID, err)
	}
}

func (mh *matchHandler) label(state *MatchState) (string, error) {
	phase := phaseLobby
	if state.Match != nil {
		phase = phasePlaying
	}
	label, err := structpb.NewStruct(map[string]interface{}{
		labelKeyOpen:       state.GetOpenSeatsCount(),
		labelKeyPhase:      phase,
		labelKeyPrivate:    state.Invitation.Private(),
		labelKeyCreator:    state.Invitation.Creator,
		labelKeyMaxPlayers: state.MaxSeats(),
	})
	if err != nil {
		return "", err
	}
	data, err := protojson.Marshal(label)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.label(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

// MatchTerminate saves a running match so its players can restore it later.
func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	if matchState, ok := state.(*MatchState); ok {
		mh.saveSnapshot(ctx, matchState, logger)
	}
	return state
}

// MatchSignal accepts {"invite": "<user id>"} to extend a private table's guest list.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, "state not found"
	}
	var signal struct {
		Invite string `json:"invite"`
	}
	if err := json.Unmarshal([]byte(data), &signal); err != nil || signal.Invite == "" {
		return state, "bad signal"
	}
	if err := matchState.Invitation.Invite(signal.Invite); err != nil {
		return state, err.Error()
	}
	logger.Debug("MatchSignal: Invited %s.", signal.Invite)
	return state, "ok"
}

func decode(data []byte, v interface{}) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// decodeCard reads a cardRequest. An empty card yields nil.
func decodeCard(data []byte) (*domain.Card, error) {
	var req cardRequest
	if err := decode(data, &req); err != nil {
		return nil, err
	}
	if req.Card == "" {
		return nil, nil
	}
	card, err := domain.ParseCard(req.Card)
	if err != nil {
		return nil, err
	}
	return &card, nil
}
