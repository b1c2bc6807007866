package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/config"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/identity"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/models"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/security"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/storage"
)

// Coordinator is the authoritative per-room session state machine. It owns
// all mutation of registry and room state: joins, starts, moves, leaves,
// rematches, and the disconnect/reconnect/abandonment protocol. Everything
// it depends on is constructor-injected so coordinators can be tested in
// isolation.
type Coordinator struct {
	cfg       *config.Config
	registry  *Registry
	hub       *Hub
	validator *MoveValidator
	processor *MoveProcessor
	metrics   *Metrics
	limiter   *security.RateLimiter
	identity  identity.Provider
	recorder  storage.Recorder

	// Current session per player id, so a stale connection's disconnect
	// cannot clobber the state of a player who already reconnected.
	sessMu   sync.Mutex
	sessions map[string]*Session
}

func NewCoordinator(
	cfg *config.Config,
	registry *Registry,
	hub *Hub,
	metrics *Metrics,
	limiter *security.RateLimiter,
	provider identity.Provider,
	recorder storage.Recorder,
) *Coordinator {
	return &Coordinator{
		cfg:       cfg,
		registry:  registry,
		hub:       hub,
		validator: NewMoveValidator(),
		processor: NewMoveProcessor(),
		metrics:   metrics,
		limiter:   limiter,
		identity:  provider,
		recorder:  recorder,
		sessions:  make(map[string]*Session),
	}
}

// Dispatch routes one inbound frame from a session. Malformed input always
// degrades to an error event on the originating session, never a fault.
func (co *Coordinator) Dispatch(sess *Session, data []byte) {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		co.sendError(sess, models.ErrInvalidPayload, "malformed message")
		return
	}

	if !security.IsValidMessageType(msg.Type) {
		co.sendError(sess, models.ErrInvalidPayload, "unknown message type: "+msg.Type)
		return
	}

	// Per-identity rate limit, checked before anything is even looked up.
	_, playerID := sess.Identity()
	key := playerID
	if key == "" {
		key = fmt.Sprintf("anon-%p", sess)
	}
	if !co.limiter.Allow(key) {
		co.metrics.IncrementRateLimitViolations()
		co.sendError(sess, models.ErrTooManyRequests, "rate limit exceeded, slow down")
		return
	}

	switch msg.Type {
	case models.MsgTypeJoin:
		var p models.JoinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			co.sendError(sess, models.ErrInvalidPayload, "malformed join payload")
			return
		}
		co.handleJoin(sess, &p)

	case models.MsgTypeLeave:
		co.handleLeave(sess)

	case models.MsgTypeStart:
		co.handleStart(sess)

	case models.MsgTypeMove:
		var p models.MovePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			co.sendError(sess, models.ErrInvalidPayload, "malformed move payload")
			return
		}
		co.handleMove(sess, &p)

	case models.MsgTypeRequestRematch:
		co.handleRematch(sess)

	case models.MsgTypeRejoin:
		var p models.RejoinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			co.sendError(sess, models.ErrInvalidPayload, "malformed rejoin payload")
			return
		}
		co.handleRejoin(sess, &p)
	}
}

// handleJoin looks up (or lazily creates) the room, then either admits a
// new player or runs the reconnect path for an identity already on the
// roster.
func (co *Coordinator) handleJoin(sess *Session, p *models.JoinPayload) {
	code, err := security.ValidateRoomCode(p.RoomCode)
	if err != nil {
		co.sendError(sess, models.ErrInvalidPayload, err.Error())
		return
	}

	ident, err := co.identity.Authenticate(context.Background(), p.Token)
	if err != nil {
		log.Printf("⚠️  Identity lookup failed for join to %s: %v", code, err)
		co.sendError(sess, models.ErrIdentityFailed, "could not resolve identity")
		return
	}

	name := ident.Name
	if p.Name != "" {
		name, err = security.ValidatePlayerName(p.Name)
		if err != nil {
			co.sendError(sess, models.ErrInvalidPayload, err.Error())
			return
		}
	}

	room, created := co.registry.GetOrCreate(code, func() *models.Room {
		mode := models.GameMode(p.GameMode)
		if p.GameMode == "" {
			mode = models.GameMode(co.cfg.DefaultGameMode)
		}
		maxPlayers := p.MaxPlayers
		if maxPlayers < config.MinPlayersToStart || maxPlayers > config.MaxPlayersPerRoom {
			maxPlayers = config.DefaultMaxPlayers
		}
		roomID := p.RoomID
		if roomID == "" {
			roomID = uuid.NewString()
		}
		return models.NewRoom(code, roomID, mode, maxPlayers)
	})
	if created {
		log.Printf("✓ Room %s created (mode=%s)", code, room.GameMode)
	}

	room.Mu.Lock()

	if existing, ok := room.Players[ident.PlayerID]; ok {
		// Reconnection via the same identity: restore liveness, update the
		// socket handle, hand over the current state. Roster untouched.
		existing.CancelAbandonTimer()
		existing.Connected = true
		room.Touch()
		snapshot := co.snapshotLocked(room)
		room.Mu.Unlock()

		co.rebindSession(code, ident.PlayerID, sess)
		snapshot.YouID = ident.PlayerID
		snapshot.Token = co.reusableToken(ident.PlayerID)
		sess.Send(&models.WSMessage{Type: models.MsgTypeRoomState, Payload: snapshot})
		co.hub.BroadcastToRoom(code, &models.WSMessage{
			Type:    models.MsgTypePlayerReconnected,
			Payload: models.PlayerPresencePayload{PlayerID: ident.PlayerID},
		})
		log.Printf("✓ Player %s reconnected to room %s", ident.PlayerID, code)
		return
	}

	if len(room.Order) >= room.MaxPlayers {
		room.Mu.Unlock()
		co.sendError(sess, models.ErrRoomFull, "room is at capacity")
		return
	}

	color := models.PlayerColors[len(room.Order)%len(models.PlayerColors)]
	player := models.NewPlayer(ident.PlayerID, name, color)
	room.AddPlayer(player)
	room.Touch()
	roster := room.Roster()
	snapshot := co.snapshotLocked(room)
	room.Mu.Unlock()

	co.rebindSession(code, ident.PlayerID, sess)
	snapshot.YouID = ident.PlayerID
	snapshot.Token = co.reusableToken(ident.PlayerID)
	sess.Send(&models.WSMessage{Type: models.MsgTypeRoomState, Payload: snapshot})
	co.hub.BroadcastToRoom(code, &models.WSMessage{
		Type:    models.MsgTypePlayerJoined,
		Payload: models.PlayerJoinedPayload{Player: player, Roster: roster},
	})
	log.Printf("✓ Player %s (%s) joined room %s (%d/%d)",
		ident.PlayerID, name, code, len(roster), room.MaxPlayers)
}

// handleStart begins a game: host only, at least two roster members, fresh
// board, random first turn.
func (co *Coordinator) handleStart(sess *Session) {
	room, playerID, ok := co.sessionRoom(sess)
	if !ok {
		return
	}

	room.Mu.Lock()

	if playerID != room.HostID {
		room.Mu.Unlock()
		co.sendError(sess, models.ErrNotRoomOwner, "only the host can start the game")
		return
	}
	if len(room.Order) < config.MinPlayersToStart {
		room.Mu.Unlock()
		co.sendError(sess, models.ErrNotEnoughPlayers,
			fmt.Sprintf("need at least %d players", config.MinPlayersToStart))
		return
	}
	if room.Game != nil && room.Game.Status == models.StatusPlaying {
		room.Mu.Unlock()
		co.sendError(sess, models.ErrGameNotActive, "a game is already in progress")
		return
	}

	rows, cols := room.GameMode.GridSize()
	game, err := models.NewGameState(rows, cols)
	if err != nil {
		room.Mu.Unlock()
		co.sendError(sess, models.ErrInvalidPayload, err.Error())
		return
	}

	game.Status = models.StatusPlaying
	game.StartedAt = time.Now()
	game.CurrentTurnID = room.Order[rand.Intn(len(room.Order))]
	for _, p := range room.Players {
		p.Score = 0
	}
	room.Game = game
	room.RematchVotes = make(map[string]bool)
	room.Touch()

	roster := room.Roster()
	firstID := game.CurrentTurnID
	room.Mu.Unlock()

	co.hub.BroadcastToRoom(room.Code, &models.WSMessage{
		Type: models.MsgTypeGameStarted,
		Payload: models.GameStartedPayload{
			Roster:        roster,
			FirstPlayerID: firstID,
			Rows:          rows,
			Cols:          cols,
		},
	})
	log.Printf("✓ Game started in room %s (%dx%d, first turn %s)", room.Code, rows, cols, firstID)
}

// handleMove serializes the room's moves through its exclusive guard: a
// submission that finds the guard held is rejected immediately, never
// queued. The guard is taken before validation and released on every path.
func (co *Coordinator) handleMove(sess *Session, p *models.MovePayload) {
	room, playerID, ok := co.sessionRoom(sess)
	if !ok {
		return
	}

	if !room.TryBeginMove() {
		co.metrics.IncrementMoveConflicts()
		co.sendError(sess, models.ErrMoveInProgress, "another move is being processed")
		return
	}
	defer room.EndMove()

	room.Mu.Lock()

	if err := co.validator.Validate(room.Game, p.DotA, p.DotB, playerID); err != nil {
		room.Mu.Unlock()
		ge := err.(*models.GameError)
		co.sendError(sess, ge.Code, ge.Message)
		return
	}

	effect := co.processor.Apply(room, p.DotA, p.DotB, playerID)
	moveCount := room.Game.MoveCount
	room.Mu.Unlock()

	co.metrics.IncrementMoves()
	co.hub.BroadcastToRoom(room.Code, &models.WSMessage{
		Type: models.MsgTypeMoveConfirmed,
		Payload: models.MoveConfirmedPayload{
			PlayerID:         playerID,
			DotA:             effect.Line.DotA,
			DotB:             effect.Line.DotB,
			Edge:             effect.Line,
			CompletedSquares: effect.CompletedSquares,
			NextPlayerID:     effect.NextPlayerID,
			Scores:           effect.Scores,
			MoveCount:        moveCount,
		},
	})

	if effect.GameOver {
		co.finishGame(room, effect.WinnerID, effect.IsDraw, effect.Scores, models.ReasonCompleted)
	}
}

// handleLeave removes the player from the roster immediately. Legal from
// any state; the room is destroyed when it empties.
func (co *Coordinator) handleLeave(sess *Session) {
	room, playerID, ok := co.sessionRoom(sess)
	if !ok {
		return
	}

	room.Mu.Lock()
	co.removePlayerLocked(room, playerID, models.ReasonOpponentLeft)

	co.sessMu.Lock()
	if co.sessions[playerID] == sess {
		delete(co.sessions, playerID)
	}
	co.sessMu.Unlock()

	co.hub.Unregister(room.Code, sess)
	sess.SetIdentity("", "")
	co.limiter.Remove(playerID)
}

// handleRematch records a rematch request; when every current roster member
// has requested one, the room transitions finished → waiting with a fresh
// GameState.
func (co *Coordinator) handleRematch(sess *Session) {
	room, playerID, ok := co.sessionRoom(sess)
	if !ok {
		return
	}

	room.Mu.Lock()

	if room.Game == nil || room.Game.Status != models.StatusFinished {
		room.Mu.Unlock()
		co.sendError(sess, models.ErrGameNotActive, "rematch is only available after a game ends")
		return
	}
	if _, member := room.Players[playerID]; !member {
		room.Mu.Unlock()
		co.sendError(sess, models.ErrNotAMember, "you are not in this room")
		return
	}

	room.RematchVotes[playerID] = true
	room.Touch()
	votes := len(room.RematchVotes)
	needed := len(room.Order)

	unanimous := votes >= needed
	if unanimous {
		for _, id := range room.Order {
			if !room.RematchVotes[id] {
				unanimous = false
				break
			}
		}
	}

	if unanimous {
		rows, cols := room.GameMode.GridSize()
		game, err := models.NewGameState(rows, cols)
		if err != nil {
			room.Mu.Unlock()
			co.sendError(sess, models.ErrInvalidPayload, err.Error())
			return
		}
		for _, p := range room.Players {
			p.Score = 0
		}
		room.Game = game
		room.RematchVotes = make(map[string]bool)
	}
	room.Mu.Unlock()

	co.hub.BroadcastToRoom(room.Code, &models.WSMessage{
		Type: models.MsgTypeRematchRequested,
		Payload: models.RematchRequestedPayload{
			PlayerID: playerID,
			Votes:    votes,
			Needed:   needed,
		},
	})
	if unanimous {
		co.hub.BroadcastToRoom(room.Code, &models.WSMessage{Type: models.MsgTypeRematchStarting})
		log.Printf("✓ Rematch starting in room %s", room.Code)
	}
}

// handleRejoin re-attaches a returning identity to its room, handing back
// the current state and roster. Rejected with a reason, never silently
// ignored.
func (co *Coordinator) handleRejoin(sess *Session, p *models.RejoinPayload) {
	code, err := security.ValidateRoomCode(p.RoomCode)
	if err != nil {
		sess.Send(&models.WSMessage{
			Type:    models.MsgTypeRejoinFailed,
			Payload: models.RejoinFailedPayload{Reason: models.ErrInvalidPayload},
		})
		return
	}

	ident, err := co.identity.Authenticate(context.Background(), p.Token)
	if err != nil {
		sess.Send(&models.WSMessage{
			Type:    models.MsgTypeRejoinFailed,
			Payload: models.RejoinFailedPayload{Reason: models.ErrIdentityFailed},
		})
		return
	}

	room, ok := co.registry.Get(code)
	if !ok {
		sess.Send(&models.WSMessage{
			Type:    models.MsgTypeRejoinFailed,
			Payload: models.RejoinFailedPayload{Reason: models.ErrRoomNotFound},
		})
		return
	}

	room.Mu.Lock()
	player, member := room.Players[ident.PlayerID]
	if !member {
		room.Mu.Unlock()
		sess.Send(&models.WSMessage{
			Type:    models.MsgTypeRejoinFailed,
			Payload: models.RejoinFailedPayload{Reason: models.ErrNotAMember},
		})
		return
	}

	player.CancelAbandonTimer()
	player.Connected = true
	room.Touch()
	snapshot := co.snapshotLocked(room)
	if p.LastKnownMoveID != "" && room.Game != nil && len(room.Game.MoveHistory) > 0 {
		latest := room.Game.MoveHistory[len(room.Game.MoveHistory)-1].ID
		if latest != p.LastKnownMoveID {
			log.Printf("⚠️  Rejoin of %s in %s is behind (had %s, latest %s)",
				ident.PlayerID, code, p.LastKnownMoveID, latest)
		}
	}
	room.Mu.Unlock()

	co.rebindSession(code, ident.PlayerID, sess)
	snapshot.YouID = ident.PlayerID
	snapshot.Token = co.reusableToken(ident.PlayerID)
	sess.Send(&models.WSMessage{Type: models.MsgTypeRejoinOK, Payload: snapshot})
	co.hub.BroadcastToRoom(code, &models.WSMessage{
		Type:    models.MsgTypePlayerReconnected,
		Payload: models.PlayerPresencePayload{PlayerID: ident.PlayerID},
	})
}

// HandleDisconnect runs the disconnect protocol when a session's transport
// drops: liveness cleared, roster and score preserved, abandonment timer
// armed on the player record.
func (co *Coordinator) HandleDisconnect(sess *Session) {
	roomCode, playerID := sess.Identity()
	if playerID == "" {
		return
	}

	co.sessMu.Lock()
	if co.sessions[playerID] != sess {
		// A newer connection already owns this identity.
		co.sessMu.Unlock()
		return
	}
	delete(co.sessions, playerID)
	co.sessMu.Unlock()

	co.hub.Unregister(roomCode, sess)

	room, ok := co.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	player, member := room.Players[playerID]
	if !member {
		room.Mu.Unlock()
		return
	}
	player.Connected = false
	room.Touch()
	player.SetAbandonTimer(time.AfterFunc(co.cfg.AbandonTimeout, func() {
		co.abandonPlayer(roomCode, playerID)
	}))
	room.Mu.Unlock()

	co.hub.BroadcastToRoom(roomCode, &models.WSMessage{
		Type:    models.MsgTypePlayerDisconnected,
		Payload: models.PlayerPresencePayload{PlayerID: playerID},
	})
	log.Printf("⚠️  Player %s disconnected from room %s (abandon in %s)",
		playerID, roomCode, co.cfg.AbandonTimeout)
}

// abandonPlayer fires when the abandonment window elapses without a
// reconnect: the player is removed for good and the forfeiture rule applies.
func (co *Coordinator) abandonPlayer(roomCode, playerID string) {
	room, ok := co.registry.Get(roomCode)
	if !ok {
		return
	}

	room.Mu.Lock()
	player, member := room.Players[playerID]
	if !member || player.Connected {
		// Reconnected in the window; nothing to do.
		room.Mu.Unlock()
		return
	}
	log.Printf("⚠️  Player %s abandoned room %s", playerID, roomCode)
	co.removePlayerLocked(room, playerID, models.ReasonOpponentAbandoned)
	co.limiter.Remove(playerID)
}

// removePlayerLocked removes a player from the roster and emits the
// resulting events. It takes room.Mu held and releases it before
// broadcasting. forfeitReason distinguishes an explicit leave from an
// abandonment in the game-over event.
func (co *Coordinator) removePlayerLocked(room *models.Room, playerID, forfeitReason string) {
	game := room.Game
	playing := game != nil && game.Status == models.StatusPlaying

	// Turn advancement must be computed while the leaver still occupies a
	// roster slot.
	nextID := ""
	if playing && game.CurrentTurnID == playerID {
		nextID = room.NextPlayerAfter(playerID)
	}

	removed := room.RemovePlayer(playerID)
	if removed == nil {
		room.Mu.Unlock()
		return
	}
	room.Touch()

	if len(room.Order) == 0 {
		room.Mu.Unlock()
		co.registry.Delete(room.Code)
		log.Printf("✓ Room %s destroyed (empty)", room.Code)
		return
	}

	var forfeitWinner string
	if playing && room.ConnectedCount() == 1 {
		for _, p := range room.Players {
			if p.Connected {
				forfeitWinner = p.ID
				break
			}
		}
		game.Status = models.StatusFinished
		game.CurrentTurnID = ""
	} else if nextID != "" {
		game.CurrentTurnID = nextID
	}

	roster := room.Roster()
	scores := room.Scores()
	room.Mu.Unlock()

	co.hub.BroadcastToRoom(room.Code, &models.WSMessage{
		Type: models.MsgTypePlayerLeft,
		Payload: models.PlayerLeftPayload{
			PlayerID:     playerID,
			Roster:       roster,
			NextPlayerID: nextID,
		},
	})

	if forfeitWinner != "" {
		co.finishGame(room, forfeitWinner, false, scores, forfeitReason)
	}
}

// finishGame broadcasts game_over and hands the summary to the persistence
// collaborator without blocking gameplay.
func (co *Coordinator) finishGame(room *models.Room, winnerID string, isDraw bool, scores map[string]int, reason string) {
	co.metrics.IncrementGamesCompleted()
	co.hub.BroadcastToRoom(room.Code, &models.WSMessage{
		Type: models.MsgTypeGameOver,
		Payload: models.GameOverPayload{
			WinnerID: winnerID,
			IsDraw:   isDraw,
			Scores:   scores,
			Reason:   reason,
		},
	})

	room.Mu.RLock()
	summary := &storage.GameSummary{
		RoomCode:   room.Code,
		RoomID:     room.ID,
		WinnerID:   winnerID,
		IsDraw:     isDraw,
		Reason:     reason,
		Scores:     scores,
		FinishedAt: time.Now(),
	}
	if room.Game != nil {
		summary.Rows = room.Game.Rows
		summary.Cols = room.Game.Cols
		summary.StartedAt = room.Game.StartedAt
		summary.Moves = make([]storage.MoveRecord, 0, len(room.Game.MoveHistory))
		for _, line := range room.Game.MoveHistory {
			summary.Moves = append(summary.Moves, storage.MoveRecord{
				EdgeID:   line.ID,
				PlayerID: line.PlayerID,
			})
		}
	}
	room.Mu.RUnlock()

	go func() {
		if err := co.recorder.RecordGame(context.Background(), summary); err != nil {
			// Persistence failures never re-open the game or lose the
			// already-broadcast result.
			log.Printf("❌ Failed to record finished game %s: %v", room.Code, err)
		}
	}()
}

// EvictRoom notifies a stale room's members before the sweeper removes it.
func (co *Coordinator) EvictRoom(room *models.Room) {
	room.Mu.Lock()
	for _, p := range room.Players {
		p.CancelAbandonTimer()
	}
	room.Mu.Unlock()

	co.hub.BroadcastToRoom(room.Code, &models.WSMessage{
		Type:    models.MsgTypeRoomClosed,
		Payload: models.RoomClosedPayload{Reason: "inactive"},
	})
}

// sessionRoom resolves the session's bound room, surfacing room_not_found
// to unbound sessions or sessions pointing at a destroyed room.
func (co *Coordinator) sessionRoom(sess *Session) (*models.Room, string, bool) {
	roomCode, playerID := sess.Identity()
	if playerID == "" {
		co.sendError(sess, models.ErrRoomNotFound, "join a room first")
		return nil, "", false
	}
	room, ok := co.registry.Get(roomCode)
	if !ok {
		co.sendError(sess, models.ErrRoomNotFound, "room no longer exists")
		return nil, "", false
	}
	return room, playerID, true
}

// rebindSession makes sess the identity's current connection, detaching any
// previous one from the fan-out set.
func (co *Coordinator) rebindSession(roomCode, playerID string, sess *Session) {
	co.sessMu.Lock()
	old := co.sessions[playerID]
	co.sessions[playerID] = sess
	co.sessMu.Unlock()

	if old != nil && old != sess {
		oldRoom, _ := old.Identity()
		if oldRoom != "" {
			co.hub.Unregister(oldRoom, old)
		}
	}
	sess.SetIdentity(roomCode, playerID)
	co.hub.Register(roomCode, sess)
}

// snapshotLocked builds the state handed to a (re)joining client.
// Caller holds room.Mu.
func (co *Coordinator) snapshotLocked(room *models.Room) *models.RoomSnapshotPayload {
	return &models.RoomSnapshotPayload{
		RoomCode: room.Code,
		RoomID:   room.ID,
		Game:     room.Game,
		Roster:   room.Roster(),
		HostID:   room.HostID,
	}
}

// reusableToken hands guests a token that resolves back to the same
// identity on reconnect; external providers issue their own tokens.
func (co *Coordinator) reusableToken(playerID string) string {
	if gp, ok := co.identity.(*identity.GuestProvider); ok {
		return gp.Token(playerID)
	}
	return ""
}

func (co *Coordinator) sendError(sess *Session, code, message string) {
	sess.Send(&models.WSMessage{
		Type:    models.MsgTypeError,
		Payload: models.NewGameError(code, message),
	})
}
