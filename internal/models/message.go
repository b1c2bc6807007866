package models

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client → Server message types
const (
	MsgTypeJoin           = "join"
	MsgTypeLeave          = "leave"
	MsgTypeStart          = "start"
	MsgTypeMove           = "move"
	MsgTypeRequestRematch = "request_rematch"
	MsgTypeRejoin         = "rejoin"
)

// Server → Client message types
const (
	MsgTypeRoomState          = "room_state" // initial state sync on connection
	MsgTypePlayerJoined       = "player_joined"
	MsgTypePlayerLeft         = "player_left"
	MsgTypePlayerDisconnected = "player_disconnected"
	MsgTypePlayerReconnected  = "player_reconnected"
	MsgTypeGameStarted        = "game_started"
	MsgTypeMoveConfirmed      = "move_confirmed"
	MsgTypeGameOver           = "game_over"
	MsgTypeRematchRequested   = "rematch_requested"
	MsgTypeRematchStarting    = "rematch_starting"
	MsgTypeRejoinOK           = "rejoin_ok"
	MsgTypeRejoinFailed       = "rejoin_failed"
	MsgTypeRoomClosed         = "room_closed"
	MsgTypeError              = "error"
)

// Error codes surfaced to clients.
const (
	ErrRoomNotFound     = "room_not_found"
	ErrRoomFull         = "room_full"
	ErrNotRoomOwner     = "not_room_owner"
	ErrNotEnoughPlayers = "not_enough_players"
	ErrGameNotActive    = "game_not_active"
	ErrNotYourTurn      = "not_your_turn"
	ErrInvalidDots      = "invalid_dots"
	ErrNotAdjacent      = "not_adjacent"
	ErrAlreadyConnected = "already_connected"
	ErrMoveInProgress   = "move_in_progress"
	ErrTooManyRequests  = "too_many_requests"
	ErrInvalidPayload   = "invalid_payload"
	ErrIdentityFailed   = "identity_failed"
	ErrNotAMember       = "not_a_member"
)

// Game-over reasons.
const (
	ReasonCompleted         = "completed"
	ReasonOpponentAbandoned = "opponent_abandoned"
	ReasonOpponentLeft      = "opponent_left"
)

// GameError is a client-visible rejection with a stable code. It is sent
// only to the originating connection, never broadcast.
type GameError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *GameError) Error() string {
	return e.Code + ": " + e.Message
}

func NewGameError(code, message string) *GameError {
	return &GameError{Code: code, Message: message}
}

// Inbound payloads

type JoinPayload struct {
	RoomCode   string `json:"roomCode"`
	RoomID     string `json:"roomId,omitempty"`
	GameMode   string `json:"gameMode,omitempty"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
	Token      string `json:"token,omitempty"`
	Name       string `json:"name,omitempty"`
}

type MovePayload struct {
	RoomCode string `json:"roomCode,omitempty"`
	DotA     int    `json:"dotA"`
	DotB     int    `json:"dotB"`
}

type RejoinPayload struct {
	RoomCode        string `json:"roomCode"`
	Token           string `json:"token,omitempty"`
	LastKnownMoveID string `json:"lastKnownMoveId,omitempty"`
}

// Outbound payloads

type PlayerJoinedPayload struct {
	Player *Player   `json:"player"`
	Roster []*Player `json:"roster"`
}

type PlayerLeftPayload struct {
	PlayerID     string    `json:"playerId"`
	Roster       []*Player `json:"roster"`
	NextPlayerID string    `json:"nextPlayerId,omitempty"`
}

type PlayerPresencePayload struct {
	PlayerID string `json:"playerId"`
}

type GameStartedPayload struct {
	Roster        []*Player `json:"roster"`
	FirstPlayerID string    `json:"firstPlayerId"`
	Rows          int       `json:"rows"`
	Cols          int       `json:"cols"`
}

type MoveConfirmedPayload struct {
	PlayerID         string         `json:"playerId"`
	DotA             int            `json:"dotA"`
	DotB             int            `json:"dotB"`
	Edge             *Line          `json:"edge"`
	CompletedSquares []*Square      `json:"completedSquares"`
	NextPlayerID     string         `json:"nextPlayerId"`
	Scores           map[string]int `json:"scores"`
	MoveCount        int            `json:"moveCount"`
}

type GameOverPayload struct {
	WinnerID string         `json:"winnerId,omitempty"`
	IsDraw   bool           `json:"isDraw"`
	Scores   map[string]int `json:"finalScores"`
	Reason   string         `json:"reason"`
}

type RematchRequestedPayload struct {
	PlayerID string `json:"playerId"`
	Votes    int    `json:"votes"`
	Needed   int    `json:"needed"`
}

type RoomSnapshotPayload struct {
	RoomCode string     `json:"roomCode"`
	RoomID   string     `json:"roomId"`
	Game     *GameState `json:"game,omitempty"`
	Roster   []*Player  `json:"roster"`
	HostID   string     `json:"hostId"`
	YouID    string     `json:"youId,omitempty"`
	Token    string     `json:"token,omitempty"`
}

type RejoinFailedPayload struct {
	Reason string `json:"reason"`
}

type RoomClosedPayload struct {
	Reason string `json:"reason"`
}
