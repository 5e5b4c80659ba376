// internal/game/events.go
package game

import (
	"gridline/internal/engine"
	"gridline/internal/models"
)

// Protocol event names, matching the client contract. Inbound events are
// dispatched by the gateway; the constants below name the outbound side.
const (
	EventAssignSymbol      = "assign-symbol"
	EventHostJoined        = "host-joined"
	EventJoinRoomSuccess   = "join-room-success"
	EventBothPlayersJoined = "both-players-joined"
	EventGameStarted       = "game-started"
	EventUpdateBoard       = "updateBoard"
	EventUpdateTimer       = "updateTimer"
	EventRoundEnded        = "round-ended"
	EventGameOver          = "game-over"
	EventReconnectSuccess  = "reconnect-success"
	EventRoomNotFound      = "room-not-found"
	EventRoomFull          = "room-full"
	EventInvalidMove       = "invalid-move"
	EventError             = "error"
)

// Event is the outbound wire envelope: a type tag plus a type-specific
// payload.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// SymbolPayload carries the seat's assigned symbol to a freshly bound client.
type SymbolPayload struct {
	Symbol engine.Symbol `json:"symbol"`
}

// HostJoinedPayload announces the host seat of a waiting room.
type HostJoinedPayload struct {
	RoomID string             `json:"roomId"`
	Host   models.Participant `json:"host"`
}

// PlayersPayload carries both seats; Config is present on both-players-joined
// and game-started, absent on join-room-success.
type PlayersPayload struct {
	RoomID  string             `json:"roomId"`
	PlayerX models.Participant `json:"playerX"`
	PlayerO models.Participant `json:"playerO"`
	Config  *models.RoomConfig `json:"config,omitempty"`
}

// BoardUpdatePayload reflects one applied move. Winner/WinningLine/Draw are
// only set when the move ended the round.
type BoardUpdatePayload struct {
	RoomID         string        `json:"roomId"`
	Index          int           `json:"index"`
	Symbol         engine.Symbol `json:"symbol"`
	XIsNext        bool          `json:"xIsNext"`
	CurrentRound   int           `json:"currentRound"`
	IsGameFinished bool          `json:"isGameFinished"`
	Winner         engine.Symbol `json:"winner,omitempty"`
	WinningLine    []int         `json:"winningLine,omitempty"`
	Draw           bool          `json:"draw,omitempty"`
}

// TimerPayload is the once-per-second countdown tick.
type TimerPayload struct {
	RoomID      string        `json:"roomId"`
	TimeLeft    int           `json:"timeLeft"`
	CurrentTurn engine.Symbol `json:"currentTurn"`
}

// RoundEndedPayload closes out one round; Board is the board as the round
// finished, CurrentRound the (capped) number of the round that follows.
type RoundEndedPayload struct {
	RoomID       string             `json:"roomId"`
	Result       models.RoundResult `json:"result"`
	CurrentRound int                `json:"currentRound"`
	Board        engine.Board       `json:"board"`
	WinningLine  []int              `json:"winningLine"`
}

// MatchStats pairs the per-seat round tallies for the game-over broadcast.
type MatchStats struct {
	PlayerX *models.RoundStats `json:"playerX"`
	PlayerO *models.RoundStats `json:"playerO"`
}

// GameOverPayload finalizes the match toward both clients.
type GameOverPayload struct {
	RoomID      string               `json:"roomId"`
	Results     []models.RoundResult `json:"results"`
	Stats       MatchStats           `json:"stats"`
	Board       engine.Board         `json:"board"`
	WinningLine []int                `json:"winningLine"`
	LastResult  models.RoundResult   `json:"roundResult"`
}

// ReconnectState is the full match snapshot returned to a reconnecting
// participant when a match exists for the room.
type ReconnectState struct {
	MySymbol       engine.Symbol        `json:"mySymbol"`
	IsHost         bool                 `json:"isHost"`
	PlayerX        models.Participant   `json:"playerX"`
	PlayerO        models.Participant   `json:"playerO"`
	Board          engine.Board         `json:"board"`
	XIsNext        bool                 `json:"xIsNext"`
	CurrentRound   int                  `json:"currentRound"`
	IsGameFinished bool                 `json:"isGameFinished"`
	WinningLine    []int                `json:"winningLine"`
	Results        []models.RoundResult `json:"results"`
	Config         models.RoomConfig    `json:"config"`
}

// ReconnectPayload wraps ReconnectState for the reconnect-success event.
type ReconnectPayload struct {
	GameState ReconnectState `json:"gameState"`
}

// RoomIDPayload is used by room-not-found and room-full.
type RoomIDPayload struct {
	RoomID string `json:"roomId"`
}

// InvalidMovePayload reports a rejected move to the originating connection.
type InvalidMovePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
	Index   int    `json:"index"`
}

// ErrorPayload reports a failed operation.
type ErrorPayload struct {
	RoomID  string `json:"roomId,omitempty"`
	Message string `json:"message"`
}
