// internal/game/errors.go
package game

import "errors"

var (
	ErrRoomExists    = errors.New("room already exists")
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomFull      = errors.New("room is full")
	ErrRoomNotReady  = errors.New("room does not have two players")
	ErrInvalidConfig = errors.New("invalid room config")
	ErrMatchNotFound = errors.New("match not found")

	ErrMatchFinished  = errors.New("match already finished")
	ErrRoundEnding    = errors.New("round transition in progress")
	ErrNotYourTurn    = errors.New("not this player's turn")
	ErrCellOccupied   = errors.New("cell already occupied")
	ErrCellOutOfRange = errors.New("cell index out of range")
	ErrRoundDecided   = errors.New("round already decided")
)
