// internal/models/room.go
package models

import (
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"gridline/internal/engine"
)

// ErrNotFound is returned by durable-store lookups when no record exists
// under the given key.
var ErrNotFound = errors.New("record not found")

// Participant identifies one player as presented to the room: identity,
// display name, and avatar reference (profile images themselves are fetched
// by the client from an external service).
type Participant struct {
	ID     uuid.UUID     `json:"id"`
	Name   string        `json:"name"`
	Avatar string        `json:"avatar,omitempty"`
	Symbol engine.Symbol `json:"symbol"`
}

// Seat binds a participant to one side of a room. ConnID identifies the
// current live connection; it is empty while the participant is disconnected.
// Conn is the in-memory connection handle and is never persisted.
type Seat struct {
	Participant
	ConnID string          `json:"connId,omitempty"`
	Conn   *websocket.Conn `json:"-"`
}

// Connected reports whether the seat currently holds a live connection handle.
func (s *Seat) Connected() bool {
	return s != nil && s.ConnID != ""
}

// RoomConfig is the match configuration chosen by the host at room creation.
// TimerDuration is in seconds; 0 means no per-turn time limit.
type RoomConfig struct {
	BoardSize     int `json:"boardSize"`
	LineLength    int `json:"lineLength"`
	Rounds        int `json:"rounds"`
	TimerDuration int `json:"timerDuration"`
}

// ValidTimerDurations is the enumerated set of per-turn countdown values the
// server accepts, in seconds. 0 disables the countdown.
var ValidTimerDurations = []int{10, 30, 0}

// Validate checks the configuration invariants. It returns a human-readable
// reason for the first violation found, or empty if the config is acceptable.
func (c RoomConfig) Validate() string {
	if c.BoardSize < 1 {
		return "boardSize must be at least 1"
	}
	if c.LineLength < 1 || c.LineLength > c.BoardSize {
		return "lineLength must be between 1 and boardSize"
	}
	if c.Rounds < 1 {
		return "rounds must be at least 1"
	}
	for _, d := range ValidTimerDurations {
		if c.TimerDuration == d {
			return ""
		}
	}
	return "invalid timerDuration"
}

// RoomRecord is the durable copy of a room, keyed by room id. The in-memory
// session and this record must agree on seat occupancy; the record is the
// authoritative copy across process restarts.
type RoomRecord struct {
	RoomID       string     `json:"roomId"`
	Host         Seat       `json:"host"`
	Guest        *Seat      `json:"guest,omitempty"`
	Config       RoomConfig `json:"config"`
	LastActivity time.Time  `json:"lastActivity"`
}
