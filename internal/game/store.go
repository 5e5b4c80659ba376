// internal/game/store.go
package game

import (
	"context"

	"github.com/google/uuid"

	"gridline/internal/models"
)

// Store is the durable-record collaborator behind the in-memory registry.
// Lookups return models.ErrNotFound when no record exists. Every mutating
// room/match transition writes through a Store before any client-visible
// notification; the write is the commit point.
type Store interface {
	UpsertRoom(ctx context.Context, rec *models.RoomRecord) error
	GetRoom(ctx context.Context, roomID string) (*models.RoomRecord, error)
	GetRoomByConnID(ctx context.Context, connID string) (*models.RoomRecord, error)
	DeleteRoom(ctx context.Context, roomID string) error

	UpsertMatch(ctx context.Context, m *models.Match) error
	GetMatch(ctx context.Context, roomID string) (*models.Match, error)
	DeleteMatch(ctx context.Context, roomID string) error

	// IncrementUserStats atomically adds delta to the user's cumulative
	// statistics.
	IncrementUserStats(ctx context.Context, userID uuid.UUID, delta models.StatsDelta) error
}
