package database

import (
	"context"

	"github.com/google/uuid"

	"gridline/internal/models"
)

// PostgresStore adapts the package-level query functions to the durable
// store interface the game manager consumes.
type PostgresStore struct{}

func NewPostgresStore() *PostgresStore { return &PostgresStore{} }

func (PostgresStore) UpsertRoom(ctx context.Context, rec *models.RoomRecord) error {
	return UpsertRoom(ctx, rec)
}

func (PostgresStore) GetRoom(ctx context.Context, roomID string) (*models.RoomRecord, error) {
	return GetRoom(ctx, roomID)
}

func (PostgresStore) GetRoomByConnID(ctx context.Context, connID string) (*models.RoomRecord, error) {
	return GetRoomByConnID(ctx, connID)
}

func (PostgresStore) DeleteRoom(ctx context.Context, roomID string) error {
	return DeleteRoom(ctx, roomID)
}

func (PostgresStore) UpsertMatch(ctx context.Context, match *models.Match) error {
	return UpsertMatch(ctx, match)
}

func (PostgresStore) GetMatch(ctx context.Context, roomID string) (*models.Match, error) {
	return GetMatch(ctx, roomID)
}

func (PostgresStore) DeleteMatch(ctx context.Context, roomID string) error {
	return DeleteMatch(ctx, roomID)
}

func (PostgresStore) IncrementUserStats(ctx context.Context, userID uuid.UUID, delta models.StatsDelta) error {
	return IncrementUserStats(ctx, userID, delta)
}
