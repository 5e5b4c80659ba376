package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gridline/internal/models"
)

// UpsertMatch persists the full match state as a JSON document keyed by room
// id. Every accepted move writes through here before clients hear about it,
// so a restarted process can always restore the latest state.
func UpsertMatch(ctx context.Context, match *models.Match) error {
	stateJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("failed to marshal match state: %w", err)
	}
	q := `
	INSERT INTO matches (room_id, state, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (room_id)
	DO UPDATE SET state=$2, updated_at=NOW()
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q, match.RoomID, stateJSON)
		return execErr
	})
}

func GetMatch(ctx context.Context, roomID string) (*models.Match, error) {
	var stateJSON []byte
	err := DB.QueryRow(ctx, `SELECT state FROM matches WHERE room_id=$1`, roomID).Scan(&stateJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var match models.Match
	if err := json.Unmarshal(stateJSON, &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match state: %w", err)
	}
	return &match, nil
}

func DeleteMatch(ctx context.Context, roomID string) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM matches WHERE room_id=$1`, roomID)
		return err
	})
}
