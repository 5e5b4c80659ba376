package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"gridline/internal/models"
)

// UpsertRoom writes the room record, replacing any prior row for the same
// room id. Connection ids are broken out into their own columns so a dropped
// socket can be mapped back to its room without unpacking JSON.
func UpsertRoom(ctx context.Context, rec *models.RoomRecord) error {
	hostJSON, err := json.Marshal(rec.Host)
	if err != nil {
		return fmt.Errorf("failed to marshal host seat: %w", err)
	}
	var guestJSON []byte
	guestConnID := ""
	if rec.Guest != nil {
		guestJSON, err = json.Marshal(rec.Guest)
		if err != nil {
			return fmt.Errorf("failed to marshal guest seat: %w", err)
		}
		guestConnID = rec.Guest.ConnID
	}
	configJSON, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal room config: %w", err)
	}

	q := `
	INSERT INTO rooms (room_id, host, guest, config, host_conn_id, guest_conn_id, last_activity)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (room_id)
	DO UPDATE SET host=$2, guest=$3, config=$4, host_conn_id=$5, guest_conn_id=$6, last_activity=$7
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			rec.RoomID, hostJSON, guestJSON, configJSON,
			rec.Host.ConnID, guestConnID, rec.LastActivity,
		)
		return execErr
	})
}

func GetRoom(ctx context.Context, roomID string) (*models.RoomRecord, error) {
	q := `SELECT room_id, host, guest, config, last_activity FROM rooms WHERE room_id=$1`
	return scanRoom(DB.QueryRow(ctx, q, roomID))
}

// GetRoomByConnID finds the room that has connID bound to either seat.
func GetRoomByConnID(ctx context.Context, connID string) (*models.RoomRecord, error) {
	q := `
	SELECT room_id, host, guest, config, last_activity
	FROM rooms
	WHERE host_conn_id=$1 OR guest_conn_id=$1
	`
	return scanRoom(DB.QueryRow(ctx, q, connID))
}

func scanRoom(row pgx.Row) (*models.RoomRecord, error) {
	var rec models.RoomRecord
	var hostJSON, guestJSON, configJSON []byte
	err := row.Scan(&rec.RoomID, &hostJSON, &guestJSON, &configJSON, &rec.LastActivity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(hostJSON, &rec.Host); err != nil {
		return nil, fmt.Errorf("failed to unmarshal host seat: %w", err)
	}
	if len(guestJSON) > 0 {
		var guest models.Seat
		if err := json.Unmarshal(guestJSON, &guest); err != nil {
			return nil, fmt.Errorf("failed to unmarshal guest seat: %w", err)
		}
		rec.Guest = &guest
	}
	if err := json.Unmarshal(configJSON, &rec.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room config: %w", err)
	}
	return &rec, nil
}

func DeleteRoom(ctx context.Context, roomID string) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM rooms WHERE room_id=$1`, roomID)
		return err
	})
}
