package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gridline/internal/auth"
	"gridline/internal/models"
)

func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return fmt.Errorf("failed to generate user id: %w", err)
		}
		user.ID = id
	}

	hash, err := auth.CreateHash(user.Password, auth.Params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users (id, email, password, username, avatar, is_ephemeral)
	      VALUES ($1, $2, $3, $4, $5, $6)`

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			user.ID, user.Email, user.Password, user.Username,
			user.Avatar, user.IsEphemeral,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

const userColumns = `
	id, email, password, username, avatar, is_ephemeral,
	matches, rounds, matches_won, matches_lost, matches_drawn,
	rounds_won, rounds_drawn, rounds_lost
`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Password, &u.Username, &u.Avatar, &u.IsEphemeral,
		&u.Stats.Matches, &u.Stats.Rounds,
		&u.Stats.MatchesWon, &u.Stats.MatchesLost, &u.Stats.MatchesDrawn,
		&u.Stats.RoundsWon, &u.Stats.RoundsDrawn, &u.Stats.RoundsLost,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(DB.QueryRow(ctx, q, email))
}

func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(DB.QueryRow(ctx, q, id))
}

func AuthenticateUser(ctx context.Context, email, password string) (string, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("user not found or db error: %w", err)
	}

	match, err := auth.ComparePasswordAndHash(password, user.Password)
	if err != nil || !match {
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := auth.CreateJWT(user.ID.String())
	if err != nil {
		return "", fmt.Errorf("failed to create jwt: %w", err)
	}

	return token, nil
}

// UpdateUserCredentials finalizes a guest account: the password is rehashed
// and the ephemeral flag cleared along with the new identity fields.
func UpdateUserCredentials(ctx context.Context, user *models.User) error {
	hash, err := auth.CreateHash(user.Password, auth.Params)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `
	UPDATE users
	SET email=$1, password=$2, username=$3, avatar=$4, is_ephemeral=$5
	WHERE id=$6
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			user.Email, user.Password, user.Username, user.Avatar,
			user.IsEphemeral, user.ID,
		)
		return execErr
	})
}

// IncrementUserStats adds delta to the user's lifetime counters in a single
// transactional update.
func IncrementUserStats(ctx context.Context, id uuid.UUID, delta models.StatsDelta) error {
	q := `
	UPDATE users
	SET matches = matches + $1,
	    rounds = rounds + $2,
	    matches_won = matches_won + $3,
	    matches_lost = matches_lost + $4,
	    matches_drawn = matches_drawn + $5,
	    rounds_won = rounds_won + $6,
	    rounds_drawn = rounds_drawn + $7,
	    rounds_lost = rounds_lost + $8
	WHERE id = $9
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, q,
			delta.Matches, delta.Rounds,
			delta.MatchesWon, delta.MatchesLost, delta.MatchesDrawn,
			delta.RoundsWon, delta.RoundsDrawn, delta.RoundsLost,
			id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}
		return nil
	})
}
