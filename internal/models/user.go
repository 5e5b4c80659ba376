// internal/models/user.go
package models

import "github.com/google/uuid"

// User is a registered (or ephemeral) account with cumulative play statistics.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	Username    string    `json:"username"`
	Avatar      string    `json:"avatar,omitempty"`
	IsEphemeral bool      `json:"isEphemeral"`
	Stats       UserStats `json:"stats"`
}

// UserStats is the cumulative record updated at match finalization.
// Matches count distinct finished matches; rounds count rounds played.
type UserStats struct {
	Matches      int `json:"matches"`
	Rounds       int `json:"rounds"`
	MatchesWon   int `json:"matchesWon"`
	MatchesLost  int `json:"matchesLost"`
	MatchesDrawn int `json:"matchesDrawn"`
	RoundsWon    int `json:"roundsWon"`
	RoundsDrawn  int `json:"roundsDrawn"`
	RoundsLost   int `json:"roundsLost"`
}

// StatsDelta is an atomic increment applied to a user's cumulative stats.
// Fields mirror UserStats.
type StatsDelta struct {
	Matches      int
	Rounds       int
	MatchesWon   int
	MatchesLost  int
	MatchesDrawn int
	RoundsWon    int
	RoundsDrawn  int
	RoundsLost   int
}
