// internal/models/match.go
package models

import "gridline/internal/engine"

// Round end reasons carried on RoundResult and broadcast to clients.
const (
	ReasonLineCompletion = "Line Completion"
	ReasonTimeOver       = "Time Over"
)

// RoundResult records one completed round's outcome. Immutable once appended
// to a match's result list.
type RoundResult struct {
	Round  int           `json:"round"`
	Winner engine.Symbol `json:"winner,omitempty"`
	Draw   bool          `json:"draw"`
	Reason string        `json:"reason,omitempty"`
}

// Match is one multi-round contest, keyed by its room id. It is mutated only
// by the state machine while the owning room's lock is held, and persisted
// after every state transition.
type Match struct {
	RoomID       string        `json:"roomId"`
	PlayerX      Participant   `json:"playerX"`
	PlayerO      Participant   `json:"playerO"`
	Board        engine.Board  `json:"board"`
	BoardSize    int           `json:"boardSize"`
	LineLength   int           `json:"lineLength"`
	XIsNext      bool          `json:"xIsNext"`
	Round        int           `json:"round"`
	TotalRounds  int           `json:"totalRounds"`
	IsFinished   bool          `json:"isFinished"`
	IsGameEnding bool          `json:"isGameEnding"`
	Results      []RoundResult `json:"results"`
}

// CurrentTurn returns the symbol whose move is expected next.
func (m *Match) CurrentTurn() engine.Symbol {
	if m.XIsNext {
		return engine.SymbolX
	}
	return engine.SymbolO
}

// RoundStats is the per-symbol tally derived from a match's results, shaped
// for the game-over broadcast.
type RoundStats struct {
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

// TallyResults counts round wins per symbol and draws across the match.
func (m *Match) TallyResults() (xWins, oWins, draws int) {
	for _, r := range m.Results {
		switch {
		case r.Draw:
			draws++
		case r.Winner == engine.SymbolX:
			xWins++
		case r.Winner == engine.SymbolO:
			oWins++
		}
	}
	return xWins, oWins, draws
}
