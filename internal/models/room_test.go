// internal/models/room_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gridline/internal/engine"
)

func TestRoomConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		cfg    RoomConfig
		wantOK bool
	}{
		{"classic", RoomConfig{BoardSize: 3, LineLength: 3, Rounds: 3, TimerDuration: 10}, true},
		{"no timer", RoomConfig{BoardSize: 5, LineLength: 4, Rounds: 1, TimerDuration: 0}, true},
		{"slow timer", RoomConfig{BoardSize: 4, LineLength: 3, Rounds: 5, TimerDuration: 30}, true},
		{"line too long", RoomConfig{BoardSize: 3, LineLength: 4, Rounds: 1, TimerDuration: 0}, false},
		{"zero line", RoomConfig{BoardSize: 3, LineLength: 0, Rounds: 1, TimerDuration: 0}, false},
		{"zero board", RoomConfig{BoardSize: 0, LineLength: 0, Rounds: 1, TimerDuration: 0}, false},
		{"zero rounds", RoomConfig{BoardSize: 3, LineLength: 3, Rounds: 0, TimerDuration: 0}, false},
		{"odd timer", RoomConfig{BoardSize: 3, LineLength: 3, Rounds: 1, TimerDuration: 15}, false},
		{"negative timer", RoomConfig{BoardSize: 3, LineLength: 3, Rounds: 1, TimerDuration: -10}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason := tc.cfg.Validate()
			if tc.wantOK {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}

func TestSeatConnected(t *testing.T) {
	var nilSeat *Seat
	assert.False(t, nilSeat.Connected())

	seat := &Seat{}
	assert.False(t, seat.Connected())

	seat.ConnID = "conn-1"
	assert.True(t, seat.Connected())
}

func TestMatchTallyResults(t *testing.T) {
	m := &Match{Results: []RoundResult{
		{Round: 1, Winner: engine.SymbolX, Reason: ReasonLineCompletion},
		{Round: 2, Draw: true},
		{Round: 3, Winner: engine.SymbolO, Reason: ReasonTimeOver},
		{Round: 4, Winner: engine.SymbolX, Reason: ReasonLineCompletion},
	}}
	xWins, oWins, draws := m.TallyResults()
	assert.Equal(t, 2, xWins)
	assert.Equal(t, 1, oWins)
	assert.Equal(t, 1, draws)
}

func TestMatchCurrentTurn(t *testing.T) {
	m := &Match{XIsNext: true}
	assert.Equal(t, engine.SymbolX, m.CurrentTurn())
	m.XIsNext = false
	assert.Equal(t, engine.SymbolO, m.CurrentTurn())
}
