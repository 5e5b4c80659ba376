// internal/engine/engine_test.go
package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boardFrom builds a board from a compact string, row by row. '.' is empty.
func boardFrom(t *testing.T, boardSize int, cells string) Board {
	t.Helper()
	require.Len(t, cells, boardSize*boardSize)
	b := NewBoard(boardSize)
	for i, c := range cells {
		switch c {
		case 'X':
			b[i] = SymbolX
		case 'O':
			b[i] = SymbolO
		case '.':
			b[i] = SymbolNone
		default:
			t.Fatalf("bad cell %q", c)
		}
	}
	return b
}

func TestOpponent(t *testing.T) {
	assert.Equal(t, SymbolO, SymbolX.Opponent())
	assert.Equal(t, SymbolX, SymbolO.Opponent())
	assert.Equal(t, SymbolNone, SymbolNone.Opponent())
}

func TestFindWinningLine_ClassicRow(t *testing.T) {
	b := boardFrom(t, 3, ""+
		"XXX"+
		"OO."+
		"...")
	winner, line := FindWinningLine(b, 3, 3)
	assert.Equal(t, SymbolX, winner)
	assert.Equal(t, []int{0, 1, 2}, line)
}

func TestFindWinningLine_Column(t *testing.T) {
	b := boardFrom(t, 3, ""+
		"OX."+
		"OX."+
		"O.X")
	winner, line := FindWinningLine(b, 3, 3)
	assert.Equal(t, SymbolO, winner)
	assert.Equal(t, []int{0, 3, 6}, line)
}

func TestFindWinningLine_Diagonal(t *testing.T) {
	b := boardFrom(t, 3, ""+
		"XO."+
		"OX."+
		"..X")
	winner, line := FindWinningLine(b, 3, 3)
	assert.Equal(t, SymbolX, winner)
	assert.Equal(t, []int{0, 4, 8}, line)
}

func TestFindWinningLine_AntiDiagonal(t *testing.T) {
	b := boardFrom(t, 3, ""+
		"..O"+
		"XOX"+
		"O.X")
	winner, line := FindWinningLine(b, 3, 3)
	assert.Equal(t, SymbolO, winner)
	assert.Equal(t, []int{2, 4, 6}, line)
}

// A shorter line than the board edge must win anywhere it fits, including
// offsets that do not touch a border.
func TestFindWinningLine_ShortLineOnLargeBoard(t *testing.T) {
	b := NewBoard(5)
	// X run at row 2, columns 1..3
	b[11], b[12], b[13] = SymbolX, SymbolX, SymbolX
	winner, line := FindWinningLine(b, 5, 3)
	assert.Equal(t, SymbolX, winner)
	assert.Equal(t, []int{11, 12, 13}, line)
}

func TestFindWinningLine_DiagonalOnLargeBoard(t *testing.T) {
	b := NewBoard(5)
	// X main diagonal from the corner: (0,0) (1,1) (2,2) (3,3)
	b[0], b[6], b[12], b[18] = SymbolX, SymbolX, SymbolX, SymbolX
	winner, line := FindWinningLine(b, 5, 4)
	assert.Equal(t, SymbolX, winner)
	assert.Equal(t, []int{0, 6, 12, 18}, line)
}

func TestFindWinningLine_OffsetAntiDiagonal(t *testing.T) {
	b := NewBoard(4)
	// O anti-diagonal: (1,3) (2,2) (3,1)
	b[7], b[10], b[13] = SymbolO, SymbolO, SymbolO
	winner, line := FindWinningLine(b, 4, 3)
	assert.Equal(t, SymbolO, winner)
	assert.Equal(t, []int{7, 10, 13}, line)
}

// A run longer than lineLength still wins; the reported line is the first
// window of exactly lineLength cells.
func TestFindWinningLine_RunLongerThanLine(t *testing.T) {
	b := NewBoard(4)
	b[0], b[1], b[2], b[3] = SymbolX, SymbolX, SymbolX, SymbolX
	winner, line := FindWinningLine(b, 4, 3)
	assert.Equal(t, SymbolX, winner)
	assert.Len(t, line, 3)
}

func TestFindWinningLine_NoWinner(t *testing.T) {
	b := boardFrom(t, 3, ""+
		"XOX"+
		"XOO"+
		"OXX")
	winner, line := FindWinningLine(b, 3, 3)
	assert.Equal(t, SymbolNone, winner)
	assert.Nil(t, line)
}

// lineLength greater than boardSize admits no candidate lines at all, so
// even a fully occupied board reports no winner.
func TestFindWinningLine_LineLongerThanBoard(t *testing.T) {
	b := NewBoard(3)
	for i := range b {
		b[i] = SymbolX
	}
	winner, line := FindWinningLine(b, 3, 4)
	assert.Equal(t, SymbolNone, winner)
	assert.Nil(t, line)
}

func TestFindWinningLine_EmptyBoard(t *testing.T) {
	winner, line := FindWinningLine(NewBoard(3), 3, 3)
	assert.Equal(t, SymbolNone, winner)
	assert.Nil(t, line)
}

func TestIsDraw(t *testing.T) {
	full := boardFrom(t, 3, ""+
		"XOX"+
		"XOO"+
		"OXX")
	assert.True(t, IsDraw(full))

	partial := NewBoard(3)
	partial[0] = SymbolX
	assert.False(t, IsDraw(partial))

	assert.False(t, IsDraw(NewBoard(3)))
}
