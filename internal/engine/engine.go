// internal/engine/engine.go
package engine

// Symbol is a single player's mark on the board.
type Symbol string

const (
	SymbolX    Symbol = "X"
	SymbolO    Symbol = "O"
	SymbolNone Symbol = ""
)

// Opponent returns the other player's symbol.
func (s Symbol) Opponent() Symbol {
	if s == SymbolX {
		return SymbolO
	}
	if s == SymbolO {
		return SymbolX
	}
	return SymbolNone
}

// Board is a flat row-major grid of boardSize*boardSize cells.
type Board []Symbol

// NewBoard returns an empty board for the given size.
func NewBoard(boardSize int) Board {
	return make(Board, boardSize*boardSize)
}

// FindWinningLine scans the board for a straight run of lineLength equal,
// non-empty symbols. Candidate lines are enumerated rows first, then columns,
// then diagonals, then anti-diagonals, each over every in-bounds starting
// offset; the first winning line found is returned together with its cell
// indices. If lineLength > boardSize no candidate line exists and the scan
// reports no winner regardless of board contents.
//
// The board is re-scanned from scratch on every call; cost is bounded by
// boardSize^2 lines per direction, which is fine at the sizes we run.
func FindWinningLine(board Board, boardSize, lineLength int) (Symbol, []int) {
	if lineLength < 1 || lineLength > boardSize {
		return SymbolNone, nil
	}

	idx := func(row, col int) int { return row*boardSize + col }
	line := make([]int, lineLength)

	check := func() bool {
		first := board[line[0]]
		if first == SymbolNone {
			return false
		}
		for _, i := range line[1:] {
			if board[i] != first {
				return false
			}
		}
		return true
	}

	// Rows.
	for row := 0; row < boardSize; row++ {
		for col := 0; col <= boardSize-lineLength; col++ {
			for i := 0; i < lineLength; i++ {
				line[i] = idx(row, col+i)
			}
			if check() {
				return board[line[0]], append([]int(nil), line...)
			}
		}
	}

	// Columns.
	for col := 0; col < boardSize; col++ {
		for row := 0; row <= boardSize-lineLength; row++ {
			for i := 0; i < lineLength; i++ {
				line[i] = idx(row+i, col)
			}
			if check() {
				return board[line[0]], append([]int(nil), line...)
			}
		}
	}

	// Diagonals, top-left to bottom-right.
	for row := 0; row <= boardSize-lineLength; row++ {
		for col := 0; col <= boardSize-lineLength; col++ {
			for i := 0; i < lineLength; i++ {
				line[i] = idx(row+i, col+i)
			}
			if check() {
				return board[line[0]], append([]int(nil), line...)
			}
		}
	}

	// Anti-diagonals, top-right to bottom-left.
	for row := 0; row <= boardSize-lineLength; row++ {
		for col := lineLength - 1; col < boardSize; col++ {
			for i := 0; i < lineLength; i++ {
				line[i] = idx(row+i, col-i)
			}
			if check() {
				return board[line[0]], append([]int(nil), line...)
			}
		}
	}

	return SymbolNone, nil
}

// IsDraw reports whether every cell is occupied. Callers check for a winning
// line first; a full board with no line is a drawn round.
func IsDraw(board Board) bool {
	for _, cell := range board {
		if cell == SymbolNone {
			return false
		}
	}
	return true
}
