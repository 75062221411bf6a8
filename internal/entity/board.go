package entity

import (
	"fmt"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/apperror"
)

// Mark is one of the two symbols a player places on the board.
type Mark string

const (
	MarkX Mark = "X"
	MarkO Mark = "O"

	EmptyCell Mark = ""
)

// Lines holds the 8 winning triples, checked in a fixed order:
// rows, then columns, then diagonals. The order matters because the
// matched line is sent to clients for highlighting.
var Lines = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is the 3x3 grid in row-major order. It is a value type: assigning
// a Board copies it, which the decision engine relies on for snapshots.
type Board [9]Mark

// Outcome is the terminal state of a board: either a win with the matched
// line, or a draw on a full board.
type Outcome struct {
	Winner Mark  `json:"winner,omitempty"`
	Line   []int `json:"line,omitempty"`
	Draw   bool  `json:"draw"`
}

// Opponent returns the other mark.
func Opponent(mark Mark) Mark {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}

// LegalMoves returns the indexes of all empty cells in ascending order.
func (that Board) LegalMoves() []int {
	moves := make([]int, 0, len(that))
	for i, cell := range that {
		if cell == EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}

// IsFull reports whether no empty cell remains.
func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Outcome returns nil while the game can continue, a win with its line,
// or a draw once the board is full.
func (that Board) Outcome() *Outcome {
	for _, line := range Lines {
		a, b, c := that[line[0]], that[line[1]], that[line[2]]
		if a != EmptyCell && a == b && b == c {
			return &Outcome{Winner: a, Line: []int{line[0], line[1], line[2]}}
		}
	}

	if that.IsFull() {
		return &Outcome{Draw: true}
	}

	return nil
}

// Apply places mark at the given cell, mutating the receiver. Callers that
// need a snapshot copy the board first.
func (that *Board) Apply(cell int, mark Mark) error {
	if cell < 0 || cell >= len(that) {
		return fmt.Errorf("%w: cell %d", apperror.ErrIllegalMove, cell)
	}

	if that[cell] != EmptyCell {
		return apperror.ErrCellTaken
	}

	that[cell] = mark

	return nil
}
