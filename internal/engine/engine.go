package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/apperror"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

// Tier is a named difficulty controlling move selection.
type Tier string

const (
	TierEasy       Tier = "easy"
	TierMedium     Tier = "medium"
	TierHard       Tier = "hard"
	TierImpossible Tier = "impossible"
)

const winScore = 10

var ErrUnknownTier = fmt.Errorf("unknown difficulty tier")

// ParseTier maps a client-supplied difficulty string to a Tier,
// defaulting to medium for an empty string.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierEasy, TierMedium, TierHard, TierImpossible:
		return Tier(s), nil
	case "":
		return TierMedium, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
	}
}

// Engine picks moves for an arbitrary legal board. The random source is
// injected so tests can pin down the easy/medium/hard tiers.
type Engine struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// ChooseMove returns a legal cell for self to play, or ErrNoLegalMove on
// a full board.
func (that *Engine) ChooseMove(board entity.Board, self, opponent entity.Mark, tier Tier) (int, error) {
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return 0, apperror.ErrNoLegalMove
	}

	switch tier {
	case TierEasy:
		return that.randomMove(moves), nil
	case TierMedium:
		return that.mediumMove(board, self, opponent, moves), nil
	case TierHard:
		return that.hardMove(board, self, opponent, moves), nil
	default:
		return that.bestMove(board, self, opponent, moves), nil
	}
}

func (that *Engine) randomMove(moves []int) int {
	return moves[that.rng.Intn(len(moves))]
}

// mediumMove wins or blocks immediately, then plays optimally half the time.
func (that *Engine) mediumMove(board entity.Board, self, opponent entity.Mark, moves []int) int {
	if cell, ok := findWinningMove(board, self, moves); ok {
		return cell
	}

	if cell, ok := findWinningMove(board, opponent, moves); ok {
		return cell
	}

	if that.rng.Float64() < 0.5 {
		return that.bestMove(board, self, opponent, moves)
	}

	return that.randomMove(moves)
}

// hardMove wins or blocks immediately, plays optimally 80% of the time,
// and otherwise falls back to center, corners, then anything free.
func (that *Engine) hardMove(board entity.Board, self, opponent entity.Mark, moves []int) int {
	if cell, ok := findWinningMove(board, self, moves); ok {
		return cell
	}

	if cell, ok := findWinningMove(board, opponent, moves); ok {
		return cell
	}

	if that.rng.Float64() < 0.8 {
		return that.bestMove(board, self, opponent, moves)
	}

	return that.strategicMove(board, moves)
}

func (that *Engine) strategicMove(board entity.Board, moves []int) int {
	const center = 4
	if board[center] == entity.EmptyCell {
		return center
	}

	var corners []int
	for _, cell := range []int{0, 2, 6, 8} {
		if board[cell] == entity.EmptyCell {
			corners = append(corners, cell)
		}
	}
	if len(corners) > 0 {
		return corners[that.rng.Intn(len(corners))]
	}

	return that.randomMove(moves)
}

// findWinningMove reports a cell that completes three in a row for mark.
func findWinningMove(board entity.Board, mark entity.Mark, moves []int) (int, bool) {
	for _, cell := range moves {
		next := board
		next[cell] = mark
		if outcome := next.Outcome(); outcome != nil && outcome.Winner == mark {
			return cell, true
		}
	}

	return 0, false
}

// bestMove runs exhaustive minimax over the remaining tree. Moves are
// explored in ascending index order and only a strictly better score
// replaces the candidate, so ties resolve to the lowest index.
func (that *Engine) bestMove(board entity.Board, self, opponent entity.Mark, moves []int) int {
	bestScore := math.MinInt
	best := moves[0]

	for _, cell := range moves {
		next := board
		next[cell] = self
		score := minimax(next, self, opponent, 0, false, math.MinInt, math.MaxInt)
		if score > bestScore {
			bestScore = score
			best = cell
		}
	}

	return best
}

// minimax scores a position with alpha-beta pruning. Depth is the number
// of plies already searched, so quicker wins score higher and slower
// losses score less negatively. The 9-cell tree is small enough that no
// move ordering or caching is needed.
func minimax(board entity.Board, self, opponent entity.Mark, depth int, maximizing bool, alpha, beta int) int {
	if outcome := board.Outcome(); outcome != nil {
		switch outcome.Winner {
		case self:
			return winScore - depth
		case opponent:
			return depth - winScore
		default:
			return 0
		}
	}

	if maximizing {
		best := math.MinInt
		for _, cell := range board.LegalMoves() {
			next := board
			next[cell] = self
			score := minimax(next, self, opponent, depth+1, false, alpha, beta)
			best = max(best, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := math.MaxInt
	for _, cell := range board.LegalMoves() {
		next := board
		next[cell] = opponent
		score := minimax(next, self, opponent, depth+1, true, alpha, beta)
		best = min(best, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}
	return best
}
