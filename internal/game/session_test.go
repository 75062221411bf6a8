package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/apperror"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/engine"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

// firstFreeMover always takes the lowest free cell, keeping vs-engine
// tests deterministic without a seeded search.
type firstFreeMover struct{}

func (firstFreeMover) ChooseMove(board entity.Board, _, _ entity.Mark, _ engine.Tier) (int, error) {
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return 0, apperror.ErrNoLegalMove
	}
	return moves[0], nil
}

func newTwoPlayerSession(t *testing.T) *Session {
	t.Helper()

	room := entity.NewRoom("ABC123")
	room.Players = []*entity.Player{
		{ConnectionID: "conn-a", Name: "alice", Mark: entity.MarkX},
	}

	session := newSession(room, firstFreeMover{}, engine.TierMedium)

	_, err := session.join(&entity.Player{ConnectionID: "conn-b", Name: "bob"})
	require.NoError(t, err)

	return session
}

func newEngineSession() *Session {
	room := entity.NewRoom("BOT123")
	room.Players = []*entity.Player{
		{ConnectionID: "conn-a", Name: "alice", Mark: entity.MarkX},
	}
	room.VsEngine = true
	room.Status = entity.StatusPlaying

	return newSession(room, firstFreeMover{}, engine.TierImpossible)
}

func TestSession_Join(t *testing.T) {
	t.Run("Second join starts the game with O for the joiner", func(t *testing.T) {
		// Given: a waiting room with its host seated as X
		room := entity.NewRoom("ABC123")
		room.Players = []*entity.Player{{ConnectionID: "conn-a", Name: "alice", Mark: entity.MarkX}}
		session := newSession(room, firstFreeMover{}, engine.TierMedium)

		// When: a second player joins
		snap, err := session.join(&entity.Player{ConnectionID: "conn-b", Name: "bob"})

		// Then: the room is playing, host X, joiner O
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPlaying, snap.Status)
		require.Len(t, snap.Players, 2)
		assert.Equal(t, entity.MarkX, snap.Players[0].Mark)
		assert.Equal(t, entity.MarkO, snap.Players[1].Mark)
	})

	t.Run("Third join fails with RoomFull", func(t *testing.T) {
		session := newTwoPlayerSession(t)

		_, err := session.join(&entity.Player{ConnectionID: "conn-c", Name: "carol"})

		require.ErrorIs(t, err, apperror.ErrRoomFull)
	})
}

func TestSession_SubmitMove(t *testing.T) {
	t.Run("Unknown connection fails with NotInRoom", func(t *testing.T) {
		session := newTwoPlayerSession(t)

		_, err := session.SubmitMove("conn-x", 0, nil)

		require.ErrorIs(t, err, apperror.ErrNotInRoom)
	})

	t.Run("Waiting room fails with GameNotStarted", func(t *testing.T) {
		room := entity.NewRoom("ABC123")
		room.Players = []*entity.Player{{ConnectionID: "conn-a", Name: "alice", Mark: entity.MarkX}}
		session := newSession(room, firstFreeMover{}, engine.TierMedium)

		_, err := session.SubmitMove("conn-a", 0, nil)

		require.ErrorIs(t, err, apperror.ErrGameNotStarted)
	})

	t.Run("Moving out of turn fails with NotYourTurn", func(t *testing.T) {
		session := newTwoPlayerSession(t)

		// X moves first, so O is rejected
		_, err := session.SubmitMove("conn-b", 0, nil)

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Occupied cell fails with CellTaken and changes nothing", func(t *testing.T) {
		// Given: X already played cell 0
		session := newTwoPlayerSession(t)
		_, err := session.SubmitMove("conn-a", 0, nil)
		require.NoError(t, err)

		before := session.Snapshot()

		// When: O tries the same cell
		_, err = session.SubmitMove("conn-b", 0, nil)

		// Then: the move is rejected, board and turn untouched
		require.ErrorIs(t, err, apperror.ErrCellTaken)
		after := session.Snapshot()
		assert.Equal(t, before.Board, after.Board)
		assert.Equal(t, before.Turn, after.Turn)
		assert.Len(t, after.Moves, 1)
	})

	t.Run("Out-of-range cell fails with IllegalMove", func(t *testing.T) {
		session := newTwoPlayerSession(t)

		_, err := session.SubmitMove("conn-a", 11, nil)

		require.ErrorIs(t, err, apperror.ErrIllegalMove)
	})

	t.Run("Turn alternates and sequence increases", func(t *testing.T) {
		// Given: an ongoing two-player game
		session := newTwoPlayerSession(t)

		moves := []struct {
			conn string
			cell int
		}{
			{"conn-a", 0}, {"conn-b", 4}, {"conn-a", 1}, {"conn-b", 5},
		}

		// When: the players alternate four accepted moves
		for i, mv := range moves {
			result, err := session.SubmitMove(mv.conn, mv.cell, nil)
			require.NoError(t, err)
			require.Len(t, result.Moves, 1)
			assert.Equal(t, i+1, result.Moves[0].Sequence)

			// Then: with n accepted moves, X is to move iff n is even
			want := entity.MarkX
			if (i+1)%2 == 1 {
				want = entity.MarkO
			}
			assert.Equal(t, want, result.Turn)
		}
	})

	t.Run("Winning move finishes the game with the matched line", func(t *testing.T) {
		// Given: X one move away from the top row
		session := newTwoPlayerSession(t)
		for _, mv := range []struct {
			conn string
			cell int
		}{
			{"conn-a", 0}, {"conn-b", 3}, {"conn-a", 1}, {"conn-b", 4},
		} {
			_, err := session.SubmitMove(mv.conn, mv.cell, nil)
			require.NoError(t, err)
		}

		// When: X completes the row
		result, err := session.SubmitMove("conn-a", 2, nil)
		require.NoError(t, err)

		// Then: the session is finished with X on line 0-1-2
		require.NotNil(t, result.Outcome)
		assert.Equal(t, entity.MarkX, result.Outcome.Winner)
		assert.Equal(t, []int{0, 1, 2}, result.Outcome.Line)

		snap := session.Snapshot()
		assert.Equal(t, entity.StatusFinished, snap.Status)
		assert.Equal(t, entity.EmptyCell, snap.Turn)

		// and a further move is rejected
		_, err = session.SubmitMove("conn-b", 5, nil)
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Emit runs inside the move's critical step", func(t *testing.T) {
		// Given: an ongoing two-player game
		session := newTwoPlayerSession(t)

		// When: X moves with a broadcast hook attached
		var emitted *TurnResult
		result, err := session.SubmitMove("conn-a", 0, func(res *TurnResult) {
			emitted = res

			// Then: the session is still locked while the hook runs, so no
			// competing move can land between the transition and its event
			assert.False(t, session.mu.TryLock())
		})

		require.NoError(t, err)
		assert.Same(t, result, emitted)
	})

	t.Run("Full board without a winner is a draw", func(t *testing.T) {
		session := newTwoPlayerSession(t)

		// X O X / X O O / O X X leaves no line for either side
		for _, mv := range []struct {
			conn string
			cell int
		}{
			{"conn-a", 0}, {"conn-b", 1}, {"conn-a", 2},
			{"conn-b", 4}, {"conn-a", 3}, {"conn-b", 5},
			{"conn-a", 7}, {"conn-b", 6}, {"conn-a", 8},
		} {
			result, err := session.SubmitMove(mv.conn, mv.cell, nil)
			require.NoError(t, err)

			if len(session.Snapshot().Moves) == 9 {
				require.NotNil(t, result.Outcome)
				assert.True(t, result.Outcome.Draw)
			}
		}

		assert.Equal(t, entity.StatusFinished, session.Snapshot().Status)
	})
}

func TestSession_VsEngine(t *testing.T) {
	t.Run("Engine replies within the same move", func(t *testing.T) {
		// Given: a single-player room against the engine
		session := newEngineSession()

		// When: the human plays X at 4
		result, err := session.SubmitMove("conn-a", 4, nil)
		require.NoError(t, err)

		// Then: the engine's O reply lands atomically with it
		require.Len(t, result.Moves, 2)
		assert.Equal(t, entity.MarkX, result.Moves[0].Mark)
		assert.Equal(t, entity.MarkO, result.Moves[1].Mark)
		assert.Equal(t, 0, result.Moves[1].Position)
		assert.Equal(t, entity.MarkX, result.Turn)
	})

	t.Run("No engine reply after a terminal human move", func(t *testing.T) {
		session := newEngineSession()

		// Human X runs the left column while the scripted engine fills 1 and 2
		for _, cell := range []int{0, 3} {
			_, err := session.SubmitMove("conn-a", cell, nil)
			require.NoError(t, err)
		}

		result, err := session.SubmitMove("conn-a", 6, nil)
		require.NoError(t, err)

		require.NotNil(t, result.Outcome)
		assert.Equal(t, entity.MarkX, result.Outcome.Winner)
		assert.Len(t, result.Moves, 1)
	})
}

func TestSession_Rematch(t *testing.T) {
	finish := func(t *testing.T) *Session {
		t.Helper()
		session := newTwoPlayerSession(t)
		for _, mv := range []struct {
			conn string
			cell int
		}{
			{"conn-a", 0}, {"conn-b", 3}, {"conn-a", 1}, {"conn-b", 4}, {"conn-a", 2},
		} {
			_, err := session.SubmitMove(mv.conn, mv.cell, nil)
			require.NoError(t, err)
		}
		return session
	}

	t.Run("Request before the game is over is rejected", func(t *testing.T) {
		session := newTwoPlayerSession(t)

		_, _, err := session.RequestRematch("conn-a")

		require.ErrorIs(t, err, apperror.ErrGameNotOver)
	})

	t.Run("Accept without a pending request is rejected", func(t *testing.T) {
		session := finish(t)

		_, err := session.AcceptRematch("conn-b")

		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Requester cannot accept their own request", func(t *testing.T) {
		session := finish(t)

		_, _, err := session.RequestRematch("conn-a")
		require.NoError(t, err)

		_, err = session.AcceptRematch("conn-a")
		require.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("Accepted rematch swaps marks and resets the room", func(t *testing.T) {
		// Given: a finished game and a pending request from alice
		session := finish(t)

		requester, started, err := session.RequestRematch("conn-a")
		require.NoError(t, err)
		assert.False(t, started)
		assert.Equal(t, "alice", requester.Name)

		// When: bob accepts
		snap, err := session.AcceptRematch("conn-b")
		require.NoError(t, err)

		// Then: board and history are cleared, marks swapped, playing again
		assert.Equal(t, entity.StatusPlaying, snap.Status)
		assert.Equal(t, entity.Board{}, snap.Board)
		assert.Empty(t, snap.Moves)
		assert.Equal(t, entity.MarkO, snap.Players[0].Mark)
		assert.Equal(t, entity.MarkX, snap.Players[1].Mark)

		// and bob, now X, moves first
		_, err = session.SubmitMove("conn-a", 0, nil)
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Vs-engine rematch starts immediately with the engine opening", func(t *testing.T) {
		// Given: a finished single-player game
		session := newEngineSession()
		for _, cell := range []int{4, 3, 6} {
			_, err := session.SubmitMove("conn-a", cell, nil)
			require.NoError(t, err)
		}
		finished := session.Snapshot()
		require.True(t, finished.IsFinished())

		// When: the human asks for a rematch
		_, started, err := session.RequestRematch("conn-a")
		require.NoError(t, err)

		// Then: the reset happens without a counterpart handshake, the
		// human now holds O and the engine has already opened as X
		assert.True(t, started)
		snap := session.Snapshot()
		assert.Equal(t, entity.StatusPlaying, snap.Status)
		assert.Equal(t, entity.MarkO, snap.Players[0].Mark)
		require.Len(t, snap.Moves, 1)
		assert.Equal(t, entity.MarkX, snap.Moves[0].Mark)
		assert.Equal(t, entity.MarkO, snap.Turn)
	})
}
