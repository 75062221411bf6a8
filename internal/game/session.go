package game

import (
	"fmt"
	"sync"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/apperror"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/engine"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

type mover interface {
	ChooseMove(board entity.Board, self, opponent entity.Mark, tier engine.Tier) (int, error)
}

// Session owns one room and serializes every state transition through its
// own mutex, so a move is validated and applied as one indivisible step
// relative to any other event targeting the same room.
type Session struct {
	mu   sync.Mutex
	room *entity.Room

	engine mover
	tier   engine.Tier

	rematchBy string // connection that requested the pending rematch

	// closed is set when the registry destroys the room; a stale handle
	// obtained from an earlier Find must not seat anyone afterwards.
	closed bool
}

// TurnResult is everything a transport needs to broadcast after an
// accepted move: the applied moves (two in a vs-engine room), the new
// board and turn, and the terminal outcome if the game just ended.
type TurnResult struct {
	Moves   []entity.Move
	Board   entity.Board
	Turn    entity.Mark
	Outcome *entity.Outcome
	Players []entity.Player
}

func newSession(room *entity.Room, eng mover, tier engine.Tier) *Session {
	return &Session{
		room:   room,
		engine: eng,
		tier:   tier,
	}
}

func (that *Session) Code() string {
	return that.room.Code
}

// Snapshot copies the room for broadcast outside the lock.
func (that *Session) Snapshot() entity.Room {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotLocked()
}

func (that *Session) snapshotLocked() entity.Room {
	snap := *that.room

	snap.Players = make([]*entity.Player, len(that.room.Players))
	for i, player := range that.room.Players {
		p := *player
		snap.Players[i] = &p
	}

	snap.Moves = append([]entity.Move(nil), that.room.Moves...)

	return snap
}

// join seats a second player; called by the registry with the code
// already resolved. First seat is taken at creation and always holds X.
func (that *Session) join(player *entity.Player) (entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return entity.Room{}, apperror.ErrRoomNotFound
	}

	if len(that.room.Players) >= 2 {
		return entity.Room{}, apperror.ErrRoomFull
	}

	if !that.room.IsWaiting() {
		return entity.Room{}, apperror.ErrGameInProgress
	}

	player.Mark = entity.MarkO
	that.room.Players = append(that.room.Players, player)
	that.room.Status = entity.StatusPlaying

	return that.snapshotLocked(), nil
}

// leave unseats the player and reports whether the room is now empty. An
// emptied session is closed in the same step, so a handle resolved before
// the registry drops the entry cannot revive it.
func (that *Session) leave(connectionID string) (*entity.Player, bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for i, player := range that.room.Players {
		if player.ConnectionID != connectionID {
			continue
		}

		that.room.Players = append(that.room.Players[:i], that.room.Players[i+1:]...)
		that.rematchBy = ""

		if len(that.room.Players) == 0 || that.room.VsEngine {
			that.closed = true
			return player, true, nil
		}

		that.room.Status = entity.StatusWaiting

		return player, false, nil
	}

	return nil, false, apperror.ErrNotInRoom
}

// SubmitMove validates and applies one move. In a vs-engine room the
// engine's reply is computed inside the same critical step, so both moves
// land atomically. A non-nil emit runs with the session still locked:
// room events leave in the order the state machine produced them, before
// any later move for this room can be applied.
func (that *Session) SubmitMove(connectionID string, cell int, emit func(*TurnResult)) (*TurnResult, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.room.PlayerByConn(connectionID)
	if player == nil {
		return nil, apperror.ErrNotInRoom
	}

	if !that.room.IsPlaying() {
		if that.room.IsFinished() {
			return nil, apperror.ErrGameFinished
		}
		return nil, apperror.ErrGameNotStarted
	}

	if that.room.Turn != player.Mark {
		return nil, apperror.ErrNotYourTurn
	}

	result := &TurnResult{}

	if err := that.applyMove(player.Mark, player.Name, cell, result); err != nil {
		return nil, err
	}

	if that.room.VsEngine && that.room.IsPlaying() {
		if err := that.engineReply(result); err != nil {
			return nil, err
		}
	}

	result.Board = that.room.Board
	result.Turn = that.room.Turn
	for _, p := range that.room.Players {
		result.Players = append(result.Players, *p)
	}

	if emit != nil {
		emit(result)
	}

	return result, nil
}

func (that *Session) applyMove(mark entity.Mark, actor string, cell int, result *TurnResult) error {
	if err := that.room.Board.Apply(cell, mark); err != nil {
		return err
	}

	move := entity.Move{
		Position: cell,
		Mark:     mark,
		Actor:    actor,
		Sequence: len(that.room.Moves) + 1,
	}
	that.room.Moves = append(that.room.Moves, move)
	result.Moves = append(result.Moves, move)

	if outcome := that.room.Board.Outcome(); outcome != nil {
		that.room.Status = entity.StatusFinished
		that.room.Turn = entity.EmptyCell
		result.Outcome = outcome
		return nil
	}

	that.room.Turn = entity.Opponent(mark)

	return nil
}

func (that *Session) engineReply(result *TurnResult) error {
	mark := that.room.Turn
	cell, err := that.engine.ChooseMove(that.room.Board, mark, entity.Opponent(mark), that.tier)
	if err != nil {
		return fmt.Errorf("engine failed to choose a move: %w", err)
	}

	return that.applyMove(mark, engineName, cell, result)
}

// RequestRematch records a pending rematch while the game is finished and
// returns the requesting player. A vs-engine room has no counterpart to
// ask, so the reset happens immediately and started reports it.
func (that *Session) RequestRematch(connectionID string) (requester entity.Player, started bool, err error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.room.PlayerByConn(connectionID)
	if player == nil {
		return entity.Player{}, false, apperror.ErrNotInRoom
	}

	if !that.room.IsFinished() {
		return entity.Player{}, false, apperror.ErrGameNotOver
	}

	if that.room.VsEngine {
		that.resetLocked()
		return *player, true, nil
	}

	that.rematchBy = connectionID

	return *player, false, nil
}

// AcceptRematch resets the room once the counterpart of a pending request
// agrees: board and history cleared, marks swapped, straight back to
// playing since both players are still seated.
func (that *Session) AcceptRematch(connectionID string) (entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player := that.room.PlayerByConn(connectionID)
	if player == nil {
		return entity.Room{}, apperror.ErrNotInRoom
	}

	if !that.room.IsFinished() {
		return entity.Room{}, apperror.ErrGameNotOver
	}

	if that.rematchBy == "" || that.rematchBy == connectionID {
		return entity.Room{}, apperror.ErrNotFound
	}

	that.resetLocked()

	return that.snapshotLocked(), nil
}

func (that *Session) resetLocked() {
	that.room.Reset()
	that.rematchBy = ""

	// After a swap in a vs-engine room the engine may hold X and opens.
	if that.room.VsEngine && that.engineMarkLocked() == entity.MarkX {
		result := &TurnResult{}
		if err := that.engineReply(result); err != nil {
			// Only possible on a full board, which a fresh board is not.
			return
		}
	}
}

func (that *Session) engineMarkLocked() entity.Mark {
	for _, player := range that.room.Players {
		return entity.Opponent(player.Mark)
	}
	return entity.MarkO
}
