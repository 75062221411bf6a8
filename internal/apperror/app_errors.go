package apperror

import "errors"

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrGameInProgress = errors.New("game already in progress")
	ErrGameFinished   = errors.New("game is already finished")
	ErrGameNotStarted = errors.New("game has not started yet")
	ErrGameNotOver    = errors.New("game is not over yet")
	ErrNotInRoom      = errors.New("you are not in this room")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrCellTaken      = errors.New("cell already taken")
	ErrIllegalMove    = errors.New("illegal move")
	ErrNoLegalMove    = errors.New("no legal move available")
	ErrNotFound       = errors.New("not found")
)
