package websocket

import (
	"encoding/json"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

// Client-originated actions.
const (
	actionCreateRoom     = "create-room"
	actionJoinRoom       = "join-room"
	actionMakeMove       = "make-move"
	actionRequestRematch = "request-rematch"
	actionAcceptRematch  = "accept-rematch"
	actionLeaveRoom      = "leave-room"
	actionChatMessage    = "chat-message"
)

// Server-originated events.
const (
	eventGameStart        = "game-start"
	eventMoveMade         = "move-made"
	eventGameOver         = "game-over"
	eventPlayerLeft       = "player-left"
	eventRematchRequested = "rematch-requested"
)

// Message is the wire envelope: an action type and a JSON payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CreateRoomPayload struct {
	VsComputer bool   `json:"vs_computer,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type JoinRoomPayload struct {
	RoomCode string `json:"room_code"`
}

type MovePayload struct {
	RoomCode string `json:"room_code"`
	Position int    `json:"position"`
}

type RoomPayload struct {
	RoomCode string `json:"room_code"`
}

type ChatPayload struct {
	RoomCode string `json:"room_code"`
	Text     string `json:"text"`
}

// AckPayload answers the originating connection only; errors are never
// broadcast to the room.
type AckPayload struct {
	Success  bool         `json:"success"`
	Error    string       `json:"error,omitempty"`
	RoomCode string       `json:"room_code,omitempty"`
	Room     *entity.Room `json:"room,omitempty"`
}

type GameStartPayload struct {
	Room    entity.Room `json:"room"`
	Message string      `json:"message,omitempty"`
}

type MoveMadePayload struct {
	Position int          `json:"position"`
	Mark     entity.Mark  `json:"mark"`
	Player   string       `json:"player"`
	Board    entity.Board `json:"board"`
	Turn     entity.Mark  `json:"turn"`
}

type GameOverPayload struct {
	Winner      *entity.Player `json:"winner"`
	IsDraw      bool           `json:"is_draw"`
	WinningLine []int          `json:"winning_line"`
	Board       entity.Board   `json:"board"`
}

type PlayerLeftPayload struct {
	Player string      `json:"player"`
	Room   entity.Room `json:"room"`
}

type RematchRequestedPayload struct {
	From string `json:"from"`
}

type ChatBroadcastPayload struct {
	From      string `json:"from"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

func newMessage(action string, payload interface{}) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		// All payload types above marshal cleanly.
		panic(err)
	}

	return Message{Action: action, Payload: raw}
}
