package entity

// Room lifecycle states.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Identity is the external-user reference attached to an authenticated
// connection. Anonymous players carry no identity at all.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Player is seated in exactly one room. ConnectionID only routes messages;
// it never keeps the room alive after the last member leaves.
type Player struct {
	ConnectionID string    `json:"-"`
	Identity     *Identity `json:"-"`
	Name         string    `json:"name"`
	Mark         Mark      `json:"mark"`
}

// Move is one accepted placement. Sequence is strictly increasing within
// a room's history.
type Move struct {
	Position int    `json:"position"`
	Mark     Mark   `json:"mark"`
	Actor    string `json:"actor"`
	Sequence int    `json:"sequence"`
}

// Room is one ephemeral match: two players, or one player plus the engine.
type Room struct {
	Code     string    `json:"code"`
	Players  []*Player `json:"players"`
	Board    Board     `json:"board"`
	Turn     Mark      `json:"turn,omitempty"`
	Status   Status    `json:"status"`
	Moves    []Move    `json:"moves,omitempty"`
	VsEngine bool      `json:"vs_engine,omitempty"`
}

func NewRoom(code string) *Room {
	return &Room{
		Code:   code,
		Turn:   MarkX,
		Status: StatusWaiting,
	}
}

func (that *Room) IsWaiting() bool  { return that.Status == StatusWaiting }
func (that *Room) IsPlaying() bool  { return that.Status == StatusPlaying }
func (that *Room) IsFinished() bool { return that.Status == StatusFinished }

// PlayerByConn returns the seated player bound to the connection, or nil.
func (that *Room) PlayerByConn(connectionID string) *Player {
	for _, player := range that.Players {
		if player.ConnectionID == connectionID {
			return player
		}
	}

	return nil
}

// OpponentOf returns the other seated player, or nil in a half-empty room.
func (that *Room) OpponentOf(connectionID string) *Player {
	for _, player := range that.Players {
		if player.ConnectionID != connectionID {
			return player
		}
	}

	return nil
}

// Reset clears the board and history for a rematch and swaps both marks.
// Both players are still seated, so the room goes straight back to playing.
func (that *Room) Reset() {
	that.Board = Board{}
	that.Moves = nil
	that.Turn = MarkX
	that.Status = StatusPlaying

	for _, player := range that.Players {
		player.Mark = Opponent(player.Mark)
	}
}
