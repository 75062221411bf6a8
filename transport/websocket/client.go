package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	sendBuffer = 16
)

// Client is one connected player. Handlers run to completion on the read
// goroutine, so roomCode is touched only there; other goroutines reach
// the client solely through its send channel.
type Client struct {
	id       string
	identity *entity.Identity

	conn *websocket.Conn
	send chan Message

	roomCode string
}

func newClient(id string, identity *entity.Identity, conn *websocket.Conn) *Client {
	return &Client{
		id:       id,
		identity: identity,
		conn:     conn,
		send:     make(chan Message, sendBuffer),
	}
}

// Send queues a message for delivery, dropping it if the client's buffer
// is full (a stalled reader must not block the room).
func (that *Client) Send(msg Message) {
	select {
	case that.send <- msg:
	default:
	}
}

// displayName resolves the label other players see. Anonymous players get
// a seat-based fallback.
func (that *Client) displayName(fallback string) string {
	if that.identity != nil {
		return that.identity.Username
	}
	return fallback
}

// readPump feeds inbound messages to the dispatcher until the connection
// drops, then triggers the server-side disconnect path.
func (that *Client) readPump(server *Server) {
	defer server.disconnect(that)

	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := that.conn.ReadJSON(&msg); err != nil {
			return
		}

		server.dispatch(that, &msg)
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings.
func (that *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
