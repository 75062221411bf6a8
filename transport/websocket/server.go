package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/game"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/service"
)

type authService interface {
	VerifyToken(token string) (*entity.Identity, error)
}

type statsService interface {
	RecordOutcome(ctx context.Context, identity *entity.Identity, result service.Result)
}

type handlerFunc func(client *Client, msg *Message) error

// Server accepts WebSocket connections, binds them to identities and
// rooms, and routes the message catalog to the session engine.
type Server struct {
	logger *slog.Logger

	registry *game.Registry
	hub      *Hub
	auth     authService
	stats    statsService

	upgrader websocket.Upgrader
	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, registry *game.Registry, auth authService, stats statsService) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		registry: registry,
		hub:      NewHub(),
		auth:     auth,
		stats:    stats,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}

	server.handlers = map[string]handlerFunc{
		actionCreateRoom:     server.handleCreateRoom,
		actionJoinRoom:       server.handleJoinRoom,
		actionMakeMove:       server.handleMakeMove,
		actionRequestRematch: server.handleRequestRematch,
		actionAcceptRematch:  server.handleAcceptRematch,
		actionLeaveRoom:      server.handleLeaveRoom,
		actionChatMessage:    server.handleChatMessage,
	}

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS upgrades the connection and binds it to an identity when a
// valid token is presented; otherwise the player stays anonymous.
func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	var identity *entity.Identity
	if token := r.URL.Query().Get("token"); token != "" {
		identity, err = that.auth.VerifyToken(token)
		if err != nil {
			log.Info("invalid token, continuing as guest", "error", err)
			identity = nil
		}
	}

	client := newClient(uuid.NewString(), identity, conn)

	log.Info("connection established", "connectionID", client.id, "authenticated", identity != nil)

	go client.writePump()
	go client.readPump(that)
}

// dispatch runs one inbound message to completion before the client's
// next message is read.
func (that *Server) dispatch(client *Client, msg *Message) {
	handler, ok := that.handlers[msg.Action]
	if !ok {
		that.logger.Error("unknown action", "action", msg.Action, "connectionID", client.id)
		client.Send(newMessage(msg.Action, AckPayload{Success: false, Error: "unknown action"}))
		return
	}

	if err := handler(client, msg); err != nil {
		that.logger.Error("error processing message", "action", msg.Action, "connectionID", client.id, "error", err)
	}
}

// disconnect treats a transport-level drop exactly like an explicit
// leave-room for whichever room the connection was bound to.
func (that *Server) disconnect(client *Client) {
	that.leaveCurrentRoom(client)

	close(client.send)
	_ = client.conn.Close()

	that.logger.Info("connection closed", "connectionID", client.id)
}
