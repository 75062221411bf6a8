package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/engine"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/game"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/service"
)

func (that *Server) handleCreateRoom(client *Client, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom", "connectionID", client.id)

	if client.roomCode != "" {
		return that.sendError(client, msg.Action, "already in a room")
	}

	var payload CreateRoomPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return that.sendError(client, msg.Action, "malformed payload")
		}
	}

	tier, err := engine.ParseTier(payload.Difficulty)
	if err != nil {
		return that.sendError(client, msg.Action, err.Error())
	}

	host := &entity.Player{
		ConnectionID: client.id,
		Identity:     client.identity,
		Name:         client.displayName("Player 1"),
	}

	session, err := that.registry.Create(host, payload.VsComputer, tier)
	if err != nil {
		log.Error("failed to create room", "error", err)
		return that.sendError(client, msg.Action, "failed to create room")
	}

	client.roomCode = session.Code()
	that.hub.Add(session.Code(), client)

	snap := session.Snapshot()
	client.Send(newMessage(msg.Action, AckPayload{Success: true, RoomCode: session.Code(), Room: &snap}))

	// A vs-engine room is already playing; tell the client to start.
	if snap.VsEngine {
		that.hub.Broadcast(session.Code(), newMessage(eventGameStart, GameStartPayload{Room: snap, Message: "Game started!"}))
	}

	log.Info("room created", "code", session.Code())

	return nil
}

func (that *Server) handleJoinRoom(client *Client, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom", "connectionID", client.id)

	if client.roomCode != "" {
		return that.sendError(client, msg.Action, "already in a room")
	}

	var payload JoinRoomPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return that.sendError(client, msg.Action, "malformed payload")
	}

	player := &entity.Player{
		ConnectionID: client.id,
		Identity:     client.identity,
		Name:         client.displayName("Player 2"),
	}

	session, snap, err := that.registry.Join(payload.RoomCode, player)
	if err != nil {
		log.Info("failed to join room", "code", payload.RoomCode, "error", err)
		return that.sendError(client, msg.Action, err.Error())
	}

	client.roomCode = session.Code()
	that.hub.Add(session.Code(), client)

	client.Send(newMessage(msg.Action, AckPayload{Success: true, RoomCode: session.Code(), Room: &snap}))
	that.hub.Broadcast(session.Code(), newMessage(eventGameStart, GameStartPayload{Room: snap, Message: "Game started!"}))

	log.Info("player joined room", "code", session.Code())

	return nil
}

func (that *Server) handleMakeMove(client *Client, msg *Message) error {
	log := that.logger.With("method", "handleMakeMove", "connectionID", client.id)

	var payload MovePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return that.sendError(client, msg.Action, "malformed payload")
	}

	session, err := that.registry.Find(payload.RoomCode)
	if err != nil {
		return that.sendError(client, msg.Action, err.Error())
	}

	// Broadcasting from inside the move's critical step keeps room events
	// in the exact order the state machine produced them.
	result, err := session.SubmitMove(client.id, payload.Position, func(res *game.TurnResult) {
		that.broadcastMoves(session.Code(), res)
	})
	if err != nil {
		return that.sendError(client, msg.Action, err.Error())
	}

	client.Send(newMessage(msg.Action, AckPayload{Success: true}))

	if result.Outcome != nil {
		that.recordOutcomes(result)
		log.Info("game finished", "code", session.Code(), "draw", result.Outcome.Draw, "winner", result.Outcome.Winner)
	}

	return nil
}

// broadcastMoves replays the accepted moves (two in a vs-engine room) as
// move-made events, with the terminal one promoted to game-over. Events
// go out in the order the state machine produced them.
func (that *Server) broadcastMoves(code string, result *game.TurnResult) {
	board := result.Board
	for _, move := range result.Moves {
		board[move.Position] = entity.EmptyCell
	}

	for i, move := range result.Moves {
		board[move.Position] = move.Mark
		last := i == len(result.Moves)-1

		if last && result.Outcome != nil {
			payload := GameOverPayload{
				IsDraw:      result.Outcome.Draw,
				WinningLine: result.Outcome.Line,
				Board:       board,
			}
			if !result.Outcome.Draw {
				payload.Winner = winnerOf(result)
			}
			that.hub.Broadcast(code, newMessage(eventGameOver, payload))
			continue
		}

		turn := result.Turn
		if !last {
			turn = result.Moves[i+1].Mark
		}

		that.hub.Broadcast(code, newMessage(eventMoveMade, MoveMadePayload{
			Position: move.Position,
			Mark:     move.Mark,
			Player:   move.Actor,
			Board:    board,
			Turn:     turn,
		}))
	}
}

// winnerOf resolves the winning seat. The engine is never seated, so an
// engine win is reported through the actor of the terminal move.
func winnerOf(result *game.TurnResult) *entity.Player {
	for i := range result.Players {
		if result.Players[i].Mark == result.Outcome.Winner {
			return &result.Players[i]
		}
	}

	last := result.Moves[len(result.Moves)-1]

	return &entity.Player{Name: last.Actor, Mark: result.Outcome.Winner}
}

// recordOutcomes fires stats persistence for every seated player with a
// known identity. It is fire-and-forget relative to gameplay.
func (that *Server) recordOutcomes(result *game.TurnResult) {
	players := result.Players
	outcome := result.Outcome

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		for i := range players {
			player := players[i]
			if player.Identity == nil {
				continue
			}

			res := service.ResultDraw
			if !outcome.Draw {
				res = service.ResultLoss
				if player.Mark == outcome.Winner {
					res = service.ResultWin
				}
			}

			that.stats.RecordOutcome(ctx, player.Identity, res)
		}
	}()
}

func (that *Server) handleRequestRematch(client *Client, msg *Message) error {
	session, err := that.sessionFor(client, msg)
	if err != nil {
		return that.sendError(client, msg.Action, err.Error())
	}

	requester, started, err := session.RequestRematch(client.id)
	if err != nil {
		return that.sendError(client, msg.Action, err.Error())
	}

	client.Send(newMessage(msg.Action, AckPayload{Success: true}))

	if started {
		snap := session.Snapshot()
		that.hub.Broadcast(session.Code(), newMessage(eventGameStart, GameStartPayload{Room: snap, Message: "Rematch started!"}))
		return nil
	}

	that.hub.BroadcastExcept(session.Code(), client, newMessage(eventRematchRequested, RematchRequestedPayload{From: requester.Name}))

	return nil
}

func (that *Server) handleAcceptRematch(client *Client, msg *Message) error {
	session, err := that.sessionFor(client, msg)
	if err != nil {
		return that.sendError(client, msg.Action, err.Error())
	}

	snap, err := session.AcceptRematch(client.id)
	if err != nil {
		return that.sendError(client, msg.Action, err.Error())
	}

	client.Send(newMessage(msg.Action, AckPayload{Success: true}))
	that.hub.Broadcast(session.Code(), newMessage(eventGameStart, GameStartPayload{Room: snap, Message: "Rematch started!"}))

	return nil
}

func (that *Server) handleLeaveRoom(client *Client, msg *Message) error {
	that.leaveCurrentRoom(client)
	client.Send(newMessage(msg.Action, AckPayload{Success: true}))

	return nil
}

// leaveCurrentRoom clears both bindings and notifies a remaining player.
// Shared by the explicit leave-room action and transport disconnects.
func (that *Server) leaveCurrentRoom(client *Client) {
	if client.roomCode == "" {
		return
	}

	code := client.roomCode
	client.roomCode = ""
	that.hub.Remove(code, client)

	player, snap, err := that.registry.Leave(code, client.id)
	if err != nil {
		that.logger.Info("failed to leave room", "code", code, "connectionID", client.id, "error", err)
		return
	}

	if snap != nil {
		that.hub.Broadcast(code, newMessage(eventPlayerLeft, PlayerLeftPayload{Player: player.Name, Room: *snap}))
	}
}

func (that *Server) handleChatMessage(client *Client, msg *Message) error {
	var payload ChatPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return that.sendError(client, msg.Action, "malformed payload")
	}

	if client.roomCode == "" || client.roomCode != payload.RoomCode {
		return that.sendError(client, msg.Action, "you are not in this room")
	}

	that.hub.Broadcast(client.roomCode, newMessage(actionChatMessage, ChatBroadcastPayload{
		From:      client.displayName("Anonymous"),
		Text:      payload.Text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}))

	return nil
}

// sessionFor resolves the room either from the payload or from the
// connection's own binding.
func (that *Server) sessionFor(client *Client, msg *Message) (*game.Session, error) {
	var payload RoomPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return nil, fmt.Errorf("malformed payload")
		}
	}

	code := payload.RoomCode
	if code == "" {
		code = client.roomCode
	}

	return that.registry.Find(code)
}

func (that *Server) sendError(client *Client, action, message string) error {
	client.Send(newMessage(action, AckPayload{Success: false, Error: message}))
	return nil
}
