package game

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/apperror"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/engine"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// codeRetries bounds regeneration when a freshly drawn code collides
	// with a live room.
	codeRetries = 5

	engineName = "Computer"
)

var ErrCodeSpaceExhausted = errors.New("could not generate an unused room code")

// Registry owns the live sessions, keyed by room code. Only the registry
// creates or deletes entries; room state itself is guarded per session.
type Registry struct {
	logger *slog.Logger
	engine mover

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(logger *slog.Logger, eng mover) *Registry {
	return &Registry{
		logger:   logger.With("component", "registry"),
		engine:   eng,
		sessions: make(map[string]*Session),
	}
}

// Create opens a room with the host seated as X. A vs-engine room starts
// playing immediately; a two-player room waits for a join.
func (that *Registry) Create(host *entity.Player, vsEngine bool, tier engine.Tier) (*Session, error) {
	host.Mark = entity.MarkX

	that.mu.Lock()
	defer that.mu.Unlock()

	code, err := that.newCodeLocked()
	if err != nil {
		return nil, err
	}

	room := entity.NewRoom(code)
	room.Players = []*entity.Player{host}
	if vsEngine {
		room.VsEngine = true
		room.Status = entity.StatusPlaying
	}

	session := newSession(room, that.engine, tier)
	that.sessions[code] = session

	that.logger.Info("room created", "code", code, "vsEngine", vsEngine)

	return session, nil
}

// Find resolves a room code, case-insensitively.
func (that *Registry) Find(code string) (*Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, code)
	}

	return session, nil
}

// Join seats the player in the room and returns a snapshot for the
// game-start broadcast.
func (that *Registry) Join(code string, player *entity.Player) (*Session, entity.Room, error) {
	session, err := that.Find(code)
	if err != nil {
		return nil, entity.Room{}, err
	}

	snap, err := session.join(player)
	if err != nil {
		return nil, entity.Room{}, err
	}

	return session, snap, nil
}

// Leave removes the player from the room. An emptied room is destroyed;
// otherwise the departed player and a snapshot are returned so the caller
// can notify the remaining member.
func (that *Registry) Leave(code, connectionID string) (*entity.Player, *entity.Room, error) {
	session, err := that.Find(code)
	if err != nil {
		return nil, nil, err
	}

	player, empty, err := session.leave(connectionID)
	if err != nil {
		return nil, nil, err
	}

	if empty {
		that.mu.Lock()
		delete(that.sessions, session.Code())
		that.mu.Unlock()

		that.logger.Info("room destroyed", "code", session.Code())

		return player, nil, nil
	}

	snap := session.Snapshot()

	return player, &snap, nil
}

// newCodeLocked draws 6-character codes until one is unused, within the
// retry bound.
func (that *Registry) newCodeLocked() (string, error) {
	for attempt := 0; attempt < codeRetries; attempt++ {
		code, err := generateCode()
		if err != nil {
			return "", err
		}

		if _, taken := that.sessions[code]; !taken {
			return code, nil
		}
	}

	return "", ErrCodeSpaceExhausted
}

func generateCode() (string, error) {
	var sb strings.Builder
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("failed to draw room code character: %w", err)
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}

	return sb.String(), nil
}
