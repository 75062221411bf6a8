package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/apperror"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/repository"
)

const defaultLeaderboardLimit = 10

type userRepo interface {
	Create(ctx context.Context, username string) (*entity.Identity, error)
	FindByUsername(ctx context.Context, username string) (*entity.Identity, error)
}

type authService interface {
	GenerateToken(identity *entity.Identity) (string, error)
}

type statsService interface {
	Leaderboard(ctx context.Context, limit int64) ([]repository.PlayerStats, error)
	PlayerStats(ctx context.Context, userID int64) (*repository.PlayerStats, error)
}

type Handlers struct {
	logger *slog.Logger

	users userRepo
	auth  authService
	stats statsService
}

func NewHandlers(logger *slog.Logger, users userRepo, auth authService, stats statsService) *Handlers {
	return &Handlers{
		logger: logger.With("component", "rest"),
		users:  users,
		auth:   auth,
		stats:  stats,
	}
}

func (that *Handlers) Ping(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "pong")
}

type guestLoginRequest struct {
	Username string `json:"username"`
}

// GuestLogin registers (or resolves) a display name and mints a token the
// WebSocket transport accepts as an identity credential.
func (that *Handlers) GuestLogin(ctx echo.Context) error {
	log := that.logger.With("method", "GuestLogin")

	var req guestLoginRequest
	if err := ctx.Bind(&req); err != nil || req.Username == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "username is required"})
	}

	reqCtx := ctx.Request().Context()

	identity, err := that.users.FindByUsername(reqCtx, req.Username)
	if errors.Is(err, apperror.ErrNotFound) {
		identity, err = that.users.Create(reqCtx, req.Username)
	}
	if err != nil {
		log.Error("failed to resolve user", "username", req.Username, "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve user"})
	}

	token, err := that.auth.GenerateToken(identity)
	if err != nil {
		log.Error("failed to generate token", "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to generate token"})
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"token":    token,
		"user_id":  identity.UserID,
		"username": identity.Username,
	})
}

func (that *Handlers) Leaderboard(ctx echo.Context) error {
	log := that.logger.With("method", "Leaderboard")

	limit := int64(defaultLeaderboardLimit)
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = parsed
	}

	board, err := that.stats.Leaderboard(ctx.Request().Context(), limit)
	if err != nil {
		log.Error("failed to load leaderboard", "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load leaderboard"})
	}

	return ctx.JSON(http.StatusOK, board)
}

func (that *Handlers) PlayerStats(ctx echo.Context) error {
	log := that.logger.With("method", "PlayerStats")

	userID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	stats, err := that.stats.PlayerStats(ctx.Request().Context(), userID)
	if err != nil {
		log.Error("failed to load player stats", "userID", userID, "error", err)
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load player stats"})
	}

	return ctx.JSON(http.StatusOK, stats)
}
