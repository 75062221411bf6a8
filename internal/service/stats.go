package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/repository"
)

// Result of one finished game, from a single player's perspective.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultDraw Result = "draw"
)

// Point deltas per result. A loss can't push a score below zero; the
// repository floors it.
const (
	pointsWin  = 10
	pointsLoss = -3
	pointsDraw = 2
)

type StatsService interface {
	// RecordOutcome persists one player's result. Failures are logged and
	// swallowed: gameplay must never notice a persistence problem.
	RecordOutcome(ctx context.Context, identity *entity.Identity, result Result)

	Leaderboard(ctx context.Context, limit int64) ([]repository.PlayerStats, error)
	PlayerStats(ctx context.Context, userID int64) (*repository.PlayerStats, error)
}

type statsService struct {
	logger    *slog.Logger
	statsRepo repository.StatsRepository
}

func NewStatsService(logger *slog.Logger, statsRepo repository.StatsRepository) StatsService {
	return &statsService{
		logger:    logger.With("component", "stats"),
		statsRepo: statsRepo,
	}
}

func (that *statsService) RecordOutcome(ctx context.Context, identity *entity.Identity, result Result) {
	if identity == nil {
		return
	}

	var field string
	var points int64

	switch result {
	case ResultWin:
		field, points = "wins", pointsWin
	case ResultLoss:
		field, points = "losses", pointsLoss
	case ResultDraw:
		field, points = "draws", pointsDraw
	default:
		that.logger.Error("unknown game result", "result", result)
		return
	}

	if err := that.statsRepo.Increment(ctx, identity.UserID, identity.Username, field, points); err != nil {
		that.logger.Error("failed to record outcome", "userID", identity.UserID, "result", result, "error", err)
	}
}

func (that *statsService) Leaderboard(ctx context.Context, limit int64) ([]repository.PlayerStats, error) {
	board, err := that.statsRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	return board, nil
}

func (that *statsService) PlayerStats(ctx context.Context, userID int64) (*repository.PlayerStats, error) {
	stats, err := that.statsRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player stats: %w", err)
	}

	return stats, nil
}
