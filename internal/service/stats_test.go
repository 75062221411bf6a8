package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/repository"
)

type recordedIncrement struct {
	userID   int64
	username string
	field    string
	points   int64
}

type fakeStatsRepo struct {
	increments []recordedIncrement
	failWith   error
	board      []repository.PlayerStats
}

func (that *fakeStatsRepo) Increment(_ context.Context, userID int64, username, field string, points int64) error {
	if that.failWith != nil {
		return that.failWith
	}
	that.increments = append(that.increments, recordedIncrement{userID, username, field, points})
	return nil
}

func (that *fakeStatsRepo) GetByUserID(_ context.Context, userID int64) (*repository.PlayerStats, error) {
	return &repository.PlayerStats{UserID: userID}, nil
}

func (that *fakeStatsRepo) Leaderboard(_ context.Context, _ int64) ([]repository.PlayerStats, error) {
	return that.board, nil
}

func newTestStatsService(repo *fakeStatsRepo) StatsService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	return NewStatsService(logger, repo)
}

func TestStatsService_RecordOutcome(t *testing.T) {
	t.Run("Results map to the right counters and points", func(t *testing.T) {
		// Given: an identified player
		repo := &fakeStatsRepo{}
		stats := newTestStatsService(repo)
		identity := &entity.Identity{UserID: 7, Username: "alice"}

		// When: recording a win, a loss and a draw
		stats.RecordOutcome(context.Background(), identity, ResultWin)
		stats.RecordOutcome(context.Background(), identity, ResultLoss)
		stats.RecordOutcome(context.Background(), identity, ResultDraw)

		// Then: each result lands on its field with its point delta
		require.Len(t, repo.increments, 3)
		assert.Equal(t, recordedIncrement{7, "alice", "wins", 10}, repo.increments[0])
		assert.Equal(t, recordedIncrement{7, "alice", "losses", -3}, repo.increments[1])
		assert.Equal(t, recordedIncrement{7, "alice", "draws", 2}, repo.increments[2])
	})

	t.Run("Anonymous players are skipped", func(t *testing.T) {
		repo := &fakeStatsRepo{}
		stats := newTestStatsService(repo)

		stats.RecordOutcome(context.Background(), nil, ResultWin)

		assert.Empty(t, repo.increments)
	})

	t.Run("Persistence failures are swallowed", func(t *testing.T) {
		// Given: a repository that always fails
		repo := &fakeStatsRepo{failWith: errors.New("redis is down")}
		stats := newTestStatsService(repo)

		// When/Then: recording does not panic or surface the error
		stats.RecordOutcome(context.Background(), &entity.Identity{UserID: 7, Username: "alice"}, ResultWin)
	})
}
