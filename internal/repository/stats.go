package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard"

// PlayerStats is one user's lifetime record.
type PlayerStats struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Wins     int64  `json:"wins"`
	Losses   int64  `json:"losses"`
	Draws    int64  `json:"draws"`
	Games    int64  `json:"games"`
	Points   int64  `json:"points"`
	Rank     int    `json:"rank,omitempty"`
}

type StatsRepository interface {
	Increment(ctx context.Context, userID int64, username, field string, points int64) error
	GetByUserID(ctx context.Context, userID int64) (*PlayerStats, error)
	Leaderboard(ctx context.Context, limit int64) ([]PlayerStats, error)
}

type dbStats struct {
	client *redis.Client
}

func NewStatsRepository(client *redis.Client) StatsRepository {
	return &dbStats{
		client: client,
	}
}

func statsKey(userID int64) string {
	return "stats:" + strconv.FormatInt(userID, 10)
}

// Increment bumps one result counter and the games total on the user's
// hash, and moves the user on the leaderboard sorted set. Scores are
// floored at zero so a losing streak can't go negative.
func (that *dbStats) Increment(ctx context.Context, userID int64, username, field string, points int64) error {
	key := statsKey(userID)

	pipe := that.client.TxPipeline()
	pipe.HSet(ctx, key, "username", username)
	pipe.HIncrBy(ctx, key, field, 1)
	pipe.HIncrBy(ctx, key, "games", 1)
	score := pipe.ZIncrBy(ctx, leaderboardKey, float64(points), strconv.FormatInt(userID, 10))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}

	if score.Val() < 0 {
		if err := that.client.ZAdd(ctx, leaderboardKey, redis.Z{Score: 0, Member: strconv.FormatInt(userID, 10)}).Err(); err != nil {
			return fmt.Errorf("failed to floor leaderboard score: %w", err)
		}
	}

	return nil
}

func (that *dbStats) GetByUserID(ctx context.Context, userID int64) (*PlayerStats, error) {
	fields, err := that.client.HGetAll(ctx, statsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	points, err := that.client.ZScore(ctx, leaderboardKey, strconv.FormatInt(userID, 10)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to get leaderboard score: %w", err)
	}

	stats := hashToStats(userID, fields)
	stats.Points = int64(points)

	return stats, nil
}

// Leaderboard returns the top entries by points, best first, with ranks
// assigned from 1.
func (that *dbStats) Leaderboard(ctx context.Context, limit int64) ([]PlayerStats, error) {
	entries, err := that.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	board := make([]PlayerStats, 0, len(entries))
	for i, entry := range entries {
		member, ok := entry.Member.(string)
		if !ok {
			continue
		}

		userID, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}

		fields, err := that.client.HGetAll(ctx, statsKey(userID)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get stats for user %d: %w", userID, err)
		}

		stats := hashToStats(userID, fields)
		stats.Points = int64(entry.Score)
		stats.Rank = i + 1

		board = append(board, *stats)
	}

	return board, nil
}

func hashToStats(userID int64, fields map[string]string) *PlayerStats {
	parse := func(name string) int64 {
		n, _ := strconv.ParseInt(fields[name], 10, 64)
		return n
	}

	return &PlayerStats{
		UserID:   userID,
		Username: fields["username"],
		Wins:     parse("wins"),
		Losses:   parse("losses"),
		Draws:    parse("draws"),
		Games:    parse("games"),
	}
}
