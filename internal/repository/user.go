package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/apperror"
	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, username string) (*entity.Identity, error)
	FindByUsername(ctx context.Context, username string) (*entity.Identity, error)
	FindByID(ctx context.Context, id int64) (*entity.Identity, error)
}

type userRepository struct {
	conn *sql.DB
}

func NewUserRepository(conn *sql.DB) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (that *userRepository) Create(ctx context.Context, username string) (*entity.Identity, error) {
	query := `INSERT INTO users (username) VALUES (?)`

	result, err := that.conn.ExecContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("can't save user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("can't read new user id: %w", err)
	}

	return &entity.Identity{UserID: id, Username: username}, nil
}

func (that *userRepository) FindByUsername(ctx context.Context, username string) (*entity.Identity, error) {
	query := `SELECT id, username FROM users WHERE username = ?`

	var identity entity.Identity

	err := that.conn.QueryRowContext(ctx, query, username).Scan(&identity.UserID, &identity.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return &identity, nil
}

func (that *userRepository) FindByID(ctx context.Context, id int64) (*entity.Identity, error) {
	query := `SELECT id, username FROM users WHERE id = ?`

	var identity entity.Identity

	err := that.conn.QueryRowContext(ctx, query, id).Scan(&identity.UserID, &identity.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't find user: %w", err)
	}

	return &identity, nil
}
