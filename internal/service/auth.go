package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Omkar2515/Tic-Tac-Toe/internal/entity"
)

const tokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// AuthService is the identity-verification collaborator: it mints tokens
// for registered users and resolves a presented credential back to an
// identity.
type AuthService interface {
	GenerateToken(identity *entity.Identity) (string, error)
	VerifyToken(token string) (*entity.Identity, error)
}

type authService struct {
	secretKey []byte
}

func NewAuthService(secretKey string) AuthService {
	return &authService{
		secretKey: []byte(secretKey),
	}
}

func (that *authService) GenerateToken(identity *entity.Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", identity.UserID),
		"name": identity.Username,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(that.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (that *authService) VerifyToken(tokenString string) (*entity.Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, token.Header["alg"])
		}
		return that.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	name, _ := claims["name"].(string)

	var userID int64
	if _, err = fmt.Sscanf(sub, "%d", &userID); err != nil {
		return nil, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, sub)
	}

	return &entity.Identity{UserID: userID, Username: name}, nil
}
