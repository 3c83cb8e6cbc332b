package token

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Payload is the claim set carried inside every token.
type Payload struct {
	ID        uuid.UUID `json:"id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	TokenType TokenType `json:"token_type"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

func NewPayload(userID uint, username string, tokenType TokenType, duration time.Duration) (*Payload, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Payload{
		ID:        id,
		UserID:    userID,
		Username:  username,
		TokenType: tokenType,
		IssuedAt:  now,
		ExpiredAt: now.Add(duration),
	}, nil
}

func (p *Payload) Valid() error {
	if time.Now().UTC().After(p.ExpiredAt) {
		return ErrExpiredToken
	}
	return nil
}

// Maker issues and verifies tokens.
type Maker interface {
	CreateToken(userID uint, username string, tokenType TokenType, duration time.Duration) (string, *Payload, error)
	VertifyToken(token string) (*Payload, error)
}
