package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testKey = "12345678901234567890123456789012"

func TestPasetoMaker(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	token, payload, err := maker.CreateToken(7, "bishal", AccessToken, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := maker.VertifyToken(token)
	require.NoError(t, err)
	require.Equal(t, payload.ID, got.ID)
	require.Equal(t, uint(7), got.UserID)
	require.Equal(t, "bishal", got.Username)
	require.Equal(t, AccessToken, got.TokenType)
	require.WithinDuration(t, payload.ExpiredAt, got.ExpiredAt, time.Second)
}

func TestPasetoMakerExpired(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)

	token, _, err := maker.CreateToken(7, "bishal", RefreshToken, -time.Minute)
	require.NoError(t, err)

	payload, err := maker.VertifyToken(token)
	require.ErrorIs(t, err, ErrExpiredToken)
	require.True(t, IsExpired(err))
	require.NotNil(t, payload)
}

func TestPasetoMakerWrongKey(t *testing.T) {
	maker, err := NewPasetoMaker(testKey)
	require.NoError(t, err)
	other, err := NewPasetoMaker("abcdefghijabcdefghijabcdefghijab")
	require.NoError(t, err)

	token, _, err := maker.CreateToken(1, "u", AccessToken, time.Minute)
	require.NoError(t, err)

	_, err = other.VertifyToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = maker.VertifyToken("v2.local.garbage")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewPasetoMakerKeySize(t *testing.T) {
	_, err := NewPasetoMaker("short")
	require.Error(t, err)
}
