// Package invite implements the invitation/seating gate: self-contained
// signed seat invitations, their email delivery, and the accept flow.
package invite

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Orbasker/Whist/domain"
)

// Expiry is the fixed validity window of an invitation.
const Expiry = 7 * 24 * time.Hour

const tokenType = "game_invitation"

// Invitation is the payload embedded in a token. Validity is decided by
// signature and expiry alone; nothing here is looked up in storage.
type Invitation struct {
	GameID       string
	InviterID    string
	InviteeEmail string
	PlayerIndex  int
	IssuedAt     time.Time
	ExpiresAt    time.Time
}

type invitationClaims struct {
	TokenType    string `json:"type"`
	GameID       string `json:"game_id"`
	InviterID    string `json:"inviter_id"`
	InviteeEmail string `json:"invitee_email"`
	PlayerIndex  int    `json:"player_index"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies invitation tokens with a shared secret,
// separate from the session-token secret.
type TokenManager struct {
	secretKey []byte
}

func NewTokenManager(secretKey string) *TokenManager {
	return &TokenManager{secretKey: []byte(secretKey)}
}

// Issue embeds the invitation fields plus issued-at and the fixed 7-day
// expiry, signed HS256.
func (m *TokenManager) Issue(now time.Time, gameID, inviterID, inviteeEmail string, playerIndex int) (string, error) {
	claims := invitationClaims{
		TokenType:    tokenType,
		GameID:       gameID,
		InviterID:    inviterID,
		InviteeEmail: inviteeEmail,
		PlayerIndex:  playerIndex,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(Expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing invitation token: %w", err)
	}
	return signed, nil
}

// Validate returns the embedded payload of a well-signed, unexpired token.
// Expired tokens and malformed/forged ones fail with distinct errors so the
// caller can message them apart.
func (m *TokenManager) Validate(tokenString string) (Invitation, error) {
	token, err := jwt.ParseWithClaims(tokenString, &invitationClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvitationInvalid
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Invitation{}, domain.ErrInvitationExpired
		}
		return Invitation{}, domain.ErrInvitationInvalid
	}

	claims, ok := token.Claims.(*invitationClaims)
	if !ok || !token.Valid || claims.TokenType != tokenType {
		return Invitation{}, domain.ErrInvitationInvalid
	}

	return Invitation{
		GameID:       claims.GameID,
		InviterID:    claims.InviterID,
		InviteeEmail: claims.InviteeEmail,
		PlayerIndex:  claims.PlayerIndex,
		IssuedAt:     claims.IssuedAt.Time,
		ExpiresAt:    claims.ExpiresAt.Time,
	}, nil
}
