package domain

import "errors"

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrGameNotActive = errors.New("game is not active")

	ErrInvalidPlayers = errors.New("invalid players")

	ErrInvalidBids   = errors.New("invalid bids")
	ErrInvalidTricks = errors.New("invalid tricks")
	ErrInvalidSeat   = errors.New("invalid seat index")

	ErrSeatTaken     = errors.New("seat already taken")
	ErrAlreadyJoined = errors.New("already joined this seat")

	ErrNotGameOwner = errors.New("only the game owner may do that")

	// Auth token errors, kept apart from invitation token errors so the
	// handlers can message them differently.
	ErrExpiredToken          = errors.New("expired token")
	ErrInvalidTokenSignature = errors.New("invalid token signature")
	ErrInvalidSigningAlg     = errors.New("invalid token signing algorithm")
	ErrCorruptedToken        = errors.New("corrupted token")

	ErrInvitationExpired = errors.New("invitation expired")
	ErrInvitationInvalid = errors.New("invitation invalid")

	UnexpectedDatabaseError = errors.New("unexpected database error")
)
