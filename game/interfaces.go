package game

import (
	"context"

	"github.com/Orbasker/Whist/domain"
)

// GameRepo is the persistence collaborator for games. Implementations only
// need atomic single-record writes; the service serializes per game id on
// top of that.
type GameRepo interface {
	CreateGame(ctx context.Context, g domain.Game) (domain.Game, error)
	GetGame(ctx context.Context, id string) (domain.Game, error)
	GetGameByShareCode(ctx context.Context, code string) (domain.Game, error)
	ListGamesByUser(ctx context.Context, userID string) ([]domain.Game, error)
	UpdateGame(ctx context.Context, g domain.Game) (domain.Game, error)
	DeleteGame(ctx context.Context, id string) error
}

// RoundRepo is the persistence collaborator for rounds. Rounds are append
// only and exist solely as the durable half of a commit: CommitRound persists
// a round together with its game's advanced state in one atomic write, so
// readers see both or neither, never a round beside a stale game.
type RoundRepo interface {
	CommitRound(ctx context.Context, r domain.Round, g domain.Game) (domain.Round, domain.Game, error)
	GetRoundsByGame(ctx context.Context, gameID string) ([]domain.Round, error)
}
