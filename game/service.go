package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Orbasker/Whist/domain"
	"github.com/Orbasker/Whist/scoring"
)

// Service is the game state machine. It owns every transition of a game's
// persisted state; nothing else writes games or rounds.
type Service struct {
	games  GameRepo
	rounds RoundRepo
	locks  *keyedMutex
	log    zerolog.Logger
}

func NewService(games GameRepo, rounds RoundRepo, log zerolog.Logger) *Service {
	return &Service{
		games:  games,
		rounds: rounds,
		locks:  newKeyedMutex(),
		log:    log,
	}
}

// GameUpdate carries the fields a caller may change on an existing game.
// Everything else is immutable after creation.
type GameUpdate struct {
	Scores       *[domain.Seats]int
	CurrentRound *int
	Status       *domain.GameStatus
	Name         *string
}

func (s *Service) CreateGame(ctx context.Context, players []string, name, ownerID *string) (domain.Game, error) {
	if len(players) != domain.Seats {
		return domain.Game{}, fmt.Errorf("%w: expected %d player names, got %d", domain.ErrInvalidPlayers, domain.Seats, len(players))
	}
	for i, p := range players {
		if strings.TrimSpace(p) == "" {
			return domain.Game{}, fmt.Errorf("%w: seat %d has an empty name", domain.ErrInvalidPlayers, i)
		}
	}

	g := domain.Game{
		CurrentRound: 1,
		Status:       domain.GameStatusActive,
		GameMode:     domain.GameModeScoringOnly,
		OwnerID:      ownerID,
		Name:         name,
	}
	copy(g.Players[:], players)

	created, err := s.games.CreateGame(ctx, g)
	if err != nil {
		return domain.Game{}, err
	}
	s.log.Info().Str("game_id", created.ID).Msg("game created")
	return created, nil
}

func (s *Service) GetGame(ctx context.Context, id string) (domain.Game, error) {
	return s.games.GetGame(ctx, id)
}

func (s *Service) GetGameByShareCode(ctx context.Context, code string) (domain.Game, error) {
	return s.games.GetGameByShareCode(ctx, code)
}

func (s *Service) ListGames(ctx context.Context, userID string) ([]domain.Game, error) {
	return s.games.ListGamesByUser(ctx, userID)
}

func (s *Service) GetRounds(ctx context.Context, gameID string) ([]domain.Round, error) {
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.rounds.GetRoundsByGame(ctx, gameID)
}

// UpdateGame applies the mutable subset of fields and persists the result.
func (s *Service) UpdateGame(ctx context.Context, gameID string, update GameUpdate) (domain.Game, error) {
	s.locks.Lock(gameID)
	defer s.locks.Unlock(gameID)

	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}

	if update.Scores != nil {
		g.Scores = *update.Scores
	}
	if update.CurrentRound != nil {
		g.CurrentRound = *update.CurrentRound
	}
	if update.Status != nil {
		g.Status = *update.Status
	}
	if update.Name != nil {
		g.Name = update.Name
	}

	return s.games.UpdateGame(ctx, g)
}

// DeleteGame removes a game; its rounds go with it (cascade at the storage
// layer). Delete is all or nothing.
func (s *Service) DeleteGame(ctx context.Context, gameID string) error {
	s.locks.Lock(gameID)
	defer s.locks.Unlock(gameID)

	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return err
	}
	if err := s.games.DeleteGame(ctx, gameID); err != nil {
		return err
	}
	s.log.Info().Str("game_id", gameID).Msg("game deleted")
	return nil
}

// JoinSeat puts userID into the given seat. A seat that already holds any
// identity is a conflict, even when it is the joiner's own: joins are not
// idempotent.
func (s *Service) JoinSeat(ctx context.Context, gameID, userID string, seat int) (domain.Game, error) {
	if seat < 0 || seat >= domain.Seats {
		return domain.Game{}, fmt.Errorf("%w: %d", domain.ErrInvalidSeat, seat)
	}

	s.locks.Lock(gameID)
	defer s.locks.Unlock(gameID)

	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}
	if g.PlayerUserIDs[seat] != nil {
		if *g.PlayerUserIDs[seat] == userID {
			return domain.Game{}, fmt.Errorf("%w: seat %d", domain.ErrAlreadyJoined, seat)
		}
		return domain.Game{}, fmt.Errorf("%w: seat %d", domain.ErrSeatTaken, seat)
	}

	g.PlayerUserIDs[seat] = &userID
	updated, err := s.games.UpdateGame(ctx, g)
	if err != nil {
		return domain.Game{}, err
	}
	s.log.Info().Str("game_id", gameID).Int("seat", seat).Msg("seat joined")
	return updated, nil
}

// SubmitBids is the pre-flight validation step of the bidding phase. It does
// not mutate persisted state; the round is only committed when tricks come
// in. The returned mode is a preview derived from the same total-bids rule
// the round manager applies later.
func (s *Service) SubmitBids(ctx context.Context, gameID string, bids []int, trumpSuit *string) (domain.Game, domain.RoundMode, int, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.Game{}, "", 0, err
	}
	if g.Status != domain.GameStatusActive {
		return domain.Game{}, "", 0, fmt.Errorf("%w: %s", domain.ErrGameNotActive, g.Status)
	}
	if err := ValidateBids(bids); err != nil {
		return domain.Game{}, "", 0, err
	}

	totalBids := 0
	for _, bid := range bids {
		totalBids += bid
	}
	return g, scoring.Mode(totalBids), totalBids, nil
}

// SubmitTricks commits a round: it validates the full submission, folds the
// round's scores into the game's running totals, advances the round counter
// and persists round and game in one atomic write. The per-game lock makes
// the read-modify-write sequence atomic with respect to concurrent
// submissions; the single-write commit means a persistence failure leaves
// neither record behind.
func (s *Service) SubmitTricks(ctx context.Context, gameID string, tricks, bids []int, trumpSuit, createdBy *string) (domain.Round, domain.Game, error) {
	s.locks.Lock(gameID)
	defer s.locks.Unlock(gameID)

	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.Round{}, domain.Game{}, err
	}
	if g.Status != domain.GameStatusActive {
		return domain.Round{}, domain.Game{}, fmt.Errorf("%w: %s", domain.ErrGameNotActive, g.Status)
	}

	round, err := buildRound(g, g.CurrentRound, bids, tricks, trumpSuit, createdBy)
	if err != nil {
		return domain.Round{}, domain.Game{}, err
	}

	for i := 0; i < domain.Seats; i++ {
		g.Scores[i] += round.Scores[i]
	}
	g.CurrentRound++

	saved, updated, err := s.rounds.CommitRound(ctx, round, g)
	if err != nil {
		return domain.Round{}, domain.Game{}, err
	}

	s.log.Info().
		Str("game_id", gameID).
		Int("round", saved.RoundNumber).
		Str("mode", string(saved.RoundMode)).
		Msg("round committed")
	return saved, updated, nil
}

// ShareGame flips the game into shared mode and mints its share code.
func (s *Service) ShareGame(ctx context.Context, gameID, userID string) (domain.Game, error) {
	s.locks.Lock(gameID)
	defer s.locks.Unlock(gameID)

	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return domain.Game{}, err
	}
	if g.OwnerID == nil || *g.OwnerID != userID {
		return domain.Game{}, domain.ErrNotGameOwner
	}

	if g.ShareCode == nil {
		code := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		g.ShareCode = &code
	}
	g.IsShared = true

	return s.games.UpdateGame(ctx, g)
}
