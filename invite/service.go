package invite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Orbasker/Whist/domain"
)

// GameDirectory is the slice of the game state machine the gate needs:
// lookups and seat joins.
type GameDirectory interface {
	GetGame(ctx context.Context, id string) (domain.Game, error)
	JoinSeat(ctx context.Context, gameID, userID string, seat int) (domain.Game, error)
}

// Mailer delivers invitation emails. A delivery failure is reported, never
// escalated.
type Mailer interface {
	SendInvitation(ctx context.Context, email, token string, gameName, inviterName *string) error
}

type Service struct {
	games  GameDirectory
	tokens *TokenManager
	mailer Mailer
	log    zerolog.Logger
}

func NewService(games GameDirectory, tokens *TokenManager, mailer Mailer, log zerolog.Logger) *Service {
	return &Service{games: games, tokens: tokens, mailer: mailer, log: log}
}

// InviteResult reports how a batch of invitations went. Tokens are returned
// so the owner can hand out links directly when email delivery fails.
type InviteResult struct {
	Sent   int      `json:"sent"`
	Total  int      `json:"total"`
	Tokens []string `json:"tokens"`
}

// Info is the public view of an invitation, shown before acceptance.
type Info struct {
	GameID      string  `json:"game_id"`
	GameName    *string `json:"game_name"`
	InviterID   string  `json:"inviter_id"`
	PlayerIndex int     `json:"player_index"`
	ExpiresAt   int64   `json:"expires_at"`
}

// AcceptResult is returned once an invitee has taken their seat.
type AcceptResult struct {
	GameID      string `json:"game_id"`
	Joined      bool   `json:"joined"`
	PlayerIndex int    `json:"player_index"`
	Message     string `json:"message"`
}

// CreateInvitations issues one token per email and mails it out. Only the
// game owner may invite; target seats must be free at issue time. Email
// failures reduce the sent count but never abort the batch.
func (s *Service) CreateInvitations(ctx context.Context, gameID, ownerID string, emails []string, seatIndices []int) (InviteResult, error) {
	g, err := s.games.GetGame(ctx, gameID)
	if err != nil {
		return InviteResult{}, err
	}
	if g.OwnerID == nil || *g.OwnerID != ownerID {
		return InviteResult{}, domain.ErrNotGameOwner
	}

	if len(seatIndices) == 0 {
		seatIndices = make([]int, len(emails))
		for i := range emails {
			seatIndices[i] = i
		}
	}
	if len(seatIndices) != len(emails) {
		return InviteResult{}, fmt.Errorf("%w: seat indices must match emails", domain.ErrInvalidSeat)
	}
	for _, seat := range seatIndices {
		if seat < 0 || seat >= domain.Seats {
			return InviteResult{}, fmt.Errorf("%w: %d", domain.ErrInvalidSeat, seat)
		}
		if g.PlayerUserIDs[seat] != nil {
			return InviteResult{}, fmt.Errorf("%w: seat %d", domain.ErrSeatTaken, seat)
		}
	}

	result := InviteResult{Total: len(emails)}
	now := time.Now()

	for i, email := range emails {
		token, err := s.tokens.Issue(now, gameID, ownerID, email, seatIndices[i])
		if err != nil {
			return InviteResult{}, err
		}
		result.Tokens = append(result.Tokens, token)

		if err := s.mailer.SendInvitation(ctx, email, token, g.Name, nil); err != nil {
			s.log.Warn().Str("game_id", gameID).Str("email", email).Err(err).Msg("invitation email failed")
			continue
		}
		result.Sent++
	}

	return result, nil
}

// GetInfo decodes a token for display before acceptance. No authentication
// is required; the token itself is the credential.
func (s *Service) GetInfo(ctx context.Context, token string) (Info, error) {
	inv, err := s.tokens.Validate(token)
	if err != nil {
		return Info{}, err
	}

	g, err := s.games.GetGame(ctx, inv.GameID)
	if err != nil {
		return Info{}, err
	}

	return Info{
		GameID:      g.ID,
		GameName:    g.Name,
		InviterID:   inv.InviterID,
		PlayerIndex: inv.PlayerIndex,
		ExpiresAt:   inv.ExpiresAt.Unix(),
	}, nil
}

// Accept validates the token and joins the accepting user into the invited
// seat, with the same occupancy semantics as a direct seat join.
func (s *Service) Accept(ctx context.Context, token, userID string) (AcceptResult, error) {
	inv, err := s.tokens.Validate(token)
	if err != nil {
		return AcceptResult{}, err
	}

	if _, err := s.games.JoinSeat(ctx, inv.GameID, userID, inv.PlayerIndex); err != nil {
		return AcceptResult{}, err
	}

	s.log.Info().Str("game_id", inv.GameID).Int("seat", inv.PlayerIndex).Msg("invitation accepted")
	return AcceptResult{
		GameID:      inv.GameID,
		Joined:      true,
		PlayerIndex: inv.PlayerIndex,
		Message:     "Successfully joined the game!",
	}, nil
}
