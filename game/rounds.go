package game

import (
	"fmt"

	"github.com/Orbasker/Whist/domain"
	"github.com/Orbasker/Whist/scoring"
)

// ValidateBids enforces the bid rules: exactly 4 bids, each 0..13, and the
// total may not land on exactly 13. Both the pre-flight bid submission and
// round creation call this same function so the rule cannot drift.
func ValidateBids(bids []int) error {
	if len(bids) != domain.Seats {
		return fmt.Errorf("%w: expected %d bids, got %d", domain.ErrInvalidBids, domain.Seats, len(bids))
	}
	total := 0
	for i, bid := range bids {
		if bid < 0 || bid > domain.TricksPerRound {
			return fmt.Errorf("%w: bid %d for seat %d is out of range 0-13", domain.ErrInvalidBids, bid, i)
		}
		total += bid
	}
	if total == domain.TricksPerRound {
		return fmt.Errorf("%w: total bids may not equal exactly %d", domain.ErrInvalidBids, domain.TricksPerRound)
	}
	return nil
}

// ValidateTricks enforces the trick rules: exactly 4 values, each 0..13,
// summing to exactly 13 (one full deck split across the table).
func ValidateTricks(tricks []int) error {
	if len(tricks) != domain.Seats {
		return fmt.Errorf("%w: expected %d values, got %d", domain.ErrInvalidTricks, domain.Seats, len(tricks))
	}
	total := 0
	for i, trick := range tricks {
		if trick < 0 || trick > domain.TricksPerRound {
			return fmt.Errorf("%w: %d tricks for seat %d is out of range 0-13", domain.ErrInvalidTricks, trick, i)
		}
		total += trick
	}
	if total != domain.TricksPerRound {
		return fmt.Errorf("%w: tricks must sum to %d, got %d", domain.ErrInvalidTricks, domain.TricksPerRound, total)
	}
	return nil
}

// buildRound validates a full submission and assembles the round record with
// its mode and per-seat scores. This is the only place a Round is
// constructed; it does not persist anything itself.
func buildRound(g domain.Game, roundNumber int, bids, tricks []int, trumpSuit, createdBy *string) (domain.Round, error) {
	if err := ValidateBids(bids); err != nil {
		return domain.Round{}, err
	}
	if err := ValidateTricks(tricks); err != nil {
		return domain.Round{}, err
	}

	totalBids := 0
	for _, bid := range bids {
		totalBids += bid
	}
	mode := scoring.Mode(totalBids)

	round := domain.Round{
		GameID:      g.ID,
		RoundNumber: roundNumber,
		RoundMode:   mode,
		TrumpSuit:   trumpSuit,
		CreatedBy:   createdBy,
	}
	for i := 0; i < domain.Seats; i++ {
		round.Bids[i] = bids[i]
		round.Tricks[i] = tricks[i]
		round.Scores[i] = scoring.Score(bids[i], tricks[i], mode)
	}
	return round, nil
}
