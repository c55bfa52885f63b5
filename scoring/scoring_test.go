package scoring_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Orbasker/Whist/domain"
	"github.com/Orbasker/Whist/scoring"
)

func TestMode(t *testing.T) {
	assert.Equal(t, domain.RoundModeUnder, scoring.Mode(0))
	assert.Equal(t, domain.RoundModeUnder, scoring.Mode(12))
	assert.Equal(t, domain.RoundModeUnder, scoring.Mode(13))
	assert.Equal(t, domain.RoundModeOver, scoring.Mode(14))
	assert.Equal(t, domain.RoundModeOver, scoring.Mode(52))
}

func TestScore(t *testing.T) {
	testCases := []struct {
		bid, tricks int
		mode        domain.RoundMode
		expected    int
	}{
		{0, 0, domain.RoundModeUnder, 50},
		{0, 0, domain.RoundModeOver, 30},
		{0, 1, domain.RoundModeUnder, -10},
		{0, 3, domain.RoundModeUnder, -30},
		{0, 13, domain.RoundModeOver, -130},
		{1, 1, domain.RoundModeUnder, 11},
		{5, 5, domain.RoundModeUnder, 35},
		{5, 5, domain.RoundModeOver, 35},
		{13, 13, domain.RoundModeOver, 179},
		{3, 2, domain.RoundModeUnder, -10},
		{2, 3, domain.RoundModeUnder, -10},
		{4, 9, domain.RoundModeOver, -50},
		{13, 0, domain.RoundModeUnder, -130},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("bid=%d tricks=%d %s", tc.bid, tc.tricks, tc.mode), func(t *testing.T) {
			assert.Equal(t, tc.expected, scoring.Score(tc.bid, tc.tricks, tc.mode))
		})
	}
}

// Sweep every bid/tricks combination in both modes against an independent
// statement of the rules, so a regression in any branch shows up.
func TestScore_FullTable(t *testing.T) {
	expected := func(bid, tricks int, mode domain.RoundMode) int {
		switch {
		case bid == 0 && tricks == 0 && mode == domain.RoundModeUnder:
			return 50
		case bid == 0 && tricks == 0:
			return 30
		case bid == 0:
			return -10 * tricks
		case bid == tricks:
			return bid*bid + 10
		case bid > tricks:
			return -10 * (bid - tricks)
		default:
			return -10 * (tricks - bid)
		}
	}

	for _, mode := range []domain.RoundMode{domain.RoundModeUnder, domain.RoundModeOver} {
		for bid := 0; bid <= 13; bid++ {
			for tricks := 0; tricks <= 13; tricks++ {
				assert.Equal(t, expected(bid, tricks, mode), scoring.Score(bid, tricks, mode),
					"bid=%d tricks=%d mode=%s", bid, tricks, mode)
			}
		}
	}
}
