// Package scoring holds the pure whist scoring rules. Nothing here touches
// storage or the network; every function is deterministic.
package scoring

import "github.com/Orbasker/Whist/domain"

// Mode returns the round mode for a table whose bids sum to totalBids:
// "over" when the table collectively bid more than 13, "under" otherwise.
func Mode(totalBids int) domain.RoundMode {
	if totalBids > domain.TricksPerRound {
		return domain.RoundModeOver
	}
	return domain.RoundModeUnder
}

// Score computes one seat's score for a round.
//
//   - bid 0, took 0:       +50 under, +30 over
//   - bid 0, took some:    -10 per trick taken
//   - hit a non-zero bid:  bid² + 10
//   - missed the bid:      -10 per trick of difference
func Score(bid, tricks int, mode domain.RoundMode) int {
	if bid == 0 {
		if tricks == 0 {
			if mode == domain.RoundModeUnder {
				return 50
			}
			return 30
		}
		return -10 * tricks
	}

	if bid == tricks {
		return bid*bid + 10
	}

	diff := bid - tricks
	if diff < 0 {
		diff = -diff
	}
	return -10 * diff
}
