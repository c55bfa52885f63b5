package game

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Orbasker/Whist/domain"
)

func newTestService(store *memStore) *Service {
	return NewService(store, store, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestCreateGame(t *testing.T) {
	svc := newTestService(newMemStore())
	owner := "user-1"

	g, err := svc.CreateGame(context.Background(), []string{"Alma", "Ben", "Carmel", "Dana"}, strPtr("friday night"), &owner)
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, [domain.Seats]string{"Alma", "Ben", "Carmel", "Dana"}, g.Players)
	assert.Equal(t, [domain.Seats]int{0, 0, 0, 0}, g.Scores)
	assert.Equal(t, 1, g.CurrentRound)
	assert.Equal(t, domain.GameStatusActive, g.Status)
	assert.Equal(t, domain.GameModeScoringOnly, g.GameMode)
	require.NotNil(t, g.OwnerID)
	assert.Equal(t, "user-1", *g.OwnerID)
	assert.False(t, g.IsShared)
	assert.Nil(t, g.ShareCode)
}

func TestCreateGame_InvalidPlayers(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.CreateGame(context.Background(), []string{"Alma", "Ben", "Carmel"}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPlayers)

	_, err = svc.CreateGame(context.Background(), []string{"Alma", "Ben", "Carmel", "  "}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPlayers)
}

func TestGetGame_NotFound(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.GetGame(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestUpdateGame_MutableFieldsOnly(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	owner := "user-1"
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, &owner)
	require.NoError(t, err)

	scores := [domain.Seats]int{10, -20, 30, 0}
	round := 5
	status := domain.GameStatusCompleted
	updated, err := svc.UpdateGame(context.Background(), g.ID, GameUpdate{
		Scores:       &scores,
		CurrentRound: &round,
		Status:       &status,
		Name:         strPtr("renamed"),
	})
	require.NoError(t, err)

	assert.Equal(t, scores, updated.Scores)
	assert.Equal(t, 5, updated.CurrentRound)
	assert.Equal(t, domain.GameStatusCompleted, updated.Status)
	assert.Equal(t, "renamed", *updated.Name)
	// untouched fields survive a partial update
	assert.Equal(t, g.Players, updated.Players)
	assert.Equal(t, g.OwnerID, updated.OwnerID)
}

func TestUpdateGame_PartialLeavesRest(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, strPtr("original"), nil)
	require.NoError(t, err)

	status := domain.GameStatusCompleted
	updated, err := svc.UpdateGame(context.Background(), g.ID, GameUpdate{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, domain.GameStatusCompleted, updated.Status)
	assert.Equal(t, 1, updated.CurrentRound)
	assert.Equal(t, "original", *updated.Name)
}

func TestDeleteGame(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGame(context.Background(), g.ID))

	_, err = svc.GetGame(context.Background(), g.ID)
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
	assert.ErrorIs(t, svc.DeleteGame(context.Background(), g.ID), domain.ErrGameNotFound)
}

func TestJoinSeat(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)

	joined, err := svc.JoinSeat(context.Background(), g.ID, "user-1", 2)
	require.NoError(t, err)
	require.NotNil(t, joined.PlayerUserIDs[2])
	assert.Equal(t, "user-1", *joined.PlayerUserIDs[2])

	// repeating the same join is a conflict, not a no-op
	_, err = svc.JoinSeat(context.Background(), g.ID, "user-1", 2)
	assert.ErrorIs(t, err, domain.ErrAlreadyJoined)

	_, err = svc.JoinSeat(context.Background(), g.ID, "user-2", 2)
	assert.ErrorIs(t, err, domain.ErrSeatTaken)

	_, err = svc.JoinSeat(context.Background(), g.ID, "user-2", 4)
	assert.ErrorIs(t, err, domain.ErrInvalidSeat)
	_, err = svc.JoinSeat(context.Background(), g.ID, "user-2", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidSeat)

	_, err = svc.JoinSeat(context.Background(), "missing", "user-2", 0)
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}

func TestSubmitBids(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)

	got, mode, total, err := svc.SubmitBids(context.Background(), g.ID, []int{5, 4, 3, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, domain.RoundModeOver, mode)
	assert.Equal(t, 14, total)

	// bids do not touch persisted state
	fresh, err := svc.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.CurrentRound)
	assert.Equal(t, [domain.Seats]int{0, 0, 0, 0}, fresh.Scores)

	_, _, _, err = svc.SubmitBids(context.Background(), g.ID, []int{4, 3, 3, 3}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidBids)
}

func TestSubmitBids_GameNotActive(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)

	status := domain.GameStatusCompleted
	_, err = svc.UpdateGame(context.Background(), g.ID, GameUpdate{Status: &status})
	require.NoError(t, err)

	_, _, _, err = svc.SubmitBids(context.Background(), g.ID, []int{5, 4, 3, 2}, nil)
	assert.ErrorIs(t, err, domain.ErrGameNotActive)
}

func TestSubmitTricks(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)

	suit := "spades"
	round, updated, err := svc.SubmitTricks(context.Background(), g.ID, []int{2, 3, 4, 4}, []int{0, 3, 4, 5}, &suit, strPtr("user-1"))
	require.NoError(t, err)

	assert.Equal(t, 1, round.RoundNumber)
	assert.Equal(t, domain.RoundModeUnder, round.RoundMode)
	assert.Equal(t, [domain.Seats]int{-20, 19, 26, -10}, round.Scores)

	assert.Equal(t, 2, updated.CurrentRound)
	assert.Equal(t, [domain.Seats]int{-20, 19, 26, -10}, updated.Scores)

	// a second round accumulates onto the first
	round2, updated2, err := svc.SubmitTricks(context.Background(), g.ID, []int{0, 0, 12, 1}, []int{0, 1, 12, 1}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, round2.RoundNumber)
	assert.Equal(t, domain.RoundModeOver, round2.RoundMode)
	// seat 0 kept a zero bid over the line, seat 2 landed a twelve bid
	assert.Equal(t, [domain.Seats]int{30, -10, 154, 11}, round2.Scores)
	assert.Equal(t, 3, updated2.CurrentRound)
	assert.Equal(t, [domain.Seats]int{10, 9, 180, 1}, updated2.Scores)

	rounds, err := svc.GetRounds(context.Background(), g.ID)
	require.NoError(t, err)
	require.Len(t, rounds, 2)
	assert.Equal(t, 1, rounds[0].RoundNumber)
	assert.Equal(t, 2, rounds[1].RoundNumber)
}

func TestSubmitTricks_InvalidLeavesGameUntouched(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)

	_, _, err = svc.SubmitTricks(context.Background(), g.ID, []int{3, 3, 3, 3}, []int{2, 3, 4, 5}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTricks)

	fresh, err := svc.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.CurrentRound)

	rounds, err := svc.GetRounds(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Empty(t, rounds)
}

func TestSubmitTricks_GameNotActive(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)

	status := domain.GameStatusCompleted
	_, err = svc.UpdateGame(context.Background(), g.ID, GameUpdate{Status: &status})
	require.NoError(t, err)

	_, _, err = svc.SubmitTricks(context.Background(), g.ID, []int{2, 3, 4, 4}, []int{0, 3, 4, 5}, nil, nil)
	assert.ErrorIs(t, err, domain.ErrGameNotActive)
}

func TestSubmitTricks_CommitFailureLeavesNoTrace(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)

	store.commitErr = errors.New("connection reset")
	_, _, err = svc.SubmitTricks(context.Background(), g.ID, []int{2, 3, 4, 4}, []int{0, 3, 4, 5}, nil, nil)
	require.Error(t, err)

	// neither the round nor the advanced game may be visible
	fresh, err := svc.GetGame(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.CurrentRound)
	assert.Equal(t, [domain.Seats]int{0, 0, 0, 0}, fresh.Scores)

	rounds, err := svc.GetRounds(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Empty(t, rounds)

	// the same submission succeeds once the store is healthy again
	store.commitErr = nil
	_, updated, err := svc.SubmitTricks(context.Background(), g.ID, []int{2, 3, 4, 4}, []int{0, 3, 4, 5}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentRound)
}

func TestSubmitTricks_CommitIsTheOnlyWrite(t *testing.T) {
	games := new(MockGameRepo)
	rounds := new(MockRoundRepo)
	svc := NewService(games, rounds, zerolog.Nop())

	g := domain.Game{ID: "g-1", CurrentRound: 1, Status: domain.GameStatusActive}
	games.On("GetGame", mock.Anything, "g-1").Return(g, nil)
	rounds.On("CommitRound", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.Round{}, domain.Game{}, errors.New("connection reset"))

	_, _, err := svc.SubmitTricks(context.Background(), "g-1", []int{2, 3, 4, 4}, []int{0, 3, 4, 5}, nil, nil)
	require.Error(t, err)

	// round and game travel through CommitRound together; no separate write
	games.AssertNotCalled(t, "UpdateGame", mock.Anything, mock.Anything)
}

func TestShareGame(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	owner := "user-1"
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, &owner)
	require.NoError(t, err)

	shared, err := svc.ShareGame(context.Background(), g.ID, "user-1")
	require.NoError(t, err)
	assert.True(t, shared.IsShared)
	require.NotNil(t, shared.ShareCode)
	assert.Len(t, *shared.ShareCode, 8)

	// sharing again keeps the same code
	again, err := svc.ShareGame(context.Background(), g.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, *shared.ShareCode, *again.ShareCode)

	found, err := svc.GetGameByShareCode(context.Background(), *shared.ShareCode)
	require.NoError(t, err)
	assert.Equal(t, g.ID, found.ID)
}

func TestShareGame_OnlyOwner(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	owner := "user-1"
	g, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, &owner)
	require.NoError(t, err)

	_, err = svc.ShareGame(context.Background(), g.ID, "user-2")
	assert.ErrorIs(t, err, domain.ErrNotGameOwner)

	anon, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, nil)
	require.NoError(t, err)
	_, err = svc.ShareGame(context.Background(), anon.ID, "user-1")
	assert.ErrorIs(t, err, domain.ErrNotGameOwner)
}

func TestListGames(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)
	owner := "user-1"

	mine, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, &owner)
	require.NoError(t, err)
	other, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, strPtr("user-2"))
	require.NoError(t, err)
	joined, err := svc.CreateGame(context.Background(), []string{"A", "B", "C", "D"}, nil, strPtr("user-3"))
	require.NoError(t, err)
	_, err = svc.JoinSeat(context.Background(), joined.ID, "user-1", 1)
	require.NoError(t, err)

	games, err := svc.ListGames(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, games, 2)

	ids := []string{games[0].ID, games[1].ID}
	assert.Contains(t, ids, mine.ID)
	assert.Contains(t, ids, joined.ID)
	assert.NotContains(t, ids, other.ID)
}

func TestGetRounds_MissingGame(t *testing.T) {
	svc := newTestService(newMemStore())

	_, err := svc.GetRounds(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrGameNotFound)
}
