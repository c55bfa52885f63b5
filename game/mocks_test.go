package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/Orbasker/Whist/domain"
)

// --- GameRepo / RoundRepo testify mocks, for error-path tests ---

type MockGameRepo struct {
	mock.Mock
}

func (m *MockGameRepo) CreateGame(ctx context.Context, g domain.Game) (domain.Game, error) {
	args := m.Called(ctx, g)
	return args.Get(0).(domain.Game), args.Error(1)
}

func (m *MockGameRepo) GetGame(ctx context.Context, id string) (domain.Game, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Game), args.Error(1)
}

func (m *MockGameRepo) GetGameByShareCode(ctx context.Context, code string) (domain.Game, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Game), args.Error(1)
}

func (m *MockGameRepo) ListGamesByUser(ctx context.Context, userID string) ([]domain.Game, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Game), args.Error(1)
}

func (m *MockGameRepo) UpdateGame(ctx context.Context, g domain.Game) (domain.Game, error) {
	args := m.Called(ctx, g)
	return args.Get(0).(domain.Game), args.Error(1)
}

func (m *MockGameRepo) DeleteGame(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockRoundRepo struct {
	mock.Mock
}

func (m *MockRoundRepo) CommitRound(ctx context.Context, r domain.Round, g domain.Game) (domain.Round, domain.Game, error) {
	args := m.Called(ctx, r, g)
	return args.Get(0).(domain.Round), args.Get(1).(domain.Game), args.Error(2)
}

func (m *MockRoundRepo) GetRoundsByGame(ctx context.Context, gameID string) ([]domain.Round, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).([]domain.Round), args.Error(1)
}

// --- memStore: in-memory GameRepo + RoundRepo for flow tests ---

type memStore struct {
	mu        sync.Mutex
	games     map[string]domain.Game
	rounds    map[string][]domain.Round
	nextID    int
	commitErr error // when set, CommitRound fails without persisting anything
}

func newMemStore() *memStore {
	return &memStore{
		games:  make(map[string]domain.Game),
		rounds: make(map[string][]domain.Round),
	}
}

func (s *memStore) CreateGame(_ context.Context, g domain.Game) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	g.ID = fmt.Sprintf("game-%d", s.nextID)
	s.games[g.ID] = g
	return g, nil
}

func (s *memStore) GetGame(_ context.Context, id string) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return g, nil
}

func (s *memStore) GetGameByShareCode(_ context.Context, code string) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		if g.IsShared && g.ShareCode != nil && *g.ShareCode == code {
			return g, nil
		}
	}
	return domain.Game{}, domain.ErrGameNotFound
}

func (s *memStore) ListGamesByUser(_ context.Context, userID string) ([]domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	games := []domain.Game{}
	for _, g := range s.games {
		if g.OwnerID != nil && *g.OwnerID == userID {
			games = append(games, g)
			continue
		}
		for _, id := range g.PlayerUserIDs {
			if id != nil && *id == userID {
				games = append(games, g)
				break
			}
		}
	}
	return games, nil
}

func (s *memStore) UpdateGame(_ context.Context, g domain.Game) (domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	s.games[g.ID] = g
	return g, nil
}

func (s *memStore) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return domain.ErrGameNotFound
	}
	delete(s.games, id)
	delete(s.rounds, id)
	return nil
}

func (s *memStore) CommitRound(_ context.Context, r domain.Round, g domain.Game) (domain.Round, domain.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.commitErr != nil {
		return domain.Round{}, domain.Game{}, s.commitErr
	}
	if _, ok := s.games[g.ID]; !ok {
		return domain.Round{}, domain.Game{}, domain.ErrGameNotFound
	}
	r.ID = int64(len(s.rounds[r.GameID]) + 1)
	s.rounds[r.GameID] = append(s.rounds[r.GameID], r)
	s.games[g.ID] = g
	return r, g, nil
}

func (s *memStore) GetRoundsByGame(_ context.Context, gameID string) ([]domain.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Round{}, s.rounds[gameID]...), nil
}

// --- fakeObserver: collects everything the hub sends it ---

type fakeObserver struct {
	mu       sync.Mutex
	messages [][]byte
	failing  bool
}

func (o *fakeObserver) Send(data []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failing {
		return fmt.Errorf("connection gone")
	}
	o.messages = append(o.messages, data)
	return nil
}

func (o *fakeObserver) received() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.messages))
	for i, m := range o.messages {
		out[i] = string(m)
	}
	return out
}
