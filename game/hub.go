package game

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Orbasker/Whist/domain"
)

// Observer is one live connection subscribed to a game session. Send must
// not block: an implementation that cannot accept the message returns an
// error and the hub treats it as a disconnect.
type Observer interface {
	Send(data []byte) error
}

// session holds one game's observers plus the ephemeral, not-yet-committed
// UI state everyone is looking at. Each session has its own lock so a slow
// game never stalls an unrelated one.
type session struct {
	mu              sync.Mutex
	observers       map[Observer]struct{}
	bidSelections   map[int]int
	trickSelections map[int]int
	trumpSelection  *string
	phase           Phase
}

func newSession() *session {
	return &session{
		observers:       make(map[Observer]struct{}),
		bidSelections:   make(map[int]int),
		trickSelections: make(map[int]int),
		phase:           PhaseBidding,
	}
}

// Hub fans game events out to every observer of a session. Committed state
// always comes from the state machine; the hub only owns the ephemeral
// selection state between commits.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
	log      zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]*session),
		log:      log,
	}
}

func (h *Hub) session(gameID string) *session {
	h.mu.RLock()
	s, ok := h.sessions[gameID]
	h.mu.RUnlock()
	if ok {
		return s
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok = h.sessions[gameID]; ok {
		return s
	}
	s = newSession()
	h.sessions[gameID] = s
	return s
}

// Join registers an observer and replays the session's current ephemeral
// state to it alone, so a late joiner reconstructs the in-progress UI
// without a separate query.
func (h *Hub) Join(gameID string, obs Observer) {
	s := h.session(gameID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers[obs] = struct{}{}

	for _, seat := range sortedKeys(s.bidSelections) {
		if obs.Send(bidSelectionMsg(seat, s.bidSelections[seat])) != nil {
			delete(s.observers, obs)
			return
		}
	}
	for _, seat := range sortedKeys(s.trickSelections) {
		if obs.Send(trickSelectionMsg(seat, s.trickSelections[seat])) != nil {
			delete(s.observers, obs)
			return
		}
	}
	if s.trumpSelection != nil {
		if obs.Send(trumpSelectionMsg(*s.trumpSelection)) != nil {
			delete(s.observers, obs)
			return
		}
	}
	if obs.Send(phaseUpdateMsg(s.phase)) != nil {
		delete(s.observers, obs)
		return
	}

	h.log.Debug().Str("game_id", gameID).Int("observers", len(s.observers)).Msg("observer joined")
}

// Leave drops the observer. The ephemeral state is deliberately kept so a
// reconnecting client still sees the selections made before it dropped;
// only a commit clears them.
func (h *Hub) Leave(gameID string, obs Observer) {
	h.mu.RLock()
	s, ok := h.sessions[gameID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.observers, obs)
	remaining := len(s.observers)
	s.mu.Unlock()

	h.log.Debug().Str("game_id", gameID).Int("observers", remaining).Msg("observer left")
}

// BroadcastCommit sends the committed game snapshot to every observer of the
// session.
func (h *Hub) BroadcastCommit(gameID string, g domain.Game) {
	s := h.session(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	h.broadcast(gameID, s, gameUpdateMsg(g))
}

// BroadcastPhase stores the new phase and announces it.
func (h *Hub) BroadcastPhase(gameID string, phase Phase) {
	s := h.session(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
	h.broadcast(gameID, s, phaseUpdateMsg(phase))
}

// RecordBidSelection stores a seat's in-progress bid and echoes it to every
// observer, the originator included, who relies on the echo as confirmation.
func (h *Hub) RecordBidSelection(gameID string, seat, bid int) {
	s := h.session(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bidSelections[seat] = bid
	h.broadcast(gameID, s, bidSelectionMsg(seat, bid))
}

func (h *Hub) RecordTrickSelection(gameID string, seat, trick int) {
	s := h.session(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trickSelections[seat] = trick
	h.broadcast(gameID, s, trickSelectionMsg(seat, trick))
}

func (h *Hub) RecordTrumpSelection(gameID string, suit string) {
	s := h.session(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trumpSelection = &suit
	h.broadcast(gameID, s, trumpSelectionMsg(suit))
}

// CommitBids is the hub side of a successful bid submission: bid and trick
// selections reset and the session moves to the tricks phase. The snapshot
// and phase go out in that order under one lock, so no observer sees them
// interleaved with another commit's messages.
func (h *Hub) CommitBids(gameID string, g domain.Game) {
	s := h.session(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bidSelections = make(map[int]int)
	s.trickSelections = make(map[int]int)
	s.phase = PhaseTricks

	h.broadcast(gameID, s, gameUpdateMsg(g))
	h.broadcast(gameID, s, phaseUpdateMsg(PhaseTricks))
}

// CommitTricks is the hub side of a committed round: every ephemeral
// selection is wiped, trump included, and the session returns to bidding.
func (h *Hub) CommitTricks(gameID string, g domain.Game) {
	s := h.session(gameID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bidSelections = make(map[int]int)
	s.trickSelections = make(map[int]int)
	s.trumpSelection = nil
	s.phase = PhaseBidding

	h.broadcast(gameID, s, gameUpdateMsg(g))
	h.broadcast(gameID, s, phaseUpdateMsg(PhaseBidding))
}

// broadcast delivers to every observer; callers hold the session lock. A
// failed delivery deregisters that observer and never blocks the rest.
func (h *Hub) broadcast(gameID string, s *session, data []byte) {
	for obs := range s.observers {
		if err := obs.Send(data); err != nil {
			delete(s.observers, obs)
			h.log.Warn().Str("game_id", gameID).Err(err).Msg("dropping unreachable observer")
		}
	}
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
