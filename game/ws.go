package game

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Orbasker/Whist/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
	commandTimeout = 10 * time.Second
)

var (
	errObserverGone = errors.New("observer connection closed")
	errObserverSlow = errors.New("observer send buffer full")
)

// client is one websocket observer: it subscribes to a game session, relays
// commands into the state machine and drains hub broadcasts to its socket.
type client struct {
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	hub     *Hub
	svc     *Service
	gameID  string
	userID  *string
	limiter *rate.Limiter
	log     zerolog.Logger
}

func newClient(conn *websocket.Conn, hub *Hub, svc *Service, gameID string, userID *string, log zerolog.Logger) *client {
	return &client{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		hub:     hub,
		svc:     svc,
		gameID:  gameID,
		userID:  userID,
		limiter: rate.NewLimiter(10, 20),
		log:     log.With().Str("game_id", gameID).Logger(),
	}
}

// Send implements Observer. It never blocks: a full buffer means the
// observer cannot keep up and is treated as disconnected.
func (c *client) Send(data []byte) error {
	select {
	case <-c.done:
		return errObserverGone
	case c.send <- data:
		return nil
	default:
		return errObserverSlow
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// readPump consumes inbound messages until the socket dies, then detaches
// the observer. Malformed or unknown messages are dropped, never fatal.
func (c *client) readPump() {
	defer func() {
		c.hub.Leave(c.gameID, c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.limiter.Allow() {
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug().Msg("ignoring unparseable message")
			continue
		}
		c.handleMessage(msg)
	}
}

// writePump pushes queued messages and pings to the socket. Any write error
// ends the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, nil)
			return
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) handleMessage(msg clientMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch msg.Type {
	case "submit_bids":
		var payload submitBidsPayload
		if json.Unmarshal(msg.Data, &payload) != nil {
			return
		}
		g, _, _, err := c.svc.SubmitBids(ctx, c.gameID, payload.Bids, payload.TrumpSuit)
		if err != nil {
			c.Send(errorMsg(err.Error()))
			return
		}
		c.hub.CommitBids(c.gameID, g)
		c.Send(bidsSubmittedMsg(g))

	case "submit_tricks":
		var payload submitTricksPayload
		if json.Unmarshal(msg.Data, &payload) != nil {
			return
		}
		round, g, err := c.svc.SubmitTricks(ctx, c.gameID, payload.Tricks, payload.Bids, payload.TrumpSuit, c.userID)
		if err != nil {
			c.Send(errorMsg(err.Error()))
			return
		}
		c.hub.CommitTricks(c.gameID, g)
		c.Send(tricksSubmittedMsg(g, round))

	case "bid_selection":
		var payload bidSelectionPayload
		if json.Unmarshal(msg.Data, &payload) != nil {
			return
		}
		if payload.PlayerIndex == nil || payload.Bid == nil || !validSeat(*payload.PlayerIndex) {
			return
		}
		c.hub.RecordBidSelection(c.gameID, *payload.PlayerIndex, *payload.Bid)

	case "trick_selection":
		var payload trickSelectionPayload
		if json.Unmarshal(msg.Data, &payload) != nil {
			return
		}
		if payload.PlayerIndex == nil || payload.Trick == nil || !validSeat(*payload.PlayerIndex) {
			return
		}
		c.hub.RecordTrickSelection(c.gameID, *payload.PlayerIndex, *payload.Trick)

	case "trump_selection":
		var payload trumpSelectionPayload
		if json.Unmarshal(msg.Data, &payload) != nil {
			return
		}
		if payload.TrumpSuit == nil {
			return
		}
		c.hub.RecordTrumpSelection(c.gameID, *payload.TrumpSuit)

	default:
		c.log.Debug().Str("type", msg.Type).Msg("ignoring unknown message type")
	}
}

func validSeat(seat int) bool {
	return seat >= 0 && seat < domain.Seats
}
