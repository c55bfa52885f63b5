package game

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Orbasker/Whist/domain"
)

type Handler struct {
	svc      *Service
	hub      *Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHandler(svc *Service, hub *Hub, log zerolog.Logger) *Handler {
	return &Handler{
		svc: svc,
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the router middleware.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// abortWithError maps the domain error taxonomy onto HTTP statuses:
// validation 400, not found 404, conflicts 409, ownership 403.
func abortWithError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrGameNotFound):
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "game-not-found"})
	case errors.Is(err, domain.ErrInvalidPlayers),
		errors.Is(err, domain.ErrInvalidBids),
		errors.Is(err, domain.ErrInvalidTricks),
		errors.Is(err, domain.ErrInvalidSeat),
		errors.Is(err, domain.ErrGameNotActive):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSeatTaken):
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "seat-taken"})
	case errors.Is(err, domain.ErrAlreadyJoined):
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "already-joined"})
	case errors.Is(err, domain.ErrNotGameOwner):
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not-game-owner"})
	case errors.Is(err, context.DeadlineExceeded):
		ctx.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{"error": "server-timeout"})
	default:
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
	}
}

// userID returns the authenticated user id set by the auth middleware, or
// nil on anonymous requests.
func userID(ctx *gin.Context) *string {
	id := ctx.GetString("user_id")
	if id == "" {
		return nil
	}
	return &id
}

func (h *Handler) CreateGame(ctx *gin.Context) {
	var req struct {
		Players []string `json:"players" binding:"required"`
		Name    *string  `json:"name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
		return
	}

	g, err := h.svc.CreateGame(ctx.Request.Context(), req.Players, req.Name, userID(ctx))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, g)
}

func (h *Handler) ListGames(ctx *gin.Context) {
	id := userID(ctx)
	if id == nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing-token"})
		return
	}
	games, err := h.svc.ListGames(ctx.Request.Context(), *id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, games)
}

func (h *Handler) GetGame(ctx *gin.Context) {
	g, err := h.svc.GetGame(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, g)
}

func (h *Handler) UpdateGame(ctx *gin.Context) {
	var req struct {
		Scores       *[]int             `json:"scores"`
		CurrentRound *int               `json:"current_round"`
		Status       *domain.GameStatus `json:"status"`
		Name         *string            `json:"name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
		return
	}

	update := GameUpdate{CurrentRound: req.CurrentRound, Status: req.Status, Name: req.Name}
	if req.Scores != nil {
		if len(*req.Scores) != domain.Seats {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "scores must have exactly 4 entries"})
			return
		}
		var scores [domain.Seats]int
		copy(scores[:], *req.Scores)
		update.Scores = &scores
	}

	g, err := h.svc.UpdateGame(ctx.Request.Context(), ctx.Param("id"), update)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteGame(ctx *gin.Context) {
	if err := h.svc.DeleteGame(ctx.Request.Context(), ctx.Param("id")); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *Handler) JoinGame(ctx *gin.Context) {
	id := userID(ctx)
	if id == nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing-token"})
		return
	}

	var req struct {
		PlayerIndex *int `json:"player_index" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
		return
	}

	g, err := h.svc.JoinSeat(ctx.Request.Context(), ctx.Param("id"), *id, *req.PlayerIndex)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	h.hub.BroadcastCommit(g.ID, g)
	ctx.JSON(http.StatusOK, g)
}

// SubmitBids validates the table's bids without committing anything, then
// flips the session into the tricks phase for everyone watching.
func (h *Handler) SubmitBids(ctx *gin.Context) {
	var req struct {
		Bids      []int   `json:"bids" binding:"required"`
		TrumpSuit *string `json:"trump_suit"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
		return
	}

	g, mode, totalBids, err := h.svc.SubmitBids(ctx.Request.Context(), ctx.Param("id"), req.Bids, req.TrumpSuit)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	h.hub.CommitBids(g.ID, g)
	ctx.JSON(http.StatusOK, gin.H{
		"game":       g,
		"round_mode": mode,
		"total_bids": totalBids,
	})
}

// SubmitTricks commits the round and fans the new snapshot out to the
// session before answering the submitter.
func (h *Handler) SubmitTricks(ctx *gin.Context) {
	var req struct {
		Tricks    []int   `json:"tricks" binding:"required"`
		Bids      []int   `json:"bids" binding:"required"`
		TrumpSuit *string `json:"trump_suit"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
		return
	}

	round, g, err := h.svc.SubmitTricks(ctx.Request.Context(), ctx.Param("id"), req.Tricks, req.Bids, req.TrumpSuit, userID(ctx))
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	h.hub.CommitTricks(g.ID, g)
	ctx.JSON(http.StatusOK, gin.H{
		"game":  g,
		"round": round,
	})
}

func (h *Handler) GetRounds(ctx *gin.Context) {
	rounds, err := h.svc.GetRounds(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, rounds)
}

func (h *Handler) ShareGame(ctx *gin.Context) {
	id := userID(ctx)
	if id == nil {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing-token"})
		return
	}

	g, err := h.svc.ShareGame(ctx.Request.Context(), ctx.Param("id"), *id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, g)
}

func (h *Handler) GetSharedGame(ctx *gin.Context) {
	g, err := h.svc.GetGameByShareCode(ctx.Request.Context(), ctx.Param("code"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, g)
}

// Websocket upgrades the request and attaches the connection to the game's
// session: the fresh observer gets the persisted snapshot first, then the
// hub replays the in-progress selections and phase.
func (h *Handler) Websocket(ctx *gin.Context) {
	gameID := ctx.Param("id")

	g, err := h.svc.GetGame(ctx.Request.Context(), gameID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.log.Warn().Str("game_id", gameID).Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newClient(conn, h.hub, h.svc, gameID, userID(ctx), h.log)
	c.Send(gameUpdateMsg(g))
	h.hub.Join(gameID, c)

	go c.writePump()
	go c.readPump()
}
