package invite

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Orbasker/Whist/domain"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func abortWithError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvitationExpired):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invitation-expired"})
	case errors.Is(err, domain.ErrInvitationInvalid):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invitation-invalid"})
	case errors.Is(err, domain.ErrGameNotFound):
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "game-not-found"})
	case errors.Is(err, domain.ErrNotGameOwner):
		ctx.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not-game-owner"})
	case errors.Is(err, domain.ErrInvalidSeat):
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrSeatTaken):
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "seat-taken"})
	case errors.Is(err, domain.ErrAlreadyJoined):
		ctx.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "already-joined"})
	default:
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "unknown-error"})
	}
}

// CreateInvitations handles POST /games/:id/invite.
func (h *Handler) CreateInvitations(ctx *gin.Context) {
	ownerID := ctx.GetString("user_id")

	var req struct {
		Emails        []string `json:"emails" binding:"required,min=1,max=4"`
		PlayerIndices []int    `json:"player_indices"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad-request-format"})
		return
	}

	result, err := h.svc.CreateInvitations(ctx.Request.Context(), ctx.Param("id"), ownerID, req.Emails, req.PlayerIndices)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetInfo handles GET /invite/:token. Public: the token is the credential.
func (h *Handler) GetInfo(ctx *gin.Context) {
	info, err := h.svc.GetInfo(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, info)
}

// Accept handles POST /invite/:token/accept.
func (h *Handler) Accept(ctx *gin.Context) {
	userID := ctx.GetString("user_id")

	result, err := h.svc.Accept(ctx.Request.Context(), ctx.Param("token"), userID)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
