package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Orbasker/Whist/domain"
)

// bearerToken pulls the session token from the Authorization header or,
// failing that, from the session cookie.
func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := ctx.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// Required aborts unauthenticated requests; on success the user id is
// available as "user_id" on the gin context.
func Required(manager *JWTManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing-token"})
			return
		}

		id, err := manager.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrExpiredToken):
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "expired-token"})
			default:
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid-token"})
			}
			return
		}

		ctx.Set("user_id", id)
		ctx.Next()
	}
}

// Optional resolves the user when a valid token is present and stays silent
// otherwise. Endpoints that work for spectators use this.
func Optional(manager *JWTManager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if token := bearerToken(ctx); token != "" {
			if id, err := manager.Verify(token); err == nil {
				ctx.Set("user_id", id)
			}
		}
		ctx.Next()
	}
}
