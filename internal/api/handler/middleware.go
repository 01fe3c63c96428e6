package handler

import (
	"strings"

	"flatgripe/backend/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxFlatID = "flat_id"
)

// RequireAuth перевіряє Bearer-токен і кладе user_id та flat_id у контекст
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, utils.NewUnauthorizedError("authorization header required"))
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			respondError(c, utils.NewUnauthorizedError("invalid authorization format"))
			return
		}

		claims, err := h.Auth.Tokens.Parse(raw)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxFlatID, claims.FlatID)
		c.Next()
	}
}

// caller returns the authenticated user id and flat id set by RequireAuth.
func caller(c *gin.Context) (userID, flatID uint) {
	return c.GetUint(ctxUserID), c.GetUint(ctxFlatID)
}
