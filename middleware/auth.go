package middleware

import (
	"net/http"
	"strings"

	"storefront-bff/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GuestTokenHeader carries the signed guest session token in both directions.
const GuestTokenHeader = "X-Guest-Token"

// AuthMiddleware requires a bearer token. The token belongs to the store API and
// is forwarded to it as is; the store API decides whether it is valid.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		c.Set("access_token", parts[1])
		c.Next()
	}
}

// GuestSession resolves the visitor's guest id from the guest token, minting a new
// session when there is none or it is invalid. The current token is always echoed back.
func GuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := utils.ValidateGuestToken(c.GetHeader(GuestTokenHeader)); err == nil {
			c.Set("guest_id", claims.GuestID)
			c.Header(GuestTokenHeader, c.GetHeader(GuestTokenHeader))
			c.Next()
			return
		}

		guestID := uuid.New()
		token, err := utils.GenerateGuestToken(guestID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start guest session"})
			c.Abort()
			return
		}

		c.Set("guest_id", guestID)
		c.Header(GuestTokenHeader, token)
		c.Next()
	}
}

// RequireGuestSession rejects requests without a valid guest token instead of minting one.
func RequireGuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := utils.ValidateGuestToken(c.GetHeader(GuestTokenHeader))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Valid guest session required"})
			c.Abort()
			return
		}

		c.Set("guest_id", claims.GuestID)
		c.Next()
	}
}

// OptionalGuestSession sets guest_id when a valid guest token is present and never aborts.
func OptionalGuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := utils.ValidateGuestToken(c.GetHeader(GuestTokenHeader)); err == nil {
			c.Set("guest_id", claims.GuestID)
		}
		c.Next()
	}
}
