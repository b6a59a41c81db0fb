package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/nodegate/rpc-gateway-backend/internal/models"
)

// SessionMiddleware validates dashboard session tokens minted by the
// external auth provider and extracts the verified account id
type SessionMiddleware struct {
	jwtSecret []byte
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(jwtSecret []byte) *SessionMiddleware {
	return &SessionMiddleware{jwtSecret: jwtSecret}
}

// SessionAuthMiddleware validates the session JWT and sets account_id in
// the request context
func (m *SessionMiddleware) SessionAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")

		// Check if it's Bearer token
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		// Extract token
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &models.SessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid or expired token",
			})
			c.Abort()
			return
		}

		accountID := claims.AccountID
		if accountID == "" {
			accountID = claims.Subject
		}
		if accountID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Token carries no account",
			})
			c.Abort()
			return
		}

		// Set account info in context
		c.Set("account_id", accountID)
		c.Set("auth_type", "session")

		c.Next()
	}
}
