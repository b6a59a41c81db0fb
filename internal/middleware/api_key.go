package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nodegate/rpc-gateway-backend/internal/services/api_key"
)

// APIKeyMiddleware authenticates proxied calls by their API key credential
type APIKeyMiddleware struct {
	apiKeyService *api_key.Service
	storeTimeout  time.Duration
}

// NewAPIKeyMiddleware creates a new API key middleware
func NewAPIKeyMiddleware(apiKeyService *api_key.Service, storeTimeout time.Duration) *APIKeyMiddleware {
	return &APIKeyMiddleware{
		apiKeyService: apiKeyService,
		storeTimeout:  storeTimeout,
	}
}

// ExtractCredential pulls the credential from the X-API-Key header, falling
// back to a bearer token. Returns empty when no credential was supplied.
func ExtractCredential(c *gin.Context) string {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// APIKeyAuthMiddleware verifies the credential and sets the verification
// result in the request context
func (m *APIKeyMiddleware) APIKeyAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := ExtractCredential(c)
		if credential == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "API key is required",
			})
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), m.storeTimeout)
		defer cancel()

		verification, err := m.apiKeyService.Verify(ctx, credential)
		if err != nil {
			// Store outage, not a security denial. Failing closed here would
			// make every key verification outage-sensitive.
			logrus.WithError(err).Error("API key verification unavailable")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error":   "Key verification temporarily unavailable",
			})
			c.Abort()
			return
		}
		if verification == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "Invalid API key",
			})
			c.Abort()
			return
		}

		// Set verification info in context
		c.Set("account_id", verification.AccountID)
		c.Set("key_id", verification.KeyID)
		c.Set("verification", verification)
		c.Set("auth_type", "api_key")

		c.Next()
	}
}
