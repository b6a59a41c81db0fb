package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nodegate/rpc-gateway-backend/internal/middleware"
	"github.com/nodegate/rpc-gateway-backend/internal/models"
)

var testJWTSecret = []byte("test-secret")

func setupManagementRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)

	sessionMiddleware := middleware.NewSessionMiddleware(testJWTSecret)
	apiKeyHandler := NewAPIKeyHandler(db, testKeyDefaults)

	r := gin.New()
	keys := r.Group("/api/v1/keys")
	keys.Use(sessionMiddleware.SessionAuthMiddleware())
	{
		keys.POST("", apiKeyHandler.Create)
		keys.GET("", apiKeyHandler.List)
		keys.PUT("/:id", apiKeyHandler.Update)
		keys.DELETE("/:id", apiKeyHandler.Revoke)
	}
	return r
}

func sessionToken(t *testing.T, accountID string) string {
	claims := &models.SessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testJWTSecret)
	require.NoError(t, err)
	return token
}

func doManagement(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestManagementRequiresSession(t *testing.T) {
	db := setupTestDB(t)
	r := setupManagementRouter(t, db)

	w := doManagement(r, http.MethodGet, "/api/v1/keys", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doManagement(r, http.MethodGet, "/api/v1/keys", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndListKeys(t *testing.T) {
	db := setupTestDB(t)
	r := setupManagementRouter(t, db)
	token := sessionToken(t, "acct-1")

	w := doManagement(r, http.MethodPost, "/api/v1/keys", token, gin.H{
		"name":          "production",
		"rate_limit":    25,
		"monthly_limit": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Success bool `json:"success"`
		APIKey  struct {
			ID            string `json:"id"`
			Key           string `json:"key"`
			DisplayPrefix string `json:"display_prefix"`
			KeyHash       string `json:"key_hash"`
		} `json:"api_key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.NotEmpty(t, created.APIKey.Key)
	assert.Empty(t, created.APIKey.KeyHash, "hash must never be serialized")

	w = doManagement(r, http.MethodGet, "/api/v1/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), created.APIKey.DisplayPrefix)
	assert.NotContains(t, w.Body.String(), created.APIKey.Key,
		"plaintext is one-time only")

	// Another account sees nothing
	w = doManagement(r, http.MethodGet, "/api/v1/keys", sessionToken(t, "acct-2"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), created.APIKey.ID)
}

func TestCreateKeyEmptyName(t *testing.T) {
	db := setupTestDB(t)
	r := setupManagementRouter(t, db)
	token := sessionToken(t, "acct-1")

	w := doManagement(r, http.MethodPost, "/api/v1/keys", token, gin.H{"name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRevokeKeyOwnership(t *testing.T) {
	db := setupTestDB(t)
	r := setupManagementRouter(t, db)
	token := sessionToken(t, "acct-1")

	key := createKey(t, db, "acct-1", 10, models.Unlimited)

	// Foreign account gets a 404, not a revocation
	w := doManagement(r, http.MethodDelete, "/api/v1/keys/"+key.ID, sessionToken(t, "acct-2"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doManagement(r, http.MethodDelete, "/api/v1/keys/"+key.ID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Second revoke reports not found
	w = doManagement(r, http.MethodDelete, "/api/v1/keys/"+key.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateKey(t *testing.T) {
	db := setupTestDB(t)
	r := setupManagementRouter(t, db)
	token := sessionToken(t, "acct-1")

	key := createKey(t, db, "acct-1", 10, models.Unlimited)

	w := doManagement(r, http.MethodPut, "/api/v1/keys/"+key.ID, token, gin.H{
		"name":       "renamed",
		"rate_limit": 99,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doManagement(r, http.MethodGet, "/api/v1/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "renamed")
	assert.Contains(t, w.Body.String(), "99")

	w = doManagement(r, http.MethodPut, "/api/v1/keys/unknown-id", token, gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
