package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nodegate/rpc-gateway-backend/internal/services/api_key"
)

// APIKeyHandler handles HTTP requests related to API keys
type APIKeyHandler struct {
	apiKeyService *api_key.Service
}

// NewAPIKeyHandler creates a new APIKeyHandler instance
func NewAPIKeyHandler(db *gorm.DB, defaults api_key.Defaults) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: api_key.NewService(db, defaults),
	}
}

// Create handles POST /api/v1/keys
// @Summary Create API key
// @Description Create a new API key for the authenticated account. The plaintext key is returned exactly once.
// @Tags keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body api_key.CreateKeyRequest true "Key name and optional limits"
// @Success 201 {object} map[string]interface{} "success: true, api_key: api_key.CreatedKey"
// @Failure 400 {object} map[string]interface{} "success: false, error: error message"
// @Failure 500 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/keys [post]
func (h *APIKeyHandler) Create(c *gin.Context) {
	// Get account ID from context (set by session middleware)
	accountID := c.MustGet("account_id").(string)

	var request api_key.CreateKeyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	created, err := h.apiKeyService.Create(c.Request.Context(), accountID, request)
	if err != nil {
		if errors.Is(err, api_key.ErrNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "API key created successfully. Store the key now; it will not be shown again.",
		"api_key": created,
	})
}

// List handles GET /api/v1/keys
// @Summary List API keys
// @Description List all API keys for the authenticated account, newest first
// @Tags keys
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "success: true, api_keys: []models.APIKey"
// @Failure 500 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/keys [get]
func (h *APIKeyHandler) List(c *gin.Context) {
	accountID := c.MustGet("account_id").(string)

	keys, err := h.apiKeyService.List(c.Request.Context(), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"api_keys": keys,
	})
}

// Update handles PUT /api/v1/keys/:id
// @Summary Update API key
// @Description Update an API key's name or limits. Only supplied fields change.
// @Tags keys
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "API key ID"
// @Param request body api_key.UpdateKeyRequest true "Fields to update"
// @Success 200 {object} map[string]interface{} "success: true, message: string"
// @Failure 400 {object} map[string]interface{} "success: false, error: error message"
// @Failure 404 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/keys/{id} [put]
func (h *APIKeyHandler) Update(c *gin.Context) {
	accountID := c.MustGet("account_id").(string)
	keyID := c.Param("id")

	var request api_key.UpdateKeyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	updated, err := h.apiKeyService.Update(c.Request.Context(), accountID, keyID, request)
	if err != nil {
		if errors.Is(err, api_key.ErrNameRequired) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "API key not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API key updated successfully",
	})
}

// Revoke handles DELETE /api/v1/keys/:id
// @Summary Revoke API key
// @Description Revoke an API key. The record is retained for usage history.
// @Tags keys
// @Produce json
// @Security BearerAuth
// @Param id path string true "API key ID"
// @Success 200 {object} map[string]interface{} "success: true, message: string"
// @Failure 404 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/keys/{id} [delete]
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	accountID := c.MustGet("account_id").(string)
	keyID := c.Param("id")

	revoked, err := h.apiKeyService.Revoke(c.Request.Context(), accountID, keyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if !revoked {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "API key not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "API key revoked successfully",
	})
}
