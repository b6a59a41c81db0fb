package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nodegate/rpc-gateway-backend/internal/database/repository"
	"github.com/nodegate/rpc-gateway-backend/internal/models"
	"github.com/nodegate/rpc-gateway-backend/internal/services/excel"
)

// UsageHandler handles HTTP requests for usage reporting
type UsageHandler struct {
	usageRepo    *repository.UsageRepository
	excelService *excel.Service
}

// NewUsageHandler creates a new UsageHandler instance
func NewUsageHandler(db *gorm.DB) *UsageHandler {
	usageRepo := repository.NewUsageRepository(db)
	return &UsageHandler{
		usageRepo:    usageRepo,
		excelService: excel.NewService(usageRepo),
	}
}

// parseRange reads the from/to query parameters, defaulting to the last 30
// days
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date: %s", v)
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date: %s", v)
		}
		to = parsed
	}
	return from, to, nil
}

// List handles GET /api/v1/usage
// @Summary Get usage
// @Description Get daily usage rows for the authenticated account
// @Tags usage
// @Produce json
// @Security BearerAuth
// @Param from query string false "Start day (YYYY-MM-DD), default 30 days ago"
// @Param to query string false "End day (YYYY-MM-DD), default today"
// @Success 200 {object} map[string]interface{} "success: true, usage: []models.UsageRow"
// @Failure 400 {object} map[string]interface{} "success: false, error: error message"
// @Failure 500 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/usage [get]
func (h *UsageHandler) List(c *gin.Context) {
	accountID := c.MustGet("account_id").(string)

	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	rows, err := h.usageRepo.ListRange(c.Request.Context(), accountID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	var totalRequests int64
	for _, row := range rows {
		totalRequests += row.Requests
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"usage":          rows,
		"total_requests": totalRequests,
		"from":           models.StartOfDay(from).Format("2006-01-02"),
		"to":             models.StartOfDay(to).Format("2006-01-02"),
	})
}

// Export handles GET /api/v1/usage/export
// @Summary Export usage
// @Description Download the account's daily usage as an Excel workbook
// @Tags usage
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param from query string false "Start day (YYYY-MM-DD), default 30 days ago"
// @Param to query string false "End day (YYYY-MM-DD), default today"
// @Success 200 {file} binary "Excel workbook"
// @Failure 400 {object} map[string]interface{} "success: false, error: error message"
// @Failure 500 {object} map[string]interface{} "success: false, error: error message"
// @Router /api/v1/usage/export [get]
func (h *UsageHandler) Export(c *gin.Context) {
	accountID := c.MustGet("account_id").(string)

	from, to, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	f, err := h.excelService.ExportAccountUsage(c.Request.Context(), accountID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("usage_%s_%d.xlsx", accountID, time.Now().Unix())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		logrus.WithError(err).Error("Failed to stream usage export")
	}
}
