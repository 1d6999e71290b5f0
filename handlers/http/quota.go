package httpHandler

import (
	"net/http"
	"strconv"

	"sensegrid-server/services"

	"github.com/gin-gonic/gin"
)

type QuotaHandler struct {
	quota *services.QuotaService
}

func NewQuotaHandler(quota *services.QuotaService) *QuotaHandler {
	return &QuotaHandler{quota: quota}
}

func quotaLimitFromQuery(c *gin.Context) (int, bool) {
	limit := services.DefaultQuotaDPM
	if raw := c.Query("quota_limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quota_limit must be an integer"})
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

// GetStats handles GET /api/v1/quota/stats
func (h *QuotaHandler) GetStats(c *gin.Context) {
	limit, ok := quotaLimitFromQuery(c)
	if !ok {
		return
	}

	stats, err := h.quota.Stats(limit, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   stats,
	})
}

// CheckDateRange handles GET /api/v1/quota/check-date-range
func (h *QuotaHandler) CheckDateRange(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date and end_date are required"})
		return
	}

	limit, ok := quotaLimitFromQuery(c)
	if !ok {
		return
	}

	result, err := h.quota.CheckDateRange(startDate, endDate, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   result,
	})
}
