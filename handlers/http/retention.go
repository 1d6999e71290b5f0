package httpHandler

import (
	"net/http"
	"strconv"

	"sensegrid-server/services"

	"github.com/gin-gonic/gin"
)

type RetentionHandler struct {
	retention *services.RetentionService
}

func NewRetentionHandler(retention *services.RetentionService) *RetentionHandler {
	return &RetentionHandler{retention: retention}
}

// GetStats handles GET /api/v1/retention/stats
func (h *RetentionHandler) GetStats(c *gin.Context) {
	stats, err := h.retention.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": stats,
	})
}

// Cleanup handles POST /api/v1/retention/cleanup. The [1,365] bound
// lives here; the retention service re-checks the lower bound.
func (h *RetentionHandler) Cleanup(c *gin.Context) {
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be an integer"})
			return
		}
		days = parsed
	}
	if days < 1 || days > 365 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
		return
	}

	result, err := h.retention.Cleanup(days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}
