package httpHandler

import (
	"net/http"

	"sensegrid-server/cache"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct {
	latest *cache.LatestCache
}

func NewCacheHandler(latest *cache.LatestCache) *CacheHandler {
	return &CacheHandler{latest: latest}
}

// GetCacheStats handles GET /api/v1/cache/stats
func (h *CacheHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"stats":  h.latest.Stats(),
	})
}
