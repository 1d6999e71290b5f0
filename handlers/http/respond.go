package httpHandler

import (
	"errors"
	"net/http"

	"sensegrid-server/services"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto HTTP statuses with a
// human-readable cause.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrDeviceNotFound), errors.Is(err, services.ErrNoData):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidParameter), errors.Is(err, services.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
