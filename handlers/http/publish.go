package httpHandler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Publisher sends one downlink message to the broker.
type Publisher interface {
	Publish(topic, payload string) error
}

type PublishHandler struct {
	publisher Publisher
	prefix    string
}

func NewPublishHandler(publisher Publisher, prefix string) *PublishHandler {
	return &PublishHandler{publisher: publisher, prefix: prefix}
}

// SendCommand handles POST /api/v1/devices/:device_id/command. The
// payload is forwarded verbatim on the device's cmd topic; firmware
// defines what it means.
func (h *PublishHandler) SendCommand(c *gin.Context) {
	var body struct {
		Payload string `json:"payload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	deviceID := c.Param("device_id")
	topic := fmt.Sprintf("%s/%s/cmd", h.prefix, deviceID)
	if err := h.publisher.Publish(topic, body.Payload); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Command published",
		"topic":   topic,
	})
}
