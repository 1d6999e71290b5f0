package handlers

import (
	"log"
	"net/http"

	"sensegrid-server/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards connect from anywhere
	},
}

type WSHandler struct {
	manager *ws.Manager
}

func NewWSHandler(manager *ws.Manager) *WSHandler {
	return &WSHandler{manager: manager}
}

// HandleDashboardWS handles GET /ws and keeps the connection
// registered until the client goes away. The server only pushes;
// client frames are read and discarded to detect disconnects.
func (h *WSHandler) HandleDashboardWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	id := h.manager.Register(conn)
	log.Printf("ws: dashboard client %d connected (%d total)", id, h.manager.Count())

	go func() {
		defer h.manager.Unregister(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Printf("ws: dashboard client %d disconnected", id)
				return
			}
		}
	}()
}

// GetConnectedClients handles GET /api/v1/dashboard/connections
func (h *WSHandler) GetConnectedClients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"connected": h.manager.Count(),
	})
}
