package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Manager keeps track of active dashboard websocket connections and
// fans telemetry events out to them.
type Manager struct {
	mu          sync.RWMutex
	nextID      uint64
	connections map[uint64]*websocket.Conn
}

func NewManager() *Manager {
	return &Manager{connections: make(map[uint64]*websocket.Conn)}
}

// Register adds a dashboard connection and returns its handle for
// later removal.
func (m *Manager) Register(conn *websocket.Conn) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.connections[m.nextID] = conn
	return m.nextID
}

// Unregister removes and closes a connection.
func (m *Manager) Unregister(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if conn, ok := m.connections[id]; ok {
		_ = conn.Close()
		delete(m.connections, id)
	}
}

// BroadcastJSON sends an event to every connected dashboard. Clients
// that fail to write are dropped so they can never stall ingestion.
func (m *Manager) BroadcastJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("ws: cannot marshal broadcast payload: %v", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.connections {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			_ = conn.Close()
			delete(m.connections, id)
		}
	}
}

// Count returns the number of connected dashboards.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}
