package websockets

import (
	"context"
	"encoding/json"
	"server/config"
	"server/internal/database"
	"server/internal/events"
	"server/internal/logger"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Manager relays import lifecycle events to connected WebSocket clients.
// Events travel through the event bus rather than directly to the local
// client set, so progress published by any instance reaches every client.
type Manager struct {
	db       database.DB
	eventBus *events.EventBus
	log      logger.Logger

	mu      sync.RWMutex
	clients map[*websocket.Conn]bool
}

func New(db database.DB, eventBus *events.EventBus, config config.Config) (*Manager, error) {
	m := &Manager{
		db:       db,
		eventBus: eventBus,
		log:      logger.New("websockets"),
		clients:  make(map[*websocket.Conn]bool),
	}

	eventBus.Subscribe(events.ChannelImports, m.handleEvent)

	return m, nil
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	m.mu.Lock()
	m.clients[c] = true
	m.mu.Unlock()

	log.Info("websocket client connected", "clients", m.clientCount())

	defer func() {
		m.mu.Lock()
		delete(m.clients, c)
		m.mu.Unlock()
		c.Close()
		log.Info("websocket client disconnected", "clients", m.clientCount())
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (m *Manager) SendImportProgress(importID string, data map[string]any) {
	payload := map[string]any{"importId": importID}
	for k, v := range data {
		payload[k] = v
	}
	m.publish(events.Event{Type: events.TypeImportProgress, Payload: payload})
}

func (m *Manager) SendImportComplete(importID string, result map[string]any) {
	payload := map[string]any{"importId": importID}
	for k, v := range result {
		payload[k] = v
	}
	m.publish(events.Event{Type: events.TypeImportComplete, Payload: payload})
}

func (m *Manager) SendImportError(importID string, errorMsg string) {
	m.publish(events.Event{
		Type:    events.TypeImportError,
		Payload: map[string]any{"importId": importID, "error": errorMsg},
	})
}

func (m *Manager) publish(event events.Event) {
	if err := m.eventBus.Publish(context.Background(), events.ChannelImports, event); err != nil {
		m.log.Function("publish").Er("failed to publish import event", err, "type", event.Type)
	}
}

func (m *Manager) handleEvent(event events.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		m.log.Function("handleEvent").Er("failed to marshal event", err, "type", event.Type)
		return
	}
	m.broadcast(payload)
}

func (m *Manager) broadcast(payload []byte) {
	m.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(m.clients))
	for c := range m.clients {
		conns = append(conns, c)
	}
	m.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			m.mu.Lock()
			delete(m.clients, c)
			m.mu.Unlock()
			c.Close()
		}
	}
}

func (m *Manager) clientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
