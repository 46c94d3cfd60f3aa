package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub tracks kiosk connections per piece of equipment, so a swipe result is
// shown on every screen attached to the same machine.
type Hub struct {
	mu        sync.RWMutex
	equipment map[uint64]map[*Client]struct{}
	logger    *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{equipment: make(map[uint64]map[*Client]struct{}), logger: logger}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.equipment[c.EquipmentID] == nil {
		h.equipment[c.EquipmentID] = make(map[*Client]struct{})
	}
	h.equipment[c.EquipmentID][c] = struct{}{}
	h.logger.Info("reader connected", zap.String("sessionID", c.ID), zap.Uint64("equipmentID", c.EquipmentID))
}

// Unregister removes the client and closes its send channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.equipment[c.EquipmentID]
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.Send)
	if len(clients) == 0 {
		delete(h.equipment, c.EquipmentID)
	}
	h.logger.Info("reader disconnected", zap.String("sessionID", c.ID))
}

// Connected reports how many kiosks are attached to the equipment.
func (h *Hub) Connected(equipmentID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.equipment[equipmentID])
}

func encode(messageType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Type: messageType, Payload: payload, Timestamp: time.Now().UTC()})
}

// SendToClient queues a message for one connection.
func (h *Hub) SendToClient(c *Client, messageType string, payload interface{}) error {
	message, err := encode(messageType, payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.equipment[c.EquipmentID][c]; ok {
		h.offer(c, message)
	}
	return nil
}

// SendToEquipment queues a message for every kiosk of the equipment.
func (h *Hub) SendToEquipment(equipmentID uint64, messageType string, payload interface{}) error {
	message, err := encode(messageType, payload)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.equipment[equipmentID] {
		h.offer(c, message)
	}
	return nil
}

// offer drops the message for a client whose buffer is full rather than
// blocking every other kiosk behind it.
func (h *Hub) offer(c *Client, message []byte) {
	select {
	case c.Send <- message:
	default:
		h.logger.Warn("reader send buffer full, dropping message", zap.String("sessionID", c.ID))
	}
}
