package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one kiosk connection bound to a piece of equipment.
type Client struct {
	ID          string
	EquipmentID uint64
	Hub         *Hub
	Conn        *websocket.Conn
	Send        chan []byte
	logger      *zap.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, equipmentID uint64, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:          id,
		EquipmentID: equipmentID,
		Hub:         hub,
		Conn:        conn,
		Send:        make(chan []byte, 32),
		logger:      logger.With(zap.String("sessionID", id), zap.Uint64("equipmentID", equipmentID)),
	}
}

// ReadPump delivers every inbound text message to handle, in order, on the
// calling goroutine. It returns when the connection closes.
func (c *Client) ReadPump(handle func(message []byte)) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { return c.Conn.SetReadDeadline(time.Now().Add(pongWait)) })
	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("reader connection dropped", zap.Error(err))
			}
			return
		}
		handle(message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
