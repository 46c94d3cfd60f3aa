package websocket

import "time"

// Envelope wraps every outbound message so kiosks can dispatch on Type.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	TypeReaderState = "reader.state"
	TypeSwipeResult = "swipe.result"
	TypeError       = "error"
)

// KeyMessage is one keystroke forwarded by a kiosk from its USB card reader.
type KeyMessage struct {
	Key string `json:"key"`
}

type ReaderStatePayload struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
