package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client represents a WebSocket connection
type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	BoothID string
}

// Hub maintains active clients and broadcasts messages
type Hub struct {
	Clients    map[string]map[*Client]bool // boothID -> clients
	Broadcast  chan *Message
	Register   chan *Client
	Unregister chan *Client
	Mu         sync.RWMutex
}

// Message represents a WebSocket message
type Message struct {
	Type      string          `json:"type"`
	BoothID   string          `json:"boothId"`
	Shot      int             `json:"shot,omitempty"`
	Remaining int             `json:"remaining,omitempty"`
	PhotoID   string          `json:"photoId,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Message types
const (
	MSG_COUNTDOWN_TICK    = "countdown.tick"
	MSG_FLASH             = "flash"
	MSG_SHOT_CAPTURED     = "shot.captured"
	MSG_SEQUENCE_COMPLETE = "sequence.complete"
	MSG_CAPTURE_ERROR     = "capture.error"
	MSG_SAVE_STARTED      = "save.started"
	MSG_SAVE_FINISHED     = "save.finished"
)

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]map[*Client]bool),
		Broadcast:  make(chan *Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}
