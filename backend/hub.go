package main

import (
	"encoding/json"
	"sync"
)

// Hub fans status, history, reset and settings payloads out to every
// websocket client. Slow clients drop messages instead of blocking the hub.
type Hub struct {
	mu                sync.Mutex
	clients           map[*Client]struct{}
	broadcastHistory  chan historyPayload
	broadcastStatus   chan StatusResponse
	broadcastReset    chan resetPayload
	broadcastSettings chan settingsPayload
}

type Client struct {
	hub  *Hub
	send chan []byte
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		clients:           make(map[*Client]struct{}),
		broadcastHistory:  make(chan historyPayload, 32),
		broadcastStatus:   make(chan StatusResponse, 32),
		broadcastReset:    make(chan resetPayload, 8),
		broadcastSettings: make(chan settingsPayload, 8),
	}
}

func (h *Hub) Run(done <-chan struct{}) {
	for {
		var msg wsMessage
		select {
		case <-done:
			h.closeAll()
			return
		case payload := <-h.broadcastHistory:
			msg = wsMessage{Type: "history", Payload: mustMarshal(payload)}
		case payload := <-h.broadcastStatus:
			msg = wsMessage{Type: "status", Payload: mustMarshal(payload)}
		case payload := <-h.broadcastReset:
			msg = wsMessage{Type: "reset", Payload: mustMarshal(payload)}
		case payload := <-h.broadcastSettings:
			msg = wsMessage{Type: "settings", Payload: mustMarshal(payload)}
		}
		h.mu.Lock()
		for client := range h.clients {
			client.sendJSON(msg)
		}
		h.mu.Unlock()
	}
}

// PublishStatus queues a payload without blocking the caller when the hub lags.
func (h *Hub) PublishStatus(status StatusResponse) {
	select {
	case h.broadcastStatus <- status:
	default:
	}
}

func (h *Hub) PublishHistory(payload historyPayload) {
	select {
	case h.broadcastHistory <- payload:
	default:
	}
}

func (h *Hub) PublishReset(payload resetPayload) {
	select {
	case h.broadcastReset <- payload:
	default:
	}
}

func (h *Hub) PublishSettings(payload settingsPayload) {
	select {
	case h.broadcastSettings <- payload:
	default:
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) HasClients() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}
