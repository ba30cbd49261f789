// Package live pushes reservation changes to dashboards over WebSocket.
package live

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/myceliumAI/polypore/internal/events"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

type subscriber struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	itemID int64 // 0 means every item
}

// Hub tracks connected dashboards. It is an events.Sink.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*subscriber
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]*subscriber)}
}

func (h *Hub) Name() string { return "websocket" }

// Send queues the change for every matching subscriber. Slow subscribers miss events
// rather than stall the writer.
func (h *Hub) Send(_ context.Context, c events.Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		if s.itemID != 0 && s.itemID != c.ItemID {
			continue
		}
		select {
		case s.send <- data:
		default:
			log.Printf("ws_event_dropped subscriber=%s type=%s", s.id, c.Kind)
		}
	}
	return nil
}

// Close disconnects every subscriber and refuses new ones.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, s := range h.subs {
		delete(h.subs, id)
		close(s.send)
	}
	return nil
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Serve registers conn and blocks until the client goes away.
func (h *Hub) Serve(conn *websocket.Conn, itemID int64) {
	s := &subscriber{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		itemID: itemID,
	}
	if !h.register(s) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	log.Printf("ws_connected subscriber=%s item_id=%d", s.id, itemID)

	go h.writePump(s)
	h.readPump(s)
}

func (h *Hub) register(s *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subs[s.id] = s
	return true
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.subs[s.id]; ok && existing == s {
		delete(h.subs, s.id)
		close(s.send)
	}
}

// readPump only keeps the read deadline fresh; clients have nothing to say.
func (h *Hub) readPump(s *subscriber) {
	defer func() {
		h.unregister(s)
		_ = s.conn.Close()
		log.Printf("ws_disconnected subscriber=%s", s.id)
	}()

	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws_read_error subscriber=%s error=%q", s.id, err.Error())
			}
			return
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
