package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ArbiOps/internal/metrics"
	"ArbiOps/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 1024
	// clientBuffer is how many snapshots a slow client may lag before old ones are dropped.
	clientBuffer = 8
)

// controlRequest is a message a dashboard client sends over the socket.
type controlRequest struct {
	Action string `json:"action"`
}

// Hub streams snapshots to websocket clients and accepts control actions from them.
type Hub struct {
	upgrader websocket.Upgrader
	sim      Simulation
	metrics  *metrics.Metrics

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	closed  bool
}

// NewHub creates a hub over sim.
func NewHub(sim Simulation, m *metrics.Metrics) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sim:     sim,
		metrics: m,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) register(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[conn] = struct{}{}
	h.metrics.ClientConnected()
	return true
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		h.metrics.ClientDisconnected()
	}
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()
	for _, c := range conns {
		c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		h.remove(c)
	}
}

// handle upgrades the request. The latest snapshot is sent first, then every
// published one; frames a slow client cannot keep up with are dropped oldest first.
func (h *Hub) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] websocket upgrade failed: %v", err)
		return
	}
	if !h.register(conn) {
		conn.Close()
		return
	}

	snaps, unsubscribe := h.sim.Subscribe(clientBuffer)
	done := make(chan struct{})
	go h.writeLoop(conn, snaps, done)

	defer func() {
		unsubscribe()
		close(done)
		h.remove(conn)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WARN] websocket error: %v", err)
			}
			return
		}
		var req controlRequest
		if err := json.Unmarshal(message, &req); err != nil {
			log.Printf("[WARN] bad websocket message: %v", err)
			continue
		}
		if _, _, err := applyAction(h.sim, req.Action, "ws"); err != nil {
			log.Printf("[WARN] websocket action %q: %v", req.Action, err)
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, snaps <-chan *model.Snapshot, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			data, err := json.Marshal(newSnapshotView(snap))
			if err != nil {
				log.Printf("[ERROR] marshal snapshot: %v", err)
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Printf("[WARN] failed to send snapshot to websocket client: %v", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
