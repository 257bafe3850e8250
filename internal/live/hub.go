package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead. Pings go out a little more often than that.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing message buffer depth. A client
	// that falls this far behind is dropped rather than waited for.
	sendBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Allow all origins — callers should apply CORS at the reverse-proxy level.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients on every broadcast tick.
type Message struct {
	Event string `json:"event"`
	Data  Status `json:"data"`
}

// Hub fans the board's current status out to WebSocket clients on a fixed
// interval. Each client is just its buffered send channel; the per-client
// goroutines hold the connection. Nothing is sent while the board is stale.
type Hub struct {
	board    *Board
	interval time.Duration

	mu      sync.Mutex
	clients map[chan []byte]struct{}
}

// NewHub creates a Hub that reads from board and broadcasts every interval.
func NewHub(board *Board, interval time.Duration) *Hub {
	return &Hub{
		board:    board,
		interval: interval,
		clients:  make(map[chan []byte]struct{}),
	}
}

// Run starts the broadcast ticker loop. It blocks until ctx is cancelled,
// then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for ch := range h.clients {
				close(ch)
				delete(h.clients, ch)
			}
			h.mu.Unlock()
			return
		case <-t.C:
			h.broadcast()
		}
	}
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the
// client. A fresh status is sent immediately on connect; further updates
// arrive on each broadcast tick. Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	// Queue the greeting snapshot before the channel becomes visible to
	// broadcast; afterwards only the hub (under its lock) sends or closes.
	ch := make(chan []byte, sendBufSize)
	if data, ok := h.snapshot(); ok {
		ch <- data
	}

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	defer h.detach(ch)

	go writeLoop(conn, ch)
	readLoop(conn) // blocks until the connection closes
}

// detach removes ch and closes it, unless broadcast already dropped it.
func (h *Hub) detach(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// broadcast queues the current snapshot for every client. A client whose
// buffer is already full is disconnected on the spot.
func (h *Hub) broadcast() {
	data, ok := h.snapshot()
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- data:
		default:
			delete(h.clients, ch)
			close(ch)
		}
	}
}

// snapshot marshals the board's status, or reports false while it is stale.
func (h *Hub) snapshot() ([]byte, bool) {
	status, ok := h.board.Get()
	if !ok {
		return nil, false
	}
	data, err := json.Marshal(Message{Event: "status", Data: status})
	if err != nil {
		return nil, false
	}
	return data, true
}

// writeLoop forwards queued messages to the connection, interleaved with
// ping frames. It owns the connection's write side and closes the
// connection when ch is closed or a write fails.
func writeLoop(conn *websocket.Conn, ch chan []byte) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		conn.Close()
	}()

	for {
		var err error
		select {
		case msg, ok := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil) //nolint:errcheck
				return
			}
			err = conn.WriteMessage(websocket.TextMessage, msg)
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
			err = conn.WriteMessage(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

// readLoop consumes inbound frames so control messages are processed and a
// disconnect is noticed. The feed is one-way; data frames are discarded.
func readLoop(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
