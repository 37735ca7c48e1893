package leaderboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Watchers never send anything meaningful
	maxMessageSize = 512
)

// UpdateTypeLeaderboard tags a pushed board.
const UpdateTypeLeaderboard = "leaderboard"

// Update is the message pushed to watchers.
type Update struct {
	Type  string  `json:"type"`
	Items []Entry `json:"items"`
}

// Hub pushes the board to websocket watchers on connect and after every
// accepted submission.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu       sync.RWMutex
	watchers map[*watcher]struct{}
	closed   bool
}

type watcher struct {
	conn      *websocket.Conn
	send      chan Update
	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub with no watchers.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// The board is public read-only data
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:   logger.WithPrefix("hub"),
		watchers: make(map[*watcher]struct{}),
	}
}

// ServeWS upgrades the request and sends initial as the first update.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, initial []Entry) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	wt := &watcher{
		conn: conn,
		send: make(chan Update, 16),
		done: make(chan struct{}),
	}
	wt.send <- Update{Type: UpdateTypeLeaderboard, Items: nonNil(initial)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.watchers[wt] = struct{}{}
	total := len(h.watchers)
	h.mu.Unlock()
	h.logger.Debug("Watcher connected", "total", total)

	go h.writePump(wt)
	go h.readPump(wt)
}

// Broadcast queues the board for every watcher. Watchers that cannot keep up
// are dropped.
func (h *Hub) Broadcast(items []Entry) {
	update := Update{Type: UpdateTypeLeaderboard, Items: nonNil(items)}

	h.mu.RLock()
	var slow []*watcher
	for wt := range h.watchers {
		select {
		case wt.send <- update:
		default:
			slow = append(slow, wt)
		}
	}
	count := len(h.watchers)
	h.mu.RUnlock()

	for _, wt := range slow {
		h.logger.Warn("Watcher send buffer full, closing connection")
		h.remove(wt)
	}
	h.logger.Debug("Broadcast leaderboard", "recipients", count-len(slow))
}

// Count returns the number of connected watchers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// Close disconnects every watcher and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	watchers := make([]*watcher, 0, len(h.watchers))
	for wt := range h.watchers {
		watchers = append(watchers, wt)
	}
	h.mu.Unlock()

	for _, wt := range watchers {
		h.remove(wt)
	}
}

func (h *Hub) remove(wt *watcher) {
	h.mu.Lock()
	_, ok := h.watchers[wt]
	delete(h.watchers, wt)
	total := len(h.watchers)
	h.mu.Unlock()

	wt.closeOnce.Do(func() {
		close(wt.done)
		_ = wt.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
			time.Now().Add(writeWait))
		_ = wt.conn.Close() // Ignore close errors during cleanup
	})
	if ok {
		h.logger.Debug("Watcher disconnected", "total", total)
	}
}

// readPump only exists to process control frames and notice disconnects.
func (h *Hub) readPump(wt *watcher) {
	defer h.remove(wt)

	wt.conn.SetReadLimit(maxMessageSize)
	_ = wt.conn.SetReadDeadline(time.Now().Add(pongWait))
	wt.conn.SetPongHandler(func(string) error {
		_ = wt.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := wt.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket error", "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(wt *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(wt)
	}()

	for {
		select {
		case update := <-wt.send:
			_ = wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wt.conn.WriteJSON(update); err != nil {
				h.logger.Debug("Failed to write update", "error", err)
				return
			}

		case <-ticker.C:
			_ = wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wt.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-wt.done:
			return
		}
	}
}

func nonNil(items []Entry) []Entry {
	if items == nil {
		return []Entry{}
	}
	return items
}
