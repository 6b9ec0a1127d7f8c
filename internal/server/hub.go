package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// hub fans snapshots out to socket clients. Only run writes to
// connections.
type hub struct {
	upgrader websocket.Upgrader
	clients  map[*websocket.Conn]bool
	register chan *websocket.Conn
	remove   chan *websocket.Conn
	frames   chan []byte
	quit     chan struct{}
	count    atomic.Int64
	logger   *log.Logger
}

func newHub(logger *log.Logger) *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*websocket.Conn]bool),
		register: make(chan *websocket.Conn),
		remove:   make(chan *websocket.Conn),
		frames:   make(chan []byte, 16),
		quit:     make(chan struct{}),
		logger:   logger,
	}
}

func (h *hub) run(ctx context.Context) {
	defer func() {
		close(h.quit)
		for conn := range h.clients {
			conn.Close()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case conn := <-h.register:
			h.clients[conn] = true
			h.count.Add(1)
		case conn := <-h.remove:
			h.drop(conn)
		case msg := <-h.frames:
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.logger.Debug("socket write failed", "remote", conn.RemoteAddr(), "err", err)
					h.drop(conn)
				}
			}
		}
	}
}

func (h *hub) drop(conn *websocket.Conn) {
	if !h.clients[conn] {
		return
	}
	delete(h.clients, conn)
	h.count.Add(-1)
	conn.Close()
}

func (h *hub) active() bool { return h.count.Load() > 0 }

// broadcast queues msg for every client. Frames are dropped when the hub
// falls behind; the next snapshot supersedes them anyway.
func (h *hub) broadcast(msg []byte) {
	select {
	case h.frames <- msg:
	default:
	}
}

// join registers conn unless ctx ends first.
func (h *hub) join(ctx context.Context, conn *websocket.Conn) bool {
	select {
	case h.register <- conn:
		return true
	case <-ctx.Done():
	case <-h.quit:
	}
	return false
}

func (h *hub) leave(ctx context.Context, conn *websocket.Conn) {
	select {
	case h.remove <- conn:
	case <-ctx.Done():
		conn.Close()
	case <-h.quit:
	}
}
