// Package wsgateway fans the dispatcher's notifications out to any
// manager dashboards watching this agent over a websocket. It is a
// direct descendant of the teacher's PubSubSystem/Client pair, cut down
// to the single implicit topic this agent ever publishes: its own
// control-plane stream.
package wsgateway

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to a client.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from a client.
	pongWait = 60 * time.Second

	// Send pings to a client with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size accepted from a client (the agent never reads
	// anything meaningful back, this just bounds the pong frames).
	maxMessageSize = 512

	clientSendBuffer = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// client is one connected dashboard observer.
type client struct {
	id   string
	conn *websocket.Conn
	send chan string
}

// Hub implements transport.Sender by broadcasting every payload to all
// currently connected dashboard clients.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*client)}
}

// HandleWebSocket upgrades the request and registers the connection as
// a broadcast target until the client disconnects. Intended to be
// wired directly as an http.HandlerFunc.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("wsgateway: upgrade failed: %v", err)
		return
	}

	c := &client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan string, clientSendBuffer),
	}

	h.register(c)
	go h.writePump(c)
	h.readPump(c) // blocks until the connection closes
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
}

// readPump only needs to notice disconnects and keep the read deadline
// current via pong frames; the agent never accepts commands back from
// a dashboard.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("wsgateway: client %s: %v", c.id, err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
				log.Printf("wsgateway: write to %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Send broadcasts payload to every connected client. A slow client
// never blocks the dispatcher: the send is non-blocking and a full
// buffer just drops that one client's copy, mirroring the teacher's
// WriteChan handling in PubSubSystem.Publish. Zero connected clients is
// not an error — it just means nobody is watching right now.
func (h *Hub) Send(ctx context.Context, payload string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		select {
		case c.send <- payload:
		default:
			log.Printf("wsgateway: client %s send buffer full, dropping notification", c.id)
		}
	}
	return nil
}

// ClientCount reports how many dashboards are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
