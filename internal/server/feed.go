package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/liftlens/internal/metrics"
	"github.com/ayusman/liftlens/internal/server/api"
	"github.com/ayusman/liftlens/internal/store"
)

const (
	feedBufferSize = 16
	feedWriteWait  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Feed broadcasts every new analysis to connected websocket clients.
type Feed struct {
	metrics *metrics.Manager
	clients map[*feedClient]struct{}
	closed  bool
	mu      sync.Mutex
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewFeed creates an empty feed. m may be nil.
func NewFeed(m *metrics.Manager) *Feed {
	return &Feed{
		metrics: m,
		clients: make(map[*feedClient]struct{}),
	}
}

// ServeHTTP upgrades the request and keeps the client subscribed until it
// disconnects or the feed is closed.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("websocket upgrade error: %s", err)
		return
	}

	c := &feedClient{conn: conn, send: make(chan []byte, feedBufferSize)}
	if !f.add(c) {
		conn.Close()
		return
	}
	go c.writeLoop()

	// Clients only listen; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	f.remove(c)
	conn.Close()
}

// Publish sends a to every client. Clients whose buffer is full miss the
// message rather than stall the publisher.
func (f *Feed) Publish(a *store.Analysis) {
	msg, err := json.Marshal(api.ToAnalysisResponse(a))
	if err != nil {
		log.Errorf("marshal live analysis: %s", err)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for c := range f.clients {
		select {
		case c.send <- msg:
		default:
			log.Warnf("live client %s is too slow, dropping analysis %s", c.conn.RemoteAddr(), a.ID)
		}
	}
}

// Clients returns the number of connected clients.
func (f *Feed) Clients() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.clients)
}

// Close disconnects every client and rejects new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	for c := range f.clients {
		f.drop(c)
	}
}

func (f *Feed) add(c *feedClient) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.clients[c] = struct{}{}
	if f.metrics != nil {
		f.metrics.GaugeLiveClients.Inc()
	}
	return true
}

func (f *Feed) remove(c *feedClient) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.clients[c]; ok {
		f.drop(c)
	}
}

// drop must be called with f.mu held.
func (f *Feed) drop(c *feedClient) {
	delete(f.clients, c)
	close(c.send)
	if f.metrics != nil {
		f.metrics.GaugeLiveClients.Dec()
	}
}

// writeLoop is the only writer of data frames on the connection. It exits
// once send is closed.
func (c *feedClient) writeLoop() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			// Unblocks the reader, which then removes the client.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}

	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"),
		time.Now().Add(feedWriteWait),
	)
	c.conn.Close()
}
