// Package progress streams HARDY's level-by-level orchestrator progress
// (anchors, regions, regional, validate) to WebSocket subscribers,
// keyed by job ID instead of by agent ID.
package progress

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Event is a single progress update for one alignment job.
type Event struct {
	JobID     string `json:"job_id"`
	Level     string `json:"level"`
	Detail    string `json:"detail"`
	Timestamp int64  `json:"timestamp"`
}

// Hub manages WebSocket subscribers to alignment job progress.
type Hub struct {
	clients      map[*Client]bool
	clientsByJob map[string]map[*Client]bool
	allClients   map[*Client]bool
	broadcast    chan Event
	register     chan *Client
	unregister   chan *Client
	running      bool
	mu           sync.RWMutex
}

// Client is one subscribed WebSocket connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan Event
	jobID   string
	allJobs bool // true for connections subscribed to every job's progress
}

// NewHub creates an unstarted progress hub.
func NewHub() *Hub {
	return &Hub{
		clients:      make(map[*Client]bool),
		clientsByJob: make(map[string]map[*Client]bool),
		allClients:   make(map[*Client]bool),
		broadcast:    make(chan Event, 256),
		register:     make(chan *Client, 256),
		unregister:   make(chan *Client, 256),
	}
}

// Start begins the hub's dispatch loop.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
	logrus.Info("progress hub started")
}

// Stop halts the hub's dispatch loop and closes all channels.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.broadcast)
	close(h.register)
	close(h.unregister)
	logrus.Info("progress hub stopped")
}

func (h *Hub) run() {
	for {
		select {
		case client, ok := <-h.register:
			if !ok {
				return
			}
			h.mu.Lock()
			h.clients[client] = true
			if client.allJobs {
				h.allClients[client] = true
			} else {
				if h.clientsByJob[client.jobID] == nil {
					h.clientsByJob[client.jobID] = make(map[*Client]bool)
				}
				h.clientsByJob[client.jobID][client] = true
			}
			h.mu.Unlock()

		case client, ok := <-h.unregister:
			if !ok {
				return
			}
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			if client.allJobs {
				delete(h.allClients, client)
			} else if jobClients, ok := h.clientsByJob[client.jobID]; ok {
				delete(jobClients, client)
				if len(jobClients) == 0 {
					delete(h.clientsByJob, client.jobID)
				}
			}
			h.mu.Unlock()

		case event, ok := <-h.broadcast:
			if !ok {
				return
			}
			h.mu.RLock()
			if jobClients, ok := h.clientsByJob[event.JobID]; ok {
				for client := range jobClients {
					h.deliver(client, event)
				}
			}
			for client := range h.allClients {
				h.deliver(client, event)
			}
			h.mu.RUnlock()
		}
	}
}

// deliver must be called while holding at least a read lock on h.mu.
func (h *Hub) deliver(client *Client, event Event) {
	select {
	case client.send <- event:
	default:
		logrus.Warn("progress hub: client send buffer full, dropping event")
	}
}

// Publish queues a progress event for delivery. It never blocks the
// caller (the orchestrator's ProgressFunc callback runs synchronously
// on the alignment goroutine, so a slow subscriber must never stall
// it); events are dropped if the broadcast channel is saturated.
func (h *Hub) Publish(event Event) {
	h.mu.RLock()
	running := h.running
	h.mu.RUnlock()
	if !running {
		return
	}
	select {
	case h.broadcast <- event:
	default:
		logrus.Warn("progress hub: broadcast channel full, dropping event")
	}
}

// ServeJobWs upgrades the request and subscribes the connection to a
// single job's progress events.
func (h *Hub) ServeJobWs(c *gin.Context, jobID string) {
	h.serve(c, jobID, false)
}

// ServeAllWs upgrades the request and subscribes the connection to
// every job's progress events. No route in internal/api serves it.
func (h *Hub) ServeAllWs(c *gin.Context) {
	h.serve(c, "", true)
}

func (h *Hub) serve(c *gin.Context, jobID string, allJobs bool) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "http://localhost:3000" || origin == "http://127.0.0.1:3000"
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("progress hub: failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan Event, 256),
		jobID:   jobID,
		allJobs: allJobs,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			logrus.Errorf("progress hub: failed to write event: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.Errorf("progress hub: websocket error: %v", err)
			}
			break
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// JobClientCount returns the number of clients subscribed to a job.
func (h *Hub) JobClientCount(jobID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if jobClients, ok := h.clientsByJob[jobID]; ok {
		return len(jobClients)
	}
	return 0
}
