// Package transport wires rooms up to real network connections: the
// WebSocket hub/client pair, HTTP routes, optional JWT/bcrypt identity,
// and the join-link QR endpoint.
package transport

import (
	"sync"

	"teamshooter/persist"
	"teamshooter/roommgr"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub owns every live connection plus the shared room registry, auth, and
// persistence layers a Client needs to reach.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	rooms *roommgr.Manager
	db    *persist.DB
	auth  *Auth

	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int

	onlineMu    sync.RWMutex
	onlineUsers map[int64]*Client
}

// NewHub creates a Hub with a fresh room registry, backed by the given
// (optional, may be nil) persistence layer.
func NewHub(db *persist.DB) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		register:    make(chan *Client, 64),
		unregister:  make(chan *Client, 64),
		rooms:       roommgr.NewManager(db),
		db:          db,
		auth:        NewAuth(db),
		ipConns:     make(map[string]int),
		onlineUsers: make(map[int64]*Client),
	}
}

// CanAccept reports whether a new connection from ip is within the
// per-IP and total connection limits.
func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

// TrackConnect records a new connection from ip.
func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]++
	h.totalConns++
}

// TrackDisconnect releases a connection slot for ip.
func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			client.leaveRoom()
		}
	}
}

// SetOnline marks an authenticated player as connected via client.
func (h *Hub) SetOnline(playerID int64, client *Client) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	h.onlineUsers[playerID] = client
}

// SetOffline drops an authenticated player's online tracking.
func (h *Hub) SetOffline(playerID int64) {
	h.onlineMu.Lock()
	defer h.onlineMu.Unlock()
	delete(h.onlineUsers, playerID)
}

// ClientCount returns the number of currently registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
