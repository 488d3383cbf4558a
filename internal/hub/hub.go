// Package hub tracks live duplex connections, their roles, and fans
// messages out to accounts and admins.
package hub

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Role is a tagged connection role. A connection is a client handle, an
// admin handle, or neither; never both.
type Role int

const (
	RoleUnbound Role = iota
	RoleClient
	RoleAdmin
)

type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	accounts map[string]map[*Client]struct{}
	admins   map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		accounts: make(map[string]map[*Client]struct{}),
		admins:   make(map[*Client]struct{}),
	}
}

// Add wraps a connection and registers it. The caller starts the pumps.
func (h *Hub) Add(conn *websocket.Conn) *Client {
	c := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

// Remove drops the connection from every index. Positions and balances are
// account-scoped, so no other cleanup is needed.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	delete(h.admins, c)
	c.mu.Lock()
	if c.role == RoleClient {
		h.unbindLocked(c, c.userID)
	}
	c.role = RoleUnbound
	c.userID = ""
	c.mu.Unlock()
	h.mu.Unlock()
}

// BindAccount binds the connection to an account identifier. Rebinding
// moves the connection; admin connections are never bound.
func (h *Hub) BindAccount(c *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == RoleAdmin {
		return
	}
	if c.role == RoleClient && c.userID != userID {
		h.unbindLocked(c, c.userID)
	}
	set, ok := h.accounts[userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.accounts[userID] = set
	}
	set[c] = struct{}{}
	c.role = RoleClient
	c.userID = userID
}

// PromoteAdmin flips the connection to the admin role, dropping any
// account binding first. Idempotent.
func (h *Hub) PromoteAdmin(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.role == RoleClient {
		h.unbindLocked(c, c.userID)
	}
	c.role = RoleAdmin
	c.userID = ""
	h.admins[c] = struct{}{}
}

func (h *Hub) unbindLocked(c *Client, userID string) {
	if set, ok := h.accounts[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.accounts, userID)
		}
	}
}

// ToAccount delivers to every connection bound to the account.
func (h *Hub) ToAccount(userID string, msg any) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.accounts[userID]))
	for c := range h.accounts[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.Send(msg)
	}
}

// ToAdmins delivers to every admin connection, fire-and-forget.
func (h *Hub) ToAdmins(msg any) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.admins))
	for c := range h.admins {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	for _, c := range targets {
		c.Send(msg)
	}
}

// Counts reports live connections and admins, for the health endpoint.
func (h *Hub) Counts() (connections, admins int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients), len(h.admins)
}
