package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nevroth/nevroth/internal/logging"
)

// Hub tracks live connections and the named groups they belong to.
//
// The client set owns connection lifetime; groups only point back at
// clients. Every exit path of a connection ends in LeaveAll, so a closed
// connection never lingers in a group.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	groups  map[string]map[*Client]struct{}
	closed  bool
	logger  logging.Logger
}

// ErrHubClosed is returned by Join once Run has shut the hub down.
var ErrHubClosed = errors.New("hub closed")

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		groups:  make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Join adds the client to group. Joining twice is the same as joining once.
// After shutdown it refuses with ErrHubClosed.
func (h *Hub) Join(group string, c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	h.clients[c] = struct{}{}
	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Client]struct{})
		h.groups[group] = members
	}
	members[c] = struct{}{}
	c.groups[group] = struct{}{}
	return nil
}

// Leave removes the client from group. Unknown groups and clients are
// ignored.
func (h *Hub) Leave(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(group, c)
}

// LeaveAll drops the client from every group and from the hub.
func (h *Hub) LeaveAll(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for group := range c.groups {
		h.leaveLocked(group, c)
	}
	delete(h.clients, c)
}

func (h *Hub) leaveLocked(group string, c *Client) {
	members, ok := h.groups[group]
	if !ok {
		return
	}
	delete(members, c)
	delete(c.groups, group)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Publish sends event to every client in group at the time of the call.
// An empty or unknown group is a no-op.
func (h *Hub) Publish(group string, event ServerEvent) {
	h.PublishExcept(group, event, 0)
}

// PublishExcept is Publish skipping every connection of the given user.
// A zero userID skips nobody.
func (h *Hub) PublishExcept(group string, event ServerEvent, userID int64) {
	frame, err := encodeEvent(event)
	if err != nil {
		h.logger.Error(context.Background(), "cannot encode event", "group", group, "error", err)
		return
	}
	h.publishFrame(group, frame, userID)
}

func (h *Hub) publishFrame(group string, frame []byte, exceptUserID int64) {
	h.mu.RLock()
	recipients := make([]*Client, 0, len(h.groups[group]))
	for c := range h.groups[group] {
		if exceptUserID != 0 && c.user.ID == exceptUserID {
			continue
		}
		recipients = append(recipients, c)
	}
	h.mu.RUnlock()

	for _, c := range recipients {
		if c.enqueue(frame) {
			continue
		}
		h.logger.Warn(context.Background(), "dropping slow connection",
			"conn_id", c.id, "user_id", c.user.ID, "group", group)
		h.LeaveAll(c)
		c.closeWith(websocket.ClosePolicyViolation)
	}
}

// GroupSize reports how many clients are currently in group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Run blocks until ctx is done, then closes every live connection and
// refuses later joins.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.LeaveAll(c)
		c.closeWith(websocket.CloseGoingAway)
	}
	h.logger.Info(context.Background(), "hub stopped", "closed", len(clients))
	return nil
}
