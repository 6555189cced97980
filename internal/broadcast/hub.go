package broadcast

import (
	"log/slog"
	"sync"
)

// Conn is the send side of a connection the hub can deliver to. Send
// must not block; a connection that cannot keep up drops the frame.
type Conn interface {
	Send(frame []byte) bool
}

// Hub tracks which local connections belong to which group channels and
// fans delivered frames out to them. Membership changes and deliveries
// may come from any goroutine.
type Hub struct {
	mu sync.RWMutex

	// channel name -> member connections
	groups map[string]map[Conn]struct{}

	// reverse index for Drop
	conns map[Conn]map[string]struct{}

	logger *slog.Logger
}

// NewHub creates an empty hub
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		groups: make(map[string]map[Conn]struct{}),
		conns:  make(map[Conn]map[string]struct{}),
		logger: logger,
	}
}

// Join adds a connection to a group channel
func (h *Hub) Join(channel string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.groups[channel] == nil {
		h.groups[channel] = make(map[Conn]struct{})
	}
	h.groups[channel][c] = struct{}{}

	if h.conns[c] == nil {
		h.conns[c] = make(map[string]struct{})
	}
	h.conns[c][channel] = struct{}{}
}

// Leave removes a connection from a group channel
func (h *Hub) Leave(channel string, c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(channel, c)
}

func (h *Hub) leaveLocked(channel string, c Conn) {
	if members, ok := h.groups[channel]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.groups, channel)
		}
	}
	if channels, ok := h.conns[c]; ok {
		delete(channels, channel)
		if len(channels) == 0 {
			delete(h.conns, c)
		}
	}
}

// Drop removes a connection from every group it joined
func (h *Hub) Drop(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for channel := range h.conns[c] {
		h.leaveLocked(channel, c)
	}
}

// Deliver hands a frame to every local member of a channel. A member
// that cannot accept the frame is logged and skipped; delivery failure
// never affects the state change that produced the frame.
func (h *Hub) Deliver(channel string, frame []byte) {
	h.mu.RLock()
	members := make([]Conn, 0, len(h.groups[channel]))
	for c := range h.groups[channel] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if !c.Send(frame) {
			h.logger.Warn("dropped broadcast frame", "channel", channel)
		}
	}
}
