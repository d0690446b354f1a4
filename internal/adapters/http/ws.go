package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 5 * time.Second

var wsUpgrader = websocket.Upgrader{
	// TODO: restrict origins once the status page is served behind a configurable public URL.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ReloadHub fans reload events out to connected websocket clients.
// Slow clients miss events instead of blocking the reload.
type ReloadHub struct {
	mu      sync.Mutex
	clients map[chan domain.ReloadEvent]struct{}
	closed  bool
}

// NewReloadHub creates an empty hub.
func NewReloadHub() *ReloadHub {
	return &ReloadHub{clients: make(map[chan domain.ReloadEvent]struct{})}
}

func (h *ReloadHub) add() (chan domain.ReloadEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	ch := make(chan domain.ReloadEvent, 8)
	h.clients[ch] = struct{}{}
	return ch, true
}

func (h *ReloadHub) remove(ch chan domain.ReloadEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
}

// Broadcast sends ev to every client without blocking.
func (h *ReloadHub) Broadcast(ev domain.ReloadEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- ev:
		default:
			utils.Logger.Warn("websocket client too slow, dropping reload event", "id", ev.ID)
		}
	}
}

// Clients returns the number of connected clients.
func (h *ReloadHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *ReloadHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

// wsReloads upgrades to WebSocket and streams reload events as JSON until the
// client disconnects or the hub closes.
func (s *Server) wsReloads(w http.ResponseWriter, r *http.Request) {
	events, ok := s.hub.add()
	if !ok {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.hub.remove(events)

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		utils.Logger.Error("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				utils.Logger.Debug("websocket client disconnected", "err", err)
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
					time.Now().Add(wsWriteTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				utils.Logger.Info("websocket write failed, stopping stream", "err", err)
				return
			}
		}
	}
}
