package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub delivers notifications to live websocket clients, keyed by entity id.
// An entity with no connected client cannot be reached; that delivery fails
// and the caller's cooldown state stays untouched.
type Hub struct {
	mu    sync.Mutex
	conns map[uint64][]*websocket.Conn
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[uint64][]*websocket.Conn)}
}

// HandleWS upgrades an HTTP request carrying ?entity={id} and keeps the
// connection registered until the client disconnects.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.URL.Query().Get("entity"), 10, 64)
	if err != nil {
		http.Error(w, "entity query parameter required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.conns[id] = append(h.conns[id], conn)
	h.mu.Unlock()
	slog.Info("pulse client connected", "entity", id)

	// Read loop only to detect disconnects; clients do not send commands.
	go func() {
		defer h.drop(id, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(id uint64, conn *websocket.Conn) {
	conn.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	kept := h.conns[id][:0]
	for _, c := range h.conns[id] {
		if c != conn {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		delete(h.conns, id)
	} else {
		h.conns[id] = kept
	}
	slog.Info("pulse client disconnected", "entity", id)
}

// Deliver pushes the notification as a JSON frame to every connection the
// target has open. Fails when the target has none.
func (h *Hub) Deliver(ctx context.Context, target uint64, message string, intensityPct int) error {
	frame, err := json.Marshal(map[string]any{
		"target_id":     target,
		"message":       message,
		"intensity_pct": intensityPct,
		"sent_at":       time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}

	h.mu.Lock()
	conns := append([]*websocket.Conn(nil), h.conns[target]...)
	h.mu.Unlock()

	if len(conns) == 0 {
		return fmt.Errorf("entity %d has no connected pulse client", target)
	}

	delivered := false
	for _, conn := range conns {
		if deadline, ok := ctx.Deadline(); ok {
			conn.SetWriteDeadline(deadline)
		}
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			slog.Warn("pulse write failed", "entity", target, "error", err)
			h.drop(target, conn)
			continue
		}
		delivered = true
	}
	if !delivered {
		return fmt.Errorf("entity %d: all pulse writes failed", target)
	}
	return nil
}

// Connected reports whether the entity has at least one live client.
func (h *Hub) Connected(id uint64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[id]) > 0
}
