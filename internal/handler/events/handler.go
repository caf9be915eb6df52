// Package events pushes session state changes to the widget, over
// websocket or Server-Sent Events.
package events

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/moloudamini/chatbot/internal/session"
	"github.com/moloudamini/chatbot/pkg/utils"
)

const heartbeatInterval = 8 * time.Second

// Handler streams snapshots of the session to connected widgets.
type Handler struct {
	session  *session.Session
	upgrader websocket.Upgrader
}

// New creates the events handler.
func New(sess *session.Session) *Handler {
	return &Handler{
		session: sess,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the streaming routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/widget/ws", h.handleWebSocket)
	r.Get("/widget/events", h.handleSSE)
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain inbound frames so close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	changes, unwatch := h.session.Watch()
	defer unwatch()

	if err := conn.WriteJSON(h.session.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			if err := conn.WriteJSON(h.session.Snapshot()); err != nil {
				return
			}
		}
	}
}

func (h *Handler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	utils.SetupSSEHeaders(w)

	changes, unwatch := h.session.Watch()
	defer unwatch()

	utils.SendSSEEvent(w, flusher, "state", h.session.Snapshot())

	ctx := r.Context()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-changes:
			utils.SendSSEEvent(w, flusher, "state", h.session.Snapshot())
		case t := <-ticker.C:
			utils.SendSSEChunk(w, flusher, map[string]string{
				"event": "heartbeat",
				"time":  t.UTC().Format(time.RFC3339),
			})
		}
	}
}
