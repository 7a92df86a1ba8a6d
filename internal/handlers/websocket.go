package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"emo-pages-backend/internal/middleware"
	"emo-pages-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // pages are opened from shared links on any origin
	},
}

// WebSocketHandler serves the live viewer and the live inbox
type WebSocketHandler struct {
	viewer       *services.Viewer
	anonService  *services.AnonymousService
	links        *services.Links
	hub          *services.InboxHub
	countdown    int
	pollInterval time.Duration
	clock        services.Clock
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	viewer *services.Viewer,
	anonService *services.AnonymousService,
	links *services.Links,
	hub *services.InboxHub,
	countdown int,
	pollInterval time.Duration,
) *WebSocketHandler {
	return &WebSocketHandler{
		viewer:       viewer,
		anonService:  anonService,
		links:        links,
		hub:          hub,
		countdown:    countdown,
		pollInterval: pollInterval,
		clock:        services.SystemClock,
	}
}

// wsConn serialises writes to one connection
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg services.WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// readLoop forwards client messages until the connection drops, then
// cancels the session
func readLoop(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc, slug string) <-chan services.WSMessage {
	in := make(chan services.WSMessage, 8)
	go func() {
		defer close(in)
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Error().Err(err).Str("slug", slug).Msg("WebSocket error")
				}
				return
			}

			var msg services.WSMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Debug().Err(err).Str("slug", slug).Msg("Failed to parse WebSocket message")
				msg = services.WSMessage{Type: "invalid"}
			}
			select {
			case in <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()
	return in
}

// ViewPage handles GET /ws/view/{slug}
func (h *WebSocketHandler) ViewPage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.viewer.Load(r.Context(), slug)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load page")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	out := &wsConn{conn: conn}
	in := readLoop(ctx, conn, cancel, slug)

	log.Info().Str("slug", slug).Str("type", string(page.Type)).Msg("Viewer session started")

	session := services.NewViewSession(page, h.anonService, h.links, h.clock, h.countdown)
	if err := session.Run(ctx, in, out.send); err != nil {
		log.Debug().Err(err).Str("slug", slug).Msg("Viewer session ended")
	}
}

// Inbox handles GET /ws/inbox?token=, where token is a stream token issued
// with a successful inbox read
func (h *WebSocketHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetStreamClaims(r.Context())
	if claims == nil {
		respondError(w, msgUnauthorized, http.StatusUnauthorized)
		return
	}

	page, err := h.anonService.SendPage(r.Context(), claims.Slug)
	if err != nil || page.ID != claims.PageID {
		respondError(w, msgUnauthorized, http.StatusUnauthorized)
		return
	}
	inbox, err := h.anonService.InboxForPage(r.Context(), page)
	if err != nil {
		respondServiceError(w, r, err, "Failed to load inbox")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()

	out := &wsConn{conn: conn}
	push := func(in *services.Inbox) {
		if err := out.send(services.WSMessage{Type: services.MsgInbox, Data: in}); err != nil {
			cancel()
		}
	}

	signals, unsubscribe := h.hub.Subscribe(page.ID)
	defer unsubscribe()

	poller := h.anonService.ForInbox(inbox, h.pollInterval, h.clock, push)
	push(inbox)
	go poller.Run(ctx)

	in := readLoop(ctx, conn, cancel, page.Slug)
	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
		case msg, ok := <-in:
			if !ok {
				return
			}
			if msg.Type != services.MsgRefresh {
				_ = out.send(services.WSMessage{Type: services.MsgError, Message: services.UnsupportedAction})
				continue
			}
		}

		if _, err := poller.Reload(ctx); err != nil {
			log.Warn().Err(err).Str("slug", page.Slug).Msg("Inbox reload failed")
		}
	}
}
