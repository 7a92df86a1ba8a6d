package services

import (
	"sync"

	"emo-pages-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// WSMessage is the envelope of every websocket frame in both directions
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
}

// Message types
const (
	MsgReveal       = "reveal"
	MsgPresentation = "presentation"
	MsgCountdown    = "countdown"
	MsgValentine    = "valentine"
	MsgReplySaved   = "reply_saved"
	MsgInbox        = "inbox"
	MsgError        = "error"

	MsgYes      = "yes"
	MsgNo       = "no"
	MsgViewport = "viewport"
	MsgReply    = "reply"
	MsgRefresh  = "refresh"
)

// InboxHub tells open inbox streams that their page received a reply
type InboxHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan struct{}]struct{}
}

// NewInboxHub creates a new inbox hub
func NewInboxHub() *InboxHub {
	return &InboxHub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers interest in replies to pageID. The returned channel
// receives at most one pending signal; cancel must be called when done.
func (h *InboxHub) Subscribe(pageID string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	if h.subs[pageID] == nil {
		h.subs[pageID] = make(map[chan struct{}]struct{})
	}
	h.subs[pageID][ch] = struct{}{}
	h.mu.Unlock()

	log.Info().Str("page_id", pageID).Msg("Inbox stream registered")

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[pageID], ch)
			if len(h.subs[pageID]) == 0 {
				delete(h.subs, pageID)
			}
			log.Info().Str("page_id", pageID).Msg("Inbox stream unregistered")
		})
	}
}

// Subscribers returns how many streams watch pageID
func (h *InboxHub) Subscribers(pageID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[pageID])
}

// ResponseSaved signals every stream of the reply's page
func (h *InboxHub) ResponseSaved(resp *models.Response) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subs[resp.PageID] {
		select {
		case ch <- struct{}{}:
		default:
			// a signal is already pending
		}
	}
}
