package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"emo-pages-backend/internal/metrics"

	"github.com/rs/zerolog/log"
)

// DefaultPollInterval is how often an open inbox reloads in the background
const DefaultPollInterval = 8 * time.Second

// Reload outcomes reported to metrics
const (
	ReloadOK      = "ok"
	ReloadError   = "error"
	ReloadSkipped = "skipped"
)

// InboxPoller keeps an owner's inbox fresh. Manual refreshes, pushes and the
// background timer all go through Reload; a reload requested while another
// is in flight is dropped, so at most one fetch runs at a time.
type InboxPoller struct {
	load     func(ctx context.Context) (*Inbox, error)
	clock    Clock
	interval time.Duration
	metrics  *metrics.Metrics
	onUpdate func(*Inbox)

	inflight atomic.Bool
	mu       sync.RWMutex
	current  *Inbox
}

// NewInboxPoller creates a poller. onUpdate, when set, receives every inbox
// that replaced the displayed one.
func NewInboxPoller(load func(ctx context.Context) (*Inbox, error), interval time.Duration, clock Clock, m *metrics.Metrics, onUpdate func(*Inbox)) *InboxPoller {
	if clock == nil {
		clock = SystemClock
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &InboxPoller{
		load:     load,
		clock:    clock,
		interval: interval,
		metrics:  m,
		onUpdate: onUpdate,
	}
}

// ForInbox builds a poller that reloads the inbox of an authorised page
func (s *AnonymousService) ForInbox(inbox *Inbox, interval time.Duration, clock Clock, onUpdate func(*Inbox)) *InboxPoller {
	page := inbox.Page
	p := NewInboxPoller(func(ctx context.Context) (*Inbox, error) {
		return s.InboxForPage(ctx, page)
	}, interval, clock, s.pages.metrics, onUpdate)
	p.current = inbox
	return p
}

// Reload fetches the inbox once. It reports false when the call was dropped
// because another reload is running. On error the previous inbox is kept.
func (p *InboxPoller) Reload(ctx context.Context) (bool, error) {
	if !p.inflight.CompareAndSwap(false, true) {
		p.metrics.InboxReload(ReloadSkipped)
		return false, nil
	}
	defer p.inflight.Store(false)

	inbox, err := p.load(ctx)
	if err != nil {
		p.metrics.InboxReload(ReloadError)
		return true, err
	}

	p.mu.Lock()
	p.current = inbox
	p.mu.Unlock()
	p.metrics.InboxReload(ReloadOK)

	if p.onUpdate != nil {
		p.onUpdate(inbox)
	}
	return true, nil
}

// Current returns the last successfully loaded inbox, or nil
func (p *InboxPoller) Current() *Inbox {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Run reloads every interval until ctx is cancelled. Failures are logged
// and leave the current inbox untouched.
func (p *InboxPoller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.clock.After(p.interval):
		}

		if _, err := p.Reload(ctx); err != nil && ctx.Err() == nil {
			log.Debug().Err(err).Msg("Background inbox reload failed")
		}
	}
}
