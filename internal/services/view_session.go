package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"emo-pages-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Messages shown to viewers
const (
	ReplyThanks       = "Thank you!"
	ReplyFailed       = "Failed to send your message. Please try again."
	ReplyInFlight     = "Your message is still being sent."
	UnsupportedAction = "This page does not support that action."
)

// ReplySaved confirms an anonymous reply and points the sender at creating
// their own link
type ReplySaved struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	CreateURL string    `json:"create_url,omitempty"`
}

// ViewSession drives one visitor's live view of a page: the reveal, the
// presentation, the birthday countdown and the interactive parts of the
// valentine and anonymous pages.
type ViewSession struct {
	page      *models.Page
	anon      *AnonymousService
	links     *Links
	clock     Clock
	countdown int
	game      *ValentineGame

	sendMu   sync.Mutex
	send     func(WSMessage) error
	replying atomic.Bool
	wg       sync.WaitGroup
}

// NewViewSession creates a session for an already loaded page
func NewViewSession(page *models.Page, anon *AnonymousService, links *Links, clock Clock, countdown int) *ViewSession {
	if clock == nil {
		clock = SystemClock
	}
	s := &ViewSession{
		page:      page.Public(),
		anon:      anon,
		links:     links,
		clock:     clock,
		countdown: countdown,
	}
	if page.Type == models.PageTypeValentine {
		s.game = NewValentineGame(DefaultViewport)
	}
	return s
}

// Run plays the session until ctx is cancelled or in is closed. Client
// messages that arrive during the reveal are handled once it is over.
func (s *ViewSession) Run(ctx context.Context, in <-chan WSMessage, send func(WSMessage) error) error {
	s.send = send
	defer s.wg.Wait()

	err := NewReveal(s.clock, s.countdown).Run(ctx, func(ev RevealEvent) error {
		return s.emit(WSMessage{Type: MsgReveal, Data: ev})
	})
	if err != nil {
		return ignoreCancel(err)
	}

	pres := Render(s.page, s.clock.Now())
	if err := s.emit(WSMessage{Type: MsgPresentation, Data: pres}); err != nil {
		return err
	}

	var tickC <-chan time.Time
	if s.countdownTicks(pres) {
		tickC = s.clock.After(time.Second)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-in:
			if !ok {
				return nil
			}
			if err := s.handle(ctx, msg); err != nil {
				return err
			}
		case <-tickC:
			adv := RenderBirthdayAdvance(s.page.Content, s.clock.Now())
			if err := s.emit(WSMessage{Type: MsgCountdown, Data: adv.TimeLeft}); err != nil {
				return err
			}
			tickC = nil
			// the countdown holds at zero
			if !adv.TimeLeft.Zero() {
				tickC = s.clock.After(time.Second)
			}
		}
	}
}

func (s *ViewSession) countdownTicks(pres Presentation) bool {
	adv, ok := pres.Data.(BirthdayAdvancePresentation)
	return ok && adv.Countdown && adv.HasDate && !adv.TimeLeft.Zero()
}

func (s *ViewSession) handle(ctx context.Context, msg WSMessage) error {
	switch msg.Type {
	case MsgViewport:
		if s.game != nil {
			s.game.Resize(viewportFrom(msg.Data))
		}
		return nil
	case MsgYes, MsgNo:
		if s.game == nil {
			return s.emit(WSMessage{Type: MsgError, Message: UnsupportedAction})
		}
		state := s.game.No
		if msg.Type == MsgYes {
			state = s.game.Yes
		}
		return s.emit(WSMessage{Type: MsgValentine, Data: state()})
	case MsgReply:
		return s.reply(ctx, msg.Message)
	default:
		return s.emit(WSMessage{Type: MsgError, Message: UnsupportedAction})
	}
}

// reply saves in the background so the countdown keeps ticking; a second
// reply while one is saving is refused.
func (s *ViewSession) reply(ctx context.Context, text string) error {
	if s.page.Type != models.PageTypeAnonymous || s.anon == nil {
		return s.emit(WSMessage{Type: MsgError, Message: UnsupportedAction})
	}
	if _, err := validateReply(text); err != nil {
		return s.emit(WSMessage{Type: MsgError, Message: "Please write a message first."})
	}
	if !s.replying.CompareAndSwap(false, true) {
		return s.emit(WSMessage{Type: MsgError, Message: ReplyInFlight})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.replying.Store(false)

		resp, err := s.anon.ReplyToPage(context.WithoutCancel(ctx), s.page, text)
		if err != nil {
			log.Error().Err(err).Str("page_id", s.page.ID).Msg("Failed to save reply")
			_ = s.emit(WSMessage{Type: MsgError, Message: ReplyFailed})
			return
		}
		saved := ReplySaved{ID: resp.ID, CreatedAt: resp.CreatedAt}
		if s.links != nil {
			saved.CreateURL = s.links.Create()
		}
		_ = s.emit(WSMessage{Type: MsgReplySaved, Message: ReplyThanks, Data: saved})
	}()
	return nil
}

func (s *ViewSession) emit(msg WSMessage) error {
	if msg.Timestamp == 0 {
		msg.Timestamp = s.clock.Now().UnixMilli()
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.send(msg)
}

func viewportFrom(data any) Viewport {
	m, ok := data.(map[string]any)
	if !ok {
		return Viewport{}
	}
	w, _ := m["width"].(float64)
	h, _ := m["height"].(float64)
	return Viewport{Width: w, Height: h}
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
