package services

import (
	"context"
	"testing"
	"time"

	"emo-pages-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionHarness struct {
	in   chan WSMessage
	out  chan WSMessage
	errc chan error
}

func startSession(t *testing.T, s *ViewSession) *sessionHarness {
	t.Helper()
	h := &sessionHarness{
		in:   make(chan WSMessage, 8),
		out:  make(chan WSMessage, 64),
		errc: make(chan error, 1),
	}
	go func() {
		h.errc <- s.Run(context.Background(), h.in, func(msg WSMessage) error {
			h.out <- msg
			return nil
		})
	}()
	return h
}

func (h *sessionHarness) next(t *testing.T) WSMessage {
	t.Helper()
	select {
	case msg := <-h.out:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no message from session")
		return WSMessage{}
	}
}

// skipReveal consumes the reveal events and returns the presentation
func (h *sessionHarness) skipReveal(t *testing.T) Presentation {
	t.Helper()
	for {
		msg := h.next(t)
		if msg.Type == MsgPresentation {
			return msg.Data.(Presentation)
		}
		require.Equal(t, MsgReveal, msg.Type)
	}
}

func (h *sessionHarness) stop(t *testing.T) {
	t.Helper()
	close(h.in)
	select {
	case err := <-h.errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not stop")
	}
}

func TestViewSession_RevealThenPresentation(t *testing.T) {
	f := newFixture(t)
	page := f.createPage(t, models.PageTypeBirthday, map[string]any{"receiverName": "Lee"})
	h := startSession(t, NewViewSession(page, f.anon, nil, f.clock, 2))

	assert.Equal(t, RevealEvent{State: RevealTeased, Remaining: 2}, h.next(t).Data)
	assert.Equal(t, RevealEvent{State: RevealCounting, Remaining: 2}, h.next(t).Data)
	for _, remaining := range []int{1, 0} {
		require.True(t, f.clock.WaitForTimers(1, time.Second))
		f.clock.Advance(time.Second)
		assert.Equal(t, RevealEvent{State: RevealCounting, Remaining: remaining}, h.next(t).Data)
	}
	assert.Equal(t, RevealEvent{State: RevealRevealed}, h.next(t).Data)

	pres := h.next(t)
	require.Equal(t, MsgPresentation, pres.Type)
	assert.Equal(t, KindBirthday, pres.Data.(Presentation).Kind)
	h.stop(t)
}

func TestViewSession_ValentineGame(t *testing.T) {
	f := newFixture(t)
	page := f.createPage(t, models.PageTypeValentine, map[string]any{"receiverName": "Sam"})
	h := startSession(t, NewViewSession(page, f.anon, nil, f.clock, 0))
	h.skipReveal(t)

	h.in <- WSMessage{Type: MsgViewport, Data: map[string]any{"width": 1200.0, "height": 900.0}}
	for i := 1; i <= MaxNoAttempts; i++ {
		h.in <- WSMessage{Type: MsgNo}
		state := h.next(t).Data.(ValentineState)
		assert.Equal(t, i, state.NoAttempts)
		if i < MaxNoAttempts {
			assert.Equal(t, ValentineAsking, state.Phase)
			assert.LessOrEqual(t, state.NoButton.X, 500.0)
			assert.GreaterOrEqual(t, state.NoButton.X, -500.0)
		} else {
			assert.Equal(t, ValentineCelebrating, state.Phase)
		}
	}
	h.stop(t)
}

func TestViewSession_ValentineDodgesBeforeViewport(t *testing.T) {
	f := newFixture(t)
	page := f.createPage(t, models.PageTypeValentine, map[string]any{"receiverName": "Sam"})
	s := NewViewSession(page, f.anon, nil, f.clock, 0)
	s.game.rand = func() float64 { return 1 }

	h := startSession(t, s)
	h.skipReveal(t)

	h.in <- WSMessage{Type: MsgNo}
	state := h.next(t).Data.(ValentineState)
	assert.Equal(t, Position{X: 87.5, Y: 283.5}, state.NoButton)
	h.stop(t)
}

func TestViewSession_RejectsActionsForOtherTypes(t *testing.T) {
	f := newFixture(t)
	page := f.createPage(t, models.PageTypeMemory, map[string]any{"receiverName": "Ana"})
	h := startSession(t, NewViewSession(page, f.anon, nil, f.clock, 0))
	h.skipReveal(t)

	for _, typ := range []string{MsgYes, MsgReply, "dance"} {
		h.in <- WSMessage{Type: typ, Message: "hi"}
		msg := h.next(t)
		assert.Equal(t, MsgError, msg.Type)
		assert.Equal(t, UnsupportedAction, msg.Message)
	}
	h.stop(t)
}

func TestViewSession_ReplyInFlightGuard(t *testing.T) {
	f := newFixture(t)
	link, err := f.anon.Create(context.Background())
	require.NoError(t, err)

	gate := make(chan struct{})
	f.store.saveGate = gate

	h := startSession(t, NewViewSession(link.Page, f.anon, NewLinks("https://emo.example"), f.clock, 0))
	pres := h.skipReveal(t)
	assert.Equal(t, KindAnonymous, pres.Kind)

	h.in <- WSMessage{Type: MsgReply, Message: "first"}
	h.in <- WSMessage{Type: MsgReply, Message: "second"}
	msg := h.next(t)
	assert.Equal(t, MsgError, msg.Type)
	assert.Equal(t, ReplyInFlight, msg.Message)

	close(gate)
	msg = h.next(t)
	assert.Equal(t, MsgReplySaved, msg.Type)
	assert.Equal(t, ReplyThanks, msg.Message)
	saved := msg.Data.(ReplySaved)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "https://emo.example/anonymous", saved.CreateURL)

	h.stop(t)

	inbox, err := f.anon.Inbox(context.Background(), link.Page.Slug, link.OwnerToken)
	require.NoError(t, err)
	require.Len(t, inbox.Responses, 1)
	assert.Equal(t, "first", inbox.Responses[0].Response)
}

func TestViewSession_BirthdayCountdownTicks(t *testing.T) {
	f := newFixture(t)
	page := f.createPage(t, models.PageTypeBirthdayAdvance, map[string]any{
		"receiverName": "Lee",
		"birthdayDate": testNow.Add(2 * time.Second).Format(time.RFC3339),
	})
	h := startSession(t, NewViewSession(page, f.anon, nil, f.clock, 0))

	pres := h.skipReveal(t)
	assert.Equal(t, TimeLeft{Seconds: 2}, pres.Data.(BirthdayAdvancePresentation).TimeLeft)

	for _, want := range []TimeLeft{{Seconds: 1}, {}} {
		require.True(t, f.clock.WaitForTimers(1, time.Second))
		f.clock.Advance(time.Second)
		msg := h.next(t)
		require.Equal(t, MsgCountdown, msg.Type)
		assert.Equal(t, want, msg.Data)
	}

	assert.False(t, f.clock.WaitForTimers(1, 50*time.Millisecond), "countdown stops at zero")
	h.stop(t)
}
