package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"emo-pages-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboxPoller_DropsOverlappingReloads(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	started := make(chan struct{})
	var calls atomic.Int32

	p := NewInboxPoller(func(ctx context.Context) (*Inbox, error) {
		if calls.Add(1) == 1 {
			close(started)
			<-release
		}
		return &Inbox{}, nil
	}, time.Second, f.clock, f.metrics, nil)

	first := make(chan bool)
	go func() {
		ran, _ := p.Reload(context.Background())
		first <- ran
	}()
	<-started

	ran, err := p.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, ran, "second reload must be dropped while one is in flight")

	close(release)
	assert.True(t, <-first)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1.0, counter(t, f.metrics, "emopages_inbox_reloads_total", "outcome", ReloadSkipped))

	ran, err = p.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, ran, "reloads run again once the previous one finished")
}

func TestInboxPoller_FailureKeepsPreviousData(t *testing.T) {
	f := newFixture(t)
	good := &Inbox{Responses: []*models.Response{{Response: "hi"}}}
	fail := false

	var updates int
	p := NewInboxPoller(func(ctx context.Context) (*Inbox, error) {
		if fail {
			return nil, errors.New("offline")
		}
		return good, nil
	}, time.Second, f.clock, f.metrics, func(*Inbox) { updates++ })

	_, err := p.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, good, p.Current())

	fail = true
	_, err = p.Reload(context.Background())
	assert.Error(t, err)
	assert.Same(t, good, p.Current())
	assert.Equal(t, 1, updates)
	assert.Equal(t, 1.0, counter(t, f.metrics, "emopages_inbox_reloads_total", "outcome", ReloadError))
}

func TestInboxPoller_RunPollsUntilCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	link, err := f.anon.Create(ctx)
	require.NoError(t, err)
	inbox, err := f.anon.Inbox(ctx, link.Page.Slug, link.OwnerToken)
	require.NoError(t, err)
	require.Empty(t, inbox.Responses)

	updates := make(chan *Inbox, 4)
	p := f.anon.ForInbox(inbox, DefaultPollInterval, f.clock, func(in *Inbox) { updates <- in })

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		p.Run(runCtx)
		close(done)
	}()

	_, err = f.anon.Reply(ctx, link.Page.Slug, "new reply")
	require.NoError(t, err)

	require.True(t, f.clock.WaitForTimers(1, time.Second))
	f.clock.Advance(DefaultPollInterval - time.Second)
	select {
	case <-updates:
		t.Fatal("polled before the interval elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	f.clock.Advance(time.Second)
	select {
	case got := <-updates:
		require.Len(t, got.Responses, 1)
		assert.Equal(t, "new reply", got.Responses[0].Response)
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
}

func TestInboxHub_SignalsSubscribers(t *testing.T) {
	hub := NewInboxHub()

	a, cancelA := hub.Subscribe("page-1")
	b, cancelB := hub.Subscribe("page-1")
	other, cancelOther := hub.Subscribe("page-2")
	defer cancelOther()
	assert.Equal(t, 2, hub.Subscribers("page-1"))

	hub.ResponseSaved(&models.Response{PageID: "page-1"})
	hub.ResponseSaved(&models.Response{PageID: "page-1"})

	assert.Len(t, a, 1, "signals coalesce")
	assert.Len(t, b, 1)
	assert.Len(t, other, 0)

	cancelA()
	cancelA()
	cancelB()
	assert.Equal(t, 0, hub.Subscribers("page-1"))
	assert.NotPanics(t, func() { hub.ResponseSaved(&models.Response{PageID: "page-1"}) })
}

func TestStreamTokens(t *testing.T) {
	f := newFixture(t)
	tokens := NewStreamTokens("secret", time.Hour)
	tokens.clock = f.clock

	token, err := tokens.Issue("page-1", "abc")
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "page-1", claims.PageID)
	assert.Equal(t, "abc", claims.Slug)

	_, err = NewStreamTokens("other", time.Hour).Validate(token)
	assert.Error(t, err, "wrong secret")

	f.clock.Advance(2 * time.Hour)
	_, err = tokens.Validate(token)
	assert.Error(t, err, "expired")

	_, err = tokens.Validate("not-a-jwt")
	assert.Error(t, err)
}
