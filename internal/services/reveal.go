package services

import (
	"context"
	"time"
)

// RevealState is a step of the teaser -> countdown -> content sequence
type RevealState string

const (
	RevealLoading  RevealState = "loading"
	RevealTeased   RevealState = "teased"
	RevealCounting RevealState = "counting"
	RevealRevealed RevealState = "revealed"
)

// DefaultCountdown is the number of one-second ticks before the reveal
const DefaultCountdown = 5

// RevealEvent is emitted on every reveal state change and countdown tick
type RevealEvent struct {
	State     RevealState `json:"state"`
	Remaining int         `json:"remaining"`
}

// Reveal runs the reveal sequence shared by every page type. The teaser
// advances to the countdown straight away; there is no click to wait for.
type Reveal struct {
	clock     Clock
	countdown int
}

// NewReveal creates a reveal that counts down from countdown seconds
func NewReveal(clock Clock, countdown int) *Reveal {
	if clock == nil {
		clock = SystemClock
	}
	if countdown < 0 {
		countdown = 0
	}
	return &Reveal{clock: clock, countdown: countdown}
}

// Run emits Teased, Counting(n..0) once per second and finally Revealed.
// It returns ctx.Err() if cancelled before the reveal, or the first emit
// error.
func (r *Reveal) Run(ctx context.Context, emit func(RevealEvent) error) error {
	if err := emit(RevealEvent{State: RevealTeased, Remaining: r.countdown}); err != nil {
		return err
	}

	for remaining := r.countdown; ; remaining-- {
		if err := emit(RevealEvent{State: RevealCounting, Remaining: remaining}); err != nil {
			return err
		}
		if remaining == 0 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(time.Second):
		}
	}

	return emit(RevealEvent{State: RevealRevealed})
}
