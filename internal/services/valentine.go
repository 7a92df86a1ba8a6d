package services

import (
	"math/rand/v2"
	"sync"
)

// MaxNoAttempts is the number of No clicks after which the game gives in
const MaxNoAttempts = 5

const (
	noButtonWidth  = 200
	noButtonHeight = 100
)

// ValentinePhase is the state of a valentine question
type ValentinePhase string

const (
	ValentineAsking      ValentinePhase = "asking"
	ValentineCelebrating ValentinePhase = "celebrating"
)

// Position is an offset of the No button from its resting place, in pixels
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the visitor's screen size in pixels
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultViewport is a small phone screen, used until the client reports its
// own size with a viewport message
var DefaultViewport = Viewport{Width: 375, Height: 667}

// ValentineState is a snapshot of the game for the client
type ValentineState struct {
	Phase      ValentinePhase `json:"phase"`
	NoAttempts int            `json:"no_attempts"`
	NoButton   Position       `json:"no_button"`
	Headline   string         `json:"headline,omitempty"`
	Message    string         `json:"message,omitempty"`
}

// ValentineGame is the yes/no question whose No button dodges. Yes, or the
// fifth No, ends the game; both end in the same celebrating phase.
type ValentineGame struct {
	mu       sync.Mutex
	rand     func() float64
	viewport Viewport
	attempts int
	yes      bool
	pos      Position
}

// NewValentineGame starts a game for a screen of the given size
func NewValentineGame(viewport Viewport) *ValentineGame {
	return &ValentineGame{rand: rand.Float64, viewport: viewport}
}

// Resize updates the bounds used for the next dodge. An empty size is ignored.
func (g *ValentineGame) Resize(viewport Viewport) {
	if viewport.Width <= 0 || viewport.Height <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.viewport = viewport
}

// Yes accepts the question
func (g *ValentineGame) Yes() ValentineState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.done() {
		g.yes = true
	}
	return g.state()
}

// No counts an attempt and moves the button while the game is still asking
func (g *ValentineGame) No() ValentineState {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done() {
		return g.state()
	}

	g.attempts++
	if g.attempts < MaxNoAttempts {
		maxX := max(g.viewport.Width-noButtonWidth, 0)
		maxY := max(g.viewport.Height-noButtonHeight, 0)
		g.pos = Position{
			X: g.rand()*maxX - maxX/2,
			Y: g.rand()*maxY - maxY/2,
		}
	}
	return g.state()
}

// State returns the current snapshot
func (g *ValentineGame) State() ValentineState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *ValentineGame) done() bool {
	return g.yes || g.attempts >= MaxNoAttempts
}

func (g *ValentineGame) state() ValentineState {
	s := ValentineState{
		Phase:      ValentineAsking,
		NoAttempts: g.attempts,
		NoButton:   g.pos,
	}
	if g.done() {
		s.Phase = ValentineCelebrating
		s.Headline = "Yay!"
		if g.attempts >= MaxNoAttempts {
			s.Headline = "I knew it!"
		}
		s.Message = "This is going to be amazing!"
	}
	return s
}
