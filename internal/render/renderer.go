package render

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultTypingSpeed = 35 * time.Millisecond
	DefaultMinDelay    = 400 * time.Millisecond
	DefaultMaxDelay    = 800 * time.Millisecond
)

// State is the phase of the presentation in progress.
type State int

const (
	StateIdle State = iota
	StateIndicatorShown
	StateRevealing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIndicatorShown:
		return "indicator-shown"
	case StateRevealing:
		return "revealing"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Renderer animates replies into a View. Presentations are serialized: a
// call made while another reveal is running waits for it to finish.
type Renderer struct {
	TypingSpeed time.Duration
	MinDelay    time.Duration
	MaxDelay    time.Duration

	view View

	run   sync.Mutex
	mu    sync.Mutex
	state State
}

func NewRenderer(view View) *Renderer {
	return &Renderer{
		TypingSpeed: DefaultTypingSpeed,
		MinDelay:    DefaultMinDelay,
		MaxDelay:    DefaultMaxDelay,
		view:        view,
	}
}

func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Renderer) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// ThinkingDelay picks a delay uniformly from [MinDelay, MaxDelay] at
// millisecond granularity.
func (r *Renderer) ThinkingDelay() time.Duration {
	lo, hi := r.MinDelay.Milliseconds(), r.MaxDelay.Milliseconds()
	if hi <= lo {
		return r.MinDelay
	}
	return time.Duration(lo+rand.Int64N(hi-lo+1)) * time.Millisecond
}

// Present shows the typing indicator for a thinking delay, then reveals text.
// On cancellation the indicator and cursor are removed and ctx.Err() returned.
func (r *Renderer) Present(ctx context.Context, text string) error {
	r.run.Lock()
	defer r.run.Unlock()

	r.view.ShowTyping()
	r.setState(StateIndicatorShown)

	timer := time.NewTimer(r.ThinkingDelay())
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.view.HideTyping()
		r.setState(StateIdle)
		log.Debug().Err(ctx.Err()).Msg("presentation cancelled while thinking")
		return ctx.Err()
	case <-timer.C:
	}

	r.view.HideTyping()
	return r.reveal(ctx, text)
}

// Reveal types text into a new bubble without the thinking delay.
func (r *Renderer) Reveal(ctx context.Context, text string) error {
	r.run.Lock()
	defer r.run.Unlock()
	return r.reveal(ctx, text)
}

func (r *Renderer) reveal(ctx context.Context, text string) error {
	t := newTypist(r.view.BeginReply(), text)
	r.setState(StateRevealing)

	var tick <-chan time.Time
	if r.TypingSpeed > 0 {
		ticker := time.NewTicker(r.TypingSpeed)
		defer ticker.Stop()
		tick = ticker.C
	}

	for !t.done() {
		if tick != nil {
			select {
			case <-ctx.Done():
				return r.abort(ctx, t)
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return r.abort(ctx, t)
		}
		t.step()
	}

	r.setState(StateDone)
	return nil
}

func (r *Renderer) abort(ctx context.Context, t *typist) error {
	t.finish()
	r.setState(StateIdle)
	log.Debug().Err(ctx.Err()).Int("revealed", t.next).Int("total", len(t.runes)).Msg("reveal cancelled")
	return ctx.Err()
}

// typist advances a reply by one character per step and removes the cursor
// exactly once.
type typist struct {
	bubble  Bubble
	runes   []rune
	next    int
	removed bool
}

func newTypist(b Bubble, text string) *typist {
	t := &typist{bubble: b, runes: []rune(text)}
	if len(t.runes) == 0 {
		t.finish()
	}
	return t
}

func (t *typist) done() bool { return t.removed }

func (t *typist) step() {
	if t.removed {
		return
	}
	t.bubble.Reveal(t.runes[t.next])
	t.next++
	if t.next >= len(t.runes) {
		t.finish()
	}
}

func (t *typist) finish() {
	if !t.removed {
		t.bubble.RemoveCursor()
		t.removed = true
	}
}
