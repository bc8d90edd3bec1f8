// Package playback tracks the current slide and the pause/step controls
// shared between the input thread and the render loop.
package playback

import (
	"sync/atomic"
	"time"
)

// FrameInterval is the automatic advance cadence (~30 FPS).
const FrameInterval = 33 * time.Millisecond

// Controller is the playback state machine. The control side (UI event
// thread) only writes the atomic request flags; the render loop consumes
// them on its next tick and is the sole owner of the index. Each flag has a
// single writer per direction, so plain atomic loads and stores suffice —
// no locks.
type Controller struct {
	names    []string
	index    int
	interval time.Duration

	paused    atomic.Bool
	stepFwd   atomic.Bool
	stepBack  atomic.Bool
	running   atomic.Bool
	effectReq atomic.Bool

	lastAdvance time.Time
}

// NewController creates a controller over the given slide names, advancing
// automatically every interval while playing.
func NewController(names []string, interval time.Duration) *Controller {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &Controller{names: names, interval: interval}
}

// TogglePause flips between playing and paused and returns the new paused
// state. The index is not touched.
func (c *Controller) TogglePause() bool {
	paused := !c.paused.Load()
	c.paused.Store(paused)
	return paused
}

// StepForward requests a single forward step. It only has an effect while
// paused; during playback the loop is already advancing on its own cadence.
func (c *Controller) StepForward() {
	if c.paused.Load() {
		c.stepFwd.Store(true)
	}
}

// StepBackward requests a single backward step while paused.
func (c *Controller) StepBackward() {
	if c.paused.Load() {
		c.stepBack.Store(true)
	}
}

// CycleEffect requests a post-processing effect change on the next tick.
func (c *Controller) CycleEffect() {
	c.effectReq.Store(true)
}

// ConsumeEffectRequest reports and clears a pending effect change. Called
// by the render loop only.
func (c *Controller) ConsumeEffectRequest() bool {
	if c.effectReq.Load() {
		c.effectReq.Store(false)
		return true
	}
	return false
}

func (c *Controller) IsPaused() bool {
	return c.paused.Load()
}

// Start marks the loop as running.
func (c *Controller) Start() {
	c.running.Store(true)
}

// Stop requests the loop to exit; the loop observes it on its next tick.
func (c *Controller) Stop() {
	c.running.Store(false)
}

func (c *Controller) Running() bool {
	return c.running.Load()
}

// Index returns the currently selected slide index.
func (c *Controller) Index() int {
	return c.index
}

// Len returns the number of slides.
func (c *Controller) Len() int {
	return len(c.names)
}

// Current returns the name of the selected slide. ok is false when the
// controller has no slides.
func (c *Controller) Current() (name string, ok bool) {
	if len(c.names) == 0 {
		return "", false
	}
	return c.names[c.index], true
}

// Tick runs one playback decision at the given time and reports whether the
// selected slide changed (the caller re-uploads the texture only then).
// A pending single step takes priority over time-based advancement and is
// consumed regardless of the pause state; otherwise, while playing, the
// index advances once the frame interval has elapsed.
func (c *Controller) Tick(now time.Time) bool {
	if c.stepFwd.Load() {
		c.stepFwd.Store(false)
		return c.advance(1)
	}
	if c.stepBack.Load() {
		c.stepBack.Store(false)
		return c.advance(-1)
	}
	if !c.paused.Load() {
		// The first playing tick establishes the timing baseline so the
		// initial slide gets a full frame interval on screen.
		if c.lastAdvance.IsZero() {
			c.lastAdvance = now
			return false
		}
		if now.Sub(c.lastAdvance) >= c.interval {
			c.lastAdvance = now
			return c.advance(1)
		}
	}
	return false
}

// advance moves the index by delta with wraparound. With no slides it is a
// no-op.
func (c *Controller) advance(delta int) bool {
	n := len(c.names)
	if n == 0 {
		return false
	}
	c.index = ((c.index+delta)%n + n) % n
	return true
}
