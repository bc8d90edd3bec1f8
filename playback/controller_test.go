package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

// A paused tick at a fixed instant, so only pending steps can fire.
func stepTick(c *Controller) bool {
	return c.Tick(time.Unix(0, 0))
}

func TestStepForwardWrapsAround(t *testing.T) {
	for _, n := range []int{1, 2, 3, 7} {
		c := NewController(names(n), FrameInterval)
		c.TogglePause()
		start := c.Index()
		for i := 0; i < n; i++ {
			c.StepForward()
			require.True(t, stepTick(c))
		}
		assert.Equal(t, start, c.Index(), "count=%d", n)
	}
}

func TestStepForwardBackwardInverse(t *testing.T) {
	c := NewController(names(5), FrameInterval)
	c.TogglePause()
	start := c.Index()

	for i := 0; i < 3; i++ {
		c.StepForward()
		stepTick(c)
	}
	for i := 0; i < 3; i++ {
		c.StepBackward()
		stepTick(c)
	}
	assert.Equal(t, start, c.Index())
}

func TestStepBackwardWrapsToEnd(t *testing.T) {
	c := NewController(names(4), FrameInterval)
	c.TogglePause()
	c.StepBackward()
	require.True(t, stepTick(c))
	assert.Equal(t, 3, c.Index())
}

func TestTogglePauseIdempotentUnderDoubleApplication(t *testing.T) {
	c := NewController(names(3), FrameInterval)
	require.False(t, c.IsPaused())
	assert.True(t, c.TogglePause())
	assert.False(t, c.TogglePause())
	assert.False(t, c.IsPaused())
}

func TestStepIgnoredWhilePlaying(t *testing.T) {
	c := NewController(names(5), FrameInterval)
	require.False(t, c.IsPaused())

	c.StepForward()
	c.StepBackward()

	// A tick before the frame interval elapses must not move the index.
	base := time.Unix(100, 0)
	c.lastAdvance = base
	assert.False(t, c.Tick(base.Add(time.Millisecond)))
	assert.Equal(t, 0, c.Index())
}

func TestTimedAdvanceWhilePlaying(t *testing.T) {
	c := NewController(names(3), FrameInterval)
	base := time.Unix(100, 0)
	c.lastAdvance = base

	assert.False(t, c.Tick(base.Add(FrameInterval/2)))
	assert.True(t, c.Tick(base.Add(FrameInterval)))
	assert.Equal(t, 1, c.Index())

	// The baseline resets on an automatic advance.
	assert.False(t, c.Tick(base.Add(FrameInterval+time.Millisecond)))
}

func TestNoTimedAdvanceWhilePaused(t *testing.T) {
	c := NewController(names(3), FrameInterval)
	c.TogglePause()
	base := time.Unix(100, 0)
	c.lastAdvance = base
	assert.False(t, c.Tick(base.Add(time.Hour)))
	assert.Equal(t, 0, c.Index())
}

func TestPendingStepTakesPriorityOverTimedAdvance(t *testing.T) {
	// A step queued while paused is consumed exactly once even if the
	// controller resumes before the next tick.
	c := NewController(names(5), FrameInterval)
	c.TogglePause()
	c.StepForward()
	c.TogglePause()

	base := time.Unix(100, 0)
	c.lastAdvance = base
	require.True(t, c.Tick(base.Add(time.Hour)))
	assert.Equal(t, 1, c.Index())
}

func TestSecondStepRequestDoesNotQueue(t *testing.T) {
	c := NewController(names(5), FrameInterval)
	c.TogglePause()
	c.StepForward()
	c.StepForward()
	require.True(t, stepTick(c))
	assert.False(t, stepTick(c), "one flag set twice must advance exactly once")
	assert.Equal(t, 1, c.Index())
}

func TestEmptyControllerNeverAdvances(t *testing.T) {
	c := NewController(nil, FrameInterval)

	_, ok := c.Current()
	assert.False(t, ok)
	assert.Zero(t, c.Len())

	c.TogglePause()
	c.StepForward()
	c.StepBackward()
	assert.False(t, stepTick(c))

	c.TogglePause()
	assert.False(t, c.Tick(time.Now().Add(time.Hour)))
	assert.Equal(t, 0, c.Index())
}

func TestCurrent(t *testing.T) {
	c := NewController([]string{"one", "two"}, FrameInterval)
	name, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "one", name)

	c.TogglePause()
	c.StepForward()
	stepTick(c)
	name, _ = c.Current()
	assert.Equal(t, "two", name)
}

func TestRunningFlag(t *testing.T) {
	c := NewController(names(2), FrameInterval)
	assert.False(t, c.Running())
	c.Start()
	assert.True(t, c.Running())
	c.Stop()
	assert.False(t, c.Running())
}

func TestConsumeEffectRequest(t *testing.T) {
	c := NewController(names(2), FrameInterval)
	assert.False(t, c.ConsumeEffectRequest())
	c.CycleEffect()
	assert.True(t, c.ConsumeEffectRequest())
	assert.False(t, c.ConsumeEffectRequest())
}
