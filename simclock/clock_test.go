package simclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWall replaces the wall clock so steps are deterministic.
type fakeWall struct {
	t time.Time
}

func (f *fakeWall) now() time.Time { return f.t }

func (f *fakeWall) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestClock(window time.Duration) (*Clock, *fakeWall) {
	start := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	c := New(start, start.Add(window))
	wall := &fakeWall{t: time.Unix(1_700_000_000, 0)}
	c.now = wall.now
	return c, wall
}

// play marks the clock playing without spinning up the frame loop, so
// tests can drive frames by hand.
func play(c *Clock, wall *fakeWall) {
	c.mu.Lock()
	c.playing = true
	c.lastWall = wall.t
	c.mu.Unlock()
}

func TestClock_AdvancesByWallTimesSpeed(t *testing.T) {
	t.Parallel()

	c, wall := newTestClock(time.Hour)
	start := c.GetState().Start

	play(c, wall)
	wall.advance(100 * time.Millisecond)
	c.step(nil)
	assert.Equal(t, start.Add(100*time.Millisecond), c.Current())

	c.SetSpeed(60)
	wall.advance(time.Second)
	c.step(nil)
	assert.Equal(t, start.Add(100*time.Millisecond+time.Minute), c.Current())
}

func TestClock_SetSpeedHasNoDiscontinuity(t *testing.T) {
	t.Parallel()

	c, wall := newTestClock(time.Hour)
	play(c, wall)

	wall.advance(time.Second)
	c.step(nil)
	before := c.Current()

	// Changing speed alone must not move the current time.
	c.SetSpeed(100)
	assert.Equal(t, before, c.Current())

	// Wall time that elapsed before SetSpeed is not retroactively scaled.
	wall.advance(time.Second)
	c.SetSpeed(10)
	assert.Equal(t, before, c.Current())
}

// Total virtual time equals the integral of speed over wall time.
func TestClock_SpeedIntegral(t *testing.T) {
	t.Parallel()

	c, wall := newTestClock(24 * time.Hour)
	start := c.GetState().Start
	play(c, wall)

	var want time.Duration
	for _, seg := range []struct {
		speed float64
		wall  time.Duration
	}{
		{1, time.Second}, {10, 500 * time.Millisecond}, {100, 200 * time.Millisecond}, {2, 3 * time.Second},
	} {
		c.SetSpeed(seg.speed)
		wall.advance(seg.wall)
		c.step(nil)
		want += time.Duration(float64(seg.wall) * seg.speed)
	}

	assert.Equal(t, start.Add(want), c.Current())
}

func TestClock_NeverExceedsEndAndFiresEndOnce(t *testing.T) {
	t.Parallel()

	c, wall := newTestClock(time.Minute)
	end := c.GetState().End

	var ticks []time.Time
	endCount := 0
	c.OnTick(func(ts time.Time) { ticks = append(ticks, ts) })
	c.OnEnd(func() { endCount++ })

	play(c, wall)
	c.SetSpeed(1000)
	wall.advance(time.Second) // 1000s virtual >> 60s window
	c.step(nil)

	st := c.GetState()
	assert.Equal(t, end, st.Current, "current time clamps to end")
	assert.False(t, st.Playing, "reaching end auto-pauses")
	assert.Equal(t, 1, endCount)
	require.NotEmpty(t, ticks)
	assert.Equal(t, end, ticks[len(ticks)-1])

	// A stale frame after the pause neither advances nor re-fires.
	wall.advance(time.Second)
	c.step(nil)
	assert.Equal(t, end, c.Current())
	assert.Equal(t, 1, endCount)
}

func TestClock_JumpToClampsAndNotifies(t *testing.T) {
	t.Parallel()

	c, _ := newTestClock(time.Hour)
	st := c.GetState()

	var got []time.Time
	c.OnTick(func(ts time.Time) { got = append(got, ts) })

	c.JumpTo(st.Start.Add(30 * time.Minute))
	require.Len(t, got, 1)
	assert.Equal(t, st.Start.Add(30*time.Minute), got[0])

	c.JumpTo(st.Start.Add(-time.Hour))
	assert.Equal(t, st.Start, c.Current(), "jumps clamp to start")

	c.JumpTo(st.End.Add(time.Hour))
	assert.Equal(t, st.End, c.Current(), "jumps clamp to end")
}

func TestClock_JumpToEndFiresEndAndReArms(t *testing.T) {
	t.Parallel()

	c, _ := newTestClock(time.Hour)
	st := c.GetState()

	endCount := 0
	c.OnEnd(func() { endCount++ })

	c.JumpTo(st.End)
	assert.Equal(t, 1, endCount)
	assert.False(t, c.GetState().Playing)

	// Still at end: no duplicate notification.
	c.JumpTo(st.End)
	assert.Equal(t, 1, endCount)

	// Jumping back re-arms the notification for the next run to end.
	c.JumpTo(st.Start.Add(time.Minute))
	c.JumpTo(st.End)
	assert.Equal(t, 2, endCount)
}

func TestClock_StartAtEndIsNoOp(t *testing.T) {
	t.Parallel()

	c, _ := newTestClock(time.Hour)
	st := c.GetState()

	endCount := 0
	c.OnEnd(func() { endCount++ })

	c.JumpTo(st.End)
	require.Equal(t, 1, endCount)

	c.Start()
	assert.False(t, c.GetState().Playing, "a clock at end does not resume")
	assert.Equal(t, st.End, c.Current())
	assert.Equal(t, 1, endCount)

	// Jumping back below end makes Start work again.
	c.JumpTo(st.Start)
	c.Start()
	assert.True(t, c.GetState().Playing)
	c.Destroy()
}

func TestClock_SubscribersSeeUpdatedState(t *testing.T) {
	t.Parallel()

	c, wall := newTestClock(time.Hour)

	// The callback reads the clock back; state must already be updated
	// and the mutex must not still be held.
	var seen time.Time
	c.OnTick(func(ts time.Time) { seen = c.Current() })

	play(c, wall)
	wall.advance(time.Second)
	c.step(nil)
	assert.Equal(t, c.Current(), seen)
}

func TestClock_DestroyDropsSubscriptions(t *testing.T) {
	t.Parallel()

	c, _ := newTestClock(time.Hour)
	fired := false
	c.OnTick(func(time.Time) { fired = true })

	c.Destroy()
	c.JumpTo(c.GetState().End)
	assert.False(t, fired)

	c.Start()
	assert.False(t, c.GetState().Playing, "destroyed clocks do not restart")
}

func TestClock_StartPauseLifecycle(t *testing.T) {
	t.Parallel()

	start := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	c := New(start, start.Add(time.Hour))
	c.interval = time.Millisecond

	c.Start()
	assert.True(t, c.GetState().Playing)
	time.Sleep(20 * time.Millisecond)
	c.Pause()
	assert.False(t, c.GetState().Playing)

	cur := c.Current()
	assert.False(t, cur.Before(start))
	assert.False(t, cur.After(start.Add(time.Hour)))

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, cur, c.Current(), "paused clocks do not drift")
}
