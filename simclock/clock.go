// Package simclock drives the virtual timestamp of a replay session. The
// clock advances a simulated time inside a fixed [start, end] window at a
// configurable multiple of wall-clock time, or jumps on demand, and
// notifies subscribers after every advance. Subscribers always observe a
// fully updated clock state.
package simclock

import (
	"sync"
	"time"
)

// DefaultFrameInterval is how often the playback loop advances the clock.
const DefaultFrameInterval = 50 * time.Millisecond

// State is a copy of the clock's observable state.
type State struct {
	Current time.Time `json:"current"`
	Speed   float64   `json:"speed"`
	Playing bool      `json:"playing"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Clock is safe for concurrent use. The playback loop and callers
// serialize on one mutex, so a subscriber notification never observes a
// half-applied transition.
type Clock struct {
	mu        sync.Mutex
	start     time.Time
	end       time.Time
	offset    time.Duration // simulated progress from start
	speed     float64
	playing   bool
	lastWall  time.Time
	endFired  bool
	destroyed bool

	now      func() time.Time
	interval time.Duration
	stop     chan struct{}

	tickSubs []func(time.Time)
	endSubs  []func()
}

// New returns a paused clock positioned at start. The window is fixed for
// the clock's lifetime; current time is always clamped into it.
func New(start, end time.Time) *Clock {
	return &Clock{
		start:    start,
		end:      end,
		speed:    1,
		now:      time.Now,
		interval: DefaultFrameInterval,
	}
}

// OnTick subscribes to time advances. Callbacks run on the playback
// goroutine (or the caller's goroutine for JumpTo), after the state update.
func (c *Clock) OnTick(fn func(time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickSubs = append(c.tickSubs, fn)
}

// OnEnd subscribes to the end-of-range notification, fired at most once
// per run of playback into the end bound.
func (c *Clock) OnEnd(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endSubs = append(c.endSubs, fn)
}

// Start begins (or resumes) playback. No-op while already playing, after
// Destroy, or once the clock sits at end.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.playing || c.destroyed || c.offset >= c.end.Sub(c.start) {
		c.mu.Unlock()
		return
	}
	c.playing = true
	c.lastWall = c.now()
	stop := make(chan struct{})
	c.stop = stop
	interval := c.interval
	c.mu.Unlock()

	go c.loop(stop, interval)
}

// Pause halts playback. In-flight notifications complete; no further
// frames are scheduled.
func (c *Clock) Pause() {
	c.mu.Lock()
	c.pauseLocked()
	c.mu.Unlock()
}

// Resume is Start under its conventional name.
func (c *Clock) Resume() { c.Start() }

// SetSpeed changes the playback multiplier without a discontinuity: the
// current simulated offset is kept and the wall-clock reference resets, so
// the next frame continues from exactly the current time.
func (c *Clock) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
	c.lastWall = c.now()
}

// JumpTo sets the current time directly, clamped into [start, end], and
// notifies tick subscribers immediately. Jumping to end pauses playback
// and fires the end notification.
func (c *Clock) JumpTo(t time.Time) {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}

	if t.Before(c.start) {
		t = c.start
	}
	if t.After(c.end) {
		t = c.end
	}
	c.offset = t.Sub(c.start)
	c.lastWall = c.now()

	atEnd := !t.Before(c.end)
	var fireEnd bool
	if atEnd {
		c.pauseLocked()
		if !c.endFired {
			c.endFired = true
			fireEnd = true
		}
	} else {
		// Moving back below end re-arms the end notification.
		c.endFired = false
	}

	ticks, ends := c.subsLocked()
	current := c.currentLocked()
	c.mu.Unlock()

	notifyTicks(ticks, current)
	if fireEnd {
		notifyEnds(ends)
	}
}

// Current returns the simulated time.
func (c *Clock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentLocked()
}

// GetState returns a copy of the observable state.
func (c *Clock) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Current: c.currentLocked(),
		Speed:   c.speed,
		Playing: c.playing,
		Start:   c.start,
		End:     c.end,
	}
}

// Destroy pauses the clock and drops all subscriptions. The clock cannot
// be restarted afterwards.
func (c *Clock) Destroy() {
	c.mu.Lock()
	c.pauseLocked()
	c.destroyed = true
	c.tickSubs = nil
	c.endSubs = nil
	c.mu.Unlock()
}

func (c *Clock) loop(stop chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !c.step(stop) {
				return
			}
		}
	}
}

// step advances the clock by the elapsed wall time scaled by speed and
// notifies subscribers. Returns false once playback stops. The stop
// channel identifies the loop generation, so a stale loop that lost a
// pause/start race never advances a restarted clock.
func (c *Clock) step(stop chan struct{}) bool {
	c.mu.Lock()
	if !c.playing || (stop != nil && c.stop != stop) {
		c.mu.Unlock()
		return false
	}

	now := c.now()
	elapsed := now.Sub(c.lastWall)
	c.lastWall = now
	c.offset += time.Duration(float64(elapsed) * c.speed)

	var fireEnd bool
	if c.offset >= c.end.Sub(c.start) {
		c.offset = c.end.Sub(c.start)
		c.pauseLocked()
		if !c.endFired {
			c.endFired = true
			fireEnd = true
		}
	}

	ticks, ends := c.subsLocked()
	current := c.currentLocked()
	playing := c.playing
	c.mu.Unlock()

	notifyTicks(ticks, current)
	if fireEnd {
		notifyEnds(ends)
	}
	return playing
}

func (c *Clock) currentLocked() time.Time {
	return c.start.Add(c.offset)
}

func (c *Clock) pauseLocked() {
	if !c.playing {
		return
	}
	c.playing = false
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

func (c *Clock) subsLocked() ([]func(time.Time), []func()) {
	ticks := make([]func(time.Time), len(c.tickSubs))
	copy(ticks, c.tickSubs)
	ends := make([]func(), len(c.endSubs))
	copy(ends, c.endSubs)
	return ticks, ends
}

func notifyTicks(subs []func(time.Time), t time.Time) {
	for _, fn := range subs {
		fn(t)
	}
}

func notifyEnds(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}
