package session

import (
	"fmt"
	"time"

	"github.com/park285/darkchess/internal/domain"
)

// DefaultInitial is the per-side budget of a timed game.
const DefaultInitial = 10 * time.Minute

// Clock holds two countdowns of which only the side to move depletes.
// Stored values change only through Tick; reads compute the live value.
type Clock struct {
	timed     bool
	remaining [2]time.Duration
	active    domain.Side
	started   time.Time
	stopped   bool
}

// NewClock starts a clock with first on move as of now.
func NewClock(timed bool, initial time.Duration, first domain.Side, now time.Time) *Clock {
	if initial <= 0 {
		initial = DefaultInitial
	}
	return &Clock{
		timed:     timed,
		remaining: [2]time.Duration{initial, initial},
		active:    first,
		started:   now,
	}
}

func (c *Clock) Timed() bool         { return c.timed }
func (c *Clock) Active() domain.Side { return c.active }

// Elapsed is the length of the current thinking period.
func (c *Clock) Elapsed(now time.Time) time.Duration {
	d := now.Sub(c.started)
	if d < 0 {
		return 0
	}
	return d
}

// Tick charges elapsed to the active side. Casual clocks never change.
func (c *Clock) Tick(elapsed time.Duration) {
	if !c.timed || elapsed <= 0 {
		return
	}
	r := c.remaining[c.active] - elapsed
	if r < 0 {
		r = 0
	}
	c.remaining[c.active] = r
}

// Handover freezes the current side and starts next's thinking period at now.
func (c *Clock) Handover(next domain.Side, now time.Time) {
	c.active = next
	c.started = now
}

// Remaining reports side's time as of now without committing anything.
func (c *Clock) Remaining(side domain.Side, now time.Time) time.Duration {
	stored := c.remaining[side]
	if !c.timed || c.stopped || side != c.active {
		return stored
	}
	live := stored - c.Elapsed(now)
	if live < 0 {
		return 0
	}
	return live
}

// Expired reports whether the side to move has run out of time.
func (c *Clock) Expired(now time.Time) bool {
	return c.timed && !c.stopped && c.Remaining(c.active, now) <= 0
}

// Stop charges the running thinking period and freezes both sides.
func (c *Clock) Stop(now time.Time) {
	if c.stopped {
		return
	}
	c.Tick(c.Elapsed(now))
	c.stopped = true
}

// FormatClock renders a duration as MM:SS, truncating partial seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
