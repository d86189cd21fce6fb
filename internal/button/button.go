// Package button turns raw edges from a mechanical push button into single
// edit events.
//
// A Debouncer is written by exactly one edge source (an interrupt handler or
// a watcher goroutine) and read by exactly one consumer. Both sides only touch
// single-word atomics, so no locks are needed and neither side can observe a
// half-updated state.
package button

import (
	"sync/atomic"
	"time"
)

// DefaultThreshold is the shortest press that counts as a press. Shorter
// pulses are contact bounce.
const DefaultThreshold = 50 * time.Millisecond

// DefaultStep is how far a single press moves the clock.
const DefaultStep = 5 * time.Minute

// Edge is a level transition on a button pin. Buttons are wired active low.
type Edge uint8

const (
	// Falling is the button being pressed.
	Falling Edge = iota
	// Rising is the button being released.
	Rising
)

// String returns a string representation of the edge.
func (e Edge) String() string {
	switch e {
	case Falling:
		return "falling"
	case Rising:
		return "rising"
	default:
		return "Edge(?)"
	}
}

// Millis is a millisecond timestamp from a free-running counter. It wraps
// around after about 49 days; use Sub to compute durations.
type Millis uint32

// Sub returns m - earlier, which stays correct across one counter wraparound.
func (m Millis) Sub(earlier Millis) time.Duration {
	return time.Duration(uint32(m)-uint32(earlier)) * time.Millisecond
}

var boot = time.Now()

// Now returns the current time in milliseconds since the process started.
func Now() Millis {
	return Millis(time.Since(boot).Milliseconds())
}

// Debouncer is the per-button press state machine.
type Debouncer struct {
	threshold time.Duration
	// pressedAt is zero while idle. It is set by the edge source and cleared
	// by the consumer, except for bounces which the edge source undoes itself.
	pressedAt atomic.Uint32
	released  atomic.Bool
}

// NewDebouncer creates a debouncer that accepts presses longer than
// threshold.
func NewDebouncer(threshold time.Duration) *Debouncer {
	return &Debouncer{threshold: threshold}
}

// Notify feeds an edge observed at now into the state machine. It is safe to
// call from an interrupt handler.
func (d *Debouncer) Notify(edge Edge, now Millis) {
	switch edge {
	case Falling:
		stamp := uint32(now)
		if stamp == 0 {
			stamp = 1 // 0 means idle
		}
		d.pressedAt.CompareAndSwap(0, stamp)

	case Rising:
		at := d.pressedAt.Load()
		if at == 0 {
			return
		}
		if now.Sub(Millis(at)) > d.threshold {
			d.released.Store(true)
			return
		}
		d.pressedAt.CompareAndSwap(at, 0)
	}
}

// Pending reports whether a release is waiting to be consumed.
func (d *Debouncer) Pending() bool {
	return d.released.Load()
}

// Clear consumes a pending release and returns the debouncer to idle.
// pressedAt is reset before released so that a rising edge racing with Clear
// finds the debouncer idle instead of re-arming the release.
func (d *Debouncer) Clear() {
	d.pressedAt.Store(0)
	d.released.Store(false)
}

// Pad is the pair of adjust buttons on the back of the clock.
type Pad struct {
	Forward  *Debouncer
	Backward *Debouncer
	// Step is how far each press moves the clock.
	Step time.Duration
}

// NewPad creates a pad with the default threshold and step.
func NewPad() *Pad {
	return &Pad{
		Forward:  NewDebouncer(DefaultThreshold),
		Backward: NewDebouncer(DefaultThreshold),
		Step:     DefaultStep,
	}
}

// Take consumes at most one pending press and returns the clock adjustment
// it asks for. Forward wins if both buttons were released since the last
// call; the backward press stays pending for the next one.
func (p *Pad) Take() (time.Duration, bool) {
	switch {
	case p.Forward != nil && p.Forward.Pending():
		p.Forward.Clear()
		return p.Step, true
	case p.Backward != nil && p.Backward.Pending():
		p.Backward.Clear()
		return -p.Step, true
	default:
		return 0, false
	}
}
