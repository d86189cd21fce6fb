// Package render implements the word clock's main loop: read the clock,
// apply button edits, and redraw the panel whenever the lit words change.
package render

import (
	"context"
	"time"

	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/internal/rtc"
	"libdb.so/wordclock/internal/words"
)

// DefaultIdle is how long the loop sleeps when nothing visible changed.
const DefaultIdle = 100 * time.Millisecond

// Clock is the part of rtc.Clock used by the loop.
type Clock interface {
	Now() (rtc.TimeOfDay, error)
	Adjust(delta time.Duration) error
}

var _ Clock = (*rtc.Clock)(nil)

// Edits is a source of pending clock adjustments, usually a button.Pad.
type Edits interface {
	// Take returns the next pending adjustment, if any, and consumes it.
	Take() (time.Duration, bool)
}

// Loop redraws the panel.
type Loop struct {
	Clock Clock
	Strip led.Strip
	// Edits is optional.
	Edits Edits

	On  led.RGBColor
	Off led.RGBColor

	// Idle is the sleep between polls when the pattern is unchanged.
	Idle time.Duration
	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)

	// OnRender is called after every redraw.
	OnRender func(now rtc.TimeOfDay, p words.Pattern)
	// OnError is called when a step fails. Run keeps going afterwards.
	OnError func(err error)
}

// Step runs one iteration of the loop. prev is the pattern currently shown;
// the returned pattern should be passed to the next Step. Step only pushes to
// the strip when the pattern differs from prev.
func (l *Loop) Step(prev words.Pattern) (words.Pattern, error) {
	if l.Edits != nil {
		if delta, ok := l.Edits.Take(); ok {
			if err := l.Clock.Adjust(delta); err != nil {
				return prev, &StepError{Op: "adjust", Err: err}
			}
		}
	}

	now, err := l.Clock.Now()
	if err != nil {
		return prev, &StepError{Op: "read", Err: err}
	}

	pattern := words.Translate(now.Hour, now.Minute)
	if pattern == prev {
		l.sleep(l.idle())
		return prev, nil
	}

	leds := led.Expand(uint32(pattern), l.Strip.Len(), l.On, l.Off)
	if err := led.Push(l.Strip, leds); err != nil {
		return prev, &StepError{Op: "show", Err: err}
	}

	if l.OnRender != nil {
		l.OnRender(now, pattern)
	}

	return pattern, nil
}

// Run calls Step until ctx is done. The first iteration always redraws.
func (l *Loop) Run(ctx context.Context) error {
	prev := words.Blank
	for ctx.Err() == nil {
		p, err := l.Step(prev)
		if err != nil {
			if l.OnError != nil {
				l.OnError(err)
			}
			// Do not spin on a dead peripheral.
			l.sleep(l.idle())
		}
		prev = p
	}
	return ctx.Err()
}

func (l *Loop) idle() time.Duration {
	if l.Idle > 0 {
		return l.Idle
	}
	return DefaultIdle
}

func (l *Loop) sleep(d time.Duration) {
	if l.Sleep != nil {
		l.Sleep(d)
	} else {
		time.Sleep(d)
	}
}

// StepError is returned by Step when a peripheral fails.
type StepError struct {
	Op  string
	Err error
}

func (e *StepError) Error() string {
	return "failed to " + e.Op + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}
