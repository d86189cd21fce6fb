// Package input feeds GPIO button edges into debouncers.
package input

import (
	"context"
	"fmt"
	"time"

	"libdb.so/wordclock/internal/button"
	"periph.io/x/conn/v3/gpio"
)

// DefaultPoll bounds how long a Watcher waits for an edge before checking
// whether it should stop.
const DefaultPoll = 250 * time.Millisecond

// Watcher watches one button pin. The button pulls the pin low while
// pressed.
type Watcher struct {
	Pin       gpio.PinIn
	Debouncer *button.Debouncer
	// Now defaults to button.Now.
	Now func() button.Millis
	// Poll defaults to DefaultPoll.
	Poll time.Duration
}

// Run configures the pin and feeds its edges to the debouncer until ctx is
// done. It plays the role of the pin's interrupt handler.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return fmt.Errorf("failed to configure %s: %w", w.Pin, err)
	}

	now := w.Now
	if now == nil {
		now = button.Now
	}

	poll := w.Poll
	if poll <= 0 {
		poll = DefaultPoll
	}

	for ctx.Err() == nil {
		if !w.Pin.WaitForEdge(poll) {
			continue
		}
		w.Debouncer.Notify(edgeOf(w.Pin.Read()), now())
	}

	return ctx.Err()
}

func edgeOf(l gpio.Level) button.Edge {
	if l == gpio.Low {
		return button.Falling
	}
	return button.Rising
}
