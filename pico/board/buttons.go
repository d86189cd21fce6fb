package board

import (
	"machine"

	"libdb.so/wordclock/internal/button"
)

// Buttons are wired between their pin and ground.
var (
	ForwardPin  = machine.GPIO27
	BackwardPin = machine.GPIO28
)

// AttachButtons feeds the edges of the two buttons to the pad's debouncers
// from the pins' interrupt handlers.
func AttachButtons(pad *button.Pad) error {
	if err := attach(ForwardPin, pad.Forward); err != nil {
		return err
	}
	return attach(BackwardPin, pad.Backward)
}

func attach(pin machine.Pin, d *button.Debouncer) error {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return pin.SetInterrupt(machine.PinFalling|machine.PinRising, func(p machine.Pin) {
		edge := button.Rising
		if !p.Get() {
			edge = button.Falling
		}
		d.Notify(edge, button.Now())
	})
}
