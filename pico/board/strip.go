// Package board wires the word clock to the peripherals of a Seeed XIAO
// RP2040.
package board

import (
	"image/color"
	"machine"
	"runtime/interrupt"

	"libdb.so/wordclock/internal/led"
	"tinygo.org/x/drivers/ws2812"
)

// Strip is a WS2812 strip on a single data pin.
type Strip struct {
	dev    ws2812.Device
	colors []color.RGBA
}

var _ led.Strip = (*Strip)(nil)

// NewStrip configures pin and returns a strip of n LEDs on it.
func NewStrip(pin machine.Pin, n int) *Strip {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Strip{
		dev:    ws2812.New(pin),
		colors: make([]color.RGBA, n),
	}
}

func (s *Strip) Len() int                  { return len(s.colors) }
func (s *Strip) Set(i int, c led.RGBColor) { s.colors[i] = rgba(c) }

// Show writes the whole strip out.
func (s *Strip) Show() (err error) {
	critical(func() { err = s.dev.WriteColors(s.colors) })
	return err
}

// Write writes raw pixel bytes straight to the strip, bypassing the buffer.
func (s *Strip) Write(pix []byte) (n int, err error) {
	critical(func() { n, err = s.dev.Write(pix) })
	return n, err
}

// critical runs f with interrupts disabled. WS2812 timing does not survive a
// button interrupt halfway through a frame.
func critical(f func()) {
	state := interrupt.Disable()
	f()
	interrupt.Restore(state)
}

func rgba(c led.RGBColor) color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF}
}
