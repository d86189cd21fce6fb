// Package led describes LED strips and the colours drawn onto them.
package led

import (
	"encoding"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unsafe"
)

// RGBColor is a 24-bit colour in red, green, blue order.
type RGBColor [3]uint8

var (
	_ encoding.TextUnmarshaler = (*RGBColor)(nil)
	_ encoding.TextMarshaler   = RGBColor{}
)

// RGB creates a new colour.
func RGB(r, g, b uint8) RGBColor {
	return RGBColor{r, g, b}
}

// UnmarshalText parses a colour in the "#rrggbb" form.
func (c *RGBColor) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "#")
	if len(s) != 6 {
		return fmt.Errorf("invalid color %q: want #rrggbb", text)
	}
	var b [3]byte
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return fmt.Errorf("invalid color %q: %w", text, err)
	}
	*c = RGBColor(b)
	return nil
}

// MarshalText formats the colour as "#rrggbb".
func (c RGBColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// String returns the colour as "#rrggbb".
func (c RGBColor) String() string {
	return "#" + hex.EncodeToString(c[:])
}

// IsBlack returns true if every channel is off.
func (c RGBColor) IsBlack() bool {
	return c == RGBColor{}
}

// LEDs describes a strip of LEDs. It is a preallocated slice of RGBColor.
type LEDs []RGBColor

// NewLEDs creates a new strip of LEDs. Colors are initialized to black
// (off).
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// AsPixels returns the LED strip as a slice of uint8 values. Each LED is
// represented by three values, one for each color channel. The returned
// slice aliases l.
func (l LEDs) AsPixels() []uint8 {
	if len(l) == 0 {
		return nil
	}
	return unsafe.Slice((*uint8)(unsafe.Pointer(&l[0])), 3*len(l))
}

// Set sets the color of the LED at the given index.
func (l LEDs) Set(i int, c RGBColor) {
	l[i] = c
}

// Expand turns the lowest n bits of bits into n LEDs: LED i is on when bit i
// is set and off otherwise.
func Expand(bits uint32, n int, on, off RGBColor) LEDs {
	leds := NewLEDs(n)
	for i := range leds {
		if bits&1 != 0 {
			leds[i] = on
		} else {
			leds[i] = off
		}
		bits >>= 1
	}
	return leds
}

// Strip is a physical strip of addressable LEDs. Set only changes the
// strip's buffer; Show flushes the whole buffer to the LEDs.
type Strip interface {
	// Len returns the number of LEDs on the strip.
	Len() int
	// Set sets the color of the LED at index i. i is in [0, Len()).
	Set(i int, c RGBColor)
	// Show writes the buffer out to the strip.
	Show() error
}

// Push draws leds onto the strip from index 0 and shows the result.
func Push(s Strip, leds LEDs) error {
	n := s.Len()
	for i, c := range leds {
		if i >= n {
			break
		}
		s.Set(i, c)
	}
	return s.Show()
}

// Flash lights every LED of the strip with c for d, then turns the strip
// off. sleep is usually time.Sleep.
func Flash(s Strip, c RGBColor, d time.Duration, sleep func(time.Duration)) error {
	n := s.Len()
	for i := 0; i < n; i++ {
		s.Set(i, c)
	}
	if err := s.Show(); err != nil {
		return err
	}

	sleep(d)

	for i := 0; i < n; i++ {
		s.Set(i, RGBColor{})
	}
	return s.Show()
}
