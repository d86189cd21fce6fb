// Package strip contains the LED strip backends the daemon can draw on.
package strip

import (
	"fmt"
	"io"
	"strings"

	"libdb.so/wordclock/internal/led"
)

// Memory is a strip that only keeps its LEDs in memory. It stands in for a
// status LED that is not wired up.
type Memory struct {
	LEDs  led.LEDs
	Shown int
}

var _ led.Strip = (*Memory)(nil)

// NewMemory creates a memory strip of n LEDs.
func NewMemory(n int) *Memory {
	return &Memory{LEDs: led.NewLEDs(n)}
}

func (m *Memory) Len() int                  { return len(m.LEDs) }
func (m *Memory) Set(i int, c led.RGBColor) { m.LEDs[i] = c }
func (m *Memory) Show() error               { m.Shown++; return nil }

// Console draws the strip as a line of text, one character per LED: '#' for
// LEDs that are on and '.' for LEDs that are off.
type Console struct {
	w    io.Writer
	leds led.LEDs
}

var _ led.Strip = (*Console)(nil)

// NewConsole creates a console strip of n LEDs writing to w.
func NewConsole(w io.Writer, n int) *Console {
	return &Console{w: w, leds: led.NewLEDs(n)}
}

func (c *Console) Len() int                    { return len(c.leds) }
func (c *Console) Set(i int, col led.RGBColor) { c.leds[i] = col }

// Show writes the current LEDs as a single line.
func (c *Console) Show() error {
	var sb strings.Builder
	sb.Grow(len(c.leds) + 1)
	for _, col := range c.leds {
		if col.IsBlack() {
			sb.WriteByte('.')
		} else {
			sb.WriteByte('#')
		}
	}
	sb.WriteByte('\n')

	if _, err := io.WriteString(c.w, sb.String()); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}
