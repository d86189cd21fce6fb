// Command paneltest walks a single lit lamp across the word panel, one lamp a
// second, to check the strip's wiring against the word layout.
package main

import (
	"machine"
	"time"

	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/internal/words"
	"libdb.so/wordclock/pico/board"
)

var cycles = []led.RGBColor{
	led.RGB(10, 150, 204),
	led.RGB(255, 255, 255),
	led.RGB(255, 94, 155),
}

func main() {
	strip := board.NewStrip(machine.GPIO26, words.NumLEDs)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lamp, cycle int
	for range ticker.C {
		p := words.Pattern(1) << lamp
		println(lamp, p.String(), words.Phrase(p))

		leds := led.Expand(uint32(p), strip.Len(), cycles[cycle], led.RGBColor{})
		if err := led.Push(strip, leds); err != nil {
			println("failed to show:", err.Error())
		}

		lamp++
		if lamp == words.NumLEDs {
			lamp = 0
			cycle = (cycle + 1) % len(cycles)
		}
	}
}
