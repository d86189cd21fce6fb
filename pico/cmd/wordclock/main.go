// Command wordclock is the word clock firmware for a XIAO RP2040 with a
// DS3231, two buttons and a WS2812 strip behind the word panel.
package main

import (
	"context"
	"machine"
	"time"

	"libdb.so/wordclock/internal/button"
	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/internal/render"
	"libdb.so/wordclock/internal/rtc"
	"libdb.so/wordclock/internal/words"
	"libdb.so/wordclock/pico/board"
)

// buildTime is the RFC 3339 time the firmware was built at. The clock is set
// to it after losing power.
var buildTime string

var (
	stripPin = machine.GPIO26

	onColor     = led.RGB(192, 192, 255)
	offColor    = led.RGB(0, 0, 0)
	statusColor = led.RGB(255, 255, 0)
)

func main() {
	// Give the USB serial a moment to come up.
	time.Sleep(time.Second)

	status := board.NewStatus()

	dev, err := board.NewClock()
	if err != nil {
		halt("couldn't configure I2C: " + err.Error())
	}

	clock := rtc.New(dev)
	if err := clock.Begin(); err != nil {
		halt("couldn't find RTC: " + err.Error())
	}

	reseeded, err := clock.Restore(seedTime())
	if err != nil {
		halt("RTC lost power: " + err.Error())
	}
	if reseeded {
		println("RTC lost power, time was reset")
		led.Flash(status, statusColor, 250*time.Millisecond, time.Sleep)
	}

	pad := button.NewPad()
	if err := board.AttachButtons(pad); err != nil {
		println("failed to attach buttons:", err.Error())
	}

	loop := &render.Loop{
		Clock: clock,
		Strip: board.NewStrip(stripPin, words.NumLEDs),
		Edits: pad,
		On:    onColor,
		Off:   offColor,
		OnRender: func(now rtc.TimeOfDay, _ words.Pattern) {
			println(now.String())
		},
		OnError: func(err error) {
			println(err.Error())
		},
	}
	loop.Run(context.Background())
}

func seedTime() time.Time {
	if t, err := time.Parse(time.RFC3339, buildTime); err == nil {
		return t
	}
	return time.Date(2023, time.January, 1, 12, 0, 0, 0, time.UTC)
}

func halt(msg string) {
	for {
		println(msg)
		time.Sleep(5 * time.Second)
	}
}
