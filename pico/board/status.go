package board

import (
	"image/color"
	"machine"

	"libdb.so/wordclock/internal/led"
	"tinygo.org/x/drivers/ws2812"
)

// Status is the on-board WS2812 LED of the XIAO RP2040, which has its own
// power pin. It is a led.Strip of one LED; showing black cuts its power.
//
// https://wiki.seeedstudio.com/XIAO-RP2040-with-Arduino/
type Status struct {
	power machine.Pin
	dev   ws2812.Device
	color led.RGBColor
}

var _ led.Strip = (*Status)(nil)

// NewStatus configures the status LED and turns it off.
func NewStatus() *Status {
	power := machine.GPIO11
	power.Configure(machine.PinConfig{Mode: machine.PinOutput})
	power.Low()

	machine.GPIO12.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return &Status{
		power: power,
		dev:   ws2812.New(machine.GPIO12),
	}
}

func (s *Status) Len() int { return 1 }

func (s *Status) Set(i int, c led.RGBColor) {
	if i == 0 {
		s.color = c
	}
}

func (s *Status) Show() error {
	if s.color.IsBlack() {
		s.power.Low()
		return nil
	}
	s.power.High()

	var err error
	critical(func() { err = s.dev.WriteColors([]color.RGBA{rgba(s.color)}) })
	return err
}

// Light turns the LED on with the given color.
func (s *Status) Light(c led.RGBColor) {
	s.color = c
	s.Show()
}

// Off turns the LED off.
func (s *Status) Off() {
	s.color = led.RGBColor{}
	s.power.Low()
}
