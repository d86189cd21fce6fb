package strip

import (
	"fmt"

	"libdb.so/wordclock/internal/led"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"
)

// SPI is a WS2812 strip driven directly from an SPI port, with the NRZ
// waveform produced by nrzled.
type SPI struct {
	dev  *nrzled.Dev
	leds led.LEDs
}

var _ led.Strip = (*SPI)(nil)

// NewSPI creates a strip of n LEDs on the given SPI port.
func NewSPI(port spi.Port, n int) (*SPI, error) {
	opts := nrzled.DefaultOpts
	opts.NumPixels = n
	opts.Channels = 3
	// nrzled only drives the NRZ waveform over SPI at 2.5MHz.
	opts.Freq = 2500 * physic.KiloHertz

	dev, err := nrzled.NewSPI(port, &opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create nrzled device: %w", err)
	}

	return &SPI{dev: dev, leds: led.NewLEDs(n)}, nil
}

func (s *SPI) Len() int                  { return len(s.leds) }
func (s *SPI) Set(i int, c led.RGBColor) { s.leds[i] = c }

// Show writes the LEDs out as raw RGB pixels.
func (s *SPI) Show() error {
	if _, err := s.dev.Write(s.leds.AsPixels()); err != nil {
		return fmt.Errorf("failed to write pixels: %w", err)
	}
	return nil
}

// Close turns the LEDs off.
func (s *SPI) Close() error {
	return s.dev.Halt()
}
