package wordclock

import (
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/internal/rtc"
	"libdb.so/wordclock/internal/rtc/ds3231"
	"libdb.so/wordclock/internal/strip"
	"libdb.so/wordclock/internal/words"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// Hardware is everything the daemon talks to.
type Hardware struct {
	Clock *rtc.Clock
	// Strip is the word panel. It must have at least words.NumLEDs LEDs.
	Strip led.Strip
	// Status is the status LED. It may be nil if the daemon is built by hand.
	Status led.Strip
	// Forward and Backward are the button pins. Either may be nil.
	Forward  gpio.PinIn
	Backward gpio.PinIn

	closers []io.Closer
}

// OpenHardware opens the peripherals named in the configuration. The caller
// must Close the returned hardware.
func OpenHardware(cfg *Config, logger *slog.Logger) (*Hardware, error) {
	if needsHost(cfg) {
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "failed to initialize periph host")
		}
	}

	hw := &Hardware{}

	if err := hw.openClock(cfg.RTC); err != nil {
		hw.Close()
		return nil, err
	}

	display, err := hw.openStrip(cfg.Display, words.NumLEDs, logger.With("strip", "display"))
	if err != nil {
		hw.Close()
		return nil, errors.Wrap(err, "failed to open display")
	}
	hw.Strip = display

	status, err := hw.openStrip(cfg.Status, 1, logger.With("strip", "status"))
	if err != nil {
		hw.Close()
		return nil, errors.Wrap(err, "failed to open status LED")
	}
	hw.Status = status

	if hw.Forward, err = openPin(cfg.Buttons.Forward); err != nil {
		hw.Close()
		return nil, errors.Wrap(err, "forward button")
	}
	if hw.Backward, err = openPin(cfg.Buttons.Backward); err != nil {
		hw.Close()
		return nil, errors.Wrap(err, "backward button")
	}

	return hw, nil
}

// Close releases the peripherals in the reverse order they were opened.
func (hw *Hardware) Close() error {
	var firstErr error
	for i := len(hw.closers) - 1; i >= 0; i-- {
		if err := hw.closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	hw.closers = nil
	return firstErr
}

func (hw *Hardware) openClock(cfg RTCConfig) error {
	switch cfg.Driver {
	case SystemDriver:
		hw.Clock = rtc.New(rtc.NewSystem())
		return nil
	case DS3231Driver:
		bus, err := i2creg.Open(cfg.Bus)
		if err != nil {
			return errors.Wrap(err, "failed to open I2C bus")
		}
		hw.closers = append(hw.closers, bus)
		hw.Clock = rtc.New(ds3231.New(bus, cfg.Address))
		return nil
	default:
		return errors.Errorf("unknown rtc driver %q", cfg.Driver)
	}
}

func (hw *Hardware) openStrip(cfg StripConfig, n int, logger *slog.Logger) (led.Strip, error) {
	switch cfg.Driver {
	case SerialStrip:
		s, err := strip.OpenSerial(cfg.Device, cfg.Baud, n, logger)
		if err != nil {
			return nil, err
		}
		hw.closers = append(hw.closers, s)
		return s, nil

	case SPIStrip:
		port, err := spireg.Open(cfg.Device)
		if err != nil {
			return nil, errors.Wrap(err, "failed to open SPI port")
		}
		hw.closers = append(hw.closers, port)

		s, err := strip.NewSPI(port, n)
		if err != nil {
			return nil, err
		}
		hw.closers = append(hw.closers, s)
		return s, nil

	case ConsoleStrip:
		return strip.NewConsole(os.Stdout, n), nil

	case NoStrip:
		return strip.NewMemory(n), nil

	default:
		return nil, errors.Errorf("unknown strip driver %q", cfg.Driver)
	}
}

func openPin(name string) (gpio.PinIn, error) {
	if name == "" {
		return nil, nil
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, errors.Errorf("no such GPIO pin %q", name)
	}
	return p, nil
}

func needsHost(cfg *Config) bool {
	return cfg.RTC.Driver == DS3231Driver ||
		cfg.Display.Driver == SPIStrip ||
		cfg.Status.Driver == SPIStrip ||
		cfg.Buttons.Forward != "" ||
		cfg.Buttons.Backward != ""
}
