package wordclock

import (
	"encoding"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/wordclock/internal/button"
	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/internal/render"
	"libdb.so/wordclock/internal/rtc/ds3231"
)

// Config is the configuration for the word clock daemon.
type Config struct {
	// RTC is the real-time clock keeping the time.
	RTC RTCConfig `toml:"rtc"`
	// Display is the strip behind the word panel.
	Display StripConfig `toml:"display"`
	// Status is the single status LED. It is optional.
	Status StripConfig `toml:"status"`
	// Buttons are the time adjustment buttons.
	Buttons ButtonsConfig `toml:"buttons"`
	// Colors are the colors of lit and unlit words.
	Colors ColorsConfig `toml:"colors"`
	// Idle is how long to wait between clock reads when nothing changed.
	Idle TOMLDuration `toml:"idle"`
}

// RTCConfig is the configuration for the real-time clock.
type RTCConfig struct {
	Driver RTCDriver `toml:"driver"`
	// Bus is the I2C bus name, such as "/dev/i2c-1" or "1". The first bus is
	// used if empty.
	Bus string `toml:"bus"`
	// Address is the I2C address of the clock.
	Address uint16 `toml:"address"`
	// Seed is the RFC 3339 time to set when the clock lost power. If empty,
	// the build time or else the host's time is used.
	Seed string `toml:"seed,omitempty"`
}

// RTCDriver is the kind of real-time clock.
type RTCDriver string

const (
	// DS3231Driver is a DS3231 on an I2C bus.
	DS3231Driver RTCDriver = "ds3231"
	// SystemDriver uses the host's own clock.
	SystemDriver RTCDriver = "system"
)

// StripConfig is the configuration for an LED strip.
type StripConfig struct {
	Driver StripDriver `toml:"driver"`
	// Device is the serial device for the serial driver, or the SPI port
	// name for the spi driver.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial driver.
	Baud int `toml:"baud"`
}

// StripDriver is the kind of LED strip output.
type StripDriver string

const (
	// SerialStrip drives the strip through a controller board speaking the
	// ledserial protocol.
	SerialStrip StripDriver = "serial"
	// SPIStrip drives WS2812 LEDs directly from an SPI port.
	SPIStrip StripDriver = "spi"
	// ConsoleStrip prints the strip to standard output.
	ConsoleStrip StripDriver = "console"
	// NoStrip discards everything.
	NoStrip StripDriver = "none"
)

// ButtonsConfig is the configuration for the adjustment buttons.
type ButtonsConfig struct {
	// Forward is the GPIO pin name of the button moving the clock forward.
	// Empty disables the button.
	Forward string `toml:"forward"`
	// Backward is the GPIO pin name of the button moving the clock back.
	Backward string `toml:"backward"`
	// Debounce is the shortest press that is not contact bounce.
	Debounce TOMLDuration `toml:"debounce"`
	// Step is how far a press moves the clock.
	Step TOMLDuration `toml:"step"`
}

// ColorsConfig is the configuration for colors.
type ColorsConfig struct {
	On     led.RGBColor `toml:"on"`
	Off    led.RGBColor `toml:"off"`
	Status led.RGBColor `toml:"status"`
}

// DefaultBaud is the baud rate of serial strips that do not set one.
const DefaultBaud = 115200

// DefaultConfig returns the configuration used for anything a config file
// leaves out.
func DefaultConfig() *Config {
	return &Config{
		RTC: RTCConfig{
			Driver:  DS3231Driver,
			Address: ds3231.Address,
		},
		Display: StripConfig{
			Driver: SerialStrip,
			Device: "/dev/ttyACM0",
			Baud:   DefaultBaud,
		},
		Status: StripConfig{
			Driver: NoStrip,
		},
		Buttons: ButtonsConfig{
			Debounce: TOMLDuration(button.DefaultThreshold),
			Step:     TOMLDuration(button.DefaultStep),
		},
		Colors: ColorsConfig{
			On:     led.RGB(192, 192, 255),
			Off:    led.RGB(0, 0, 0),
			Status: led.RGB(255, 255, 0),
		},
		Idle: TOMLDuration(render.DefaultIdle),
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.RTC.Driver {
	case DS3231Driver:
		if c.RTC.Address == 0 {
			return errors.New("rtc.address is required")
		}
	case SystemDriver:
	default:
		return fmt.Errorf("unknown rtc driver %q", c.RTC.Driver)
	}

	if c.RTC.Seed != "" {
		if _, err := time.Parse(time.RFC3339, c.RTC.Seed); err != nil {
			return errors.Wrap(err, "invalid rtc.seed")
		}
	}

	if err := c.Display.validate(); err != nil {
		return errors.Wrap(err, "invalid display")
	}
	if c.Display.Driver == NoStrip {
		return errors.New("display driver cannot be none")
	}
	if err := c.Status.validate(); err != nil {
		return errors.Wrap(err, "invalid status")
	}

	if step := time.Duration(c.Buttons.Step); step <= 0 || step >= time.Hour {
		return fmt.Errorf("buttons.step %s must be between 0 and 1h", step)
	}
	if c.Buttons.Debounce < 0 {
		return errors.New("buttons.debounce cannot be negative")
	}
	if c.Idle <= 0 {
		return errors.New("idle must be positive")
	}

	return nil
}

func (c *StripConfig) validate() error {
	switch c.Driver {
	case SerialStrip:
		if c.Device == "" {
			return errors.New("serial driver needs a device")
		}
		if c.Baud <= 0 {
			return fmt.Errorf("invalid baud rate %d", c.Baud)
		}
	case SPIStrip, ConsoleStrip, NoStrip:
	default:
		return fmt.Errorf("unknown strip driver %q", c.Driver)
	}
	return nil
}

// SeedTime returns the time the clock is set to after it lost power.
func (c *Config) SeedTime() time.Time {
	if t, err := time.Parse(time.RFC3339, c.RTC.Seed); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
		return t
	}
	return time.Now()
}

// BuildTime is the RFC 3339 time the binary was built at. It is set with
//
//	-ldflags "-X libdb.so/wordclock.BuildTime=$(date --rfc-3339=seconds | tr ' ' T)"
var BuildTime string

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Options missing from the
// file take their value from DefaultConfig.
func ParseConfig(r io.Reader) (*Config, error) {
	var config Config
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	config.fillDefaults(DefaultConfig())
	return &config, nil
}

func (c *Config) fillDefaults(def *Config) {
	if c.RTC.Driver == "" {
		c.RTC.Driver = def.RTC.Driver
	}
	if c.RTC.Address == 0 {
		c.RTC.Address = def.RTC.Address
	}
	c.Display.fillDefaults(def.Display)
	c.Status.fillDefaults(def.Status)
	if c.Buttons.Debounce == 0 {
		c.Buttons.Debounce = def.Buttons.Debounce
	}
	if c.Buttons.Step == 0 {
		c.Buttons.Step = def.Buttons.Step
	}
	if c.Colors.On.IsBlack() {
		c.Colors.On = def.Colors.On
	}
	if c.Colors.Status.IsBlack() {
		c.Colors.Status = def.Colors.Status
	}
	if c.Idle == 0 {
		c.Idle = def.Idle
	}
}

func (c *StripConfig) fillDefaults(def StripConfig) {
	if c.Driver == "" {
		c.Driver = def.Driver
	}
	if c.Driver == def.Driver && c.Device == "" {
		c.Device = def.Device
	}
	if c.Driver == SerialStrip && c.Baud == 0 {
		c.Baud = DefaultBaud
	}
}
