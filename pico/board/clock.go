package board

import (
	"machine"
	"time"

	"libdb.so/wordclock/internal/rtc"
	"tinygo.org/x/drivers/ds3231"
)

// Clock is a DS3231 on I2C0, with SDA on GPIO24 and SCL on GPIO25.
type Clock struct {
	dev ds3231.Device
}

var _ rtc.Device = (*Clock)(nil)

// NewClock configures I2C0 and the DS3231 on it.
func NewClock() (*Clock, error) {
	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GPIO24,
		SCL:       machine.GPIO25,
		Frequency: machine.TWI_FREQ_100KHZ,
	})
	if err != nil {
		return nil, err
	}

	dev := ds3231.New(machine.I2C0)
	dev.Configure()

	return &Clock{dev: dev}, nil
}

func (c *Clock) ReadTime() (time.Time, error) { return c.dev.ReadTime() }
func (c *Clock) SetTime(t time.Time) error    { return c.dev.SetTime(t) }

// LostPower reports whether the oscillator stop flag is set.
func (c *Clock) LostPower() (bool, error) {
	return !c.dev.IsTimeValid(), nil
}
