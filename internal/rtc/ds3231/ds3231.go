// Package ds3231 drives a Maxim DS3231 real-time clock over I2C. Only the
// time-keeping registers and the oscillator stop flag are used; alarms, the
// square wave output and the temperature sensor are left alone.
//
// Datasheet: https://www.analog.com/media/en/technical-documentation/data-sheets/DS3231.pdf
package ds3231

import (
	"fmt"
	"time"

	"libdb.so/wordclock/internal/rtc"
	"periph.io/x/conn/v3/i2c"
)

// Address is the fixed I2C address of the DS3231.
const Address = 0x68

const (
	regSeconds = 0x00
	regStatus  = 0x0F
)

const (
	hour12   = 1 << 6
	hourPM   = 1 << 5
	century  = 1 << 7
	statusOS = 1 << 7 // oscillator stop flag
)

// Dev is a DS3231 on an I2C bus.
type Dev struct {
	d i2c.Dev
}

var _ rtc.Device = (*Dev)(nil)

// New returns a handle to the DS3231 at addr on bus. It does not talk to the
// chip.
func New(bus i2c.Bus, addr uint16) *Dev {
	return &Dev{d: i2c.Dev{Bus: bus, Addr: addr}}
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("DS3231{%s}", &d.d)
}

// ReadTime reads the date and time registers.
func (d *Dev) ReadTime() (time.Time, error) {
	var buf [7]byte
	if err := d.d.Tx([]byte{regSeconds}, buf[:]); err != nil {
		return time.Time{}, fmt.Errorf("failed to read time registers: %w", err)
	}

	sec := bcdToDec(buf[0] & 0x7F)
	min := bcdToDec(buf[1] & 0x7F)

	var hour int
	if buf[2]&hour12 != 0 {
		hour = bcdToDec(buf[2]&0x1F) % 12
		if buf[2]&hourPM != 0 {
			hour += 12
		}
	} else {
		hour = bcdToDec(buf[2] & 0x3F)
	}

	day := bcdToDec(buf[4] & 0x3F)
	month := time.Month(bcdToDec(buf[5] & 0x1F))
	year := 2000 + bcdToDec(buf[6])
	if buf[5]&century != 0 {
		year += 100
	}

	return time.Date(year, month, day, hour, min, sec, 0, time.UTC), nil
}

// SetTime writes the date and time registers in 24-hour mode and clears the
// oscillator stop flag.
func (d *Dev) SetTime(t time.Time) error {
	year := t.Year()
	if year < 2000 || year > 2199 {
		return fmt.Errorf("year %d out of range for DS3231", year)
	}

	month := decToBcd(int(t.Month()))
	if year >= 2100 {
		month |= century
	}

	w := []byte{
		regSeconds,
		decToBcd(t.Second()),
		decToBcd(t.Minute()),
		decToBcd(t.Hour()),
		decToBcd(int(t.Weekday()) + 1),
		decToBcd(t.Day()),
		month,
		decToBcd(year % 100),
	}
	if err := d.d.Tx(w, nil); err != nil {
		return fmt.Errorf("failed to write time registers: %w", err)
	}

	status, err := d.status()
	if err != nil {
		return err
	}
	if status&statusOS == 0 {
		return nil
	}
	if err := d.d.Tx([]byte{regStatus, status &^ statusOS}, nil); err != nil {
		return fmt.Errorf("failed to clear oscillator stop flag: %w", err)
	}
	return nil
}

// LostPower returns true if the oscillator stopped at some point since the
// time was last set, usually because the backup battery is flat or missing.
func (d *Dev) LostPower() (bool, error) {
	status, err := d.status()
	if err != nil {
		return false, err
	}
	return status&statusOS != 0, nil
}

func (d *Dev) status() (byte, error) {
	var buf [1]byte
	if err := d.d.Tx([]byte{regStatus}, buf[:]); err != nil {
		return 0, fmt.Errorf("failed to read status register: %w", err)
	}
	return buf[0], nil
}

// decToBcd converts int to BCD
func decToBcd(dec int) uint8 {
	return uint8(dec + 6*(dec/10))
}

// bcdToDec converts BCD to int
func bcdToDec(bcd uint8) int {
	return int(bcd - 6*(bcd>>4))
}
