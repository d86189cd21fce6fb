// Package rtc wraps a battery-backed real-time clock.
package rtc

import (
	"errors"
	"fmt"
	"time"
)

// ErrAdjustRange is returned by Clock.Adjust for adjustments of an hour or
// more.
var ErrAdjustRange = errors.New("adjustment must be less than an hour")

// TimeOfDay is a wall-clock reading.
type TimeOfDay struct {
	Hour   int // 0-23
	Minute int // 0-59
	Second int // 0-59
}

// FromTime returns the time of day of t.
func FromTime(t time.Time) TimeOfDay {
	h, m, s := t.Clock()
	return TimeOfDay{Hour: h, Minute: m, Second: s}
}

// String formats the time as H:M:S without zero padding.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%d:%d:%d", t.Hour, t.Minute, t.Second)
}

// Device is a real-time clock chip. The time it stores has no time zone; it
// is read and written as UTC.
type Device interface {
	// ReadTime reads the current date and time.
	ReadTime() (time.Time, error)
	// SetTime writes the date and time and restarts the oscillator if it was
	// stopped.
	SetTime(t time.Time) error
	// LostPower returns true if the oscillator stopped since the time was
	// last set, which means the stored time is garbage.
	LostPower() (bool, error)
}

// Clock is the clock as seen by the render loop.
type Clock struct {
	dev Device
}

// New creates a new clock on top of dev.
func New(dev Device) *Clock {
	return &Clock{dev: dev}
}

// Begin checks that the device answers. It must be called before anything
// else; an error means there is no usable clock.
func (c *Clock) Begin() error {
	if _, err := c.dev.ReadTime(); err != nil {
		return fmt.Errorf("failed to read RTC: %w", err)
	}
	return nil
}

// Now reads the current time of day.
func (c *Clock) Now() (TimeOfDay, error) {
	t, err := c.dev.ReadTime()
	if err != nil {
		return TimeOfDay{}, err
	}
	return FromTime(t), nil
}

// Adjust moves the clock by delta, which must be shorter than an hour in
// either direction. Overflowing minutes carry into the hour and date.
func (c *Clock) Adjust(delta time.Duration) error {
	if delta <= -time.Hour || delta >= time.Hour {
		return ErrAdjustRange
	}

	t, err := c.dev.ReadTime()
	if err != nil {
		return fmt.Errorf("failed to read RTC: %w", err)
	}

	if err := c.dev.SetTime(t.Add(delta)); err != nil {
		return fmt.Errorf("failed to write RTC: %w", err)
	}
	return nil
}

// LostPower returns true if the battery-backed time is invalid.
func (c *Clock) LostPower() (bool, error) {
	return c.dev.LostPower()
}

// Restore seeds the clock with t if its oscillator stopped since the time was
// last set. It reports whether the clock was seeded; false with an error
// means the clock may still hold garbage.
func (c *Clock) Restore(t time.Time) (bool, error) {
	lost, err := c.dev.LostPower()
	if err != nil {
		return false, fmt.Errorf("failed to check oscillator: %w", err)
	}
	if !lost {
		return false, nil
	}
	if err := c.Seed(t); err != nil {
		return false, fmt.Errorf("failed to set RTC: %w", err)
	}
	return true, nil
}

// Seed sets the clock to t's wall-clock date and time.
func (c *Clock) Seed(t time.Time) error {
	y, mo, d := t.Date()
	h, m, s := t.Clock()
	return c.dev.SetTime(time.Date(y, mo, d, h, m, s, 0, time.UTC))
}

// System is a Device backed by the host's clock. Writes are kept as an
// offset in memory and are lost when the process exits.
type System struct {
	offset time.Duration
	now    func() time.Time
}

var _ Device = (*System)(nil)

// NewSystem creates a clock that starts at the host's local time.
func NewSystem() *System {
	return &System{now: time.Now}
}

// ReadTime implements Device.
func (s *System) ReadTime() (time.Time, error) {
	t := s.now().Add(s.offset)
	y, mo, d := t.Date()
	h, m, sec := t.Clock()
	return time.Date(y, mo, d, h, m, sec, 0, time.UTC), nil
}

// SetTime implements Device.
func (s *System) SetTime(t time.Time) error {
	current, _ := s.ReadTime()
	s.offset += t.Sub(current)
	return nil
}

// LostPower implements Device. The host clock never loses power.
func (s *System) LostPower() (bool, error) {
	return false, nil
}
