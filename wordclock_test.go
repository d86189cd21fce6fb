package wordclock

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/internal/rtc"
	"libdb.so/wordclock/internal/strip"
	"libdb.so/wordclock/internal/words"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type memDevice struct {
	t       time.Time
	lost    bool
	readErr error
	setErr  error
}

func (m *memDevice) ReadTime() (time.Time, error) { return m.t, m.readErr }
func (m *memDevice) LostPower() (bool, error)     { return m.lost, nil }
func (m *memDevice) SetTime(t time.Time) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.t, m.lost = t, false
	return nil
}

// link is a serial link to a controller that never answers.
type link struct {
	written bytes.Buffer
}

func (l *link) Read(b []byte) (int, error)  { return 0, io.EOF }
func (l *link) Write(b []byte) (int, error) { return l.written.Write(b) }

type testRig struct {
	dev    *memDevice
	strip  *strip.Memory
	status *strip.Memory
	hw     *Hardware
	cfg    *Config
}

func newTestRig(at time.Time) *testRig {
	r := &testRig{
		dev:    &memDevice{t: at},
		strip:  strip.NewMemory(words.NumLEDs),
		status: strip.NewMemory(1),
		cfg:    DefaultConfig(),
	}
	r.hw = &Hardware{
		Clock:  rtc.New(r.dev),
		Strip:  r.strip,
		Status: r.status,
	}
	return r
}

func (r *testRig) daemon(t *testing.T) *Daemon {
	d, err := NewDaemon(r.cfg, r.hw, discardLogger)
	require.NoError(t, err)
	return d
}

func at(hour, minute int) time.Time {
	return time.Date(2023, 10, 1, hour, minute, 0, 0, time.UTC)
}

func TestNewDaemon(t *testing.T) {
	r := newTestRig(at(4, 40))
	r.hw.Strip = strip.NewMemory(10)
	_, err := NewDaemon(r.cfg, r.hw, discardLogger)
	assert.EqualError(t, err, "display has 10 LEDs, need 30")

	r = newTestRig(at(4, 40))
	r.cfg.Buttons.Step = 0
	_, err = NewDaemon(r.cfg, r.hw, discardLogger)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "invalid configuration")
	}

	r = newTestRig(at(4, 40))
	r.hw.Clock = nil
	_, err = NewDaemon(r.cfg, r.hw, discardLogger)
	assert.EqualError(t, err, "hardware has no clock")
}

func TestBootKeepsTime(t *testing.T) {
	r := newTestRig(at(4, 40))
	d := r.daemon(t)

	require.NoError(t, d.Boot())
	assert.Equal(t, at(4, 40), r.dev.t)
	assert.Zero(t, r.status.Shown)
}

func TestBootLostPower(t *testing.T) {
	r := newTestRig(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
	r.dev.lost = true
	r.cfg.RTC.Seed = "2023-10-01T06:50:00+02:00"

	var slept []time.Duration
	d := r.daemon(t)
	d.sleep = func(d time.Duration) { slept = append(slept, d) }

	require.NoError(t, d.Boot())

	// The seed's wall clock is kept as is.
	assert.Equal(t, time.Date(2023, 10, 1, 6, 50, 0, 0, time.UTC), r.dev.t)
	assert.False(t, r.dev.lost)

	assert.Equal(t, 2, r.status.Shown, "status LED is lit then cleared")
	assert.Equal(t, led.LEDs{{}}, r.status.LEDs)
	assert.Equal(t, []time.Duration{StatusFlash}, slept)
}

func TestBootLostPowerNoStatus(t *testing.T) {
	r := newTestRig(at(0, 0))
	r.dev.lost = true
	r.hw.Status = nil

	d := r.daemon(t)
	require.NoError(t, d.Boot())
	assert.False(t, r.dev.lost)
}

func TestBootNoClock(t *testing.T) {
	r := newTestRig(at(4, 40))
	r.dev.readErr = errors.New("i2c: no ACK")

	d := r.daemon(t)
	err := d.Boot()
	assert.EqualError(t, err, "couldn't find RTC: failed to read RTC: i2c: no ACK")
	assert.Zero(t, r.strip.Shown, "nothing is drawn")
	assert.Zero(t, r.status.Shown)
}

func TestBootNoClockKeepsPanelDark(t *testing.T) {
	var display, status link

	r := newTestRig(at(4, 40))
	r.dev.readErr = errors.New("i2c: no ACK")
	r.hw.Strip = strip.NewSerial(&display, words.NumLEDs, discardLogger)
	r.hw.Status = strip.NewSerial(&status, 1, discardLogger)

	d := r.daemon(t)
	assert.Error(t, d.Boot())

	require.NoError(t, r.hw.Strip.(*strip.Serial).Close())
	require.NoError(t, r.hw.Status.(*strip.Serial).Close())
	assert.Zero(t, display.written.Len(), "nothing reaches the display controller")
	assert.Zero(t, status.written.Len())
}

func TestBootSeedFails(t *testing.T) {
	r := newTestRig(at(0, 0))
	r.dev.lost = true
	r.dev.setErr = errors.New("i2c: no ACK")

	d := r.daemon(t)
	err := d.Boot()
	assert.EqualError(t, err, "failed to restore RTC: failed to set RTC: i2c: no ACK")
	assert.True(t, r.dev.lost)
	assert.Zero(t, r.status.Shown, "no recovery is signalled")
}

func TestRun(t *testing.T) {
	r := newTestRig(at(16, 40))
	d := r.daemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var idles int
	d.sleep = func(time.Duration) {
		idles++
		cancel()
	}

	err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 1, r.strip.Shown, "unchanged time is not redrawn")
	assert.Equal(t, 1, idles)

	want := led.Expand(uint32(words.Translate(16, 40)), words.NumLEDs, r.cfg.Colors.On, r.cfg.Colors.Off)
	assert.Equal(t, want, r.strip.LEDs)
}

func TestRunButton(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO27", Num: 27, EdgesChan: make(chan gpio.Level)}

	r := newTestRig(at(10, 30))
	r.hw.Forward = pin
	d := r.daemon(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var idles int
	d.sleep = func(time.Duration) {
		idles++
		switch {
		case idles == 1:
			waitConfigured(t, pin)
			pin.EdgesChan <- gpio.Low
			time.Sleep(2 * time.Duration(r.cfg.Buttons.Debounce))
			pin.EdgesChan <- gpio.High
		case r.dev.t.Minute() == 35, idles > 1000:
			cancel()
		default:
			time.Sleep(time.Millisecond)
		}
	}

	err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, at(10, 35), r.dev.t)
	assert.Equal(t, 2, r.strip.Shown)

	want := led.Expand(uint32(words.Translate(10, 35)), words.NumLEDs, r.cfg.Colors.On, r.cfg.Colors.Off)
	assert.Equal(t, want, r.strip.LEDs)
}

// waitConfigured waits for the watcher to set the pin up. Edges sent before
// that are dropped by the pin.
func waitConfigured(t *testing.T, pin *gpiotest.Pin) {
	deadline := time.Now().Add(time.Second)
	for pin.Pull() != gpio.PullUp {
		if time.Now().After(deadline) {
			t.Error("pin was never configured")
			return
		}
		time.Sleep(time.Millisecond)
	}
}
