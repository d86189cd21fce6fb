package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/wordclock/internal/button"
	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/internal/rtc"
	"libdb.so/wordclock/internal/words"
)

var (
	on  = led.RGB(192, 192, 255)
	off = led.RGB(0, 0, 0)
)

type fakeDevice struct {
	t   time.Time
	err error
}

func (d *fakeDevice) ReadTime() (time.Time, error) { return d.t, d.err }
func (d *fakeDevice) SetTime(t time.Time) error    { d.t = t; return nil }
func (d *fakeDevice) LostPower() (bool, error)     { return false, nil }

type fakeStrip struct {
	leds   led.LEDs
	frames []led.LEDs
	err    error
}

func newFakeStrip() *fakeStrip {
	return &fakeStrip{leds: led.NewLEDs(words.NumLEDs)}
}

func (s *fakeStrip) Len() int                  { return len(s.leds) }
func (s *fakeStrip) Set(i int, c led.RGBColor) { s.leds[i] = c }
func (s *fakeStrip) Show() error {
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, append(led.LEDs(nil), s.leds...))
	return nil
}

type testLoop struct {
	*Loop
	dev    *fakeDevice
	strip  *fakeStrip
	pad    *button.Pad
	slept  []time.Duration
	logged []string
}

func newTestLoop(h, m, s int) *testLoop {
	tl := &testLoop{
		dev:   &fakeDevice{t: time.Date(2023, time.September, 5, h, m, s, 0, time.UTC)},
		strip: newFakeStrip(),
		pad:   button.NewPad(),
	}
	tl.Loop = &Loop{
		Clock: rtc.New(tl.dev),
		Strip: tl.strip,
		Edits: tl.pad,
		On:    on,
		Off:   off,
		Sleep: func(d time.Duration) { tl.slept = append(tl.slept, d) },
		OnRender: func(now rtc.TimeOfDay, p words.Pattern) {
			tl.logged = append(tl.logged, now.String())
		},
	}
	return tl
}

func (tl *testLoop) advance(d time.Duration) {
	tl.dev.t = tl.dev.t.Add(d)
}

func TestStepFirstRender(t *testing.T) {
	tl := newTestLoop(4, 40, 0)

	p, err := tl.Step(words.Blank)
	require.NoError(t, err)

	assert.Equal(t, words.TwentyMinutes|words.To|words.Hour(5), p)
	assert.Equal(t, "TWENTY TO FIVE", words.Phrase(p))
	require.Len(t, tl.strip.frames, 1)
	assert.Equal(t, led.Expand(uint32(p), words.NumLEDs, on, off), tl.strip.frames[0])
	assert.Equal(t, []string{"4:40:0"}, tl.logged)
	assert.Empty(t, tl.slept)
}

func TestStepMidnight(t *testing.T) {
	tl := newTestLoop(0, 0, 0)

	p, err := tl.Step(words.Blank)
	require.NoError(t, err)
	assert.Equal(t, words.OClock|words.Hour(12), p)
	assert.Equal(t, "TWELVE O'CLOCK", words.Phrase(p))
}

func TestStepThrottle(t *testing.T) {
	tl := newTestLoop(10, 31, 0)

	p, err := tl.Step(words.Blank)
	require.NoError(t, err)

	tl.advance(20 * time.Second)
	p2, err := tl.Step(p)
	require.NoError(t, err)
	assert.Equal(t, p, p2)

	tl.advance(20 * time.Second)
	p3, err := tl.Step(p2)
	require.NoError(t, err)
	assert.Equal(t, p, p3)

	assert.Len(t, tl.strip.frames, 1, "unchanged minutes must not redraw")
	assert.Equal(t, []time.Duration{DefaultIdle, DefaultIdle}, tl.slept)
	assert.Len(t, tl.logged, 1)

	// 10:35 crosses into the next bucket.
	tl.advance(4 * time.Minute)
	p4, err := tl.Step(p3)
	require.NoError(t, err)
	assert.NotEqual(t, p3, p4)
	assert.Len(t, tl.strip.frames, 2)
	assert.Equal(t, []string{"10:31:0", "10:35:40"}, tl.logged)
}

func TestStepButtonAdjust(t *testing.T) {
	tl := newTestLoop(10, 30, 0)

	p, err := tl.Step(words.Blank)
	require.NoError(t, err)
	assert.Equal(t, words.Half|words.Past|words.Hour(10), p)

	tl.pad.Forward.Notify(button.Falling, 1000)
	tl.pad.Forward.Notify(button.Rising, 1120)

	p, err = tl.Step(p)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2023, time.September, 5, 10, 35, 0, 0, time.UTC), tl.dev.t)
	assert.Equal(t, words.TwentyFiveMinutes|words.To|words.Hour(11), p)
	assert.False(t, tl.pad.Forward.Pending())

	// Nothing pending: the clock is left alone.
	_, err = tl.Step(p)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.September, 5, 10, 35, 0, 0, time.UTC), tl.dev.t)
}

func TestStepBackwardButton(t *testing.T) {
	tl := newTestLoop(10, 2, 0)

	tl.pad.Backward.Notify(button.Falling, 1000)
	tl.pad.Backward.Notify(button.Rising, 1100)

	p, err := tl.Step(words.Blank)
	require.NoError(t, err)
	assert.Equal(t, 9, tl.dev.t.Hour())
	assert.Equal(t, 57, tl.dev.t.Minute())
	assert.Equal(t, words.FiveMinutes|words.To|words.Hour(10), p)
}

func TestStepShortPressIgnored(t *testing.T) {
	tl := newTestLoop(10, 30, 0)

	tl.pad.Forward.Notify(button.Falling, 1000)
	tl.pad.Forward.Notify(button.Rising, 1030)

	_, err := tl.Step(words.Blank)
	require.NoError(t, err)
	assert.Equal(t, 30, tl.dev.t.Minute())
}

func TestStepErrors(t *testing.T) {
	errI2C := errors.New("i2c: nack")

	tl := newTestLoop(10, 30, 0)
	tl.dev.err = errI2C
	p, err := tl.Step(words.Blank)
	assert.ErrorIs(t, err, errI2C)
	assert.Equal(t, words.Blank, p)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "read", stepErr.Op)

	tl = newTestLoop(10, 30, 0)
	tl.strip.err = errors.New("serial: closed")
	p, err = tl.Step(words.Blank)
	assert.Error(t, err)
	assert.Equal(t, words.Blank, p, "a failed show must be retried next iteration")
	assert.Empty(t, tl.logged)
}

func TestRunStopsOnCancel(t *testing.T) {
	tl := newTestLoop(4, 40, 0)

	ctx, cancel := context.WithCancel(context.Background())
	var steps int
	tl.Sleep = func(time.Duration) {
		steps++
		if steps == 3 {
			cancel()
		}
	}

	err := tl.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, tl.strip.frames, 1)
	assert.Equal(t, 3, steps)
}

func TestRunReportsErrors(t *testing.T) {
	tl := newTestLoop(4, 40, 0)
	tl.dev.err = errors.New("i2c: nack")

	ctx, cancel := context.WithCancel(context.Background())
	var errs []error
	tl.OnError = func(err error) {
		errs = append(errs, err)
		if len(errs) == 2 {
			cancel()
		}
	}

	assert.ErrorIs(t, tl.Run(ctx), context.Canceled)
	assert.Len(t, errs, 2)
	assert.Empty(t, tl.strip.frames)
}
