// Package wordclock is the word clock daemon. It keeps a strip of LEDs behind
// a panel of words lit with the current time, such as "IT IS TWENTY TO FIVE".
package wordclock

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"libdb.so/wordclock/internal/button"
	"libdb.so/wordclock/internal/input"
	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/internal/render"
	"libdb.so/wordclock/internal/rtc"
	"libdb.so/wordclock/internal/words"
	"periph.io/x/conn/v3/gpio"
)

// StatusFlash is how long the status LED stays lit after the clock was
// reset.
const StatusFlash = 250 * time.Millisecond

// Daemon is the main word clock daemon.
type Daemon struct {
	cfg    *Config
	hw     *Hardware
	logger *slog.Logger
	pad    *button.Pad
	sleep  func(time.Duration)
}

// NewDaemon creates a new word clock daemon on top of the given hardware.
func NewDaemon(cfg *Config, hw *Hardware, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	if hw.Clock == nil {
		return nil, errors.New("hardware has no clock")
	}
	if hw.Strip == nil {
		return nil, errors.New("hardware has no display")
	}
	if n := hw.Strip.Len(); n < words.NumLEDs {
		return nil, errors.Errorf("display has %d LEDs, need %d", n, words.NumLEDs)
	}

	threshold := time.Duration(cfg.Buttons.Debounce)

	return &Daemon{
		cfg:    cfg,
		hw:     hw,
		logger: logger,
		pad: &button.Pad{
			Forward:  button.NewDebouncer(threshold),
			Backward: button.NewDebouncer(threshold),
			Step:     time.Duration(cfg.Buttons.Step),
		},
		sleep: time.Sleep,
	}, nil
}

// Boot checks the clock and sets it if its oscillator stopped. An error means
// the clock cannot be used and the daemon must not run.
func (d *Daemon) Boot() error {
	if err := d.hw.Clock.Begin(); err != nil {
		return errors.Wrap(err, "couldn't find RTC")
	}

	seed := d.cfg.SeedTime()
	reseeded, err := d.hw.Clock.Restore(seed)
	if err != nil {
		return errors.Wrap(err, "failed to restore RTC")
	}
	if !reseeded {
		return nil
	}

	d.logger.Warn(
		"RTC lost power, time was reset",
		"time", seed.Format(time.RFC3339))

	if d.hw.Status != nil {
		if err := led.Flash(d.hw.Status, d.cfg.Colors.Status, StatusFlash, d.sleep); err != nil {
			d.logger.Warn(
				"failed to flash status LED",
				"error", err)
		}
	}

	return nil
}

// Run starts the daemon. It blocks until the given context is canceled.
// Boot must have succeeded before.
func (d *Daemon) Run(ctx context.Context) error {
	errg, ctx := errgroup.WithContext(ctx)

	d.watch(ctx, errg, "forward", d.hw.Forward, d.pad.Forward)
	d.watch(ctx, errg, "backward", d.hw.Backward, d.pad.Backward)

	loop := &render.Loop{
		Clock: d.hw.Clock,
		Strip: d.hw.Strip,
		Edits: d.pad,
		On:    d.cfg.Colors.On,
		Off:   d.cfg.Colors.Off,
		Idle:  time.Duration(d.cfg.Idle),
		Sleep: d.sleep,
		OnRender: func(now rtc.TimeOfDay, p words.Pattern) {
			d.logger.Info(now.String(), "words", words.Phrase(p))
		},
		OnError: func(err error) {
			d.logger.Warn(
				"failed to update clock",
				"error", err)
		},
	}

	errg.Go(func() error {
		return loop.Run(ctx)
	})

	return errg.Wait()
}

func (d *Daemon) watch(ctx context.Context, errg *errgroup.Group, name string, pin gpio.PinIn, db *button.Debouncer) {
	if pin == nil {
		return
	}

	d.logger.Debug(
		"watching button",
		"button", name,
		"pin", pin.Name())

	w := &input.Watcher{Pin: pin, Debouncer: db}
	errg.Go(func() error {
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			return errors.Wrapf(err, "%s button", name)
		}
		return ctx.Err()
	})
}
