package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"
	"libdb.so/wordclock"
	"libdb.so/wordclock/internal/words"
)

var (
	config  = "wordclock.toml"
	verbose = false
	sim     = false
	at      = ""
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.BoolVar(&sim, "sim", sim, "run on the host clock and draw the panel on the console")
	pflag.StringVar(&at, "at", at, "print the words lit at the given HH:MM and exit")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if at != "" {
		return tellTime(at)
	}

	cfg, err := readConfig()
	if err != nil {
		return err
	}

	if sim {
		cfg.RTC = wordclock.RTCConfig{Driver: wordclock.SystemDriver, Seed: cfg.RTC.Seed}
		cfg.Display = wordclock.StripConfig{Driver: wordclock.ConsoleStrip}
		cfg.Status = wordclock.StripConfig{Driver: wordclock.NoStrip}
		cfg.Buttons.Forward = ""
		cfg.Buttons.Backward = ""
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	hw, err := wordclock.OpenHardware(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open hardware: %w", err)
	}
	defer hw.Close()

	d, err := wordclock.NewDaemon(cfg, hw, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Boot(); err != nil {
		return fmt.Errorf("failed to boot: %w", err)
	}

	if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

func readConfig() (*wordclock.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		if sim && errors.Is(err, fs.ErrNotExist) {
			return wordclock.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return wordclock.ParseConfig(f)
}

func tellTime(s string) error {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", s, err)
	}

	p := words.Translate(t.Hour(), t.Minute())
	fmt.Printf("%s\t%s\tIT IS %s\n", p, t.Format("15:04"), words.Phrase(p))
	return nil
}
