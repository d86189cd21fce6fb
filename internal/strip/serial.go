package strip

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.bug.st/serial"
	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/ledserial"
)

// DefaultAckTimeout is how long Serial waits for the controller to answer a
// packet.
const DefaultAckTimeout = 2 * time.Second

// Serial is a strip attached to a controller board speaking the ledserial
// protocol.
type Serial struct {
	rw     io.ReadWriter
	leds   led.LEDs
	logger *slog.Logger
	// initialized is set once the controller acked the InitializePacket.
	initialized bool
}

var _ led.Strip = (*Serial)(nil)

// OpenSerial opens the serial device for a strip of n LEDs on the controller
// behind it. Nothing is sent before the first Show.
func OpenSerial(device string, baud int, n int, logger *slog.Logger) (*Serial, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port: %w", err)
	}

	if err := port.SetReadTimeout(DefaultAckTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	return NewSerial(portIO{port}, n, logger), nil
}

// NewSerial creates a strip of n LEDs on the controller at the other end of
// rw. The controller is only initialized by the first Show. Reads from rw
// must eventually time out with an error, or Show can block forever on a dead
// controller.
func NewSerial(rw io.ReadWriter, n int, logger *slog.Logger) *Serial {
	return &Serial{
		rw:     rw,
		leds:   led.NewLEDs(n),
		logger: logger,
	}
}

func (s *Serial) Len() int                  { return len(s.leds) }
func (s *Serial) Set(i int, c led.RGBColor) { s.leds[i] = c }

// Show sends the LEDs to the controller and waits for it to acknowledge. The
// first call initializes the controller.
func (s *Serial) Show() error {
	if !s.initialized {
		if err := s.send(ledserial.InitializePacket{NumLEDs: uint16(len(s.leds))}); err != nil {
			return fmt.Errorf("failed to initialize LEDs: %w", err)
		}
		s.initialized = true
	}
	return s.send(ledserial.SetPacket{Pix: s.leds.AsPixels()})
}

// Close clears the strip if it was ever shown and closes the serial port, if
// it can be closed.
func (s *Serial) Close() error {
	if s.initialized {
		if err := s.send(ledserial.ClearPacket{}); err != nil {
			s.logger.Warn(
				"failed to clear LEDs",
				"error", err)
		}
	}
	if c, ok := s.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Serial) send(p ledserial.IncomingPacket) error {
	s.logger.Debug(
		"writing packet",
		"type", p.Type())

	if err := ledserial.WriteIncomingPacket(s.rw, p); err != nil {
		return err
	}

	return s.waitAck(p.Type())
}

func (s *Serial) waitAck(t ledserial.IncomingPacketType) error {
	for {
		p, err := ledserial.ReadOutgoingPacket(s.rw)
		if err != nil {
			return fmt.Errorf("failed to read packet: %w", err)
		}

		switch p := p.(type) {
		case ledserial.AckPacket:
			if p.IncomingPacketType == t {
				return nil
			}
			s.logger.Debug(
				"ignoring stale ack from controller",
				"acked_for", p.IncomingPacketType,
				"waiting_for", t)

		case ledserial.LogPacket:
			s.logger.Debug(
				"received log packet from controller",
				"message", p.Message)

		case ledserial.ErrorPacket:
			return fmt.Errorf("controller reported error: %s", p.Message)

		case ledserial.PanicPacket:
			return fmt.Errorf("controller panicked")

		default:
			return fmt.Errorf("received unknown packet from controller: %s", p.Type())
		}
	}
}

// portIO turns the zero-length reads of a timed out serial.Port into errors
// so that io.ReadFull does not spin.
type portIO struct {
	serial.Port
}

func (p portIO) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if n == 0 && err == nil && len(b) > 0 {
		return 0, fmt.Errorf("serial read: %w", os.ErrDeadlineExceeded)
	}
	return n, err
}
