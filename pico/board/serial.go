package board

import (
	"io"
	"machine"
	"runtime"
	"time"
)

// ByteReadWriter describes a device that can read and write bytes.
// Usually, machine.Serialer implements this interface.
type ByteReadWriter interface {
	ReadByte() (byte, error)
	WriteByte(byte) error
}

var _ ByteReadWriter = machine.Serialer(nil)

// SerialReadWriter combines the io.ReadWriter and machine.Serialer interfaces.
type SerialReadWriter interface {
	io.ReadWriter
	ByteReadWriter
	// Buffered returns the number of bytes currently buffered in the serial
	// device.
	Buffered() int
}

type serialIO struct {
	machine.Serialer
}

// WrapSerial wraps a machine.Serialer in an io.ReadWriter. Reads never block
// for long: with nothing buffered they sleep a millisecond and return 0, which
// io.ReadFull retries.
func WrapSerial(serial machine.Serialer) SerialReadWriter {
	return serialIO{Serialer: serial}
}

func (s serialIO) Read(b []byte) (int, error) {
	n := s.Buffered()
	if n == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}

	if n > len(b) {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := s.ReadByte()
		if err != nil {
			return i, err
		}
		b[i] = c
	}

	runtime.Gosched()
	return n, nil
}

func (s serialIO) Write(b []byte) (int, error) {
	for i, c := range b {
		if err := s.WriteByte(c); err != nil {
			return i, err
		}
	}
	runtime.Gosched()
	return len(b), nil
}
