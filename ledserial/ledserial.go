// Package ledserial implements the LED serial protocol spoken between the
// word clock daemon and an LED controller board.
//
// Every packet is a type byte followed by its payload and a little-endian
// CRC-32 (IEEE) of the type byte and payload. The host sends incoming
// packets; the controller answers each of them with an AckPacket or an
// ErrorPacket, and may send LogPackets at any time.
package ledserial

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Endianness defines the endianness of the protocol.
var Endianness = binary.LittleEndian

// MaxMessageLength is the longest message an error or log packet can carry.
const MaxMessageLength = 1<<16 - 1

// IncomingPacketType is a type of packet.
type IncomingPacketType uint8

const (
	TypeInitializePacket IncomingPacketType = iota
	TypeClearPacket
	TypeSetPacket
)

// String returns a string representation of the packet type.
func (t IncomingPacketType) String() string {
	switch t {
	case TypeInitializePacket:
		return "initialize"
	case TypeClearPacket:
		return "clear"
	case TypeSetPacket:
		return "set"
	default:
		return fmt.Sprintf("IncomingPacketType(%d)", t)
	}
}

// IncomingPacket is a packet sent from the host to the controller.
type IncomingPacket interface {
	// Type returns the type of packet.
	Type() IncomingPacketType
}

// InitializePacket is a packet that initializes the LED strip.
type InitializePacket struct {
	NumLEDs uint16
}

// ClearPacket is a packet that clears the LED strip.
type ClearPacket struct{}

// SetPacket is a packet that sets the LED strip to the given colors. Pix
// holds three bytes per LED.
type SetPacket struct {
	Pix []uint8
}

func (p InitializePacket) Type() IncomingPacketType { return TypeInitializePacket }
func (p ClearPacket) Type() IncomingPacketType      { return TypeClearPacket }
func (p SetPacket) Type() IncomingPacketType        { return TypeSetPacket }

// OutgoingPacketType is a type of packet.
type OutgoingPacketType uint8

const (
	TypeErrorPacket OutgoingPacketType = iota
	TypePanicPacket
	TypeLogPacket
	TypeAckPacket
)

// String returns a string representation of the packet type.
func (t OutgoingPacketType) String() string {
	switch t {
	case TypeErrorPacket:
		return "error"
	case TypePanicPacket:
		return "panic"
	case TypeLogPacket:
		return "log"
	case TypeAckPacket:
		return "ack"
	default:
		return fmt.Sprintf("OutgoingPacketType(%d)", t)
	}
}

// OutgoingPacket is a packet sent from the controller to the host.
type OutgoingPacket interface {
	// Type returns the type of packet.
	Type() OutgoingPacketType
}

// ErrorPacket is a packet that indicates an error occurred.
type ErrorPacket struct {
	Message string
}

// PanicPacket is a packet that indicates the program cannot recover.
type PanicPacket struct{}

// LogPacket is a packet that contains a log message.
type LogPacket struct {
	Message string
}

// AckPacket acknowledges that an incoming packet was handled.
type AckPacket struct {
	IncomingPacketType IncomingPacketType
}

func (p ErrorPacket) Type() OutgoingPacketType { return TypeErrorPacket }
func (p PanicPacket) Type() OutgoingPacketType { return TypePanicPacket }
func (p LogPacket) Type() OutgoingPacketType   { return TypeLogPacket }
func (p AckPacket) Type() OutgoingPacketType   { return TypeAckPacket }

// ReadContext is the state of the LED strip. Data in this structure are
// required for the device to read incoming packets.
type ReadContext struct {
	// NumLEDs is the number of LEDs in the strip.
	NumLEDs uint16
	// LEDBuffer, if large enough, is reused for the pixels of a SetPacket.
	LEDBuffer []byte
}

// ReadIncomingPacket reads an incoming packet from the given reader.
func ReadIncomingPacket(r io.Reader, context ReadContext) (IncomingPacket, error) {
	hash := crc32.NewIEEE()
	tee := io.TeeReader(r, hash)

	var packet IncomingPacket
	var ptypeBuf [1]byte
	if _, err := io.ReadFull(tee, ptypeBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read incoming packet type: %w", err)
	}

	switch ptype := IncomingPacketType(ptypeBuf[0]); ptype {
	case TypeInitializePacket:
		var p InitializePacket
		if err := binary.Read(tee, Endianness, &p); err != nil {
			return nil, fmt.Errorf("failed to read number of LEDs: %w", err)
		}
		packet = p

	case TypeClearPacket:
		packet = ClearPacket{}

	case TypeSetPacket:
		n := 3 * int(context.NumLEDs)
		var p SetPacket
		if cap(context.LEDBuffer) >= n {
			p.Pix = context.LEDBuffer[:n]
		} else {
			p.Pix = make([]uint8, n)
		}
		if _, err := io.ReadFull(tee, p.Pix); err != nil {
			return nil, fmt.Errorf("failed to read pixel data: %w", err)
		}
		packet = p

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := readChecksum(r, hash.Sum32()); err != nil {
		return nil, err
	}

	return packet, nil
}

// WriteIncomingPacket writes an incoming packet to the given writer in a
// single Write call.
func WriteIncomingPacket(w io.Writer, p IncomingPacket) error {
	var buf bytes.Buffer
	buf.WriteByte(byte(p.Type()))

	switch p := p.(type) {
	case InitializePacket:
		binary.Write(&buf, Endianness, p)
	case ClearPacket:
	case SetPacket:
		buf.Write(p.Pix)
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	return writeFrame(w, &buf)
}

// ReadOutgoingPacket reads an outgoing packet from the given reader.
func ReadOutgoingPacket(r io.Reader) (OutgoingPacket, error) {
	hash := crc32.NewIEEE()
	tee := io.TeeReader(r, hash)

	var packet OutgoingPacket
	var ptypeBuf [1]byte
	if _, err := io.ReadFull(tee, ptypeBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read outgoing packet type: %w", err)
	}

	switch ptype := OutgoingPacketType(ptypeBuf[0]); ptype {
	case TypeErrorPacket:
		msg, err := readMessage(tee)
		if err != nil {
			return nil, fmt.Errorf("failed to read error message: %w", err)
		}
		packet = ErrorPacket{Message: msg}

	case TypePanicPacket:
		packet = PanicPacket{}

	case TypeLogPacket:
		msg, err := readMessage(tee)
		if err != nil {
			return nil, fmt.Errorf("failed to read log message: %w", err)
		}
		packet = LogPacket{Message: msg}

	case TypeAckPacket:
		var acked [1]byte
		if _, err := io.ReadFull(tee, acked[:]); err != nil {
			return nil, fmt.Errorf("failed to read acked packet type: %w", err)
		}
		packet = AckPacket{IncomingPacketType: IncomingPacketType(acked[0])}

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := readChecksum(r, hash.Sum32()); err != nil {
		return nil, err
	}

	return packet, nil
}

// WriteOutgoingPacket writes an outgoing packet to the given writer in a
// single Write call.
func WriteOutgoingPacket(w io.Writer, p OutgoingPacket) error {
	var buf bytes.Buffer
	buf.WriteByte(byte(p.Type()))

	switch p := p.(type) {
	case ErrorPacket:
		writeMessage(&buf, p.Message)
	case PanicPacket:
	case LogPacket:
		writeMessage(&buf, p.Message)
	case AckPacket:
		buf.WriteByte(byte(p.IncomingPacketType))
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	return writeFrame(w, &buf)
}

func writeFrame(w io.Writer, buf *bytes.Buffer) error {
	binary.Write(buf, Endianness, crc32.ChecksumIEEE(buf.Bytes()))
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	return nil
}

func readChecksum(r io.Reader, want uint32) error {
	var checksum uint32
	if err := binary.Read(r, Endianness, &checksum); err != nil {
		return fmt.Errorf("failed to read packet checksum: %w", err)
	}
	if checksum != want {
		return fmt.Errorf("packet checksum mismatch")
	}
	return nil
}

func writeMessage(buf *bytes.Buffer, msg string) {
	if len(msg) > MaxMessageLength {
		msg = msg[:MaxMessageLength]
	}
	binary.Write(buf, Endianness, uint16(len(msg)))
	buf.WriteString(msg)
}

func readMessage(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, Endianness, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
