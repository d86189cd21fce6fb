package main

import (
	"fmt"
	"machine"

	"libdb.so/wordclock/internal/led"
	"libdb.so/wordclock/ledserial"
	"libdb.so/wordclock/pico/board"
)

var (
	busyColor  = led.RGB(255, 255, 255)
	readyFirst = led.RGB(255, 0, 0)
	readyLast  = led.RGB(0, 0, 255)
)

// Device is the controller's state.
type Device struct {
	serial board.SerialReadWriter
	strip  *board.Strip
	status *board.Status
	pin    machine.Pin

	numLEDs   uint16
	ledBuffer []byte
}

// NewDevice creates a new device. The strip is set up once the host sends an
// InitializePacket.
func NewDevice(serial machine.Serialer, stripPin machine.Pin) *Device {
	return &Device{
		serial: board.WrapSerial(serial),
		status: board.NewStatus(),
		pin:    stripPin,
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		d.status.Light(busyColor)
		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		} else {
			d.sendPacket(ledserial.AckPacket{IncomingPacketType: p.Type()})
		}
		d.status.Off()
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	return ledserial.ReadIncomingPacket(d.serial, ledserial.ReadContext{
		NumLEDs:   d.numLEDs,
		LEDBuffer: d.ledBuffer,
	})
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.NumLEDs < 1 {
			return fmt.Errorf("invalid number of LEDs: %d", p.NumLEDs)
		}
		if d.strip == nil || d.strip.Len() != int(p.NumLEDs) {
			d.strip = board.NewStrip(d.pin, int(p.NumLEDs))
		}
		d.numLEDs = p.NumLEDs
		d.ledBuffer = make([]byte, 3*int(p.NumLEDs))
		d.log(fmt.Sprintf("initialized %d LEDs", p.NumLEDs))
		return d.signalReady()

	case ledserial.ClearPacket:
		if d.strip == nil {
			return nil
		}
		return d.push(led.NewLEDs(d.strip.Len()))

	case ledserial.SetPacket:
		if d.strip == nil {
			return fmt.Errorf("set before initialize")
		}
		_, err := d.strip.Write(p.Pix)
		return err

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}
}

// signalReady lights the first LED red and the last one blue so that a wrong
// strip length is visible at a glance.
func (d *Device) signalReady() error {
	leds := led.NewLEDs(d.strip.Len())
	leds.Set(0, readyFirst)
	leds.Set(len(leds)-1, readyLast)
	return d.push(leds)
}

func (d *Device) push(leds led.LEDs) error {
	return led.Push(d.strip, leds)
}
