// Command ledserial turns a XIAO RP2040 into an LED controller board driven by
// the word clock daemon over USB serial.
package main

import "machine"

var stripPin = machine.GPIO26

func main() {
	d := NewDevice(machine.Serial, stripPin)
	d.Run()
}
