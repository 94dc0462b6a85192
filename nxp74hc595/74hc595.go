// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// The 74HC595 is a serial shift register. It converts a serial stream to a
// parallel output. For example, you can use it as an SPI => Parallel
// converter.
//
// # Datasheet
//
// https://www.nexperia.com/product/74HC595D
//
// Dev.WriteMasked changes several outputs with a single one-byte transfer.
//
// There's a nice tutorial on the device here:
//
// https://docs.arduino.cc/tutorials/communication/guide-to-shift-out/
package nxp74hc595

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"
)

const (
	devMask = 0xff
	devName = "74HC595"
	numPins = 8
)

var (
	ErrNotImplemented = errors.New("nxp74hc595: not implemented")
)

// Dev represents a 74hc595 device.
type Dev struct {
	Pins []gpio.PinOut

	mu    sync.Mutex
	conn  spi.Conn
	value uint16
}

// New accepts an spi.Conn and returns a new HC74595 device.
func New(conn spi.Conn) (*Dev, error) {
	// setting value to an invalid initial state forces the first write to
	// happen, even if it's 0.
	dev := Dev{conn: conn, value: 1 << 9, Pins: make([]gpio.PinOut, numPins)}
	for ix := range numPins {
		dev.Pins[ix] = &Pin{number: ix, name: fmt.Sprintf("%s_GPO%d", devName, ix), dev: &dev}
	}
	return &dev, nil
}

// WriteMasked shifts out a new output byte where the pins selected by mask
// take the matching bits of value. Nothing is sent when the outputs wouldn't
// change. Bits above 7 are ignored.
func (dev *Dev) WriteMasked(value, mask uint16) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.conn == nil {
		return errors.New("nxp74hc595: device halted")
	}
	mask &= devMask
	newValue := (dev.value & (devMask ^ mask)) | (value & mask)
	if dev.value == newValue {
		return nil
	}
	if err := dev.conn.Tx([]byte{byte(newValue)}, nil); err != nil {
		return fmt.Errorf("nxp74hc595: %w", err)
	}
	dev.value = newValue
	return nil
}

// ReadMasked is not available for this device.
func (dev *Dev) ReadMasked(mask uint16) (uint16, error) {
	return 0, ErrNotImplemented
}

// Halt disables the device
func (dev *Dev) Halt() (err error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	dev.Pins = make([]gpio.PinOut, 0)
	dev.conn = nil
	return
}

func (dev *Dev) String() string {
	return devName
}

var _ gpio.PinOut = &Pin{}
