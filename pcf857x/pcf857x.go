// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// This package provides a driver for the TI/NXP PCF857X I2C I/O Expander. These
// devices provide 8 pins (PCF8574) or 16 pins (PCF8575) of
// "quasi-bidirectional" input/output. This device is commonly used in LCD
// backpacks, particularly those sold as LCD2004, LCD1602.
//
// The PCF8575 is a 16-pin device that is functionally identical to the PCF8574.
// When communicating with the PCF8575 reads and writes are 2 bytes wide, while
// they're one byte wide with the PCF85754
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/pcf8574.pdf
//
// A good description of the I2C LCD backpack usage can be found here:
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// Dev.WriteMasked and Dev.ReadMasked change or sample several pins in one
// bus transaction. The LCD backpacks rely on them to send register select,
// backlight and a data nibble at once.
//
// # Notes
//
// This device is very simple and doesn't have functionality that similar
// devices do. Specifically, GPIO Read() consists of writing a High out a pin,
// and then reading it to see if it is still high, or if it has transitioned to
// low.
//
// Setting a pin to Low activates an Open Drain to ground.
//
// You cannot detect edge change on a specific pin. There is an interrupt pin
// that can be used to detect a change on the GPIO pins, but it doesn't tell you
// which pin changed.
//
// This chip doesn't implement normal i2c register architectures. You write 8 or
// 16 bits out, and that sets the corresponding pins, or you read 8/16 bits and
// get the state of the pins.
package pcf857x

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
)

// Variant represents the actual chip model.
type Variant string

const (
	PCF8574 Variant = "PCF8574"
	PCF8575 Variant = "PCF8575"

	DefaultAddress uint16 = 0x20
)

var (
	ErrNotImplemented error = errors.New("pcf857x: not implemented")
)

// Dev is representation of a PCF857x device.
type Dev struct {
	// The pins exposed by the device. For PCF8574, this will be 8 pins, and
	// 16 pins for the PCF8575
	Pins     []gpio.PinIO
	mask     uint16
	width    int
	chipType Variant

	mu    sync.Mutex
	d     *i2c.Dev
	value uint16
	// known is false until the first write. The chip powers up with every
	// pin high, which the cache can't assume.
	known bool
}

// New creates a new PCF857x io expander and returns it. chip should be one of
// the Variant constants above.
func New(bus i2c.Bus, address uint16, chip Variant) (*Dev, error) {
	dev := &Dev{d: &i2c.Dev{Bus: bus, Addr: address},
		chipType: chip}
	switch chip {
	case PCF8574:
		dev.width = 8
	case PCF8575:
		dev.width = 16
	default:
		return nil, fmt.Errorf("pcf857x: unsupported variant %q", chip)
	}
	dev.mask = uint16((1 << dev.width) - 1)
	dev.Pins = make([]gpio.PinIO, dev.width)
	sDev := dev.String()
	for ix := range dev.width {
		name := fmt.Sprintf("%s_GPIO%d", sDev, ix)
		dev.Pins[ix] = &pcfPin{dev: dev, number: ix, name: name}
		if err := gpioreg.Register(dev.Pins[ix]); err != nil {
			logrus.WithError(err).WithField("pin", name).Debug("pcf857x: pin not registered")
		}
	}
	return dev, nil
}

// Halt removes the pins from gpioreg. The outputs are left as they are.
func (dev *Dev) Halt() error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	for _, p := range dev.Pins {
		_ = gpioreg.Unregister(p.Name())
	}
	dev.Pins = make([]gpio.PinIO, 0)
	return nil
}

// WriteMasked sets the pins selected by mask to the matching bits of value.
// The write is skipped when no pin would change.
func (dev *Dev) WriteMasked(value, mask uint16) error {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.write(value, mask)
}

// ReadMasked returns the state of the pins selected by mask. The selected
// pins are first released high, since a pin driven low always reads low.
func (dev *Dev) ReadMasked(mask uint16) (uint16, error) {
	dev.mu.Lock()
	defer dev.mu.Unlock()
	return dev.read(mask)
}

// read performs the low level i2c read operation from the device.
func (dev *Dev) read(mask uint16) (uint16, error) {
	// Before you can read a pin, you must have set it to high. If nothing
	// pulls that down, then it's high. If it's pulled down, it's low.
	if err := dev.write(mask, mask); err != nil {
		return 0, err
	}
	r := make([]byte, dev.width/8)
	if err := dev.d.Tx(nil, r); err != nil {
		return 0, fmt.Errorf("pcf857x: %w", err)
	}
	result := uint16(r[0])
	if len(r) > 1 {
		result |= uint16(r[1]) << 8
	}
	return result & mask, nil
}

// write performs the low-level write to the device. If the resulting value of
// the device is unchanged, the write is skipped.
func (dev *Dev) write(value, mask uint16) error {
	mask &= dev.mask
	wrValue := dev.value&^mask | value&mask
	if dev.known && dev.value == wrValue {
		return nil
	}
	w := make([]byte, dev.width/8)
	for ix := range w {
		w[ix] = byte(wrValue >> (ix * 8))
	}
	if err := dev.d.Tx(w, nil); err != nil {
		return fmt.Errorf("pcf857x: %w", err)
	}
	dev.value = wrValue
	dev.known = true
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.chipType, dev.d.Addr)
}
