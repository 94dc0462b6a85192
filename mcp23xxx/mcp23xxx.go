// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mcp23xxx

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/mmr"
)

// Variant is the chip model.
type Variant string

const (
	MCP23008 Variant = "MCP23008"
	MCP23017 Variant = "MCP23017"

	DefaultAddress uint16 = 0x20
)

type port struct {
	iodir registerCache
	gppu  registerCache
	gpio  registerCache
	olat  registerCache
}

// Dev is an MCP23008 or MCP23017.
type Dev struct {
	// Pins is structured as [port][pin]. The MCP23008 has one port, the
	// MCP23017 has two: A (pins 0-7) and B (pins 8-15).
	Pins [][]gpio.PinIO

	variant Variant
	addr    uint16

	mu    sync.Mutex
	regs  mmr.Dev8
	ports []*port
}

// NewI2C returns a device communicating over I²C.
//
// Every pin starts as an input without pull-up and a low output latch, the
// power-on state of the chip.
func NewI2C(bus i2c.Bus, variant Variant, address uint16) (*Dev, error) {
	dev := &Dev{
		variant: variant,
		addr:    address,
		regs:    mmr.Dev8{Conn: &i2c.Dev{Bus: bus, Addr: address}, Order: binary.LittleEndian},
	}
	switch variant {
	case MCP23008:
		dev.ports = []*port{{
			iodir: newRegister(&dev.regs, mcp23008IODIR),
			gppu:  newRegister(&dev.regs, mcp23008GPPU),
			gpio:  newRegister(&dev.regs, mcp23008GPIO),
			olat:  newRegister(&dev.regs, mcp23008OLAT),
		}}
	case MCP23017:
		dev.ports = []*port{
			{
				iodir: newRegister(&dev.regs, mcp23017IODIRA),
				gppu:  newRegister(&dev.regs, mcp23017GPPUA),
				gpio:  newRegister(&dev.regs, mcp23017GPIOA),
				olat:  newRegister(&dev.regs, mcp23017OLATA),
			},
			{
				iodir: newRegister(&dev.regs, mcp23017IODIRB),
				gppu:  newRegister(&dev.regs, mcp23017GPPUB),
				gpio:  newRegister(&dev.regs, mcp23017GPIOB),
				olat:  newRegister(&dev.regs, mcp23017OLATB),
			},
		}
	default:
		return nil, fmt.Errorf("mcp23xxx: unsupported variant %q", variant)
	}

	for _, p := range dev.ports {
		if err := p.iodir.writeValue(0xff, false); err != nil {
			return nil, fmt.Errorf("mcp23xxx: %w", err)
		}
		if err := p.gppu.writeValue(0x00, false); err != nil {
			return nil, fmt.Errorf("mcp23xxx: %w", err)
		}
		if err := p.olat.writeValue(0x00, false); err != nil {
			return nil, fmt.Errorf("mcp23xxx: %w", err)
		}
	}

	dev.Pins = make([][]gpio.PinIO, len(dev.ports))
	for portNum := range dev.ports {
		dev.Pins[portNum] = make([]gpio.PinIO, 8)
		for bit := range 8 {
			p := &portpin{
				dev:    dev,
				number: portNum*8 + bit,
				name:   fmt.Sprintf("%s_P%c%d", dev, 'A'+portNum, bit),
			}
			dev.Pins[portNum][bit] = p
			if err := gpioreg.Register(p); err != nil {
				logrus.WithError(err).WithField("pin", p.name).Debug("mcp23xxx: pin not registered")
			}
		}
	}
	return dev, nil
}

// Pin returns the pin by its number, 0-7 on port A and 8-15 on port B.
func (dev *Dev) Pin(number int) gpio.PinIO {
	return dev.Pins[number/8][number%8]
}

// Halt removes the pins from gpioreg. The output latch is left as is.
func (dev *Dev) Halt() error {
	for _, pins := range dev.Pins {
		for _, p := range pins {
			_ = gpioreg.Unregister(p.Name())
		}
	}
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("%s_%x", dev.variant, dev.addr)
}
