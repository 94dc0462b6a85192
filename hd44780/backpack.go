// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"github.com/GermanBionicSystems/charlcd/mcp23xxx"
	"github.com/GermanBionicSystems/charlcd/nxp74hc595"
	"github.com/GermanBionicSystems/charlcd/pcf857x"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// NewMCP23008Backpack returns a display on the I²C side of the Adafruit
// I2C/SPI LCD backpack.
//
// # Product Information
//
// https://www.adafruit.com/product/292
//
// The I2C side of this backpack uses an MCP23008 I/O expander. Register
// select, backlight and the data nibble go out in one write.
func NewMCP23008Backpack(bus i2c.Bus, address uint16, cols, rows int, opts *Opts) (*Mono, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	mcp, err := mcp23xxx.NewI2C(bus, mcp23xxx.MCP23008, address)
	if err != nil {
		return nil, err
	}
	bl := NewBacklight(mcp.Pin(MCP23008Wiring.Backlight), opts.BacklightInverted)
	return newBackpack(mcp, MCP23008Wiring, bl, cols, rows, opts)
}

// NewSPIBackpack returns a display on the SPI side of the Adafruit I2C/SPI
// backpack. The SPI side uses a 74HC595 Serial->Parallel shift register.
func NewSPIBackpack(conn spi.Conn, cols, rows int, opts *Opts) (*Mono, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	chip, err := nxp74hc595.New(conn)
	if err != nil {
		return nil, err
	}
	bl := NewBacklight(chip.Pins[HC595Wiring.Backlight], opts.BacklightInverted)
	return newBackpack(chip, HC595Wiring, bl, cols, rows, opts)
}

// NewPCF8574Backpack returns a display on the common PCF8574 backpack sold
// with LCD1602 and LCD2004 modules.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
//
// R/W is connected on this backpack and held low. The backlight bit is
// part of every LCD write, so a backlight change shows with the next byte.
func NewPCF8574Backpack(bus i2c.Bus, address uint16, cols, rows int, opts *Opts) (*Mono, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	pcf, err := pcf857x.New(bus, address, pcf857x.PCF8574)
	if err != nil {
		return nil, err
	}
	return newBackpack(pcf, PCF8574Wiring, NewBacklight(nil, opts.BacklightInverted), cols, rows, opts)
}

func newBackpack(reg Register, w Wiring, bl *Backlight, cols, rows int, opts *Opts) (*Mono, error) {
	if err := bl.Set(true); err != nil {
		return nil, err
	}
	d, err := New(NewRegisterTransport(reg, w, bl), cols, rows, opts)
	if err != nil {
		return nil, err
	}
	return &Mono{Dev: d, backlight: bl}, nil
}
