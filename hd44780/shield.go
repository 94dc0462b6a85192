// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"github.com/GermanBionicSystems/charlcd/mcp23xxx"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
)

// Pin 5 of port A switches the Sainsmart backlight, active low.
const sainsmartBacklightPin = 5

// Shield is an RGB display with a five button keypad, built on an MCP23017.
type Shield struct {
	*RGB
	// Keypad reads the buttons.
	Keypad *Keypad

	backlight *Backlight
}

// NewRGBShield returns the Adafruit RGB LCD shield or Pi plate.
//
// # Product Information
//
// https://www.adafruit.com/product/714
//
// The backlight starts off; use SetColor to light it.
func NewRGBShield(bus i2c.Bus, address uint16, cols, rows int, opts *Opts) (*Shield, error) {
	mcp, err := mcp23xxx.NewI2C(bus, mcp23xxx.MCP23017, address)
	if err != nil {
		return nil, err
	}
	return newShield(mcp, nil, cols, rows, opts)
}

// NewSainsmartShield returns the Sainsmart 16x2 RGB LCD + keypad, a clone
// of the Adafruit shield with an extra backlight switch. The backlight is
// turned on.
func NewSainsmartShield(bus i2c.Bus, address uint16, cols, rows int, opts *Opts) (*Shield, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	mcp, err := mcp23xxx.NewI2C(bus, mcp23xxx.MCP23017, address)
	if err != nil {
		return nil, err
	}
	bl := NewBacklight(mcp.Pin(sainsmartBacklightPin), !opts.BacklightInverted)
	if err := bl.Set(true); err != nil {
		return nil, err
	}
	return newShield(mcp, bl, cols, rows, opts)
}

func newShield(mcp *mcp23xxx.Dev, bl *Backlight, cols, rows int, opts *Opts) (*Shield, error) {
	for b := Select; b <= Left; b++ {
		if err := mcp.Pin(int(b)).In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, err
		}
	}
	rgb, err := NewRGBBacklight(
		DigitalAnode(mcp.Pin(6)),
		DigitalAnode(mcp.Pin(7)),
		DigitalAnode(mcp.Pin(8)),
	)
	if err != nil {
		return nil, err
	}
	d, err := New(NewRegisterTransport(mcp, RGBShieldWiring, nil), cols, rows, opts)
	if err != nil {
		return nil, err
	}
	if err := rgb.Set(0, 0, 0); err != nil {
		return nil, err
	}
	return &Shield{
		RGB:       &RGB{Dev: d, rgb: rgb},
		Keypad:    NewKeypad(mcp),
		backlight: bl,
	}, nil
}

// SetBacklight turns the backlight switch on or off and clears the color.
// Only the Sainsmart shield has a switch; the Adafruit shield returns
// ErrNoBacklight.
func (s *Shield) SetBacklight(on bool) error {
	if s.backlight == nil {
		return ErrNoBacklight
	}
	if err := s.backlight.Set(on); err != nil {
		return err
	}
	return s.SetColor(0, 0, 0)
}

// Backlight returns the state of the backlight switch.
func (s *Shield) Backlight() bool {
	return s.backlight != nil && s.backlight.On()
}

// Halt clears the display, turns it off and switches the backlight off.
func (s *Shield) Halt() error {
	if err := s.RGB.Halt(); err != nil {
		return err
	}
	if s.backlight == nil {
		return nil
	}
	return s.backlight.Set(false)
}
